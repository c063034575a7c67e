package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-looper/dsp/filter/biquad"
	"github.com/cwbudde/algo-looper/dsp/filter/design"
)

func ExampleLowShelf() {
	chain := biquad.NewChain([]biquad.Coefficients{
		design.LowShelf(350, 3, 0, 48000),
		design.HighShelf(4500, -3, 0, 48000),
	})

	fmt.Printf("10 Hz:    %.0f dB\n", chain.MagnitudeDB(10, 48000))
	fmt.Printf("23000 Hz: %.0f dB\n", chain.MagnitudeDB(23000, 48000))
	// Output:
	// 10 Hz:    3 dB
	// 23000 Hz: -3 dB
}
