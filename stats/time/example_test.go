package time_test

import (
	"fmt"

	timestats "github.com/cwbudde/algo-looper/stats/time"
)

func ExampleCalculate() {
	s := timestats.Calculate([]float32{1, -1, 1, -1})
	fmt.Printf("rms=%.1f zc=%d mad=%.1f\n", s.RMS, s.ZeroCrossings, s.MeanAbsDiff)

	// Output:
	// rms=1.0 zc=3 mad=2.0
}
