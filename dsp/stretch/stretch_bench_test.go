package stretch

import (
	"testing"

	"github.com/cwbudde/algo-looper/internal/testutil"
)

func BenchmarkProcess(b *testing.B) {
	loop := testutil.DeterministicSine(220, 44100, 0.5, 44100)

	cases := []struct {
		name         string
		speed, pitch float64
	}{
		{"speed", 0.75, 1},
		{"pitch", 1, 1.25},
		{"both", 0.75, 0.8},
	}

	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Process(loop, loop, 44100, c.speed, c.pitch); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
