package stretch

import (
	"math"

	"github.com/cwbudde/algo-looper/dsp/interp"
)

// resampleSpeed plays x back at speed: the result holds ceil(len(x)/speed)
// samples read at fractional positions i*speed.
func resampleSpeed(x []float32, speed float64, mode interp.Mode) []float32 {
	if speed == 1 {
		return append([]float32(nil), x...)
	}

	n := int(math.Ceil(float64(len(x)) / speed))
	out := make([]float32, n)

	for i := range out {
		out[i] = float32(interp.At(x, float64(i)*speed, mode))
	}

	return out
}
