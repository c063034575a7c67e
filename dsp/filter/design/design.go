package design

import (
	"math"

	"github.com/cwbudde/algo-looper/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// LowShelf designs an RBJ low shelf with gainDB below freq. Invalid
// frequencies or sample rates yield zero coefficients; q <= 0 selects
// 1/sqrt(2).
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	return shelf(freq, gainDB, q, sampleRate, 1)
}

// HighShelf designs an RBJ high shelf with gainDB above freq.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	return shelf(freq, gainDB, q, sampleRate, -1)
}

// shelf evaluates the RBJ low-shelf prototype. side -1 mirrors it around
// fs/4 (z -> -z), which turns it into the high shelf.
func shelf(freq, gainDB, q, sampleRate, side float64) biquad.Coefficients {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) ||
		!(freq > 0) || freq >= sampleRate/2 || math.IsInf(freq, 0) {
		return biquad.Coefficients{}
	}

	if !(q > 0) || math.IsInf(q, 0) {
		q = defaultQ
	}

	w0 := 2 * math.Pi * freq / sampleRate
	cw := side * math.Cos(w0)
	a := math.Pow(10, gainDB/40)
	beta := math.Sqrt(a) * math.Sin(w0) / q

	a0 := (a + 1) + (a-1)*cw + beta
	if a0 == 0 || math.IsNaN(a0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: a * ((a + 1) - (a-1)*cw + beta) / a0,
		B1: side * 2 * a * ((a - 1) - (a+1)*cw) / a0,
		B2: a * ((a + 1) - (a-1)*cw - beta) / a0,
		A1: side * -2 * ((a - 1) + (a+1)*cw) / a0,
		A2: ((a + 1) + (a-1)*cw - beta) / a0,
	}
}
