package stretch

import (
	"math"

	"github.com/cwbudde/algo-looper/dsp/filter/biquad"
	"github.com/cwbudde/algo-looper/dsp/filter/design"
)

const (
	formantMinDeviation = 0.01
	maxTiltDB           = 12.0
	lowShelfHz          = 350.0
	highShelfHz         = 4500.0
	highShelfRatio      = 0.85
	shelfQ              = 0.707
)

// formantTilt returns the low-shelf gain in dB that counters the spectral
// drift of a pitch shift. Zero means no compensation.
func formantTilt(pitchRatio float64) float64 {
	if math.Abs(pitchRatio-1) <= formantMinDeviation {
		return 0
	}

	semitones := 12 * math.Log2(pitchRatio)
	tilt := math.Min(maxTiltDB, math.Abs(semitones)/2)

	dir := 1.0
	if pitchRatio < 1 {
		dir = -1
	}

	return dir * tilt / 2
}

// formantChain builds the low/high shelf pair for lowGainDB. Shelves whose
// corner does not fit below Nyquist are left out.
func formantChain(lowGainDB, sampleRate float64) *biquad.Chain {
	var zero biquad.Coefficients

	coeffs := make([]biquad.Coefficients, 0, 2)

	if c := design.LowShelf(lowShelfHz, lowGainDB, shelfQ, sampleRate); c != zero {
		coeffs = append(coeffs, c)
	}

	if c := design.HighShelf(highShelfHz, -highShelfRatio*lowGainDB, shelfQ, sampleRate); c != zero {
		coeffs = append(coeffs, c)
	}

	if len(coeffs) == 0 {
		return nil
	}

	return biquad.NewChain(coeffs)
}
