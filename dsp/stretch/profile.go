package stretch

import (
	"github.com/cwbudde/algo-looper/dsp/interp"
	"github.com/cwbudde/algo-looper/dsp/window"
)

const (
	extremePitchLow  = 0.6
	extremePitchHigh = 1.8
)

// Profile holds the analysis/synthesis settings of one render.
type Profile struct {
	Name           string
	FFTSize        int
	Oversampling   int
	Window         window.Type
	Interp         interp.Mode
	TransientBlend float64
}

// Hop returns the STFT hop size in samples.
func (p Profile) Hop() int {
	if p.Oversampling <= 0 {
		return p.FFTSize
	}

	return p.FFTSize / p.Oversampling
}

// TonalProfile favours frequency resolution for sustained material.
func TonalProfile() Profile {
	return Profile{
		Name:           "tonal",
		FFTSize:        4096,
		Oversampling:   16,
		Window:         window.TypeBlackmanHarris4Term,
		Interp:         interp.Hermite,
		TransientBlend: 0.65,
	}
}

// PercussiveProfile favours time resolution for drums and noise.
func PercussiveProfile() Profile {
	return Profile{
		Name:           "percussive",
		FFTSize:        2048,
		Oversampling:   16,
		Window:         window.TypeHann,
		Interp:         interp.Linear,
		TransientBlend: 0.8,
	}
}

// SelectProfile picks the profile for the analysed source at the given
// pitch ratio. Extreme shifts double the FFT size and oversampling.
func SelectProfile(a Analysis, pitchRatio float64) Profile {
	p := TonalProfile()
	if a.Percussive {
		p = PercussiveProfile()
	}

	if pitchRatio < extremePitchLow || pitchRatio > extremePitchHigh {
		p.Name += "-extreme"
		p.FFTSize *= 2
		p.Oversampling *= 2
	}

	return p
}

func (p Profile) valid() bool {
	return p.FFTSize >= 64 && p.FFTSize&(p.FFTSize-1) == 0 &&
		p.Oversampling >= 1 && p.Hop() >= 1
}
