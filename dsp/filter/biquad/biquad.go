package biquad

import (
	"math"
	"math/cmplx"
)

// Coefficients of one section with a0 normalized to 1:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Response returns H(e^jw) at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freqHz/sampleRate))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// MagnitudeDB returns |H| in dB at freqHz.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// Chain filters through its sections in order, transposed direct form II.
// State is kept in float64 across calls.
type Chain struct {
	coeffs []Coefficients
	state  [][2]float64
}

// NewChain returns a chain with zeroed state.
func NewChain(coeffs []Coefficients) *Chain {
	return &Chain{
		coeffs: append([]Coefficients(nil), coeffs...),
		state:  make([][2]float64, len(coeffs)),
	}
}

// NumSections returns the number of sections.
func (c *Chain) NumSections() int {
	return len(c.coeffs)
}

// ProcessBlock32 filters buf in place. Samples are rounded to float32 only
// after the last section.
func (c *Chain) ProcessBlock32(buf []float32) {
	for n, in := range buf {
		x := float64(in)

		for i, k := range c.coeffs {
			d := &c.state[i]
			y := k.B0*x + d[0]
			d[0] = k.B1*x - k.A1*y + d[1]
			d[1] = k.B2*x - k.A2*y
			x = y
		}

		buf[n] = float32(x)
	}
}

// MagnitudeDB returns the cascade's magnitude response in dB at freqHz.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	h := complex(1, 0)
	for _, k := range c.coeffs {
		h *= k.Response(freqHz, sampleRate)
	}

	return 20 * math.Log10(cmplx.Abs(h))
}
