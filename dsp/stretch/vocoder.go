package stretch

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-looper/dsp/window"
)

const normFloor = 1e-12

// vocoder shifts pitch by remapping STFT bins while keeping duration.
// Not safe for concurrent use; Process builds one per render.
type vocoder struct {
	size  int
	osamp int
	hop   int

	plan *algofft.Plan[complex128]
	win  []float64
	win2 []float64

	grain    []float64
	windowed []float64
	frame    []complex128
	spec  []complex128

	lastPhase []float64
	sumPhase  []float64
	anaMag    []float64
	anaFreq   []float64
	synMag    []float64
	synFreq   []float64
}

func newVocoder(p Profile) (*vocoder, error) {
	if !p.valid() {
		return nil, fmt.Errorf("stretch: invalid profile %q: fft=%d oversampling=%d", p.Name, p.FFTSize, p.Oversampling)
	}

	plan, err := plans.get(p.FFTSize)
	if err != nil {
		return nil, err
	}

	bins := p.FFTSize/2 + 1
	win := window.Generate(p.Window, p.FFTSize, window.WithPeriodic())

	return &vocoder{
		size:      p.FFTSize,
		osamp:     p.Oversampling,
		hop:       p.Hop(),
		plan:      plan,
		win:       win,
		win2:      window.Squared(win),
		grain:     make([]float64, p.FFTSize),
		windowed:  make([]float64, p.FFTSize),
		frame:     make([]complex128, p.FFTSize),
		spec:      make([]complex128, p.FFTSize),
		lastPhase: make([]float64, bins),
		sumPhase:  make([]float64, bins),
		anaMag:    make([]float64, bins),
		anaFreq:   make([]float64, bins),
		synMag:    make([]float64, bins),
		synFreq:   make([]float64, bins),
	}, nil
}

// release returns the FFT plan to the shared cache.
func (v *vocoder) release() {
	plans.put(v.size, v.plan)
	v.plan = nil
}

func (v *vocoder) reset() {
	clear(v.lastPhase)
	clear(v.sumPhase)
}

// shift returns x pitch-shifted by ratio, with the same length as x.
func (v *vocoder) shift(x []float32, ratio float64) ([]float32, error) {
	v.reset()

	n := len(x)
	out := make([]float64, n)
	norm := make([]float64, n)

	half := v.size / 2
	expct := 2 * math.Pi * float64(v.hop) / float64(v.size)
	osamp := float64(v.osamp)

	// Frames start before the buffer so every sample sees full overlap.
	for pos := -(v.size - v.hop); pos < n; pos += v.hop {
		for i := range v.size {
			v.grain[i] = 0
			if idx := pos + i; idx >= 0 && idx < n {
				v.grain[i] = float64(x[idx])
			}
		}

		if err := window.ApplyCoefficients(v.windowed, v.grain, v.win); err != nil {
			return nil, fmt.Errorf("stretch: analysis window: %w", err)
		}

		for i, s := range v.windowed {
			v.frame[i] = complex(s, 0)
		}

		if err := v.plan.Forward(v.spec, v.frame); err != nil {
			return nil, fmt.Errorf("stretch: forward FFT failed: %w", err)
		}

		// Analysis: true bin frequency from the phase advance since the
		// previous frame.
		for k := 0; k <= half; k++ {
			re, im := real(v.spec[k]), imag(v.spec[k])
			phase := math.Atan2(im, re)

			d := phase - v.lastPhase[k]
			v.lastPhase[k] = phase
			d = principalArg(d - float64(k)*expct)

			v.anaMag[k] = math.Hypot(re, im)
			v.anaFreq[k] = float64(k) + osamp*d/(2*math.Pi)
		}

		clear(v.synMag)
		clear(v.synFreq)

		for k := 0; k <= half; k++ {
			j := int(float64(k) * ratio)
			if j > half {
				break
			}

			v.synMag[j] += v.anaMag[k]
			v.synFreq[j] = v.anaFreq[k] * ratio
		}

		// Synthesis: accumulate phase at the remapped frequencies.
		for k := 0; k <= half; k++ {
			d := 2*math.Pi*(v.synFreq[k]-float64(k))/osamp + float64(k)*expct
			v.sumPhase[k] += d
			v.spec[k] = cmplx.Rect(v.synMag[k], v.sumPhase[k])
		}

		v.spec[0] = complex(real(v.spec[0]), 0)
		v.spec[half] = complex(real(v.spec[half]), 0)

		for k := 1; k < half; k++ {
			v.spec[v.size-k] = cmplx.Conj(v.spec[k])
		}

		if err := v.plan.Inverse(v.frame, v.spec); err != nil {
			return nil, fmt.Errorf("stretch: inverse FFT failed: %w", err)
		}

		for i, c := range v.frame {
			v.grain[i] = real(c)
		}

		if err := window.ApplyCoefficients(v.windowed, v.grain, v.win); err != nil {
			return nil, fmt.Errorf("stretch: synthesis window: %w", err)
		}

		for i := range v.size {
			idx := pos + i
			if idx < 0 || idx >= n {
				continue
			}

			out[idx] += v.windowed[i]
			norm[idx] += v.win2[i]
		}
	}

	res := make([]float32, n)
	for i, s := range out {
		if norm[i] > normFloor {
			s /= norm[i]
		}

		res[i] = float32(s)
	}

	return res, nil
}

// principalArg wraps d to the nearest even multiple of pi.
func principalArg(d float64) float64 {
	qpd := int(d / math.Pi)
	if qpd >= 0 {
		qpd += qpd & 1
	} else {
		qpd -= qpd & 1
	}

	return d - math.Pi*float64(qpd)
}
