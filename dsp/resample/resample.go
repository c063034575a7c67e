package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls the anti-aliasing filter length and window.
type Quality int

const (
	// QualityFast trades stopband attenuation for fewer taps.
	QualityFast Quality = iota
	// QualityBalanced is the default.
	QualityBalanced
	// QualityBest gives the flattest passband and deepest stopband.
	QualityBest
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityBest:
		return "best"
	default:
		return "balanced"
	}
}

// Profile holds the filter parameters of a quality mode.
type Profile struct {
	TapsPerPhase      int
	CutoffScale       float64
	KaiserBeta        float64
	NominalStopbandDB float64
}

// QualityProfile returns the filter parameters used by q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{TapsPerPhase: 16, CutoffScale: 0.88, KaiserBeta: 5.0, NominalStopbandDB: 55}
	case QualityBest:
		return Profile{TapsPerPhase: 64, CutoffScale: 0.96, KaiserBeta: 9.0, NominalStopbandDB: 90}
	default:
		return Profile{TapsPerPhase: 32, CutoffScale: 0.92, KaiserBeta: 7.5, NominalStopbandDB: 75}
	}
}

type config struct {
	quality Quality
	loop    bool
	maxDen  int
}

// Option configures a Converter.
type Option func(*config)

// WithQuality selects the anti-aliasing quality mode.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithLoop treats every buffer as one period of a loop.
func WithLoop() Option {
	return func(cfg *config) {
		cfg.loop = true
	}
}

// WithMaxDenominator caps the denominator used to approximate a rate ratio.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Converter resamples buffers by a fixed rational ratio. It holds no
// per-buffer state and may be shared between goroutines.
type Converter struct {
	up      int
	down    int
	quality Quality
	loop    bool

	// phases[p][j] is prototype tap p+j*up.
	phases [][]float64
	center int
}

// NewRational creates a converter producing up output samples for every
// down input samples.
func NewRational(up, down int, opts ...Option) (*Converter, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := newConfig(opts)
	c := &Converter{up: up, down: down, quality: cfg.quality, loop: cfg.loop}

	if up == down {
		return c, nil
	}

	phases, center, err := designPolyphase(up, down, QualityProfile(cfg.quality))
	if err != nil {
		return nil, err
	}

	c.phases = phases
	c.center = center

	return c, nil
}

// New creates a converter from inRate to outRate.
func New(inRate, outRate float64, opts ...Option) (*Converter, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) ||
		math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}

	up, down := approximateRatio(outRate/inRate, newConfig(opts).maxDen)

	return NewRational(up, down, opts...)
}

// Ratio returns the reduced up/down factors.
func (c *Converter) Ratio() (up, down int) {
	return c.up, c.down
}

// Quality returns the configured quality mode.
func (c *Converter) Quality() Quality {
	return c.quality
}

// Identity reports whether the converter passes samples through unchanged.
func (c *Converter) Identity() bool {
	return c.up == c.down
}

// OutputLen returns the number of samples Process produces for n inputs.
func (c *Converter) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}

	return (n*c.up + c.down/2) / c.down
}

// Process converts one channel.
func (c *Converter) Process(in []float32) []float32 {
	if len(in) == 0 {
		return nil
	}

	if c.Identity() {
		return append([]float32(nil), in...)
	}

	out := make([]float32, c.OutputLen(len(in)))
	n := len(in)

	for m := range out {
		pos := m*c.down + c.center
		q := pos / c.up
		taps := c.phases[pos%c.up]

		var y float64

		for j, h := range taps {
			idx := q - j
			if idx < 0 || idx >= n {
				if !c.loop {
					continue
				}

				idx = ((idx % n) + n) % n
			}

			y += h * float64(in[idx])
		}

		out[m] = float32(y)
	}

	return out
}

// Stereo converts a channel pair. right may be nil.
func (c *Converter) Stereo(left, right []float32) ([]float32, []float32) {
	outL := c.Process(left)
	if right == nil {
		return outL, nil
	}

	return outL, c.Process(right)
}

// Clip converts a channel pair from inRate to outRate in one call.
func Clip(left, right []float32, inRate, outRate float64, opts ...Option) ([]float32, []float32, error) {
	c, err := New(inRate, outRate, opts...)
	if err != nil {
		return nil, nil, err
	}

	l, r := c.Stereo(left, right)

	return l, r, nil
}
