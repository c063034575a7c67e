package stretch

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinRatio and MaxRatio bound both speed and pitch ratios.
	MinRatio = 0.25
	MaxRatio = 4.0

	pitchIdentityEps = 5e-4
)

var (
	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("stretch: invalid sample rate")
	// ErrChannelMismatch is returned when left and right differ in length.
	ErrChannelMismatch = errors.New("stretch: channel length mismatch")
)

// Result is the rendered buffer pair plus what the engine decided.
type Result struct {
	Left  []float32
	Right []float32 // nil for mono input
	// Samples is the per-channel output length.
	Samples int

	SpeedRatio float64
	PitchRatio float64
	Profile    Profile
	Analysis   Analysis

	// Transients counts transient samples found on the left channel.
	Transients int
	// FormantTiltDB is the low-shelf gain applied, 0 when skipped.
	FormantTiltDB float64
}

// Option configures a render.
type Option func(*config)

type config struct {
	transientWidth int
	transients     bool
	formants       bool
	profile        *Profile
}

func defaultConfig() config {
	return config{
		transientWidth: defaultTransientWidth,
		transients:     true,
		formants:       true,
	}
}

// WithTransientWidth sets the ramp width in samples around each transient.
func WithTransientWidth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.transientWidth = n
		}
	}
}

// WithProfile bypasses automatic profile selection.
func WithProfile(p Profile) Option {
	return func(c *config) {
		c.profile = &p
	}
}

// WithoutTransients disables transient preservation.
func WithoutTransients() Option {
	return func(c *config) {
		c.transients = false
	}
}

// WithoutFormants disables formant compensation.
func WithoutFormants() Option {
	return func(c *config) {
		c.formants = false
	}
}

// Engine is a reusable, concurrency-safe front end to Process with fixed
// options.
type Engine struct {
	opts []Option
}

// New returns an Engine that applies opts to every render.
func New(opts ...Option) *Engine {
	return &Engine{opts: append([]Option(nil), opts...)}
}

// Process renders left/right at the given ratios. See the package function.
func (e *Engine) Process(left, right []float32, sampleRate, speedRatio, pitchRatio float64) (Result, error) {
	return Process(left, right, sampleRate, speedRatio, pitchRatio, e.opts...)
}

// Process renders left (and right, when non-nil) at speedRatio and
// pitchRatio. Ratios are clamped to [MinRatio, MaxRatio]. The output
// holds ceil(len(left)/speed) samples per channel. Inputs are not modified.
func Process(left, right []float32, sampleRate, speedRatio, pitchRatio float64, opts ...Option) (Result, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if right != nil && len(right) != len(left) {
		return Result{}, fmt.Errorf("%w: left=%d right=%d", ErrChannelMismatch, len(left), len(right))
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	speed := clampRatio(speedRatio)
	pitch := clampRatio(pitchRatio)

	res := Result{SpeedRatio: speed, PitchRatio: pitch}

	if len(left) == 0 {
		res.Left = []float32{}
		if right != nil {
			res.Right = []float32{}
		}

		return res, nil
	}

	res.Analysis = Analyze(left, right)

	if cfg.profile != nil {
		res.Profile = *cfg.profile
	} else {
		res.Profile = SelectProfile(res.Analysis, pitch)
	}

	if speed == 1 && pitch == 1 {
		res.Left = append([]float32(nil), left...)
		if right != nil {
			res.Right = append([]float32(nil), right...)
		}

		res.Samples = len(res.Left)

		return res, nil
	}

	var voc *vocoder

	if math.Abs(pitch-1) >= pitchIdentityEps {
		v, err := newVocoder(res.Profile)
		if err != nil {
			return Result{}, err
		}
		defer v.release()

		voc = v
	}

	tilt := 0.0
	if cfg.formants {
		tilt = formantTilt(pitch)
	}

	render := func(ch []float32) ([]float32, int, error) {
		speedOnly := resampleSpeed(ch, speed, res.Profile.Interp)
		if voc == nil {
			return speedOnly, 0, nil
		}

		out, err := voc.shift(speedOnly, pitch)
		if err != nil {
			return nil, 0, err
		}

		hits := 0
		if cfg.transients {
			hits = preserveTransients(out, speedOnly, cfg.transientWidth, res.Profile.TransientBlend)
		}

		if tilt != 0 {
			if chain := formantChain(tilt, sampleRate); chain != nil {
				chain.ProcessBlock32(out)
			}
		}

		return out, hits, nil
	}

	var err error

	res.Left, res.Transients, err = render(left)
	if err != nil {
		return Result{}, err
	}

	if right != nil {
		res.Right, _, err = render(right)
		if err != nil {
			return Result{}, err
		}
	}

	res.Samples = len(res.Left)
	res.FormantTiltDB = tilt

	return res, nil
}

func clampRatio(r float64) float64 {
	if math.IsNaN(r) {
		return 1
	}

	return math.Max(MinRatio, math.Min(MaxRatio, r))
}
