package params

import "math"

const (
	volumeKnee     = 0.75
	volumeKneeGain = 1.5
	volumeMaxGain  = 5.0

	speedMin     = 0.25
	speedNeutral = 1.0
	speedMax     = 2.0

	pitchRangeSemitones = 24.0

	repeatsMin = 1
	repeatsMax = 16
)

// EngineParams are the renderer-facing values derived from a ParamSet.
type EngineParams struct {
	Gain     float64 `json:"gain"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Repeats  int     `json:"repeats"`
	Lofi     float64 `json:"lofi"`
	Filter   float64 `json:"filter"`
	Dropouts float64 `json:"dropouts"`
	Jump     float64 `json:"jump"`
	Stutter  float64 `json:"stutter"`
	Speed    float64 `json:"speed"`
	Pitch    float64 `json:"pitch"` // semitones
}

// MapVolume converts a normalized volume to linear gain. The curve is
// piecewise linear: 0..0.75 maps to 0..1.5, 0.75..1 maps to 1.5..5.
func MapVolume(v float64) float64 {
	v = clamp01(v)
	if v <= volumeKnee {
		return v * volumeKneeGain / volumeKnee
	}

	return volumeKneeGain + (v-volumeKnee)/(1-volumeKnee)*(volumeMaxGain-volumeKneeGain)
}

// NormalizeVolume is the inverse of MapVolume.
func NormalizeVolume(gain float64) float64 {
	gain = clampRange(gain, 0, volumeMaxGain)
	if gain <= volumeKneeGain {
		return gain * volumeKnee / volumeKneeGain
	}

	return volumeKnee + (gain-volumeKneeGain)/(volumeMaxGain-volumeKneeGain)*(1-volumeKnee)
}

// MapSpeed converts a normalized speed to a playback ratio:
// 0 -> 0.25x, 0.5 -> 1x, 1 -> 2x, linear on each half.
func MapSpeed(v float64) float64 {
	v = clamp01(v)
	if v <= 0.5 {
		return speedMin + v/0.5*(speedNeutral-speedMin)
	}

	return speedNeutral + (v-0.5)/0.5*(speedMax-speedNeutral)
}

// NormalizeSpeed is the inverse of MapSpeed.
func NormalizeSpeed(ratio float64) float64 {
	ratio = clampRange(ratio, speedMin, speedMax)
	if ratio <= speedNeutral {
		return (ratio - speedMin) / (speedNeutral - speedMin) * 0.5
	}

	return 0.5 + (ratio-speedNeutral)/(speedMax-speedNeutral)*0.5
}

// MapPitch converts a normalized pitch to semitones in [-24, 24].
func MapPitch(v float64) float64 {
	return (clamp01(v) - 0.5) * 2 * pitchRangeSemitones
}

// NormalizePitch is the inverse of MapPitch.
func NormalizePitch(semitones float64) float64 {
	semitones = clampRange(semitones, -pitchRangeSemitones, pitchRangeSemitones)
	return semitones/(2*pitchRangeSemitones) + 0.5
}

// PitchRatio converts semitones to a frequency ratio.
func PitchRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

// MapRepeats converts a normalized repeat count to 1..16.
func MapRepeats(v float64) int {
	return repeatsMin + int(math.Round(clamp01(v)*(repeatsMax-repeatsMin)))
}

// NormalizeRepeats is the inverse of MapRepeats.
func NormalizeRepeats(n int) float64 {
	return clamp01(float64(n-repeatsMin) / (repeatsMax - repeatsMin))
}

// ToEngine maps normalized knob positions to engine units.
func ToEngine(p ParamSet) EngineParams {
	return EngineParams{
		Gain:     MapVolume(p.Volume),
		Start:    clamp01(p.Start),
		End:      clamp01(p.End),
		Repeats:  MapRepeats(p.Repeats),
		Lofi:     clamp01(p.Lofi),
		Filter:   clamp01(p.Filter),
		Dropouts: clamp01(p.Dropouts),
		Jump:     clamp01(p.Jump),
		Stutter:  clamp01(p.Stutter),
		Speed:    MapSpeed(p.Speed),
		Pitch:    MapPitch(p.Pitch),
	}
}

// FromEngine recovers knob positions from engine values.
func FromEngine(e EngineParams) ParamSet {
	return ParamSet{
		Volume:   NormalizeVolume(e.Gain),
		Start:    clamp01(e.Start),
		End:      clamp01(e.End),
		Repeats:  NormalizeRepeats(e.Repeats),
		Lofi:     clamp01(e.Lofi),
		Filter:   clamp01(e.Filter),
		Dropouts: clamp01(e.Dropouts),
		Jump:     clamp01(e.Jump),
		Stutter:  clamp01(e.Stutter),
		Speed:    NormalizeSpeed(e.Speed),
		Pitch:    NormalizePitch(e.Pitch),
	}
}

// IsNeutralSpeed reports whether a normalized speed plays at 1x.
func IsNeutralSpeed(v float64) bool {
	return math.Abs(MapSpeed(v)-speedNeutral) < 1e-9
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}

	return math.Max(lo, math.Min(hi, v))
}
