package params

import "math"

// Knob identifies one of the per-layer controls.
type Knob int

const (
	KnobVolume Knob = iota
	KnobStart
	KnobEnd
	KnobRepeats
	KnobLofi
	KnobFilter
	KnobDropouts
	KnobJump
	KnobStutter
	KnobSpeed
	KnobPitch
)

// MinWindowGap is the smallest allowed distance between Start and End.
const MinWindowGap = 0.01

var knobNames = [...]string{
	KnobVolume:   "volume",
	KnobStart:    "start",
	KnobEnd:      "end",
	KnobRepeats:  "repeats",
	KnobLofi:     "lofi",
	KnobFilter:   "filter",
	KnobDropouts: "dropouts",
	KnobJump:     "jump",
	KnobStutter:  "stutter",
	KnobSpeed:    "speed",
	KnobPitch:    "pitch",
}

func (k Knob) String() string {
	if k < 0 || int(k) >= len(knobNames) {
		return "unknown"
	}

	return knobNames[k]
}

// ParseKnob returns the knob with the given name.
func ParseKnob(name string) (Knob, bool) {
	for i, n := range knobNames {
		if n == name {
			return Knob(i), true
		}
	}

	return 0, false
}

// ParamSet holds the normalized [0,1] knob positions of one layer.
type ParamSet struct {
	Volume   float64 `json:"volume"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Repeats  float64 `json:"repeats"`
	Lofi     float64 `json:"lofi"`
	Filter   float64 `json:"filter"`
	Dropouts float64 `json:"dropouts"`
	Jump     float64 `json:"jump"`
	Stutter  float64 `json:"stutter"`
	Speed    float64 `json:"speed"`
	Pitch    float64 `json:"pitch"`
}

// Defaults returns the knob positions of a fresh layer.
func Defaults() ParamSet {
	return ParamSet{
		Volume: NormalizeVolume(1),
		Start:  0,
		End:    1,
		Filter: 0.5,
		Speed:  NormalizeSpeed(1),
		Pitch:  NormalizePitch(0),
	}
}

// Get returns the normalized value of knob k.
func (p ParamSet) Get(k Knob) float64 {
	switch k {
	case KnobVolume:
		return p.Volume
	case KnobStart:
		return p.Start
	case KnobEnd:
		return p.End
	case KnobRepeats:
		return p.Repeats
	case KnobLofi:
		return p.Lofi
	case KnobFilter:
		return p.Filter
	case KnobDropouts:
		return p.Dropouts
	case KnobJump:
		return p.Jump
	case KnobStutter:
		return p.Stutter
	case KnobSpeed:
		return p.Speed
	case KnobPitch:
		return p.Pitch
	default:
		return 0
	}
}

// With returns a copy of p with knob k set to v, clamped to [0,1].
// Repeats snaps to the nearest whole count so it survives a trip through
// EngineParams unchanged. Start and End are not constrained against each
// other here; see ConstrainWindow.
func (p ParamSet) With(k Knob, v float64) ParamSet {
	v = clamp01(v)

	switch k {
	case KnobVolume:
		p.Volume = v
	case KnobStart:
		p.Start = v
	case KnobEnd:
		p.End = v
	case KnobRepeats:
		p.Repeats = NormalizeRepeats(MapRepeats(v))
	case KnobLofi:
		p.Lofi = v
	case KnobFilter:
		p.Filter = v
	case KnobDropouts:
		p.Dropouts = v
	case KnobJump:
		p.Jump = v
	case KnobStutter:
		p.Stutter = v
	case KnobSpeed:
		p.Speed = v
	case KnobPitch:
		p.Pitch = v
	}

	return p
}

// ConstrainWindow applies a Start or End edit while keeping End-Start at
// least MinWindowGap. Moving Start past End-gap drags End along with it and
// moving End below Start+gap drags Start; the dragged knob is clamped to the
// unit range and then pushes back on the edited one.
func ConstrainWindow(start, end float64, edited Knob, v float64) (float64, float64) {
	v = clamp01(v)

	switch edited {
	case KnobStart:
		start = math.Min(v, 1-MinWindowGap)
		if start > end-MinWindowGap {
			end = start + MinWindowGap
		}
	case KnobEnd:
		end = math.Max(v, MinWindowGap)
		if end < start+MinWindowGap {
			start = end - MinWindowGap
		}
	}

	return start, end
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Max(0, math.Min(1, v))
}
