package looper

import "github.com/cwbudde/algo-looper/params"

// NumLayers is the fixed number of layer slots.
const NumLayers = 8

// Layer is the controller's view of one recorded loop.
type Layer struct {
	Active             bool
	LengthSamples      int64
	LengthSeconds      float64
	PhaseOffsetSamples int64
	StartOffsetSamples int64
	Knobs              params.ParamSet
}

func newLayer() Layer {
	return Layer{Knobs: params.Defaults()}
}

// reset drops the audio bookkeeping. Knob positions survive.
func (l *Layer) reset() {
	knobs := l.Knobs
	*l = Layer{Knobs: knobs}
}

// MasterWindowDefaults records the reference layer's window and tempo.
// ResetKnob returns Start, End and Speed to these values while Valid.
type MasterWindowDefaults struct {
	Start       float64
	End         float64
	Speed       float64
	SpanSamples int64
	LayerIndex  int
	Valid       bool
}

func validIndex(i int) bool {
	return i >= 0 && i < NumLayers
}

func validKnob(k params.Knob) bool {
	return k >= params.KnobVolume && k <= params.KnobPitch
}
