package protocol

import "github.com/cwbudde/algo-looper/params"

// Event is a message emitted by the renderer.
type Event interface {
	EventType() string
}

// RecordStarted reports that a capture began.
type RecordStarted struct {
	LayerIndex  int         `json:"layerIndex"`
	CaptureMode CaptureMode `json:"captureMode"`
	Locked      bool        `json:"locked"`
}

// RecordComplete reports a committed capture. Either offset may be absent.
type RecordComplete struct {
	LayerIndex         int    `json:"layerIndex"`
	LengthSamples      int64  `json:"lengthSamples"`
	PhaseOffsetSamples *int64 `json:"phaseOffsetSamples,omitempty"`
	StartOffsetSamples *int64 `json:"startOffsetSamples,omitempty"`
}

// RecordCancelled reports that a capture was discarded.
type RecordCancelled struct {
	LayerIndex int `json:"layerIndex"`
}

// LayerCleared reports that a layer lost its audio.
type LayerCleared struct {
	LayerIndex int `json:"layerIndex"`
}

// LayerRestored acknowledges a RestoreLayer command.
type LayerRestored struct {
	Index                int    `json:"index"`
	LengthSamples        *int64 `json:"lengthSamples,omitempty"`
	ReferenceSpanSamples *int64 `json:"referenceSpanSamples,omitempty"`
	PhaseOffsetSamples   *int64 `json:"phaseOffsetSamples,omitempty"`
	StartOffsetSamples   *int64 `json:"startOffsetSamples,omitempty"`
}

// LayerData answers an ExportLayer request.
type LayerData struct {
	RequestID          uint64               `json:"requestId"`
	BufferL            []float32            `json:"bufferL,omitempty"`
	BufferR            []float32            `json:"bufferR,omitempty"`
	Params             *params.EngineParams `json:"params,omitempty"`
	StartOffsetSamples *int64               `json:"startOffsetSamples,omitempty"`
	PhaseOffsetSamples *int64               `json:"phaseOffsetSamples,omitempty"`
	Takes              []Take               `json:"takes,omitempty"`
	Empty              bool                 `json:"empty,omitempty"`
}

// LoopReference announces the layer and length all aligned work is
// measured against. Index < 0 means there is no reference.
type LoopReference struct {
	Samples int64 `json:"samples"`
	Index   int   `json:"index"`
}

// LoopHead marks a reference loop boundary.
type LoopHead struct{}

func (RecordStarted) EventType() string   { return "record-started" }
func (RecordComplete) EventType() string  { return "record-complete" }
func (RecordCancelled) EventType() string { return "record-cancelled" }
func (LayerCleared) EventType() string    { return "layer-cleared" }
func (LayerRestored) EventType() string   { return "layer-restored" }
func (LayerData) EventType() string       { return "layer-data" }
func (LoopReference) EventType() string   { return "loop-reference" }
func (LoopHead) EventType() string        { return "loop-head" }

// ResolveOffsets applies the phase/start fallback: the phase offset
// prefers its own value and falls back to the start offset, and the
// start offset prefers its own value and falls back to the phase offset.
func ResolveOffsets(phase, start *int64) (phaseOut, startOut int64) {
	switch {
	case phase != nil:
		phaseOut = *phase
	case start != nil:
		phaseOut = *start
	}

	switch {
	case start != nil:
		startOut = *start
	case phase != nil:
		startOut = *phase
	}

	return phaseOut, startOut
}

// Int64 returns a pointer to v, for optional fields.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v, for optional fields.
func Bool(v bool) *bool { return &v }
