package protocol

import "github.com/cwbudde/algo-looper/params"

// RecordMode selects how the renderer bounds a capture.
type RecordMode string

const (
	// ModeFree captures until the user stops.
	ModeFree RecordMode = "free"
	// ModeAligned captures an exact multiple of the reference loop,
	// starting at the next loop head.
	ModeAligned RecordMode = "aligned"
)

// CaptureMode selects what the renderer records.
type CaptureMode string

const (
	CaptureInput CaptureMode = "input"
	CaptureMix   CaptureMode = "mix"
)

// Take is one captured pass kept alongside a layer.
type Take struct {
	ID            string    `json:"id"`
	LengthSamples int64     `json:"lengthSamples"`
	BufferL       []float32 `json:"bufferL,omitempty"`
	BufferR       []float32 `json:"bufferR,omitempty"`
}

// Command is a message sent from the controller to the renderer.
type Command interface {
	CommandType() string
}

// SetSelectedLayer tells the renderer which layer the user is editing.
type SetSelectedLayer struct {
	LayerIndex int `json:"layerIndex"`
}

// BeginRecord starts a capture on a layer.
type BeginRecord struct {
	LayerIndex       int         `json:"layerIndex"`
	Mode             RecordMode  `json:"mode"`
	ReferenceSamples int64       `json:"referenceSamples,omitempty"`
	CaptureMode      CaptureMode `json:"captureMode"`
	CaptureMuted     bool        `json:"captureMuted"`
}

// StopRecord ends the running capture. Commit=false discards it.
type StopRecord struct {
	LayerIndex int  `json:"layerIndex"`
	Commit     bool `json:"commit"`
}

// SetRecordFeed arms the input feed or changes capture routing. Nil
// fields are left unchanged by the renderer.
type SetRecordFeed struct {
	LayerIndex   int          `json:"layerIndex"`
	Armed        *bool        `json:"armed,omitempty"`
	CaptureMode  *CaptureMode `json:"captureMode,omitempty"`
	CaptureMuted *bool        `json:"captureMuted,omitempty"`
}

// ClearLayer erases a layer's audio.
type ClearLayer struct {
	LayerIndex int `json:"layerIndex"`
}

// RestoreLayer replaces a layer's buffer and parameters.
type RestoreLayer struct {
	LayerIndex           int                 `json:"layerIndex"`
	BufferL              []float32           `json:"bufferL"`
	BufferR              []float32           `json:"bufferR"`
	Params               params.EngineParams `json:"params"`
	StartOffsetSamples   int64               `json:"startOffsetSamples"`
	PhaseOffsetSamples   int64               `json:"phaseOffsetSamples"`
	ReferenceSpanSamples *int64              `json:"referenceSpanSamples,omitempty"`
	Takes                []Take              `json:"takes,omitempty"`
}

// ExportLayer asks the renderer for a layer's buffer. The reply is a
// LayerData event carrying the same RequestID.
type ExportLayer struct {
	LayerIndex int    `json:"layerIndex"`
	RequestID  uint64 `json:"requestId"`
}

// SetLayerParams pushes new engine parameters for a layer.
type SetLayerParams struct {
	LayerIndex int                 `json:"layerIndex"`
	Params     params.EngineParams `json:"params"`
}

// ResyncLayerPhase asks the renderer to re-read a layer's stored offsets.
type ResyncLayerPhase struct {
	LayerIndex         int   `json:"layerIndex"`
	IsMaster           bool  `json:"isMaster"`
	ForceCatchup       bool  `json:"forceCatchup"`
	StartOffsetSamples int64 `json:"startOffsetSamples"`
	PhaseOffsetSamples int64 `json:"phaseOffsetSamples"`
	RelativeToWindow   bool  `json:"relativeToWindow"`
}

// SetPlay starts or stops transport playback.
type SetPlay struct {
	Value bool `json:"value"`
}

// SetAddMode mirrors the controller's add mode to the renderer.
type SetAddMode struct {
	Value bool `json:"value"`
}

func (SetSelectedLayer) CommandType() string { return "set-selected-layer" }
func (BeginRecord) CommandType() string      { return "begin-record" }
func (StopRecord) CommandType() string       { return "stop-record" }
func (SetRecordFeed) CommandType() string    { return "set-record-feed" }
func (ClearLayer) CommandType() string       { return "clear-layer" }
func (RestoreLayer) CommandType() string     { return "restore-layer" }
func (ExportLayer) CommandType() string      { return "export-layer" }
func (SetLayerParams) CommandType() string   { return "set-layer-params" }
func (ResyncLayerPhase) CommandType() string { return "resync-layer-phase" }
func (SetPlay) CommandType() string          { return "set-play" }
func (SetAddMode) CommandType() string       { return "set-add-mode" }

// WithRequestID returns a copy of e carrying id.
func (e ExportLayer) WithRequestID(id uint64) Command {
	e.RequestID = id
	return e
}
