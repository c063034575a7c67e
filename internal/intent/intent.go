// Package intent decodes user intents sent as JSON and applies them to a
// looper controller. The daemon receives them over NATS and the browser
// build through its JavaScript API.
package intent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cwbudde/algo-looper/looper"
	"github.com/cwbudde/algo-looper/params"
	"github.com/cwbudde/algo-looper/protocol"
)

var (
	// ErrUnknownAction is returned for an action name Apply does not know.
	ErrUnknownAction = errors.New("intent: unknown action")
	// ErrUnknownKnob is returned for a knob name params does not know.
	ErrUnknownKnob = errors.New("intent: unknown knob")
)

// Action names.
const (
	ActionSelect       = "select"
	ActionRecord       = "record"
	ActionCancel       = "cancel"
	ActionAddMode      = "add-mode"
	ActionKnob         = "knob"
	ActionResetKnob    = "reset-knob"
	ActionClear        = "clear"
	ActionUndo         = "undo"
	ActionRedo         = "redo"
	ActionPlay         = "play"
	ActionCaptureMode  = "capture-mode"
	ActionCaptureMuted = "capture-muted"
)

// Intent is one user gesture. Layer defaults to the selected layer.
type Intent struct {
	Action string  `json:"action"`
	Layer  *int    `json:"layer,omitempty"`
	Knob   string  `json:"knob,omitempty"`
	Value  float64 `json:"value,omitempty"`
	On     bool    `json:"on,omitempty"`
	Mode   string  `json:"mode,omitempty"`
}

// Decode parses a JSON intent.
func Decode(data []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return Intent{}, fmt.Errorf("intent: decode: %w", err)
	}

	return in, nil
}

// Apply runs in against c. It must be called on the controller's goroutine.
func (in Intent) Apply(c *looper.Controller) error {
	layer := c.State().CurrentLayer
	if in.Layer != nil {
		layer = *in.Layer
	}

	switch in.Action {
	case ActionSelect:
		c.SelectLayer(layer)
	case ActionRecord:
		c.ToggleRecord()
	case ActionCancel:
		c.CancelRecord()
	case ActionAddMode:
		c.ToggleAddMode()
	case ActionKnob, ActionResetKnob:
		k, ok := params.ParseKnob(in.Knob)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownKnob, in.Knob)
		}

		if in.Action == ActionKnob {
			c.SetKnob(layer, k, in.Value)
		} else {
			c.ResetKnob(layer, k)
		}
	case ActionClear:
		c.ClearLayer(layer)
	case ActionUndo:
		c.Undo()
	case ActionRedo:
		c.Redo()
	case ActionPlay:
		c.SetPlaying(in.On)
	case ActionCaptureMode:
		c.SetCaptureMode(protocol.CaptureMode(in.Mode))
	case ActionCaptureMuted:
		c.SetCaptureMuted(in.On)
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, in.Action)
	}

	return nil
}
