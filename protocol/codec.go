package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned when an envelope names no known message.
var ErrUnknownType = errors.New("protocol: unknown message type")

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var commandFactories = map[string]func() Command{
	SetSelectedLayer{}.CommandType(): func() Command { return &SetSelectedLayer{} },
	BeginRecord{}.CommandType():      func() Command { return &BeginRecord{} },
	StopRecord{}.CommandType():       func() Command { return &StopRecord{} },
	SetRecordFeed{}.CommandType():    func() Command { return &SetRecordFeed{} },
	ClearLayer{}.CommandType():       func() Command { return &ClearLayer{} },
	RestoreLayer{}.CommandType():     func() Command { return &RestoreLayer{} },
	ExportLayer{}.CommandType():      func() Command { return &ExportLayer{} },
	SetLayerParams{}.CommandType():   func() Command { return &SetLayerParams{} },
	ResyncLayerPhase{}.CommandType(): func() Command { return &ResyncLayerPhase{} },
	SetPlay{}.CommandType():          func() Command { return &SetPlay{} },
	SetAddMode{}.CommandType():       func() Command { return &SetAddMode{} },
}

var eventFactories = map[string]func() Event{
	RecordStarted{}.EventType():   func() Event { return &RecordStarted{} },
	RecordComplete{}.EventType():  func() Event { return &RecordComplete{} },
	RecordCancelled{}.EventType(): func() Event { return &RecordCancelled{} },
	LayerCleared{}.EventType():    func() Event { return &LayerCleared{} },
	LayerRestored{}.EventType():   func() Event { return &LayerRestored{} },
	LayerData{}.EventType():       func() Event { return &LayerData{} },
	LoopReference{}.EventType():   func() Event { return &LoopReference{} },
	LoopHead{}.EventType():        func() Event { return &LoopHead{} },
}

// EncodeCommand wraps cmd in a typed JSON envelope.
func EncodeCommand(cmd Command) ([]byte, error) {
	return encode(cmd.CommandType(), cmd)
}

// EncodeEvent wraps ev in a typed JSON envelope.
func EncodeEvent(ev Event) ([]byte, error) {
	return encode(ev.EventType(), ev)
}

// DecodeCommand parses an envelope produced by EncodeCommand. The
// returned command is a value, not a pointer.
func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode envelope: %w", err)
	}

	factory, ok := commandFactories[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	cmd := factory()
	if err := unmarshalPayload(env, cmd); err != nil {
		return nil, err
	}

	return derefCommand(cmd), nil
}

// DecodeEvent parses an envelope produced by EncodeEvent. The returned
// event is a value, not a pointer.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode envelope: %w", err)
	}

	factory, ok := eventFactories[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	ev := factory()
	if err := unmarshalPayload(env, ev); err != nil {
		return nil, err
	}

	return derefEvent(ev), nil
}

func encode(typ string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", typ, err)
	}

	return json.Marshal(envelope{Type: typ, Payload: payload})
}

func unmarshalPayload(env envelope, dst any) error {
	if len(env.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("protocol: decode %s payload: %w", env.Type, err)
	}

	return nil
}

//nolint:cyclop
func derefCommand(cmd Command) Command {
	switch c := cmd.(type) {
	case *SetSelectedLayer:
		return *c
	case *BeginRecord:
		return *c
	case *StopRecord:
		return *c
	case *SetRecordFeed:
		return *c
	case *ClearLayer:
		return *c
	case *RestoreLayer:
		return *c
	case *ExportLayer:
		return *c
	case *SetLayerParams:
		return *c
	case *ResyncLayerPhase:
		return *c
	case *SetPlay:
		return *c
	case *SetAddMode:
		return *c
	default:
		return cmd
	}
}

func derefEvent(ev Event) Event {
	switch e := ev.(type) {
	case *RecordStarted:
		return *e
	case *RecordComplete:
		return *e
	case *RecordCancelled:
		return *e
	case *LayerCleared:
		return *e
	case *LayerRestored:
		return *e
	case *LayerData:
		return *e
	case *LoopReference:
		return *e
	case *LoopHead:
		return *e
	default:
		return ev
	}
}
