package looper

import "github.com/cwbudde/algo-looper/params"

// LayerView is the read-only projection of one layer.
type LayerView struct {
	Index         int
	Active        bool
	LengthSamples int64
	LengthSeconds float64
	Processing    bool
	Knobs         params.ParamSet
}

// View is what a user interface needs to draw the looper.
type View struct {
	CurrentLayer     int
	Transport        string
	Layers           [NumLayers]LayerView
	UndoDepth        int
	RedoDepth        int
	AddMode          bool
	PrimaryLayer     int
	ReferenceSamples int64
	Master           MasterWindowDefaults
}

// CanUndo reports whether Undo has anything to do.
func (v View) CanUndo() bool { return v.UndoDepth > 0 }

// CanRedo reports whether Redo has anything to do.
func (v View) CanRedo() bool { return v.RedoDepth > 0 }

// View returns the current projection.
func (c *Controller) View() View {
	v := View{
		CurrentLayer:     c.state.CurrentLayer,
		Transport:        c.transportText(),
		UndoDepth:        c.history.UndoDepth(),
		RedoDepth:        c.history.RedoDepth(),
		AddMode:          c.state.AddMode,
		PrimaryLayer:     c.state.PrimaryLayer,
		ReferenceSamples: c.state.ReferenceSamples,
		Master:           c.state.Master,
	}

	for i, l := range c.layers {
		v.Layers[i] = LayerView{
			Index:         i,
			Active:        l.Active,
			LengthSamples: l.LengthSamples,
			LengthSeconds: l.LengthSeconds,
			Processing:    c.trackers[i].Running,
			Knobs:         l.Knobs,
		}
	}

	return v
}

func (c *Controller) transportText() string {
	switch c.state.Record {
	case Armed:
		return "armed"
	case Recording:
		return "recording"
	case Releasing:
		return "stopping"
	case Idle:
	}

	if c.state.Playing {
		return "playing"
	}

	return "idle"
}
