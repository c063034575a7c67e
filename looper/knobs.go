package looper

import (
	"github.com/cwbudde/algo-looper/params"
	"github.com/cwbudde/algo-looper/protocol"
)

// SelectLayer makes i the layer being edited.
func (c *Controller) SelectLayer(i int) {
	if !validIndex(i) {
		return
	}

	c.state.CurrentLayer = i
	c.r.Send(protocol.SetSelectedLayer{LayerIndex: i})
}

// SetKnob moves one knob of layer i to the normalized value v. Start and
// End keep at least params.MinWindowGap between them.
func (c *Controller) SetKnob(i int, k params.Knob, v float64) {
	if !validIndex(i) || !validKnob(k) {
		return
	}

	l := &c.layers[i]

	switch k {
	case params.KnobStart, params.KnobEnd:
		l.Knobs.Start, l.Knobs.End = params.ConstrainWindow(l.Knobs.Start, l.Knobs.End, k, v)
	default:
		l.Knobs = l.Knobs.With(k, v)
	}

	c.r.Send(protocol.SetLayerParams{LayerIndex: i, Params: params.ToEngine(l.Knobs)})

	switch k {
	case params.KnobStart, params.KnobEnd:
		if l.Active && i != c.state.PrimaryLayer {
			c.remindLayerPhase(i, false, true)
		}
	case params.KnobSpeed:
		c.scheduleReprocess(i, false)

		if l.Active && params.IsNeutralSpeed(l.Knobs.Speed) {
			c.remindLayerPhase(i, true, false)

			if i == c.state.PrimaryLayer && c.activeCount() <= 1 {
				c.captureMasterDefaults()
			}
		}

		if l.Active && i == c.state.PrimaryLayer && c.activeCount() > 1 {
			c.reprocessLinkedLayers(i)
		}
	case params.KnobPitch:
		c.scheduleReprocess(i, false)
	}
}

// ResetKnob returns a knob to its home position: the reference window and
// tempo for Start, End and Speed when known, the fresh-layer default
// otherwise.
func (c *Controller) ResetKnob(i int, k params.Knob) {
	if !validIndex(i) || !validKnob(k) {
		return
	}

	v := params.Defaults().Get(k)

	if m := c.state.Master; m.Valid {
		switch k {
		case params.KnobStart:
			v = m.Start
		case params.KnobEnd:
			v = m.End
		case params.KnobSpeed:
			v = m.Speed
		}
	}

	c.SetKnob(i, k, v)
}

// ClearLayer erases layer i, keeping its audio on the undo stack.
func (c *Controller) ClearLayer(i int) {
	if !validIndex(i) || !c.layers[i].Active {
		return
	}

	if c.state.Record != Idle && c.state.RecordingLayer == i {
		return
	}

	c.prepareLayerUndo(i, func() {
		c.r.Send(protocol.ClearLayer{LayerIndex: i})
		c.resetLayer(i)
	})
}

// SetPlaying starts or stops playback.
func (c *Controller) SetPlaying(on bool) {
	c.state.Playing = on
	c.r.Send(protocol.SetPlay{Value: on})
}

// SetCaptureMode selects what the next capture records.
func (c *Controller) SetCaptureMode(mode protocol.CaptureMode) {
	if mode != protocol.CaptureInput && mode != protocol.CaptureMix {
		return
	}

	c.state.CaptureMode = mode
	c.r.Send(protocol.SetRecordFeed{LayerIndex: c.state.CurrentLayer, CaptureMode: &mode})
}

// SetCaptureMuted mutes or unmutes the monitored capture input.
func (c *Controller) SetCaptureMuted(muted bool) {
	c.state.CaptureMuted = muted
	c.r.Send(protocol.SetRecordFeed{LayerIndex: c.state.CurrentLayer, CaptureMuted: protocol.Bool(muted)})
}

// remindLayerPhase makes the renderer re-read layer i's stored offsets.
// Only the primary layer may force dependent layers to catch up.
func (c *Controller) remindLayerPhase(i int, forceCatchup, relativeToWindow bool) {
	l := c.layers[i]
	master := i == c.state.PrimaryLayer

	c.r.Send(protocol.ResyncLayerPhase{
		LayerIndex:         i,
		IsMaster:           master,
		ForceCatchup:       forceCatchup && master,
		StartOffsetSamples: l.StartOffsetSamples,
		PhaseOffsetSamples: l.PhaseOffsetSamples,
		RelativeToWindow:   relativeToWindow,
	})
}

// reprocessLinkedLayers re-renders every other active layer after the
// reference tempo changed.
func (c *Controller) reprocessLinkedLayers(master int) {
	for i := range c.layers {
		if i == master || !c.layers[i].Active {
			continue
		}

		c.scheduleReprocess(i, true)
	}
}
