package looper

import "github.com/cwbudde/algo-looper/protocol"

// ToggleRecord starts a capture on the current layer, or stops, releases
// or disarms the one in progress.
func (c *Controller) ToggleRecord() {
	switch c.state.Record {
	case Idle:
		if c.preparing {
			return
		}

		c.recordOver(c.state.CurrentLayer)
	case Recording:
		c.requestStop()
	case Armed:
		c.disarm()
	case Releasing:
	}
}

// CancelRecord discards the running capture.
func (c *Controller) CancelRecord() {
	switch c.state.Record {
	case Recording, Releasing:
		c.r.Send(protocol.StopRecord{LayerIndex: c.state.RecordingLayer, Commit: false})
	case Armed:
		c.disarm()
	case Idle:
	}
}

// ToggleAddMode enables or disables auto-latching overdub layers.
func (c *Controller) ToggleAddMode() {
	if c.state.AddMode {
		c.disableAddMode()
		return
	}

	c.state.AddMode = true
	c.state.AutoLatch = true
	c.r.Send(protocol.SetAddMode{Value: true})

	if c.state.Record != Idle {
		return
	}

	if !c.hasReference() {
		if !c.preparing {
			c.recordOver(c.state.CurrentLayer)
		}

		return
	}

	next, ok := c.findNextAvailableLayer(c.state.CurrentLayer)
	if !ok {
		c.log.Info("all layers full, add mode disarmed")
		c.disableAddMode()

		return
	}

	c.arm(next)
}

func (c *Controller) disableAddMode() {
	c.state.AddMode = false
	c.state.AutoLatch = false

	switch c.state.Record {
	case Armed:
		c.disarm()
	case Recording:
		c.requestStop()
	case Idle, Releasing:
	}

	c.r.Send(protocol.SetAddMode{Value: false})
}

func (c *Controller) hasReference() bool {
	return c.state.ReferenceSamples > 0 && c.activeCount() > 0
}

// findNextAvailableLayer returns the first empty layer at or after from,
// wrapping around.
func (c *Controller) findNextAvailableLayer(from int) (int, bool) {
	if !validIndex(from) {
		from = 0
	}

	for k := 0; k < NumLayers; k++ {
		i := (from + k) % NumLayers
		if !c.layers[i].Active {
			return i, true
		}
	}

	return -1, false
}

// recordOver records on layer i, saving and clearing existing audio first.
func (c *Controller) recordOver(i int) {
	if !validIndex(i) {
		return
	}

	if !c.layers[i].Active {
		c.history.Push(ClearEntry(i))
		c.beginRecord(i)

		return
	}

	c.prepareLayerUndo(i, func() {
		if c.state.Record != Idle {
			return
		}

		c.r.Send(protocol.ClearLayer{LayerIndex: i})
		c.resetLayer(i)
		c.beginRecord(i)
	})
}

// beginRecord sends begin-record, aligned to the reference loop when
// another layer already carries audio.
func (c *Controller) beginRecord(i int) {
	cmd := protocol.BeginRecord{
		LayerIndex:   i,
		Mode:         protocol.ModeFree,
		CaptureMode:  c.state.CaptureMode,
		CaptureMuted: c.state.CaptureMuted,
	}

	if c.state.ReferenceSamples > 0 && c.anyActiveExcept(i) {
		cmd.Mode = protocol.ModeAligned
		cmd.ReferenceSamples = c.state.ReferenceSamples
	}

	c.state.RecordingLayer = i
	if c.state.Record == Idle {
		c.state.Record = Armed
		c.state.ArmedLayer = i
	}

	c.layerLog(i).WithField("mode", cmd.Mode).Debug("begin record")
	c.r.Send(cmd)
}

// arm waits for the next loop head before recording on layer i.
func (c *Controller) arm(i int) {
	if i != c.state.CurrentLayer {
		c.SelectLayer(i)
	}

	c.state.Record = Armed
	c.state.ArmedLayer = i
	c.state.WaitingForLoopHead = true
	c.r.Send(protocol.SetRecordFeed{LayerIndex: i, Armed: protocol.Bool(true)})
}

func (c *Controller) disarm() {
	i := c.state.ArmedLayer
	waiting := c.state.WaitingForLoopHead

	c.state.Record = Idle
	c.state.ArmedLayer = -1
	c.state.RecordingLayer = -1
	c.state.WaitingForLoopHead = false
	c.state.AwaitingCaptureRestart = false

	if !validIndex(i) {
		return
	}

	c.r.Send(protocol.SetRecordFeed{LayerIndex: i, Armed: protocol.Bool(false)})

	if !waiting {
		// begin-record already went out; make sure nothing is kept.
		c.r.Send(protocol.StopRecord{LayerIndex: i, Commit: false})
	}
}

// requestStop commits the running capture. Locked captures end at the
// next loop boundary.
func (c *Controller) requestStop() {
	if c.state.LockedRecording {
		c.state.PendingStopRequest = true
		c.state.Record = Releasing
	}

	c.r.Send(protocol.StopRecord{LayerIndex: c.state.RecordingLayer, Commit: true})
}

// handleAutoRecordingComplete re-arms add mode on the next empty layer.
func (c *Controller) handleAutoRecordingComplete(done int) {
	next, ok := c.findNextAvailableLayer((done + 1) % NumLayers)
	if !ok {
		c.log.Info("all layers full, add mode disarmed")
		c.disableAddMode()

		return
	}

	c.state.AwaitingCaptureRestart = true
	c.arm(next)
}
