package looper

import "github.com/cwbudde/algo-looper/protocol"

func (c *Controller) handleEvent(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.RecordStarted:
		c.onRecordStarted(e)
	case protocol.RecordComplete:
		c.onRecordComplete(e)
	case protocol.RecordCancelled:
		c.onRecordCancelled(e)
	case protocol.LayerCleared:
		c.onLayerCleared(e)
	case protocol.LayerRestored:
		c.onLayerRestored(e)
	case protocol.LoopReference:
		c.onLoopReference(e)
	case protocol.LoopHead:
		c.onLoopHead()
	default:
		c.log.WithField("event", ev.EventType()).Debug("unhandled renderer event")
	}
}

func (c *Controller) onRecordStarted(e protocol.RecordStarted) {
	if !validIndex(e.LayerIndex) {
		return
	}

	c.state.Record = Recording
	c.state.RecordingLayer = e.LayerIndex
	c.state.LockedRecording = e.Locked
	c.state.ArmedLayer = -1
	c.state.WaitingForLoopHead = false
	c.state.AwaitingCaptureRestart = false

	c.layerLog(e.LayerIndex).WithField("locked", e.Locked).Debug("recording started")
}

func (c *Controller) onRecordComplete(e protocol.RecordComplete) {
	i := e.LayerIndex
	if !validIndex(i) {
		return
	}

	c.endRecording()

	l := &c.layers[i]
	l.Active = true
	c.setLength(i, e.LengthSamples)
	l.PhaseOffsetSamples, l.StartOffsetSamples = protocol.ResolveOffsets(e.PhaseOffsetSamples, e.StartOffsetSamples)

	if c.state.PrimaryLayer < 0 || c.state.PrimaryLayer == i {
		c.state.PrimaryLayer = i
		c.state.ReferenceSamples = l.LengthSamples
		c.captureMasterDefaults()
	}

	c.originals[i] = nil
	c.scheduleReprocess(i, false)

	c.layerLog(i).WithField("samples", l.LengthSamples).Info("recording complete")

	if c.state.AutoLatch {
		c.handleAutoRecordingComplete(i)
	}
}

func (c *Controller) onRecordCancelled(e protocol.RecordCancelled) {
	c.endRecording()
	c.state.ArmedLayer = -1
	c.state.WaitingForLoopHead = false
	c.state.AwaitingCaptureRestart = false

	c.layerLog(e.LayerIndex).Debug("recording cancelled")
}

func (c *Controller) endRecording() {
	c.state.Record = Idle
	c.state.RecordingLayer = -1
	c.state.LockedRecording = false
	c.state.PendingStopRequest = false
}

func (c *Controller) onLayerCleared(e protocol.LayerCleared) {
	if !validIndex(e.LayerIndex) {
		return
	}

	c.resetLayer(e.LayerIndex)
}

func (c *Controller) onLayerRestored(e protocol.LayerRestored) {
	i := e.Index
	if !validIndex(i) {
		return
	}

	l := &c.layers[i]
	l.Active = true

	if e.LengthSamples != nil {
		c.setLength(i, *e.LengthSamples)
	}

	if e.PhaseOffsetSamples != nil || e.StartOffsetSamples != nil {
		l.PhaseOffsetSamples, l.StartOffsetSamples = protocol.ResolveOffsets(e.PhaseOffsetSamples, e.StartOffsetSamples)
	}

	if e.ReferenceSpanSamples != nil && i == c.state.PrimaryLayer {
		c.state.ReferenceSamples = *e.ReferenceSpanSamples
	}
}

func (c *Controller) onLoopReference(e protocol.LoopReference) {
	c.state.ReferenceSamples = max(e.Samples, 0)

	index := e.Index
	if !validIndex(index) {
		index = -1
	}

	if index != c.state.PrimaryLayer {
		c.log.WithField("layer", index).Debug("reference layer changed")
		c.state.PrimaryLayer = index
		c.captureMasterDefaults()
	} else if c.state.Master.Valid {
		c.state.Master.SpanSamples = c.state.ReferenceSamples
	}
}

func (c *Controller) onLoopHead() {
	if !c.state.WaitingForLoopHead {
		return
	}

	i := c.state.ArmedLayer
	c.state.WaitingForLoopHead = false

	if !validIndex(i) {
		c.state.Record = Idle
		return
	}

	if !c.layers[i].Active {
		c.history.Push(ClearEntry(i))
	}

	c.beginRecord(i)
}
