package looper

import (
	"fmt"

	"github.com/cwbudde/algo-looper/params"
	"github.com/cwbudde/algo-looper/protocol"
)

// captureLayerSnapshot exports layer i and hands the snapshot to fn on the
// control goroutine. An inactive or empty layer yields a nil snapshot and
// no error.
func (c *Controller) captureLayerSnapshot(i int, fn func(*Snapshot, error)) {
	if !c.layers[i].Active {
		fn(nil, nil)
		return
	}

	d := c.r.Request(protocol.ExportLayer{LayerIndex: i})
	c.await(d, func(data protocol.LayerData, err error) {
		if err != nil {
			fn(nil, fmt.Errorf("looper: export layer %d: %w", i, err))
			return
		}

		s := snapshotFromData(data)
		if s != nil && c.layers[i].Active {
			// Originals are never written after capture, so the
			// snapshot can share the buffers.
			s.original = c.originals[i]
		}

		fn(s, nil)
	})
}

// prepareLayerUndo pushes the current content of layer i onto the undo
// stack and then runs next. It occupies the history until next has run.
func (c *Controller) prepareLayerUndo(i int, next func()) {
	if c.historyBusy {
		c.layerLog(i).Debug("history busy, edit dropped")
		return
	}

	c.historyBusy = true
	c.preparing = true

	c.captureLayerSnapshot(i, func(s *Snapshot, err error) {
		c.historyBusy = false
		c.preparing = false

		if err != nil {
			c.layerLog(i).WithError(err).Warn("snapshot failed, edit dropped")
			return
		}

		c.history.Push(entryFor(i, s))
		next()
	})
}

// Undo reverts the most recent layer change.
func (c *Controller) Undo() {
	c.step(&c.history.undo, &c.history.redo, "undo")
}

// Redo reapplies the most recently undone change.
func (c *Controller) Redo() {
	c.step(&c.history.redo, &c.history.undo, "redo")
}

// step pops from src, saves the layer's current state onto dst and then
// applies the popped entry.
func (c *Controller) step(src, dst *stack, op string) {
	if c.historyBusy {
		c.log.WithField("op", op).Debug("history busy, request dropped")
		return
	}

	e, ok := src.pop()
	if !ok {
		return
	}

	log := c.layerLog(e.LayerIndex).WithField("op", op)
	c.historyBusy = true

	c.captureLayerSnapshot(e.LayerIndex, func(s *Snapshot, err error) {
		c.historyBusy = false

		if err != nil {
			log.WithError(err).Warn("snapshot failed")
			src.push(e)

			return
		}

		dst.push(entryFor(e.LayerIndex, s))
		c.applyUndoEntry(e)
		log.WithField("entry", e.Kind).Debug("history applied")
	})
}

// applyUndoEntry makes the renderer and the local layer match e.
func (c *Controller) applyUndoEntry(e UndoEntry) {
	i := e.LayerIndex
	if !validIndex(i) {
		return
	}

	if e.Kind == EntryClear || e.Snapshot == nil {
		c.r.Send(protocol.ClearLayer{LayerIndex: i})
		c.resetLayer(i)

		return
	}

	s := e.Snapshot

	// A fresh pointer marks jobs started before the restore as stale.
	c.originals[i] = nil
	if s.original != nil {
		o := *s.original
		c.originals[i] = &o
	}

	c.forced[i] = false
	c.trackers[i].Pending = false
	c.debounce.Cancel(i)

	l := &c.layers[i]
	l.Active = true
	l.Knobs = s.Knobs
	l.StartOffsetSamples = s.StartOffsetSamples
	l.PhaseOffsetSamples = s.PhaseOffsetSamples
	c.setLength(i, s.LengthSamples())

	if c.state.PrimaryLayer < 0 {
		c.state.PrimaryLayer = i
		c.state.ReferenceSamples = l.LengthSamples
		c.captureMasterDefaults()
	}

	cmd := protocol.RestoreLayer{
		LayerIndex:         i,
		BufferL:            s.BufferL,
		BufferR:            s.BufferR,
		Params:             params.ToEngine(s.Knobs),
		StartOffsetSamples: s.StartOffsetSamples,
		PhaseOffsetSamples: s.PhaseOffsetSamples,
		Takes:              s.Takes,
	}

	if i == c.state.PrimaryLayer {
		cmd.ReferenceSpanSamples = protocol.Int64(c.state.ReferenceSamples)
	}

	c.r.Send(cmd)
}
