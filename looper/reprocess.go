package looper

import (
	"math"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/dsp/stretch"
	"github.com/cwbudde/algo-looper/params"
	"github.com/cwbudde/algo-looper/protocol"
)

const unityEps = 1e-9

// scheduleReprocess debounces a stretch job for layer i. force renders
// even at unity ratios, which resets a linked layer to its new tempo.
func (c *Controller) scheduleReprocess(i int, force bool) {
	if force {
		c.forced[i] = true
	}

	c.debounce.Schedule(i, func() { c.startJob(i) })
}

// ratios returns the speed and pitch ratios layer i is rendered at. A
// non-primary layer follows the primary's deviation from its home tempo.
func (c *Controller) ratios(i int) (speed, pitch float64) {
	k := c.layers[i].Knobs
	speed = params.MapSpeed(k.Speed)
	pitch = params.PitchRatio(params.MapPitch(k.Pitch))

	p := c.state.PrimaryLayer
	if i != p && validIndex(p) && c.state.Master.Valid {
		home := params.MapSpeed(c.state.Master.Speed)
		speed *= params.MapSpeed(c.layers[p].Knobs.Speed) / home
	}

	return speed, pitch
}

func (c *Controller) needsProcessing(i int) bool {
	speed, pitch := c.ratios(i)
	return math.Abs(speed-1) > unityEps || math.Abs(pitch-1) > unityEps
}

func (c *Controller) startJob(i int) {
	if !c.layers[i].Active {
		c.forced[i] = false
		return
	}

	// A layer that was never processed and sits at unity needs no work.
	if !c.forced[i] && c.originals[i] == nil && !c.needsProcessing(i) {
		return
	}

	if !c.trackers[i].begin() {
		c.layerLog(i).Debug("stretch running, request coalesced")
		return
	}

	c.forced[i] = false

	log := c.layerLog(i).WithField("job", xid.New().String())

	if orig := c.originals[i]; orig != nil {
		c.runStretch(i, orig, log)
		return
	}

	d := c.r.Request(protocol.ExportLayer{LayerIndex: i})
	c.await(d, func(data protocol.LayerData, err error) {
		if err != nil || data.Empty || len(data.BufferL) == 0 {
			log.WithError(err).Warn("original export failed")
			c.finishJob(i)

			return
		}

		if !c.layers[i].Active {
			c.finishJob(i)
			return
		}

		phase, start := protocol.ResolveOffsets(data.PhaseOffsetSamples, data.StartOffsetSamples)
		orig := &original{
			left:          cloneSamples(data.BufferL),
			right:         cloneSamples(data.BufferR),
			lengthSamples: int64(len(data.BufferL)),
			startOffset:   start,
			phaseOffset:   phase,
		}
		c.originals[i] = orig

		c.runStretch(i, orig, log)
	})
}

// runStretch renders orig off the control goroutine.
func (c *Controller) runStretch(i int, orig *original, log logrus.FieldLogger) {
	speed, pitch := c.ratios(i)
	log = log.WithFields(logrus.Fields{"speed": speed, "pitch": pitch})
	log.Debug("stretch started")

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		res, err := c.stretcher.Process(orig.left, orig.right, c.sampleRate, speed, pitch)
		c.post(func() { c.completeJob(i, orig, res, err, log) })
	}()
}

func (c *Controller) completeJob(i int, orig *original, res stretch.Result, err error, log logrus.FieldLogger) {
	defer c.finishJob(i)

	if err != nil {
		log.WithError(err).Error("stretch failed, keeping last buffer")
		return
	}

	if !c.layers[i].Active || c.originals[i] != orig {
		log.Debug("layer changed during stretch, result discarded")
		return
	}

	l := &c.layers[i]

	ratio := 1.0
	if orig.lengthSamples > 0 {
		ratio = float64(res.Samples) / float64(orig.lengthSamples)
	}

	l.StartOffsetSamples = int64(math.Round(float64(orig.startOffset) * ratio))
	l.PhaseOffsetSamples = int64(math.Round(float64(orig.phaseOffset) * ratio))
	c.setLength(i, int64(res.Samples))

	cmd := protocol.RestoreLayer{
		LayerIndex:         i,
		BufferL:            res.Left,
		BufferR:            res.Right,
		Params:             params.ToEngine(l.Knobs),
		StartOffsetSamples: l.StartOffsetSamples,
		PhaseOffsetSamples: l.PhaseOffsetSamples,
	}

	if i == c.state.PrimaryLayer {
		cmd.ReferenceSpanSamples = protocol.Int64(l.LengthSamples)
	}

	c.r.Send(cmd)
	log.WithFields(logrus.Fields{
		"samples":    res.Samples,
		"profile":    res.Profile.Name,
		"transients": res.Transients,
	}).Info("stretch applied")
}

// finishJob releases the tracker and replays a coalesced request.
func (c *Controller) finishJob(i int) {
	if c.trackers[i].finish() {
		c.startJob(i)
	}
}
