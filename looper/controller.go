package looper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/bridge"
	"github.com/cwbudde/algo-looper/dsp/stretch"
	"github.com/cwbudde/algo-looper/protocol"
)

// ErrClosed is returned by Run, Step and Submit after Close.
var ErrClosed = errors.New("looper: controller closed")

const (
	defaultSampleRate = 44100.0
	taskBuffer        = 64
)

// Renderer is the controller's side of the protocol bridge.
type Renderer interface {
	Send(cmd protocol.Command)
	Request(cmd bridge.Requestable) *bridge.Deferred
	Events() <-chan protocol.Event
}

// Stretcher renders a layer at a new speed and pitch.
type Stretcher interface {
	Process(left, right []float32, sampleRate, speedRatio, pitchRatio float64) (stretch.Result, error)
}

// RecordState is the recording state machine position.
type RecordState int

const (
	// Idle means no capture is armed or running.
	Idle RecordState = iota
	// Armed means a capture waits for the next loop head.
	Armed
	// Recording means the renderer is capturing.
	Recording
	// Releasing means a locked capture will stop at the next loop boundary.
	Releasing
)

func (s RecordState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Recording:
		return "recording"
	case Releasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// ControllerState is the controller's mutable state apart from layers.
type ControllerState struct {
	CurrentLayer           int
	Record                 RecordState
	RecordingLayer         int
	ArmedLayer             int
	AddMode                bool
	AutoLatch              bool
	LockedRecording        bool
	PendingStopRequest     bool
	AwaitingCaptureRestart bool
	WaitingForLoopHead     bool
	Playing                bool
	PrimaryLayer           int
	ReferenceSamples       int64
	CaptureMode            protocol.CaptureMode
	CaptureMuted           bool
	Master                 MasterWindowDefaults
}

// original is the unprocessed audio a layer's stretch jobs start from.
type original struct {
	left          []float32
	right         []float32
	lengthSamples int64
	startOffset   int64
	phaseOffset   int64
}

// Controller is the looper's control plane. See the package doc for the
// threading rules.
type Controller struct {
	r          Renderer
	stretcher  Stretcher
	log        logrus.FieldLogger
	sampleRate float64

	state     ControllerState
	layers    [NumLayers]Layer
	trackers  [NumLayers]ProcessingTracker
	originals [NumLayers]*original
	forced    [NumLayers]bool

	history     History
	historyBusy bool
	preparing   bool

	debounce *Scheduler[int]
	tasks    chan func()
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

type config struct {
	logger       logrus.FieldLogger
	clock        Clock
	stretcher    Stretcher
	sampleRate   float64
	debounce     time.Duration
	captureMode  protocol.CaptureMode
	captureMuted bool
}

// Option configures a Controller.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger:      logrus.StandardLogger(),
		clock:       realClock{},
		sampleRate:  defaultSampleRate,
		debounce:    DefaultDebounce,
		captureMode: protocol.CaptureInput,
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces the wall clock used for debouncing.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithStretcher replaces the default stretch engine.
func WithStretcher(s Stretcher) Option {
	return func(c *config) {
		if s != nil {
			c.stretcher = s
		}
	}
}

// WithSampleRate sets the renderer sample rate.
func WithSampleRate(sr float64) Option {
	return func(c *config) {
		if sr > 0 {
			c.sampleRate = sr
		}
	}
}

// WithDebounce sets the quiet period for speed and pitch edits.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithCaptureMode sets the initial capture routing.
func WithCaptureMode(mode protocol.CaptureMode) Option {
	return func(c *config) {
		if mode == protocol.CaptureInput || mode == protocol.CaptureMix {
			c.captureMode = mode
		}
	}
}

// WithCaptureMuted sets whether captured input is muted initially.
func WithCaptureMuted(muted bool) Option {
	return func(c *config) {
		c.captureMuted = muted
	}
}

// New returns a controller driving r.
func New(r Renderer, opts ...Option) *Controller {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.stretcher == nil {
		cfg.stretcher = stretch.New()
	}

	c := &Controller{
		r:          r,
		stretcher:  cfg.stretcher,
		log:        cfg.logger,
		sampleRate: cfg.sampleRate,
		tasks:      make(chan func(), taskBuffer),
		done:       make(chan struct{}),
	}

	c.state = ControllerState{
		RecordingLayer: -1,
		ArmedLayer:     -1,
		PrimaryLayer:   -1,
		CaptureMode:    cfg.captureMode,
		CaptureMuted:   cfg.captureMuted,
		Master:         MasterWindowDefaults{LayerIndex: -1},
	}

	for i := range c.layers {
		c.layers[i] = newLayer()
	}

	c.debounce = NewScheduler[int](cfg.clock, cfg.debounce, c.post)

	return c
}

// Run drives the controller until ctx ends or Close is called.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := c.Step(ctx); err != nil {
			return err
		}
	}
}

// Step handles exactly one renderer event or continuation.
func (c *Controller) Step(ctx context.Context) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case ev, ok := <-c.r.Events():
		if !ok {
			return ErrClosed
		}

		c.handleEvent(ev)
	case fn := <-c.tasks:
		fn()
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}

	return nil
}

// Submit queues fn to run on the control goroutine.
func (c *Controller) Submit(fn func()) error {
	select {
	case c.tasks <- fn:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Close stops timers and waits for background work to wind down. It must
// not race with Run; cancel Run's context first.
func (c *Controller) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.debounce.Stop()
	})

	c.wg.Wait()

	return nil
}

// State returns a copy of the controller state.
func (c *Controller) State() ControllerState { return c.state }

// Layer returns a copy of layer i.
func (c *Controller) Layer(i int) (Layer, bool) {
	if !validIndex(i) {
		return Layer{}, false
	}

	return c.layers[i], true
}

// History exposes the undo/redo stacks.
func (c *Controller) History() *History { return &c.history }

func (c *Controller) post(fn func()) {
	select {
	case c.tasks <- fn:
	case <-c.done:
	}
}

// await resolves d off the control goroutine and runs fn back on it.
func (c *Controller) await(d *bridge.Deferred, fn func(protocol.LayerData, error)) {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		select {
		case <-d.Done():
			data, err := d.Result()
			c.post(func() { fn(data, err) })
		case <-c.done:
		}
	}()
}

func (c *Controller) layerLog(i int) logrus.FieldLogger {
	return c.log.WithField("layer", i)
}

func (c *Controller) activeCount() int {
	n := 0

	for i := range c.layers {
		if c.layers[i].Active {
			n++
		}
	}

	return n
}

func (c *Controller) anyActiveExcept(skip int) bool {
	for i := range c.layers {
		if i != skip && c.layers[i].Active {
			return true
		}
	}

	return false
}

func (c *Controller) setLength(i int, samples int64) {
	if samples < 0 {
		samples = 0
	}

	c.layers[i].LengthSamples = samples
	c.layers[i].LengthSeconds = float64(samples) / c.sampleRate
}

// captureMasterDefaults snapshots the primary layer's window and tempo.
func (c *Controller) captureMasterDefaults() {
	p := c.state.PrimaryLayer
	if !validIndex(p) || !c.layers[p].Active {
		c.state.Master = MasterWindowDefaults{LayerIndex: p}
		return
	}

	l := c.layers[p]

	span := c.state.ReferenceSamples
	if span <= 0 {
		span = l.LengthSamples
	}

	c.state.Master = MasterWindowDefaults{
		Start:       l.Knobs.Start,
		End:         l.Knobs.End,
		Speed:       l.Knobs.Speed,
		SpanSamples: span,
		LayerIndex:  p,
		Valid:       true,
	}
}

// resetLayer empties layer i locally. A running job is left to finish and
// is discarded on completion.
func (c *Controller) resetLayer(i int) {
	c.layers[i].reset()
	c.trackers[i].Pending = false
	c.originals[i] = nil
	c.forced[i] = false
	c.debounce.Cancel(i)

	if i == c.state.PrimaryLayer {
		c.state.PrimaryLayer = -1
		c.state.Master = MasterWindowDefaults{LayerIndex: -1}
	}

	if c.activeCount() == 0 {
		c.state.ReferenceSamples = 0
	}
}
