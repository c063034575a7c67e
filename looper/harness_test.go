package looper

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cwbudde/algo-looper/bridge"
	"github.com/cwbudde/algo-looper/dsp/stretch"
	"github.com/cwbudde/algo-looper/internal/logging"
	"github.com/cwbudde/algo-looper/internal/testutil"
	"github.com/cwbudde/algo-looper/params"
	"github.com/cwbudde/algo-looper/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true

	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)

	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d

	var due []*manualTimer

	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type stretchCall struct {
	samples int
	speed   float64
	pitch   float64
}

// stubStretcher fakes the engine with an output of ceil(n/speed) samples.
type stubStretcher struct {
	mu    sync.Mutex
	calls []stretchCall
	err   error
	gate  chan struct{}
}

func (s *stubStretcher) Process(left, right []float32, _, speed, pitch float64) (stretch.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, stretchCall{samples: len(left), speed: speed, pitch: pitch})
	gate, err := s.gate, s.err
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if err != nil {
		return stretch.Result{}, err
	}

	n := int(math.Ceil(float64(len(left)) / speed))
	out := make([]float32, n)

	for i := range out {
		out[i] = float32(pitch)
	}

	res := stretch.Result{Left: out, Samples: n, SpeedRatio: speed, PitchRatio: pitch}
	if right != nil {
		res.Right = append([]float32(nil), out...)
	}

	return res, nil
}

func (s *stubStretcher) Calls() []stretchCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]stretchCall(nil), s.calls...)
}

func (s *stubStretcher) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// fakeRenderer keeps layer audio the way the real renderer would and
// answers exports from it.
type fakeRenderer struct {
	mu      sync.Mutex
	tr      *bridge.MemoryTransport
	layers  map[int]protocol.LayerData
	exports []int
	silent  bool
}

func (f *fakeRenderer) handle(cmd protocol.Command) {
	switch c := cmd.(type) {
	case protocol.ExportLayer:
		f.mu.Lock()
		f.exports = append(f.exports, c.LayerIndex)

		if f.silent {
			f.mu.Unlock()
			return
		}

		data, ok := f.layers[c.LayerIndex]
		f.mu.Unlock()

		if !ok {
			data = protocol.LayerData{Empty: true}
		}

		data.RequestID = c.RequestID
		f.tr.Emit(data)
	case protocol.RestoreLayer:
		p := c.Params

		f.mu.Lock()
		f.layers[c.LayerIndex] = protocol.LayerData{
			BufferL:            c.BufferL,
			BufferR:            c.BufferR,
			Params:             &p,
			StartOffsetSamples: protocol.Int64(c.StartOffsetSamples),
			PhaseOffsetSamples: protocol.Int64(c.PhaseOffsetSamples),
			Takes:              c.Takes,
		}
		f.mu.Unlock()
	case protocol.ClearLayer:
		f.mu.Lock()
		delete(f.layers, c.LayerIndex)
		f.mu.Unlock()
	case protocol.SetLayerParams:
		p := c.Params

		f.mu.Lock()
		if data, ok := f.layers[c.LayerIndex]; ok {
			data.Params = &p
			f.layers[c.LayerIndex] = data
		}
		f.mu.Unlock()
	}
}

func (f *fakeRenderer) store(i int, left []float32, phase int64) {
	p := params.ToEngine(params.Defaults())

	f.mu.Lock()
	f.layers[i] = protocol.LayerData{
		BufferL:            left,
		BufferR:            append([]float32(nil), left...),
		Params:             &p,
		PhaseOffsetSamples: protocol.Int64(phase),
	}
	f.mu.Unlock()
}

func (f *fakeRenderer) setSilent(v bool) {
	f.mu.Lock()
	f.silent = v
	f.mu.Unlock()
}

func (f *fakeRenderer) Exports() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int(nil), f.exports...)
}

type harness struct {
	t        *testing.T
	tr       *bridge.MemoryTransport
	b        *bridge.Bridge
	c        *Controller
	clock    *manualClock
	st       *stubStretcher
	renderer *fakeRenderer
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	tr := bridge.NewMemoryTransport()
	b := bridge.New(tr, bridge.WithLogger(logging.Discard()))
	require.NoError(t, b.Start())

	h := &harness{
		t:        t,
		tr:       tr,
		b:        b,
		clock:    &manualClock{},
		st:       &stubStretcher{},
		renderer: &fakeRenderer{tr: tr, layers: make(map[int]protocol.LayerData)},
	}
	tr.OnSend(h.renderer.handle)

	base := []Option{
		WithLogger(logging.Discard()),
		WithClock(h.clock),
		WithStretcher(h.st),
	}
	h.c = New(b, append(base, opts...)...)

	t.Cleanup(func() {
		_ = h.c.Close()
		_ = h.b.Close()
	})

	return h
}

// emit injects a renderer event and handles it.
func (h *harness) emit(ev protocol.Event) {
	h.t.Helper()

	require.True(h.t, h.tr.Emit(ev))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(h.t, h.c.Step(ctx))
}

// settle runs continuations until the controller has been quiet for a
// short while.
func (h *harness) settle() {
	h.t.Helper()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		err := h.c.Step(ctx)
		cancel()

		if errors.Is(err, context.DeadlineExceeded) {
			return
		}

		require.NoError(h.t, err)
	}
}

// recordLayer plays a completed free capture of left into layer i.
func (h *harness) recordLayer(i int, left []float32, phase int64) {
	h.t.Helper()

	h.renderer.store(i, left, phase)
	h.emit(protocol.RecordStarted{LayerIndex: i, CaptureMode: protocol.CaptureInput})
	h.emit(protocol.RecordComplete{
		LayerIndex:         i,
		LengthSamples:      int64(len(left)),
		PhaseOffsetSamples: protocol.Int64(phase),
	})
}

func (h *harness) tone(n int) []float32 {
	return testutil.DeterministicSine(440, 44100, 0.5, n)
}

// sentOf returns the recorded commands of type T.
func sentOf[T protocol.Command](tr *bridge.MemoryTransport) []T {
	var out []T

	for _, cmd := range tr.Sent() {
		if c, ok := cmd.(T); ok {
			out = append(out, c)
		}
	}

	return out
}

func lastSent[T protocol.Command](t *testing.T, tr *bridge.MemoryTransport) T {
	t.Helper()

	all := sentOf[T](tr)
	require.NotEmpty(t, all)

	return all[len(all)-1]
}
