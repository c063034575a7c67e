package bridge

import (
	"errors"
	"sync"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/protocol"
)

var (
	// ErrUnavailable is returned by requests made while no transport is running.
	ErrUnavailable = errors.New("bridge: renderer unavailable")
	// ErrClosed is returned by requests still pending when the bridge closes.
	ErrClosed = errors.New("bridge: closed")
)

const defaultEventBuffer = 256

// Transport carries commands to the renderer and events back.
type Transport interface {
	// Send delivers one command. It must not block on the renderer.
	Send(cmd protocol.Command) error
	// Start begins delivering inbound events to deliver. deliver may be
	// called from any goroutine.
	Start(deliver func(protocol.Event)) error
	Close() error
}

// Requestable is a command that expects a correlated LayerData reply.
type Requestable interface {
	protocol.Command
	WithRequestID(id uint64) protocol.Command
}

// Bridge correlates requests with asynchronous replies and fans all other
// renderer events into a single channel for the controller.
type Bridge struct {
	mu        sync.Mutex
	transport Transport
	started   bool
	closed    bool
	nextID    uint64
	pending   map[uint64]*Deferred

	events  chan protocol.Event
	done    chan struct{}
	session xid.ID
	log     logrus.FieldLogger
}

type config struct {
	logger      logrus.FieldLogger
	eventBuffer int
}

// Option configures a Bridge.
type Option func(*config)

// WithLogger sets the logger used for dropped messages and transport errors.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEventBuffer sets the capacity of the event channel.
func WithEventBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.eventBuffer = n
		}
	}
}

// New returns a bridge over t. A nil transport yields a bridge that drops
// every command, which is how an uninitialized renderer behaves.
func New(t Transport, opts ...Option) *Bridge {
	cfg := config{
		logger:      logrus.StandardLogger(),
		eventBuffer: defaultEventBuffer,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	session := xid.New()

	return &Bridge{
		transport: t,
		pending:   make(map[uint64]*Deferred),
		events:    make(chan protocol.Event, cfg.eventBuffer),
		done:      make(chan struct{}),
		session:   session,
		log:       cfg.logger.WithField("session", session.String()),
	}
}

// Session returns the id used to tag this bridge's log lines.
func (b *Bridge) Session() string { return b.session.String() }

// Start opens the inbound side of the transport.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	if b.transport == nil || b.started {
		return nil
	}

	if err := b.transport.Start(b.deliver); err != nil {
		return err
	}

	b.started = true

	return nil
}

// Events returns renderer events other than request replies.
func (b *Bridge) Events() <-chan protocol.Event { return b.events }

// Send forwards cmd to the renderer. Without a running transport the
// command is dropped silently.
func (b *Bridge) Send(cmd protocol.Command) {
	b.mu.Lock()
	t, ok := b.activeTransport()
	b.mu.Unlock()

	if !ok {
		b.log.WithField("command", cmd.CommandType()).Debug("renderer unavailable, command dropped")
		return
	}

	if err := t.Send(cmd); err != nil {
		b.log.WithError(err).WithField("command", cmd.CommandType()).Warn("send failed")
	}
}

// Request sends cmd with a fresh request id and returns the deferred reply.
func (b *Bridge) Request(cmd Requestable) *Deferred {
	b.mu.Lock()

	b.nextID++
	d := newDeferred(b.nextID)

	t, ok := b.activeTransport()
	if !ok {
		b.mu.Unlock()
		d.resolve(protocol.LayerData{}, ErrUnavailable)

		return d
	}

	b.pending[d.id] = d
	b.mu.Unlock()

	if err := t.Send(cmd.WithRequestID(d.id)); err != nil {
		b.mu.Lock()
		delete(b.pending, d.id)
		b.mu.Unlock()
		d.resolve(protocol.LayerData{}, err)
	}

	return d
}

// Pending returns the number of unanswered requests.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.pending)
}

// Close stops the transport and fails every pending request with ErrClosed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	pending := b.pending
	b.pending = make(map[uint64]*Deferred)
	t := b.transport
	b.mu.Unlock()

	close(b.done)

	for _, d := range pending {
		d.resolve(protocol.LayerData{}, ErrClosed)
	}

	if t == nil {
		return nil
	}

	return t.Close()
}

func (b *Bridge) activeTransport() (Transport, bool) {
	if b.closed || !b.started || b.transport == nil {
		return nil, false
	}

	return b.transport, true
}

func (b *Bridge) deliver(ev protocol.Event) {
	if data, ok := ev.(protocol.LayerData); ok {
		b.resolve(data)
		return
	}

	select {
	case b.events <- ev:
	case <-b.done:
	}
}

func (b *Bridge) resolve(data protocol.LayerData) {
	b.mu.Lock()
	d, ok := b.pending[data.RequestID]
	delete(b.pending, data.RequestID)
	b.mu.Unlock()

	if !ok {
		b.log.WithField("request", data.RequestID).Debug("reply for unknown request")
		return
	}

	d.resolve(data, nil)
}
