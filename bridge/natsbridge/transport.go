// Package natsbridge carries bridge traffic over NATS subjects.
//
// Commands are published on "<prefix>.cmd" and renderer events are read
// from "<prefix>.evt", both as protocol JSON envelopes.
package natsbridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/protocol"
)

// DefaultPrefix is the subject prefix used when none is configured.
const DefaultPrefix = "looper"

// Conn is the subset of *nats.Conn the transport needs.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

// Transport implements bridge.Transport over NATS.
type Transport struct {
	conn    Conn
	owned   bool
	prefix  string
	log     logrus.FieldLogger
	mu      sync.Mutex
	sub     *nats.Subscription
	stopped bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger for decode and publish failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Transport) {
		if l != nil {
			t.log = l
		}
	}
}

// WithPrefix overrides the subject prefix.
func WithPrefix(prefix string) Option {
	return func(t *Transport) {
		if prefix != "" {
			t.prefix = prefix
		}
	}
}

// New wraps an existing connection. The caller keeps ownership of conn.
func New(conn Conn, opts ...Option) *Transport {
	t := &Transport{
		conn:   conn,
		prefix: DefaultPrefix,
		log:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

// Dial connects to url, retrying a few times, and returns a transport that
// owns the connection.
func Dial(url string, opts ...Option) (*Transport, error) {
	var (
		nc  *nats.Conn
		err error
	)

	for attempt := 1; attempt <= 5; attempt++ {
		nc, err = nats.Connect(url, nats.Name("looperd"))
		if err == nil {
			break
		}

		logrus.WithError(err).WithField("attempt", attempt).Warn("nats connect failed")
		time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
	}

	if err != nil {
		return nil, fmt.Errorf("natsbridge: connect %s: %w", url, err)
	}

	t := New(nc, opts...)
	t.owned = true

	return t, nil
}

// Conn returns the underlying connection.
func (t *Transport) Conn() Conn { return t.conn }

// CommandSubject is where commands are published.
func (t *Transport) CommandSubject() string { return t.prefix + ".cmd" }

// EventSubject is where renderer events are read from.
func (t *Transport) EventSubject() string { return t.prefix + ".evt" }

// Send publishes cmd.
func (t *Transport) Send(cmd protocol.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	if err := t.conn.Publish(t.CommandSubject(), data); err != nil {
		return fmt.Errorf("natsbridge: publish %s: %w", cmd.CommandType(), err)
	}

	return nil
}

// Start subscribes to the event subject.
func (t *Transport) Start(deliver func(protocol.Event)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sub != nil {
		return nil
	}

	sub, err := t.conn.Subscribe(t.EventSubject(), func(msg *nats.Msg) {
		ev, err := protocol.DecodeEvent(msg.Data)
		if err != nil {
			t.log.WithError(err).WithField("subject", msg.Subject).Warn("dropping undecodable event")
			return
		}

		t.mu.Lock()
		stopped := t.stopped
		t.mu.Unlock()

		if !stopped {
			deliver(ev)
		}
	})
	if err != nil {
		return fmt.Errorf("natsbridge: subscribe %s: %w", t.EventSubject(), err)
	}

	t.sub = sub

	return nil
}

// Close unsubscribes and, for dialed transports, closes the connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.stopped = true
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()

	if sub != nil && sub.IsValid() {
		_ = sub.Unsubscribe()
	}

	if t.owned {
		t.conn.Close()
	}

	return nil
}
