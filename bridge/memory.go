package bridge

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-looper/protocol"
)

var errTransportClosed = errors.New("bridge: transport closed")

// MemoryTransport is an in-process transport. It records every command it
// is given and lets the embedding code inject renderer events with Emit.
type MemoryTransport struct {
	mu      sync.Mutex
	deliver func(protocol.Event)
	onSend  func(protocol.Command)
	sent    []protocol.Command
	closed  bool
}

// NewMemoryTransport returns an unstarted in-process transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{}
}

// OnSend installs a hook run after each command is recorded. A simulated
// renderer uses it to answer commands by calling Emit.
func (m *MemoryTransport) OnSend(fn func(protocol.Command)) {
	m.mu.Lock()
	m.onSend = fn
	m.mu.Unlock()
}

// Send records cmd and runs the OnSend hook.
func (m *MemoryTransport) Send(cmd protocol.Command) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errTransportClosed
	}

	m.sent = append(m.sent, cmd)
	hook := m.onSend
	m.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}

	return nil
}

// Start registers the event sink.
func (m *MemoryTransport) Start(deliver func(protocol.Event)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errTransportClosed
	}

	m.deliver = deliver

	return nil
}

// Emit injects a renderer event. It reports false when the transport has
// not been started or is closed.
func (m *MemoryTransport) Emit(ev protocol.Event) bool {
	m.mu.Lock()
	deliver := m.deliver
	closed := m.closed
	m.mu.Unlock()

	if deliver == nil || closed {
		return false
	}

	deliver(ev)

	return true
}

// Sent returns a copy of the recorded commands.
func (m *MemoryTransport) Sent() []protocol.Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]protocol.Command(nil), m.sent...)
}

// Reset forgets the recorded commands.
func (m *MemoryTransport) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}

// Close stops delivery.
func (m *MemoryTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.deliver = nil
	m.mu.Unlock()

	return nil
}
