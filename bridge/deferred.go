package bridge

import (
	"context"
	"sync"

	"github.com/cwbudde/algo-looper/protocol"
)

// Deferred is the future result of a Request.
type Deferred struct {
	id   uint64
	done chan struct{}
	once sync.Once
	data protocol.LayerData
	err  error
}

func newDeferred(id uint64) *Deferred {
	return &Deferred{id: id, done: make(chan struct{})}
}

// ID returns the request id the reply is matched against.
func (d *Deferred) ID() uint64 { return d.id }

// Done is closed once the reply (or a failure) is available.
func (d *Deferred) Done() <-chan struct{} { return d.done }

// Result returns the reply. It must only be called after Done is closed.
func (d *Deferred) Result() (protocol.LayerData, error) {
	return d.data, d.err
}

// Wait blocks until the reply arrives or ctx ends.
func (d *Deferred) Wait(ctx context.Context) (protocol.LayerData, error) {
	select {
	case <-d.done:
		return d.data, d.err
	case <-ctx.Done():
		return protocol.LayerData{}, ctx.Err()
	}
}

func (d *Deferred) resolve(data protocol.LayerData, err error) {
	d.once.Do(func() {
		d.data = data
		d.err = err
		close(d.done)
	})
}
