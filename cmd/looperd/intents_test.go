package main

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cwbudde/algo-looper/bridge"
	"github.com/cwbudde/algo-looper/internal/logging"
	"github.com/cwbudde/algo-looper/looper"
	"github.com/cwbudde/algo-looper/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeConn struct {
	mu        sync.Mutex
	handlers  map[string]nats.MsgHandler
	published map[string][][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{handlers: map[string]nats.MsgHandler{}, published: map[string][][]byte{}}
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.published[subject] = append(f.published[subject], data)

	return nil
}

func (f *fakeConn) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[subject] = cb

	return &nats.Subscription{Subject: subject}, nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) deliver(subject, data string) {
	f.mu.Lock()
	cb := f.handlers[subject]
	f.mu.Unlock()

	cb(&nats.Msg{Subject: subject, Data: []byte(data)})
}

func (f *fakeConn) views() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([][]byte(nil), f.published["studio.view"]...)
}

func TestIntentServerAppliesIntentsAndPublishesView(t *testing.T) {
	tr := bridge.NewMemoryTransport()
	b := bridge.New(tr, bridge.WithLogger(logging.Discard()))
	require.NoError(t, b.Start())
	defer b.Close()

	c := looper.New(b, looper.WithLogger(logging.Discard()))
	conn := newFakeConn()
	srv := newIntentServer(conn, "studio", c, logging.Discard())
	require.NoError(t, srv.start())
	defer srv.stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- c.Run(ctx) }()

	conn.deliver("studio.intent", `{"action":"select","layer":6}`)
	conn.deliver("studio.intent", `not json`)
	conn.deliver("studio.intent", `{"action":"fly"}`)
	conn.deliver("studio.intent", `{"action":"play","on":true}`)

	require.Eventually(t, func() bool { return len(conn.views()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	require.NoError(t, c.Close())

	var v looper.View
	require.NoError(t, json.Unmarshal(conn.views()[1], &v))
	assert.Equal(t, 6, v.CurrentLayer)
	assert.Equal(t, "playing", v.Transport)
	assert.Equal(t, []protocol.Command{
		protocol.SetSelectedLayer{LayerIndex: 6},
		protocol.SetPlay{Value: true},
	}, tr.Sent())
}
