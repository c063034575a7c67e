//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/cwbudde/algo-looper/bridge"
	"github.com/cwbudde/algo-looper/internal/intent"
	"github.com/cwbudde/algo-looper/internal/logging"
	"github.com/cwbudde/algo-looper/looper"
	"github.com/cwbudde/algo-looper/protocol"
)

var (
	controller *looper.Controller
	cancelRun  context.CancelFunc
	funcs      []js.Func

	viewMu   sync.Mutex
	lastView string
)

func main() {
	api := js.Global().Get("Object").New()

	// init(sampleRate, port) wires the controller to a MessagePort-like
	// object that talks to the renderer worklet.
	api.Set("init", export(func(args []js.Value) any {
		if controller != nil || len(args) < 2 {
			return "already initialized or missing port"
		}

		sr := args[0].Float()
		tr := &portTransport{port: args[1]}

		b := bridge.New(tr, bridge.WithLogger(logging.New()))
		if err := b.Start(); err != nil {
			return err.Error()
		}

		controller = looper.New(b, looper.WithSampleRate(sr), looper.WithLogger(logging.New()))

		ctx, cancel := context.WithCancel(context.Background())
		cancelRun = cancel

		go run(ctx, controller)

		return js.Null()
	}))

	api.Set("intent", export(func(args []js.Value) any {
		if controller == nil || len(args) < 1 {
			return js.Null()
		}

		in, err := intent.Decode([]byte(args[0].String()))
		if err != nil {
			return err.Error()
		}

		c := controller
		err = c.Submit(func() {
			if err := in.Apply(c); err == nil {
				storeView(c)
			}
		})
		if err != nil {
			return err.Error()
		}

		return js.Null()
	}))

	api.Set("view", export(func(_ []js.Value) any {
		viewMu.Lock()
		defer viewMu.Unlock()

		if lastView == "" {
			return js.Null()
		}

		return lastView
	}))

	api.Set("shutdown", export(func(_ []js.Value) any {
		if controller == nil {
			return js.Null()
		}

		cancelRun()
		c := controller
		controller = nil

		go func() { _ = c.Close() }()

		return js.Null()
	}))

	js.Global().Set("AlgoLooper", api)
	select {}
}

// run drives the controller and refreshes the cached view after every
// step so JavaScript can read it without blocking.
func run(ctx context.Context, c *looper.Controller) {
	storeView(c)

	for {
		if err := c.Step(ctx); err != nil {
			return
		}

		storeView(c)
	}
}

func storeView(c *looper.Controller) {
	data, err := json.Marshal(c.View())
	if err != nil {
		return
	}

	viewMu.Lock()
	lastView = string(data)
	viewMu.Unlock()
}

// portTransport carries protocol JSON over a JavaScript MessagePort.
type portTransport struct {
	port      js.Value
	onMessage js.Func
}

func (t *portTransport) Send(cmd protocol.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	t.port.Call("postMessage", string(data))

	return nil
}

func (t *portTransport) Start(deliver func(protocol.Event)) error {
	t.onMessage = js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			return nil
		}

		ev, err := protocol.DecodeEvent([]byte(args[0].Get("data").String()))
		if err != nil {
			return nil
		}

		deliver(ev)

		return nil
	})
	t.port.Set("onmessage", t.onMessage)

	return nil
}

func (t *portTransport) Close() error {
	t.port.Set("onmessage", js.Null())
	t.onMessage.Release()

	return nil
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
