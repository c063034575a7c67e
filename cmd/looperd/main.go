// Command looperd runs the looper controller against a renderer reachable
// over NATS.
//
// Renderer commands go out on "<subject>.cmd", renderer events come in on
// "<subject>.evt", user intents (JSON, see internal/intent) are read from
// "<subject>.intent" and the resulting view is published on
// "<subject>.view". Settings come from LOOPER_* environment variables.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/bridge"
	"github.com/cwbudde/algo-looper/bridge/natsbridge"
	"github.com/cwbudde/algo-looper/internal/config"
	"github.com/cwbudde/algo-looper/internal/logging"
	"github.com/cwbudde/algo-looper/looper"
	"github.com/cwbudde/algo-looper/protocol"
)

func main() {
	cfg := config.Load()

	log := logging.New()
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("looperd stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	tr, err := natsbridge.Dial(cfg.NATSURL, natsbridge.WithPrefix(cfg.Subject), natsbridge.WithLogger(log))
	if err != nil {
		return err
	}

	b := bridge.New(tr, bridge.WithLogger(log))
	defer b.Close()

	if err := b.Start(); err != nil {
		return err
	}

	c := looper.New(b,
		looper.WithLogger(log),
		looper.WithSampleRate(cfg.SampleRate),
		looper.WithDebounce(cfg.Debounce),
		looper.WithCaptureMode(protocol.CaptureMode(cfg.CaptureMode)),
		looper.WithCaptureMuted(cfg.CaptureMuted),
	)
	defer c.Close()

	srv := newIntentServer(tr.Conn(), cfg.Subject, c, log)
	if err := srv.start(); err != nil {
		return err
	}
	defer srv.stop()

	log.WithFields(logrus.Fields{
		"url":     cfg.NATSURL,
		"subject": cfg.Subject,
		"session": b.Session(),
	}).Info("looperd running")

	err = c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}

	return err
}
