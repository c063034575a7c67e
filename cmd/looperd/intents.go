package main

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/bridge/natsbridge"
	"github.com/cwbudde/algo-looper/internal/intent"
	"github.com/cwbudde/algo-looper/looper"
)

// intentServer feeds JSON intents from NATS into the controller and
// publishes the view after each one.
type intentServer struct {
	conn   natsbridge.Conn
	prefix string
	c      *looper.Controller
	log    logrus.FieldLogger

	mu  sync.Mutex
	sub *nats.Subscription
}

func newIntentServer(conn natsbridge.Conn, prefix string, c *looper.Controller, log logrus.FieldLogger) *intentServer {
	return &intentServer{conn: conn, prefix: prefix, c: c, log: log}
}

func (s *intentServer) intentSubject() string { return s.prefix + ".intent" }

func (s *intentServer) viewSubject() string { return s.prefix + ".view" }

func (s *intentServer) start() error {
	sub, err := s.conn.Subscribe(s.intentSubject(), s.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.intentSubject(), err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	return nil
}

func (s *intentServer) stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil && sub.IsValid() {
		_ = sub.Unsubscribe()
	}
}

func (s *intentServer) handle(msg *nats.Msg) {
	in, err := intent.Decode(msg.Data)
	if err != nil {
		s.log.WithError(err).Warn("dropping malformed intent")
		return
	}

	err = s.c.Submit(func() {
		if err := in.Apply(s.c); err != nil {
			s.log.WithError(err).WithField("action", in.Action).Warn("intent rejected")
			return
		}

		s.publishView()
	})
	if err != nil {
		s.log.WithError(err).Debug("controller closed, intent dropped")
	}
}

// publishView runs on the controller goroutine.
func (s *intentServer) publishView() {
	data, err := json.Marshal(s.c.View())
	if err != nil {
		s.log.WithError(err).Warn("encode view")
		return
	}

	if err := s.conn.Publish(s.viewSubject(), data); err != nil {
		s.log.WithError(err).Warn("publish view")
	}
}
