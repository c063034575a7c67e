package looper

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a speed or pitch edit is
// rendered.
const DefaultDebounce = 250 * time.Millisecond

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler runs at most one callback per key after a quiet period.
// Scheduling a key again cancels the previous callback and restarts the
// delay. Fired callbacks are handed to post, which runs them on the
// owner's goroutine; a callback superseded after its timer fired is
// discarded there by its generation number. Generations are unique across
// the scheduler, so a stale fire never matches a later entry for its key.
type Scheduler[K comparable] struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	post    func(func())
	entries map[K]*scheduled
	gen     uint64
	stopped bool
}

type scheduled struct {
	gen   uint64
	timer Timer
}

// NewScheduler returns a scheduler firing delay after the last Schedule
// of a key.
func NewScheduler[K comparable](clock Clock, delay time.Duration, post func(func())) *Scheduler[K] {
	if clock == nil {
		clock = realClock{}
	}

	return &Scheduler[K]{
		clock:   clock,
		delay:   delay,
		post:    post,
		entries: make(map[K]*scheduled),
	}
}

// Schedule (re)arms key to run fn.
func (s *Scheduler[K]) Schedule(key K, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	e, ok := s.entries[key]
	if !ok {
		e = &scheduled{}
		s.entries[key] = e
	} else if e.timer != nil {
		e.timer.Stop()
	}

	s.gen++
	e.gen = s.gen
	gen := e.gen

	e.timer = s.clock.AfterFunc(s.delay, func() {
		s.post(func() { s.fire(key, gen, fn) })
	})
}

// Cancel drops a pending callback for key.
func (s *Scheduler[K]) Cancel(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}

		delete(s.entries, key)
	}
}

// Pending reports whether key has a callback waiting.
func (s *Scheduler[K]) Pending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[key]

	return ok
}

// Stop cancels everything. Later Schedule calls are ignored.
func (s *Scheduler[K]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true

	for key, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
		}

		delete(s.entries, key)
	}
}

func (s *Scheduler[K]) fire(key K, gen uint64, fn func()) {
	s.mu.Lock()

	e, ok := s.entries[key]
	if !ok || e.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}

	delete(s.entries, key)
	s.mu.Unlock()

	fn()
}
