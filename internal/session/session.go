// Package session serialises command submissions from every surface onto a
// single worker and keeps the transcript and recall buffer that go with it.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/MikeO7/HarborSim/internal/history"
	"github.com/MikeO7/HarborSim/internal/sim"
	"github.com/MikeO7/HarborSim/pkg/log"
)

// DefaultSettleDelay is how long Inject waits before dispatching
const DefaultSettleDelay = 100 * time.Millisecond

var (
	// ErrEmptyCommand is returned for blank input, which is never executed
	ErrEmptyCommand = errors.New("empty command")
	// ErrClosed is returned once the worker has stopped
	ErrClosed = errors.New("session closed")
)

type job struct {
	raw   string
	reply chan sim.Result
}

// Session owns the engine, the transcript and the recall buffer
type Session struct {
	engine *sim.Engine
	settle time.Duration
	banner string

	mu     sync.Mutex
	log    *history.Log
	recall *history.Recall

	jobs    chan job
	stopped chan struct{}
}

// Option configures a Session
type Option func(*Session)

// WithSettleDelay overrides DefaultSettleDelay
func WithSettleDelay(d time.Duration) Option {
	return func(s *Session) { s.settle = d }
}

// WithBanner replaces the welcome line seeded into the transcript
func WithBanner(banner string) Option {
	return func(s *Session) { s.banner = banner }
}

// New creates a session around engine. Call Run to start the worker.
func New(engine *sim.Engine, opts ...Option) *Session {
	s := &Session{
		engine:  engine,
		settle:  DefaultSettleDelay,
		banner:  history.Welcome,
		recall:  history.NewRecall(),
		jobs:    make(chan job),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = history.NewLog(s.banner)
	return s
}

// Run executes submitted commands one at a time until ctx is cancelled.
// It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	log.Debug("Session worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("Session worker stopped")
			return nil
		case j := <-s.jobs:
			j.reply <- s.execute(j.raw)
		}
	}
}

// Submit queues raw and waits for its result. Blank input returns
// ErrEmptyCommand without reaching the engine.
func (s *Session) Submit(ctx context.Context, raw string) (sim.Result, error) {
	if strings.TrimSpace(raw) == "" {
		return sim.Result{}, ErrEmptyCommand
	}

	j := job{raw: raw, reply: make(chan sim.Result, 1)}
	select {
	case s.jobs <- j:
	case <-s.stopped:
		return sim.Result{}, ErrClosed
	case <-ctx.Done():
		return sim.Result{}, ctx.Err()
	}

	select {
	case r := <-j.reply:
		return r, nil
	case <-ctx.Done():
		return sim.Result{}, ctx.Err()
	}
}

// Inject submits raw after the settle delay. The returned channel yields
// the result, or is closed empty when the submission did not happen.
func (s *Session) Inject(ctx context.Context, raw string) <-chan sim.Result {
	out := make(chan sim.Result, 1)

	go func() {
		defer close(out)

		timer := time.NewTimer(s.settle)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		r, err := s.Submit(ctx, raw)
		if err != nil {
			if !errors.Is(err, ErrEmptyCommand) {
				log.ErrorErr("Injected command was not executed", err)
			}
			return
		}
		out <- r
	}()

	return out
}

func (s *Session) execute(raw string) sim.Result {
	r := s.engine.Execute(raw)
	line := strings.Join(strings.Fields(raw), " ")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recall.Push(line)
	if r.Clear {
		s.log.Clear()
		return r
	}
	s.log.Record(line, r.Output, r.Success())
	return r
}

// History returns a copy of the transcript
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// Previous steps the recall cursor towards older input
func (s *Session) Previous() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recall.Previous()
}

// Next steps the recall cursor towards newer input
func (s *Session) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recall.Next()
}

// Recall returns submitted inputs, most recent first
func (s *Session) Recall() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recall.Items()
}

// Engine returns the underlying engine
func (s *Session) Engine() *sim.Engine {
	return s.engine
}
