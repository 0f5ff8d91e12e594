// Package sim classifies free-text Docker commands and executes them
// against an in-memory model of containers and images.
package sim

import (
	"strings"
	"sync"

	"github.com/MikeO7/HarborSim/internal/catalog"
	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
)

// Publisher receives the broadcasts that follow an actionable command
type Publisher interface {
	PublishSnapshot(snapshot domain.Snapshot)
	PublishCommand(cmd domain.CommandExecuted)
}

// Engine owns the simulated state. Execute runs one command to completion
// under a lock, so concurrent callers are serialised.
type Engine struct {
	mu sync.Mutex

	state     state
	catalog   *catalog.Catalog
	src       Source
	allow     allowList
	publisher Publisher
	rules     []rule
}

// Option configures an Engine
type Option func(*Engine)

// WithSource injects the randomness used for IDs, sizes and names
func WithSource(src Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithCatalog replaces the embedded reference catalog
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithAllowImages sets the repository patterns run may pull implicitly
func WithAllowImages(patterns []string) Option {
	return func(e *Engine) {
		e.allow = append(allowList(nil), patterns...)
	}
}

// WithImages sets the images present at start-up
func WithImages(images []domain.Image) Option {
	return func(e *Engine) {
		e.state.images = append([]domain.Image(nil), images...)
	}
}

// WithPublisher attaches the notifier
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// New creates an engine seeded with DefaultImages unless WithImages is given
func New(opts ...Option) *Engine {
	e := &Engine{
		allow: allowList(DefaultAllowImages),
	}
	e.state.images = append([]domain.Image(nil), DefaultImages...)

	for _, opt := range opts {
		opt(e)
	}

	if e.src == nil {
		e.src = NewSource(0)
	}
	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	e.rules = e.buildRules()

	return e
}

// Execute classifies raw, applies it and broadcasts the outcome when it is
// actionable. It never panics on user input.
func (e *Engine) Execute(raw string) Result {
	cmd := parseCommand(raw)

	e.mu.Lock()
	r, name := e.dispatch(cmd)
	var snap domain.Snapshot
	if r.Actionable() {
		snap = e.state.snapshot()
	}
	e.mu.Unlock()

	cmdLogger := log.WithCommand(cmd.line)
	cmdLogger.Debug().
		Str("rule", name).
		Str("outcome", r.Outcome.String()).
		AnErr("reason", r.Err).
		Msg("Command executed")

	if r.Actionable() && e.publisher != nil {
		e.publisher.PublishSnapshot(snap)
		e.publisher.PublishCommand(domain.CommandExecuted{
			Command: strings.TrimSpace(raw),
			Output:  r.Output,
			Success: r.Success(),
		})
	}

	return r
}

// dispatch walks the rule cascade; callers hold e.mu
func (e *Engine) dispatch(cmd command) (Result, string) {
	for _, rl := range e.rules {
		if rl.match(cmd) {
			return rl.handle(cmd), rl.name
		}
	}
	return e.unrecognized(cmd), "unrecognized"
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.snapshot()
}

// Restore replaces the current state, e.g. from a persisted mirror
func (e *Engine) Restore(snap domain.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.restore(snap)
}

// Catalog returns the reference catalog in use
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}
