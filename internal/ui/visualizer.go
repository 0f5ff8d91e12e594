package ui

import (
	"fmt"
	"sync"

	"github.com/MikeO7/HarborSim/internal/domain"
)

// Visualizer keeps the most recent snapshot seen on the bus. It never
// reads engine state directly.
type Visualizer struct {
	mu      sync.RWMutex
	latest  domain.Snapshot
	changed chan struct{}
}

// NewVisualizer starts from initial, usually the engine's current snapshot
func NewVisualizer(initial domain.Snapshot) *Visualizer {
	return &Visualizer{
		latest:  initial.Clone(),
		changed: make(chan struct{}, 1),
	}
}

// Handle implements events.Handler
func (v *Visualizer) Handle(event domain.Event) error {
	if event.Snapshot == nil {
		return nil
	}

	v.mu.Lock()
	v.latest = event.Snapshot.Clone()
	v.mu.Unlock()

	select {
	case v.changed <- struct{}{}:
	default:
	}
	return nil
}

// CanHandle implements events.Handler
func (v *Visualizer) CanHandle(eventType domain.EventType) bool {
	return eventType == domain.EventSnapshot
}

// Snapshot returns a copy of the latest snapshot
func (v *Visualizer) Snapshot() domain.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.latest.Clone()
}

// Counts returns running, stopped and image totals
func (v *Visualizer) Counts() (running, stopped, images int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	running = v.latest.CountRunning()
	return running, len(v.latest.Containers) - running, len(v.latest.Images)
}

// Changed signals, coalesced, whenever a new snapshot arrives
func (v *Visualizer) Changed() <-chan struct{} {
	return v.changed
}

// Summary is a one-line rendering of the counts
func (v *Visualizer) Summary() string {
	running, stopped, images := v.Counts()
	return fmt.Sprintf("%s %d running  %s %d stopped  %d images",
		dotRunning, running, dotStopped, stopped, images)
}
