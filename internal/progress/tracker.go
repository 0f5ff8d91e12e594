// Package progress completes learning challenges as matching commands
// succeed and persists the completed set.
package progress

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
)

// Key is the store key holding the completed set
const Key = "progress"

//go:embed challenges.yaml
var challengesYAML []byte

// Challenge is one exercise. It is completed by any successful command that
// starts with Command.
type Challenge struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Hint        string `yaml:"hint" json:"hint"`
	Command     string `yaml:"command" json:"command"`
}

// Status is a challenge with its completion state
type Status struct {
	Challenge
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Saver persists the completed set
type Saver interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// DefaultChallenges returns the embedded challenge list
func DefaultChallenges() ([]Challenge, error) {
	var doc struct {
		Challenges []Challenge `yaml:"challenges"`
	}
	if err := yaml.Unmarshal(challengesYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse challenges: %w", err)
	}
	return doc.Challenges, nil
}

// Tracker observes command events
type Tracker struct {
	mu         sync.RWMutex
	challenges []Challenge
	completed  map[string]time.Time
	saver      Saver
}

// NewTracker creates a tracker. saver may be nil to keep progress in memory.
func NewTracker(challenges []Challenge, saver Saver) *Tracker {
	return &Tracker{
		challenges: append([]Challenge(nil), challenges...),
		completed:  make(map[string]time.Time),
		saver:      saver,
	}
}

// Load restores the completed set from the saver. Unknown IDs are dropped.
func (t *Tracker) Load(ctx context.Context) error {
	if t.saver == nil {
		return nil
	}
	data, ok, err := t.saver.Get(ctx, Key)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	if !ok {
		return nil
	}

	var saved map[string]time.Time
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("failed to decode progress: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.challenges {
		if at, ok := saved[c.ID]; ok {
			t.completed[c.ID] = at
		}
	}
	log.Debugf("Restored progress: %d/%d challenges complete", len(t.completed), len(t.challenges))
	return nil
}

// Handle completes every open challenge matched by a successful command
func (t *Tracker) Handle(event domain.Event) error {
	if event.Command == nil || !event.Command.Success {
		return nil
	}
	line := strings.Join(strings.Fields(event.Command.Command), " ")

	t.mu.Lock()
	var newly []string
	for _, c := range t.challenges {
		if _, done := t.completed[c.ID]; done {
			continue
		}
		if strings.HasPrefix(line, c.Command) {
			t.completed[c.ID] = event.Timestamp
			newly = append(newly, c.ID)
		}
	}
	data, err := json.Marshal(t.completed)
	t.mu.Unlock()

	if len(newly) == 0 {
		return nil
	}
	for _, id := range newly {
		l := log.Logger()
		l.Info().Str("challenge", id).Msg("Challenge completed")
	}
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if t.saver == nil {
		return nil
	}
	return t.saver.Put(context.Background(), Key, data)
}

// CanHandle subscribes the tracker to command events only
func (t *Tracker) CanHandle(eventType domain.EventType) bool {
	return eventType == domain.EventCommand
}

// Statuses lists every challenge in declaration order
func (t *Tracker) Statuses() []Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Status, 0, len(t.challenges))
	for _, c := range t.challenges {
		st := Status{Challenge: c}
		if at, ok := t.completed[c.ID]; ok {
			at := at
			st.Completed = true
			st.CompletedAt = &at
		}
		out = append(out, st)
	}
	return out
}

// Counts returns completed and total challenge counts
func (t *Tracker) Counts() (completed, total int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.completed), len(t.challenges)
}

// Reset forgets all progress
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	t.completed = make(map[string]time.Time)
	t.mu.Unlock()

	if t.saver == nil {
		return nil
	}
	return t.saver.Put(ctx, Key, []byte("{}"))
}
