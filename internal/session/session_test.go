package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MikeO7/HarborSim/internal/history"
	"github.com/MikeO7/HarborSim/internal/sim"
)

func startSession(t *testing.T, opts ...Option) (*Session, context.CancelFunc) {
	t.Helper()
	s := New(sim.New(sim.WithSource(sim.NewSource(1))), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, cancel
}

func TestSubmit(t *testing.T) {
	s, _ := startSession(t)
	ctx := context.Background()

	r, err := s.Submit(ctx, "docker run --name web nginx")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !r.Success() {
		t.Fatalf("expected success, got %q", r.Output)
	}

	if _, err := s.Submit(ctx, "docker frobnicate"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	entries := s.History()
	if len(entries) != 3 {
		t.Fatalf("expected banner plus 2 entries, got %d", len(entries))
	}
	if entries[0].Output != history.Welcome || entries[0].Actionable() {
		t.Errorf("unexpected banner entry %+v", entries[0])
	}
	if entries[1].Command != "docker run --name web nginx" || !*entries[1].Success {
		t.Errorf("unexpected entry %+v", entries[1])
	}
	if *entries[2].Success {
		t.Errorf("unrecognized command recorded as success")
	}
	t.Log("✓ Transcript records each command with its outcome")
}

func TestSubmit_Blank(t *testing.T) {
	s, _ := startSession(t)

	for _, raw := range []string{"", "   ", "\t\n"} {
		if _, err := s.Submit(context.Background(), raw); !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyCommand", raw, err)
		}
	}
	if n := len(s.History()); n != 1 {
		t.Errorf("blank input must not be recorded, have %d entries", n)
	}
	if n := len(s.Recall()); n != 0 {
		t.Errorf("blank input must not be recalled, have %d", n)
	}
}

func TestSubmit_ClearTruncates(t *testing.T) {
	s, _ := startSession(t)
	ctx := context.Background()

	if _, err := s.Submit(ctx, "docker ps"); err != nil {
		t.Fatal(err)
	}
	r, err := s.Submit(ctx, "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !r.Clear {
		t.Error("expected clear result")
	}
	if n := len(s.History()); n != 0 {
		t.Errorf("expected empty transcript, got %d entries", n)
	}
}

func TestRecallNavigation(t *testing.T) {
	s, _ := startSession(t)
	ctx := context.Background()

	for _, raw := range []string{"docker ps", "  docker   images ", "docker info"} {
		if _, err := s.Submit(ctx, raw); err != nil {
			t.Fatal(err)
		}
	}

	steps := []struct {
		move string
		want string
	}{
		{"prev", "docker info"},
		{"prev", "docker images"},
		{"prev", "docker ps"},
		{"prev", "docker ps"},
		{"next", "docker images"},
		{"next", "docker info"},
		{"next", ""},
		{"next", ""},
	}
	for i, st := range steps {
		var got string
		if st.move == "prev" {
			got = s.Previous()
		} else {
			got = s.Next()
		}
		if got != st.want {
			t.Errorf("step %d (%s) = %q, want %q", i, st.move, got, st.want)
		}
	}
}

func TestSubmit_AfterStop(t *testing.T) {
	s, cancel := startSession(t)
	cancel()

	deadline := time.After(time.Second)
	for {
		_, err := s.Submit(context.Background(), "docker ps")
		if errors.Is(err, ErrClosed) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected ErrClosed, last error %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSubmit_ContextCancelled(t *testing.T) {
	s := New(sim.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Submit(ctx, "docker ps"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled without a worker, got %v", err)
	}
}

func TestInject(t *testing.T) {
	s, _ := startSession(t, WithSettleDelay(30*time.Millisecond))

	start := time.Now()
	select {
	case r, ok := <-s.Inject(context.Background(), "docker run hello-world"):
		if !ok {
			t.Fatal("injected command was not executed")
		}
		if !r.Success() {
			t.Errorf("expected success, got %q", r.Output)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for injected command")
	}

	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("injected command ran after %v, before the settle delay", elapsed)
	}
	if n := len(s.Engine().Snapshot().Containers); n != 1 {
		t.Errorf("expected 1 container, got %d", n)
	}
}

func TestInject_Cancelled(t *testing.T) {
	s, _ := startSession(t, WithSettleDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Inject(ctx, "docker run hello-world")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("cancelled injection must not produce a result")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestSubmit_Serialised(t *testing.T) {
	s, _ := startSession(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Submit(context.Background(), "docker run -d nginx"); err != nil {
				t.Errorf("Submit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := len(s.History()); n != 11 {
		t.Errorf("expected 11 transcript entries, got %d", n)
	}
	if n := len(s.Engine().Snapshot().Containers); n != 10 {
		t.Errorf("expected 10 containers, got %d", n)
	}
}

func TestWithBanner(t *testing.T) {
	s := New(sim.New(), WithBanner(""))
	if n := len(s.History()); n != 0 {
		t.Errorf("expected empty transcript, got %d", n)
	}
}
