package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/internal/events"
	"github.com/MikeO7/HarborSim/internal/sim"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "harborsim.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v; want not found", ok, err)
	}

	if err := s.Put(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Put overwrite failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(v) != "two" {
		t.Errorf("Get(k) = %q, %v, %v; want two", v, ok, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key still present after delete")
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harborsim.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.LoadSnapshot(ctx); err != nil || ok {
		t.Fatalf("fresh store should have no snapshot, got %v %v", ok, err)
	}

	snap := domain.Snapshot{
		Containers: []domain.Container{{ID: "abc", Name: "web", Image: "nginx", Status: domain.StatusRunning}},
		Images:     []domain.Image{{ID: "a6bd71f48f68", Repository: "nginx", Tag: "latest", Size: "187MB"}},
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, ok, err := reopened.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot = %v, %v", ok, err)
	}
	if len(got.Containers) != 1 || got.Containers[0].Name != "web" || !got.Containers[0].Running() {
		t.Errorf("unexpected containers %+v", got.Containers)
	}
	if len(got.Images) != 1 || got.Images[0].Ref() != "nginx:latest" {
		t.Errorf("unexpected images %+v", got.Images)
	}
	t.Log("✓ Snapshot persisted across reopen")
}

func TestHandleMirrorsEngine(t *testing.T) {
	s := openTemp(t)
	bus := events.NewBus()
	bus.Subscribe(s)

	e := sim.New(sim.WithSource(sim.NewSource(3)), sim.WithPublisher(bus))
	e.Execute("docker run --name web nginx")

	got, ok, err := s.LoadSnapshot(context.Background())
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot = %v, %v", ok, err)
	}
	if len(got.Containers) != 1 || got.Containers[0].Name != "web" {
		t.Errorf("store did not mirror the engine: %+v", got)
	}

	if s.CanHandle(domain.EventCommand) {
		t.Error("store should ignore command events")
	}
	if err := s.Handle(domain.Event{Type: domain.EventSnapshot}); err != nil {
		t.Errorf("event without payload should be ignored, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Get(ctx, "a"); !ok || err != nil {
		t.Errorf("value lost in memory store: %v %v", ok, err)
	}
}
