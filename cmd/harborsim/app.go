package main

import (
	"context"
	"fmt"

	"github.com/MikeO7/HarborSim/internal/config"
	"github.com/MikeO7/HarborSim/internal/events"
	"github.com/MikeO7/HarborSim/internal/progress"
	"github.com/MikeO7/HarborSim/internal/session"
	"github.com/MikeO7/HarborSim/internal/sim"
	"github.com/MikeO7/HarborSim/internal/store"
	"github.com/MikeO7/HarborSim/internal/ui"
	"github.com/MikeO7/HarborSim/pkg/log"
)

// app is the wired simulator shared by every front end
type app struct {
	bus        *events.Bus
	engine     *sim.Engine
	session    *session.Session
	store      *store.Store
	tracker    *progress.Tracker
	visualizer *ui.Visualizer

	cancel  context.CancelFunc
	stopped chan struct{}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{bus: events.NewBus()}

	a.engine = sim.New(
		sim.WithSource(sim.NewSource(cfg.Simulator.Seed)),
		sim.WithAllowImages(cfg.Simulator.AllowImages),
		sim.WithPublisher(a.bus),
	)

	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.store = st

		snap, ok, err := st.LoadSnapshot(ctx)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to restore snapshot: %w", err)
		}
		if ok {
			a.engine.Restore(snap)
			log.Infof("Restored %d containers and %d images from %s",
				len(snap.Containers), len(snap.Images), st.Path())
		}
		a.bus.Subscribe(st)
	}

	if cfg.Simulator.Challenges {
		challenges, err := progress.DefaultChallenges()
		if err != nil {
			a.closeStore()
			return nil, err
		}
		var saver progress.Saver
		if a.store != nil {
			saver = a.store
		}
		a.tracker = progress.NewTracker(challenges, saver)
		if err := a.tracker.Load(ctx); err != nil {
			log.Warnf("Starting with empty progress: %v", err)
		}
		a.bus.Subscribe(a.tracker)
	}

	a.visualizer = ui.NewVisualizer(a.engine.Snapshot())
	a.bus.Subscribe(a.visualizer)

	a.session = session.New(a.engine, session.WithSettleDelay(cfg.Simulator.SettleDelay))

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.stopped = make(chan struct{})
	go func() {
		defer close(a.stopped)
		_ = a.session.Run(runCtx)
	}()

	log.Infof("Simulator ready (%d handlers on the bus)", a.bus.Len())
	return a, nil
}

func (a *app) close() {
	a.cancel()
	<-a.stopped
	a.closeStore()
}

func (a *app) closeStore() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		log.ErrorErr("Failed to close store", err)
	}
}
