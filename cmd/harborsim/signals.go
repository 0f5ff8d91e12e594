package main

import (
	"context"
	"os"
	"syscall"

	"github.com/MikeO7/HarborSim/pkg/log"
)

// handleSignals stops the simulator on SIGINT or SIGTERM. SIGUSR1 flips
// debug logging for the running session. It returns once ctx is done or
// the simulator has been cancelled.
func handleSignals(ctx context.Context, sigChan <-chan os.Signal, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			l := log.Logger()
			if sig == syscall.SIGUSR1 {
				on := log.ToggleDebug()
				l.Info().Str("signal", sig.String()).Bool("debug", on).Msg("Debug logging toggled")
				continue
			}
			l.Info().Str("signal", sig.String()).Msg("Stopping simulator")
			cancel()
			return
		}
	}
}
