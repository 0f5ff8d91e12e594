package sim

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
	"github.com/MikeO7/HarborSim/pkg/util"
)

// containerTarget resolves the identifier following "docker <verb>"
func (e *Engine) containerTarget(c command, fs *pflag.FlagSet) (string, int, Result, bool) {
	ident, err := firstArg(fs, c.argsAfter(2))
	if err != nil || ident == "" {
		return "", -1, fail(ErrMissingArgument, "container", "Error: No container specified"), false
	}
	i := e.state.findContainer(ident)
	if i < 0 {
		return ident, -1, fail(ErrNotFound, ident, "Error: No such container: "+ident), false
	}
	return ident, i, Result{}, true
}

func (e *Engine) setStatus(c command, status domain.Status, msg string) Result {
	ident, i, r, ok := e.containerTarget(c, newFlagSet(c.tokens[1], true))
	if !ok {
		return r
	}
	ctr := &e.state.containers[i]
	ctr.Status = status

	ctrLogger := log.WithContainer(util.ShortID(ctr.ID), ctr.Name)
	ctrLogger.Info().Str("status", string(status)).Msg(msg)

	return succeed(ident)
}

func (e *Engine) stop(c command) Result {
	return e.setStatus(c, domain.StatusStopped, "Container stopped")
}

func (e *Engine) start(c command) Result {
	return e.setStatus(c, domain.StatusRunning, "Container started")
}

func (e *Engine) restart(c command) Result {
	return e.setStatus(c, domain.StatusRunning, "Container restarted")
}

func (e *Engine) rm(c command) Result {
	fs := newFlagSet("rm", true)
	force := fs.BoolP("force", "f", false, "Force the removal of a running container")
	fs.BoolP("volumes", "v", false, "Remove anonymous volumes")

	ident, i, r, ok := e.containerTarget(c, fs)
	if !ok {
		return r
	}
	ctr := e.state.containers[i]
	if ctr.Running() && !*force {
		return fail(ErrConflict, ident, fmt.Sprintf(
			"Error: You cannot remove a running container %s. Stop the container before attempting removal or use -f",
			ident))
	}
	e.state.removeContainer(i)

	ctrLogger := log.WithContainer(util.ShortID(ctr.ID), ctr.Name)
	ctrLogger.Info().Bool("force", *force).Msg("Container removed")

	return succeed(ident)
}
