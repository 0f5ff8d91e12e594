package sim

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
	"github.com/MikeO7/HarborSim/pkg/util"
)

// systemPrune removes stopped containers and, with --all, every image no
// remaining container references
func (e *Engine) systemPrune(c command) Result {
	fs := newFlagSet("prune", true)
	all := fs.BoolP("all", "a", false, "Remove all unused images not just dangling ones")
	fs.BoolP("force", "f", false, "Do not prompt for confirmation")
	fs.Bool("volumes", false, "Prune anonymous volumes")
	if err := fs.Parse(c.argsAfter(3)); err != nil {
		return fail(ErrMissingArgument, err.Error(), "Error: "+err.Error())
	}

	log.Info("Starting system prune")

	var removedContainers []domain.Container
	kept := e.state.containers[:0:0]
	for _, ctr := range e.state.containers {
		if ctr.Running() {
			kept = append(kept, ctr)
			continue
		}
		removedContainers = append(removedContainers, ctr)
		ctrLogger := log.WithContainer(util.ShortID(ctr.ID), ctr.Name)
		ctrLogger.Info().Msg("Pruned stopped container")
	}
	e.state.containers = kept

	var removedImages []domain.Image
	var reclaimed int64
	if *all {
		keptImages := e.state.images[:0:0]
		for _, img := range e.state.images {
			if e.state.imageInUse(img) {
				keptImages = append(keptImages, img)
				continue
			}
			size, err := units.FromHumanSize(img.Size)
			imgLogger := log.WithImage(img.ID, img.Ref())
			if err != nil {
				imgLogger.Debug().Err(err).Str("size", img.Size).Msg("Unparseable image size, counting as zero")
				size = 0
			}
			imgLogger.Info().Msgf("Pruned image. Reclaimed %s", util.FormatBytes(size))
			removedImages = append(removedImages, img)
			reclaimed += size
		}
		e.state.images = keptImages
	}

	log.Infof("Prune complete: %d containers, %d images removed. Total space reclaimed: %s",
		len(removedContainers), len(removedImages), util.FormatBytes(reclaimed))

	return succeed(pruneOutput(*all, removedContainers, removedImages, reclaimed))
}

func pruneOutput(all bool, containers []domain.Container, images []domain.Image, reclaimed int64) string {
	var b strings.Builder
	b.WriteString("\nWARNING! This will remove:\n  - all stopped containers\n  - all networks not used by at least one container\n")
	if all {
		b.WriteString("  - all images without at least one container associated to them\n")
	} else {
		b.WriteString("  - all dangling images\n")
	}
	b.WriteString("  - all dangling build cache\n\nAre you sure you want to continue? [y/N] y\n\n")

	b.WriteString("Deleted Containers:\n")
	for _, ctr := range containers {
		b.WriteString(ctr.ID + "\n")
	}
	b.WriteString("Deleted Networks:\n")
	b.WriteString("Deleted Images:\n")
	for _, img := range images {
		fmt.Fprintf(&b, "untagged: %s\ndeleted: sha256:%s\n", img.Ref(), img.ID)
	}
	fmt.Fprintf(&b, "Total reclaimed space: %s\n", units.HumanSize(float64(reclaimed)))
	return b.String()
}
