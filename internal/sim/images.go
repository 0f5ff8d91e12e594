package sim

import (
	"fmt"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
)

func (e *Engine) pull(c command) Result {
	fs := newFlagSet("pull", true)
	fs.BoolP("all-tags", "a", false, "Download all tagged images")
	fs.BoolP("quiet", "q", false, "Suppress verbose output")
	fs.String("platform", "", "Set platform")

	arg, err := firstArg(fs, c.argsAfter(2))
	if err != nil || arg == "" {
		return fail(ErrMissingArgument, "image", "Error: No image specified")
	}
	ref := parseImageRef(arg)

	if e.state.hasExactImage(ref) {
		return succeed(fmt.Sprintf("%s: Pulling from %s\nDigest: %s\nStatus: Image is up to date for %s",
			ref.Tag, ref.Repository, pullDigest, ref.Full()))
	}

	img := domain.Image{
		ID:         randomHex(e.src, 12),
		Repository: ref.Repository,
		Tag:        ref.Tag,
		Size:       e.randomSize(),
		Created:    "Just now",
	}
	digest := "sha256:" + randomHex(e.src, 64)
	e.state.images = append(e.state.images, img)

	imgLogger := log.WithImage(img.ID, img.Ref())
	imgLogger.Info().Str("digest", digest).Msg("Image pulled")

	return succeed(fmt.Sprintf("%s: Pulling from %s\nDigest: %s\nStatus: Downloaded newer image for %s",
		ref.Tag, ref.Repository, digest, ref.Full()))
}

func (e *Engine) rmi(c command) Result {
	fs := newFlagSet("rmi", true)
	force := fs.BoolP("force", "f", false, "Force removal of the image")
	fs.Bool("no-prune", false, "Do not delete untagged parents")

	ident, err := firstArg(fs, c.argsAfter(2))
	if err != nil || ident == "" {
		return fail(ErrMissingArgument, "image", "Error: No image specified")
	}

	i := e.state.findImage(ident)
	if i < 0 {
		return fail(ErrNotFound, ident, "Error: No such image: "+ident)
	}
	img := e.state.images[i]
	if e.state.imageInUse(img) && !*force {
		return fail(ErrConflict, ident, fmt.Sprintf(
			"Error: conflict: unable to remove repository %s (must force) - container is using its referenced image",
			ident))
	}
	e.state.removeImage(i)

	imgLogger := log.WithImage(img.ID, img.Ref())
	imgLogger.Info().Bool("force", *force).Msg("Image removed")

	return succeed(fmt.Sprintf("Untagged: %s\nDeleted: %s", img.Ref(), ident))
}
