package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-units"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
	"github.com/MikeO7/HarborSim/pkg/util"
)

// defaultCommands is the display command recorded for well-known images
var defaultCommands = map[string]string{
	"hello-world": "/hello",
	"nginx":       "nginx -g 'daemon off;'",
	"redis":       "redis-server",
	"postgres":    "docker-entrypoint.sh postgres",
	"mysql":       "docker-entrypoint.sh mysqld",
	"node":        "node",
	"python":      "python3",
	"ubuntu":      "/bin/bash",
}

type runOptions struct {
	image   string
	name    string
	ports   []string
	detach  bool
	command []string
}

func parseRunArgs(args []string) (runOptions, error) {
	fs := newFlagSet("run", false)
	detach := fs.BoolP("detach", "d", false, "Run container in background")
	publish := fs.StringArrayP("publish", "p", nil, "Publish a container's port to the host")
	name := fs.String("name", "", "Assign a name to the container")
	fs.StringArrayP("env", "e", nil, "Set environment variables")
	fs.StringArrayP("volume", "v", nil, "Bind mount a volume")
	fs.Bool("rm", false, "Remove the container when it exits")
	fs.BoolP("interactive", "i", false, "Keep STDIN open")
	fs.BoolP("tty", "t", false, "Allocate a pseudo-TTY")
	fs.String("network", "", "Connect a container to a network")

	if err := fs.Parse(args); err != nil {
		return runOptions{}, err
	}

	opts := runOptions{
		name:   *name,
		ports:  *publish,
		detach: *detach,
	}
	if fs.NArg() > 0 {
		opts.image = fs.Arg(0)
		opts.command = fs.Args()[1:]
	}
	return opts, nil
}

func (e *Engine) run(c command) Result {
	opts, err := parseRunArgs(c.argsAfter(2))
	if err != nil {
		return fail(ErrMissingArgument, err.Error(), "Error: "+err.Error())
	}
	if opts.image == "" {
		return fail(ErrMissingArgument, "image", "Error: No image specified")
	}

	if opts.name != "" && e.state.hasName(opts.name) {
		return fail(ErrConflict, opts.name, fmt.Sprintf(
			"Error: Conflict. The container name \"/%s\" is already in use. Remove or rename that container to be able to reuse that name.",
			opts.name))
	}

	ref := parseImageRef(opts.image)
	if !e.state.hasImage(ref) {
		if !e.allow.permits(ref.Repository) {
			return fail(ErrPullDenied, opts.image, fmt.Sprintf(
				"Unable to find image '%s' locally\nPulling from docker hub...\nError: pull access denied for %s, repository does not exist or may require 'docker login'",
				opts.image, opts.image))
		}
		img := e.synthesizeImage(ref)
		e.state.images = append(e.state.images, img)
		imgLogger := log.WithImage(img.ID, img.Ref())
		imgLogger.Info().Str("size", img.Size).Msg("Image fetched implicitly by run")
	}

	name := opts.name
	if name == "" {
		name = e.generateName()
	}

	ctr := domain.Container{
		ID:      e.containerID(),
		Image:   ref.String(),
		Command: containerCommand(ref.Repository, opts.command),
		Created: "Just now",
		Status:  domain.StatusRunning,
		Ports:   strings.Join(opts.ports, ", "),
		Name:    name,
	}
	e.state.containers = append(e.state.containers, ctr)

	ctrLogger := log.WithContainer(util.ShortID(ctr.ID), ctr.Name)
	ctrLogger.Info().Str("image", ctr.Image).Str("ports", ctr.Ports).Msg("Container created")

	return succeed(runOutput(ref, opts.image, ctr.Ports))
}

func containerCommand(repository string, args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	if cmd, ok := defaultCommands[repository]; ok {
		return cmd
	}
	return "/bin/sh"
}

func runOutput(ref imageRef, typed, ports string) string {
	var b strings.Builder
	switch ref.Repository {
	case "hello-world":
		b.WriteString(helloWorldBanner)
		return b.String()
	case "nginx":
		fmt.Fprintf(&b, "Successfully pulled %s\nCreating container...\nContainer started\n", ref.Full())
	default:
		fmt.Fprintf(&b, "Creating container with %s...\nContainer started\n", typed)
	}
	if ports != "" {
		fmt.Fprintf(&b, "Mapped port %s\n", ports)
	}
	return b.String()
}

// synthesizeImage fabricates metadata for an image that was never pulled
func (e *Engine) synthesizeImage(ref imageRef) domain.Image {
	return domain.Image{
		ID:         randomHex(e.src, 12),
		Repository: ref.Repository,
		Tag:        ref.Tag,
		Size:       e.randomSize(),
		Created:    "Just now",
	}
}

// randomSize returns a size between 10MB and 209MB
func (e *Engine) randomSize() string {
	mb := e.src.IntN(200) + 10
	return units.HumanSize(float64(mb) * units.MB)
}

// maxIDAttempts bounds random draws before containerID falls back to a
// counter, so a repeating Source cannot stall the engine
const maxIDAttempts = 16

// containerID draws a unique 64-hex ID. After maxIDAttempts collisions the
// leading 12 digits, the part ps shows, are replaced by a counter.
func (e *Engine) containerID() string {
	id := randomHex(e.src, 64)
	for i := 0; i < maxIDAttempts; i++ {
		if !e.state.hasContainerID(id) {
			return id
		}
		id = randomHex(e.src, 64)
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%012x", n) + id[12:]
		if !e.state.hasContainerID(candidate) {
			return candidate
		}
	}
}

// generateName draws adjective_noun names, suffixing a counter once the
// word lists are exhausted
func (e *Engine) generateName() string {
	pick := e.src.IntN
	for i := 0; i < util.NameSpace()*2; i++ {
		if name := util.RandomName(pick); !e.state.hasName(name) {
			return name
		}
	}
	base := util.RandomName(pick)
	for n := 2; ; n++ {
		if name := base + "_" + strconv.Itoa(n); !e.state.hasName(name) {
			return name
		}
	}
}
