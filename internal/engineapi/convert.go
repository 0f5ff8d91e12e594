// Package engineapi presents simulated state in the Docker Engine API list
// shapes so tools that read /containers/json and /images/json can render it.
package engineapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
)

// Containers converts snapshot containers. Stopped ones are only included
// when all is set, matching the list endpoint.
func Containers(snap domain.Snapshot, all bool, now time.Time) []container.Summary {
	out := make([]container.Summary, 0, len(snap.Containers))
	for _, c := range snap.Containers {
		if !all && !c.Running() {
			continue
		}

		s := container.Summary{
			ID:      c.ID,
			Names:   []string{"/" + c.Name},
			Image:   c.Image,
			ImageID: imageIDFor(snap.Images, c.Image),
			Command: c.Command,
			Created: CreatedAt(c.Created, now),
			Ports:   ParsePorts(c.Ports),
			Labels:  map[string]string{},
		}
		if c.Running() {
			s.State = container.StateRunning
			s.Status = "Up"
		} else {
			s.State = container.StateExited
			s.Status = "Exited (0)"
		}
		out = append(out, s)
	}
	return out
}

// Images converts snapshot images
func Images(snap domain.Snapshot, now time.Time) []image.Summary {
	out := make([]image.Summary, 0, len(snap.Images))
	for _, img := range snap.Images {
		size, err := units.FromHumanSize(img.Size)
		if err != nil {
			size = 0
		}

		var users int64
		for _, c := range snap.Containers {
			if c.Image == img.Ref() || c.Image == img.Repository {
				users++
			}
		}

		out = append(out, image.Summary{
			ID:         "sha256:" + img.ID,
			RepoTags:   []string{img.Ref()},
			Created:    CreatedAt(img.Created, now),
			Size:       size,
			Containers: users,
			Labels:     map[string]string{},
		})
	}
	return out
}

// imageIDFor resolves a container's image reference to a full image ID
func imageIDFor(images []domain.Image, ref string) string {
	for _, img := range images {
		if img.Ref() == ref {
			return "sha256:" + img.ID
		}
	}
	for _, img := range images {
		if img.Repository == ref {
			return "sha256:" + img.ID
		}
	}
	return ""
}

// ParsePorts turns the simulator's "8080:80, 443:443/udp" form into port
// records. Unparseable specs are logged and skipped.
func ParsePorts(spec string) []container.Port {
	if strings.TrimSpace(spec) == "" {
		return []container.Port{}
	}

	var ports []container.Port
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		mappings, err := nat.ParsePortSpec(raw)
		if err != nil {
			l := log.Logger()
			l.Debug().Err(err).Str("port", raw).Msg("Skipping unparseable port spec")
			continue
		}
		for _, m := range mappings {
			p := container.Port{
				IP:          m.Binding.HostIP,
				PrivatePort: uint16(m.Port.Int()),
				Type:        m.Port.Proto(),
			}
			if hp, err := strconv.ParseUint(m.Binding.HostPort, 10, 16); err == nil {
				p.PublicPort = uint16(hp)
				if p.IP == "" {
					p.IP = "0.0.0.0"
				}
			}
			ports = append(ports, p)
		}
	}
	return ports
}

var relativeUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// CreatedAt converts the simulator's relative creation text ("Just now",
// "3 months ago", "an hour ago") to a Unix timestamp relative to now.
// Anything else maps to now.
func CreatedAt(rel string, now time.Time) int64 {
	fields := strings.Fields(strings.ToLower(rel))
	if len(fields) != 3 || fields[2] != "ago" {
		return now.Unix()
	}

	n := 1
	if fields[0] != "a" && fields[0] != "an" {
		v, err := strconv.Atoi(fields[0])
		if err != nil {
			return now.Unix()
		}
		n = v
	}

	unit, ok := relativeUnits[strings.TrimSuffix(fields[1], "s")]
	if !ok {
		return now.Unix()
	}
	return now.Add(-time.Duration(n) * unit).Unix()
}
