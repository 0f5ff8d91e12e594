package sim

import (
	"strings"

	"github.com/MikeO7/HarborSim/internal/domain"
)

// DefaultImages seed a fresh session
var DefaultImages = []domain.Image{
	{ID: "9c7a54a9a43c", Repository: "hello-world", Tag: "latest", Size: "13.3kB", Created: "3 months ago"},
	{ID: "a6bd71f48f68", Repository: "nginx", Tag: "latest", Size: "187MB", Created: "3 months ago"},
}

// state is the mutable model. Only the Engine touches it.
type state struct {
	containers []domain.Container
	images     []domain.Image
}

func (s *state) snapshot() domain.Snapshot {
	return domain.Snapshot{Containers: s.containers, Images: s.images}.Clone()
}

func (s *state) restore(snap domain.Snapshot) {
	c := snap.Clone()
	s.containers = c.Containers
	s.images = c.Images
}

// findContainer matches an ID prefix or an exact name, first hit wins
func (s *state) findContainer(ident string) int {
	if ident == "" {
		return -1
	}
	for i, c := range s.containers {
		if strings.HasPrefix(c.ID, ident) || c.Name == ident {
			return i
		}
	}
	return -1
}

func (s *state) hasContainerID(id string) bool {
	for _, c := range s.containers {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *state) hasName(name string) bool {
	for _, c := range s.containers {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (s *state) removeContainer(i int) {
	s.containers = append(s.containers[:i:i], s.containers[i+1:]...)
}

// hasImage reports whether ref is available locally. A bare repository
// matches any tag.
func (s *state) hasImage(ref imageRef) bool {
	for _, img := range s.images {
		if img.Repository != ref.Repository {
			continue
		}
		if !ref.Explicit || img.Tag == ref.Tag {
			return true
		}
	}
	return false
}

// hasExactImage reports whether the repository/tag pair exists
func (s *state) hasExactImage(ref imageRef) bool {
	for _, img := range s.images {
		if img.Repository == ref.Repository && img.Tag == ref.Tag {
			return true
		}
	}
	return false
}

// findImage matches an ID prefix, an exact repository:tag, or the
// repository with the default tag
func (s *state) findImage(ident string) int {
	if ident == "" {
		return -1
	}
	ref := parseImageRef(ident)
	for i, img := range s.images {
		if strings.HasPrefix(img.ID, ident) ||
			img.Ref() == ident ||
			(img.Repository == ref.Repository && img.Tag == ref.Tag) {
			return i
		}
	}
	return -1
}

// imageInUse reports whether any container references img
func (s *state) imageInUse(img domain.Image) bool {
	for _, c := range s.containers {
		if c.Image == img.Ref() || c.Image == img.Repository {
			return true
		}
	}
	return false
}

func (s *state) removeImage(i int) {
	s.images = append(s.images[:i:i], s.images[i+1:]...)
}

func (s *state) countRunning() int {
	n := 0
	for _, c := range s.containers {
		if c.Running() {
			n++
		}
	}
	return n
}
