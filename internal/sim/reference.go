package sim

import (
	"strings"

	"github.com/distribution/reference"

	"github.com/MikeO7/HarborSim/internal/domain"
)

// imageRef is a parsed repository[:tag] argument
type imageRef struct {
	Repository string
	Tag        string

	// Explicit is false when the tag was defaulted
	Explicit bool
}

// String renders the reference the way containers record it: the bare
// repository when no tag was given, repository:tag otherwise
func (r imageRef) String() string {
	if !r.Explicit {
		return r.Repository
	}
	return r.Repository + ":" + r.Tag
}

// Full always includes the tag
func (r imageRef) Full() string {
	return r.Repository + ":" + r.Tag
}

// parseImageRef normalises through the distribution reference grammar
// (docker.io/library/nginx -> nginx) and falls back to a plain split for
// input the grammar rejects.
func parseImageRef(s string) imageRef {
	if named, err := reference.ParseNormalizedNamed(s); err == nil {
		ref := imageRef{Repository: reference.FamiliarName(named), Tag: domain.DefaultTag}
		if tagged, ok := named.(reference.Tagged); ok {
			ref.Tag = tagged.Tag()
			ref.Explicit = true
		}
		return ref
	}

	if i := strings.LastIndex(s, ":"); i > strings.LastIndex(s, "/") && i < len(s)-1 {
		return imageRef{Repository: s[:i], Tag: s[i+1:], Explicit: true}
	}
	return imageRef{Repository: strings.TrimSuffix(s, ":"), Tag: domain.DefaultTag}
}
