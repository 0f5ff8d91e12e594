package sim

import "strings"

// DefaultAllowImages are the repositories run may fetch implicitly
var DefaultAllowImages = []string{
	"hello-world", "nginx", "ubuntu", "node", "python", "redis", "postgres", "mysql",
}

// allowList holds the repository patterns run may pull on demand. An image
// already present locally never consults it.
type allowList []string

// permits reports whether repository may be fetched. Official images match
// with or without the library/ namespace.
func (a allowList) permits(repository string) bool {
	repository = strings.TrimPrefix(repository, "library/")
	for _, p := range a {
		if matchesPattern(repository, strings.TrimPrefix(p, "library/")) {
			return true
		}
	}
	return false
}

// matchesPattern compares one repository with one pattern: "*" alone,
// a trailing "*" for a namespace such as "bitnami/*", a leading "*" for a
// variant such as "*-alpine", otherwise the exact name
func matchesPattern(repository, pattern string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(repository, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(repository, strings.TrimPrefix(pattern, "*"))
	default:
		return repository == pattern
	}
}
