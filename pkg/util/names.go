package util

import "github.com/docker/docker/pkg/stringid"

var (
	adjectives = []string{"bold", "calm", "eager", "kind", "proud", "brave", "wise"}
	nouns      = []string{"panda", "tiger", "eagle", "wolf", "bear", "fox", "hawk"}
)

// RandomName builds an adjective_noun container name. pick must return a
// value in [0, n).
func RandomName(pick func(n int) int) string {
	return adjectives[pick(len(adjectives))] + "_" + nouns[pick(len(nouns))]
}

// NameSpace is the number of distinct names RandomName can produce
func NameSpace() int {
	return len(adjectives) * len(nouns)
}

// ShortID returns the 12 character display form of an ID
func ShortID(id string) string {
	return stringid.TruncateID(id)
}
