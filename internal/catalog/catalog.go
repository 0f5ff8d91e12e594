// Package catalog is the static reference table of known Docker command
// signatures, used for fallback recognition and guide text.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Signature describes one known command prefix
type Signature struct {
	Command     string `yaml:"command" json:"command"`
	Description string `yaml:"description" json:"description"`
	Example     string `yaml:"example" json:"example"`
	Category    string `yaml:"category" json:"category"`
}

// Explanation is longer teaching text for a command family
type Explanation struct {
	Command  string   `yaml:"command" json:"command"`
	Text     string   `yaml:"text" json:"text"`
	Examples []string `yaml:"examples" json:"examples"`
}

// Catalog is immutable after construction
type Catalog struct {
	signatures   []Signature
	explanations []Explanation
	categories   []string
}

type document struct {
	Signatures   []Signature   `yaml:"signatures"`
	Explanations []Explanation `yaml:"explanations"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(catalogYAML)
	})
	if defaultErr != nil {
		// The embedded file is part of the binary; failing here is a build defect
		panic(fmt.Sprintf("embedded catalog is invalid: %v", defaultErr))
	}
	return defaultCatalog
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Signatures, doc.Explanations)
}

// New builds a catalog from explicit entries
func New(signatures []Signature, explanations []Explanation) (*Catalog, error) {
	c := &Catalog{
		signatures:   make([]Signature, 0, len(signatures)),
		explanations: make([]Explanation, 0, len(explanations)),
	}

	seen := make(map[string]bool)
	for i, s := range signatures {
		s.Command = strings.TrimSpace(s.Command)
		if s.Command == "" {
			return nil, fmt.Errorf("signature %d has an empty command", i)
		}
		if !seen[s.Category] {
			seen[s.Category] = true
			c.categories = append(c.categories, s.Category)
		}
		c.signatures = append(c.signatures, s)
	}
	for i, e := range explanations {
		e.Command = strings.TrimSpace(e.Command)
		if e.Command == "" {
			return nil, fmt.Errorf("explanation %d has an empty command", i)
		}
		c.explanations = append(c.explanations, e)
	}

	return c, nil
}

// Lookup returns the signature whose command is the longest prefix of
// input. Equal lengths keep declaration order.
func (c *Catalog) Lookup(input string) (Signature, bool) {
	best := -1
	for i, s := range c.signatures {
		if !strings.HasPrefix(input, s.Command) {
			continue
		}
		if best == -1 || len(s.Command) > len(c.signatures[best].Command) {
			best = i
		}
	}
	if best == -1 {
		return Signature{}, false
	}
	return c.signatures[best], true
}

// Explain returns the explanation with the longest matching prefix
func (c *Catalog) Explain(input string) (Explanation, bool) {
	best := -1
	for i, e := range c.explanations {
		if !strings.HasPrefix(input, e.Command) {
			continue
		}
		if best == -1 || len(e.Command) > len(c.explanations[best].Command) {
			best = i
		}
	}
	if best == -1 {
		return Explanation{}, false
	}
	return c.explanations[best], true
}

// Signatures returns every signature in declaration order
func (c *Catalog) Signatures() []Signature {
	out := make([]Signature, len(c.signatures))
	copy(out, c.signatures)
	return out
}

// Categories returns category names in first-seen order
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category returns the signatures of one category
func (c *Catalog) Category(name string) []Signature {
	var out []Signature
	for _, s := range c.signatures {
		if s.Category == name {
			out = append(out, s)
		}
	}
	return out
}
