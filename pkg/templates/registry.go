// Package templates provides the follow-up question template registry used
// when a deepening branch is opened.
//
// The registry is an explicitly constructed value with a deterministic
// lifecycle: build it once per process (or per test) from a literal map or a
// YAML file and inject it where needed. There is no lazily populated global
// cache.
package templates

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Template is a single follow-up prompt for a branch category.
type Template struct {
	Text string `yaml:"template" json:"template"`
}

// Registry maps branch categories (evasive plus each theme id) to their
// follow-up templates.
type Registry struct {
	categories map[string][]Template
}

// New builds a registry from a category map. Categories with empty
// collections are kept but will report no templates, which callers treat as
// a recoverable skip-branch condition.
func New(categories map[string][]Template) *Registry {
	copied := make(map[string][]Template, len(categories))
	for cat, list := range categories {
		copied[cat] = append([]Template(nil), list...)
	}
	return &Registry{categories: copied}
}

// Load reads a registry from a YAML file shaped as:
//
//	evasive:
//	  - template: "..."
//	ansia_panico:
//	  - template: "..."
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	var raw map[string][]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse templates file %s: %w", path, err)
	}
	return New(raw), nil
}

// Pick selects one template uniformly at random among those registered for
// the category. The second return is false when the category is missing or
// empty.
func (r *Registry) Pick(category string, rng *rand.Rand) (Template, bool) {
	list := r.categories[category]
	if len(list) == 0 {
		return Template{}, false
	}
	return list[rng.Intn(len(list))], true
}

// Has reports whether the category holds at least one template.
func (r *Registry) Has(category string) bool {
	return len(r.categories[category]) > 0
}

// Categories returns the registered category tags.
func (r *Registry) Categories() []string {
	cats := make([]string, 0, len(r.categories))
	for cat := range r.categories {
		cats = append(cats, cat)
	}
	return cats
}
