package engine

import (
	"sort"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// Constructor builds an item of one widget kind.
type Constructor func(rec model.LayoutRecord) *Item

// Registry maps widget kinds to constructors. Unknown kinds degrade to a
// placeholder that keeps the record's data intact.
type Registry struct {
	ctors   map[string]Constructor
	onBuild func(*Item)
}

// NewRegistry returns a registry that knows the base kind.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}
	r.Register(model.KindBase, ItemFromRecord)
	return r
}

// Register binds kind to ctor, replacing any earlier binding.
func (r *Registry) Register(kind string, ctor Constructor) {
	r.ctors[kind] = ctor
}

// Known reports whether kind has a constructor.
func (r *Registry) Known(kind string) bool {
	_, ok := r.ctors[kind]
	return ok
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// OnBuild registers fn to run on every item Build returns, placeholders
// included.
func (r *Registry) OnBuild(fn func(*Item)) {
	r.onBuild = fn
}

// Build constructs the item for rec.
func (r *Registry) Build(rec model.LayoutRecord) *Item {
	var item *Item
	if ctor, ok := r.ctors[rec.Kind]; ok {
		item = ctor(rec)
	}
	if item == nil {
		item = placeholder(rec)
	}
	if r.onBuild != nil {
		r.onBuild(item)
	}
	return item
}

// Factory returns Build as a Factory.
func (r *Registry) Factory() Factory {
	return r.Build
}
