package relations

import (
	"context"
	"sync"
)

// Source executes model operations against one backing store. A source
// registers under a name and schemas reference it by that name.
type Source interface {
	Name() string
	Define(schema *Schema) ([]string, error)
	Create(ctx context.Context, model *Model) (*Model, error)
	Retrieve(ctx context.Context, model *Model, verify bool) (*Model, error)
	Update(ctx context.Context, model *Model) (int64, error)
	Delete(ctx context.Context, model *Model) (int64, error)
	Labels(ctx context.Context, model *Model) (*Labels, error)
}

// Registry maps source names to sources. The zero value is not usable, use
// NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds the source under its name, replacing any previous one.
func (r *Registry) Register(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[src.Name()] = src
}

// Lookup returns the source registered under name.
func (r *Registry) Lookup(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.sources[name]

	return src, ok
}

// Deregister removes the source registered under name.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sources, name)
}

// DefaultRegistry holds sources for schemas built without WithRegistry.
var DefaultRegistry = NewRegistry()

// Define returns the schema's definition statements from its source.
func (s *Schema) Define() ([]string, error) {
	src, ok := s.Registry().Lookup(s.Source)
	if !ok {
		return nil, NewModelError(s.Name, ErrNoSource)
	}

	return src.Define(s)
}
