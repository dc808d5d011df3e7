// Package registry maps model names to lazily constructed backend instances.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/book-expert/logger"

	"github.com/book-expert/neo-tts/internal/core"
)

// Factory constructs a backend. Factories run at most once per model name; a
// failed construction is reported to the caller and retried on the next Get.
type Factory func(ctx context.Context) (core.Backend, error)

// Registry holds backend factories and caches the instances they produce.
// Initialization runs under the registry lock, so concurrent first use of a
// model cannot double-load it.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	backends  map[string]core.Backend
	log       *logger.Logger
}

// New creates an empty registry.
func New(log *logger.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		backends:  make(map[string]core.Backend),
		log:       log,
	}
}

// Register adds a named backend factory. Registration happens at startup,
// before the registry is shared.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
}

// Models returns the registered model names in sorted order.
func (r *Registry) Models() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Get returns the cached backend for a model name, constructing it on first
// use. It fails with core.ErrUnknownModel for unregistered names and wraps
// factory failures with core.ErrBackendLoadFailure.
func (r *Registry) Get(ctx context.Context, name string) (core.Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if backend, ok := r.backends[name]; ok {
		return backend, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownModel, name)
	}

	backend, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w for %q: %w", core.ErrBackendLoadFailure, name, err)
	}

	r.backends[name] = backend
	r.log.Info("Loaded backend %q", name)

	return backend, nil
}
