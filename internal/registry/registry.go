package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/nodeflow/internal/manifest"
	"github.com/specialistvlad/nodeflow/internal/node"
)

// Module is the interface compiled node packages implement to register
// themselves with a registry instance.
type Module interface {
	Register(r *Registry) error
}

// Options control how a node is registered.
type Options struct {
	// Singleton retains the instance constructed at registration time and
	// reuses it for every Instance call. Transient nodes (the default) are
	// constructed fresh per call.
	Singleton bool

	// Source is a provenance tag, e.g. "builtin" or "plugin".
	Source string
}

// Registration binds node metadata to its constructible implementation.
type Registration struct {
	Metadata  node.Metadata
	Factory   node.Factory
	Singleton bool
	Source    string
}

// Registry holds all registered nodes and discovered manifest definitions
// for a single application instance.
type Registry struct {
	mu         sync.RWMutex
	nodes      map[string]*Registration
	singletons map[string]node.Node
	manifests  map[string]*manifest.Node
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		nodes:      make(map[string]*Registration),
		singletons: make(map[string]node.Node),
		manifests:  make(map[string]*manifest.Node),
	}
}

// Register constructs one instance through the factory to read its
// metadata, validates the mandatory fields, and stores the registration.
// Re-registering the same id with an identical version is an idempotent
// no-op; the same id with a different version is an error.
func (r *Registry) Register(factory node.Factory, opts Options) error {
	if factory == nil {
		return &NodeRegistrationError{Reason: "factory must not be nil"}
	}

	instance := factory()
	if instance == nil {
		return &NodeRegistrationError{Reason: "factory returned a nil node"}
	}

	meta := instance.Metadata()
	if err := meta.Validate(); err != nil {
		return &NodeRegistrationError{NodeID: meta.ID, Reason: err.Error()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.nodes[meta.ID]; ok {
		if existing.Metadata.Version == meta.Version {
			return nil
		}
		return &NodeRegistrationError{
			NodeID: meta.ID,
			Reason: fmt.Sprintf("already registered with version %s (attempted %s)", existing.Metadata.Version, meta.Version),
		}
	}

	r.nodes[meta.ID] = &Registration{
		Metadata:  meta,
		Factory:   factory,
		Singleton: opts.Singleton,
		Source:    opts.Source,
	}
	if opts.Singleton {
		r.singletons[meta.ID] = instance
	}
	return nil
}

// RegisterAll performs best-effort bulk registration: it continues past
// individual failures and reports the number of successes together with the
// joined errors, which are observable but non-fatal to the batch.
func (r *Registry) RegisterAll(factories []node.Factory, opts Options) (int, error) {
	var errs []error
	registered := 0
	for _, factory := range factories {
		if err := r.Register(factory, opts); err != nil {
			errs = append(errs, err)
			continue
		}
		registered++
	}
	return registered, errors.Join(errs...)
}

// Instance returns a node instance for the id: the retained one for
// singleton registrations, a fresh construction otherwise.
func (r *Registry) Instance(id string) (node.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.nodes[id]
	if !ok {
		return nil, &NodeNotFoundError{NodeID: id}
	}
	if reg.Singleton {
		return r.singletons[id], nil
	}
	return reg.Factory(), nil
}

// Metadata returns the registered metadata for the id.
func (r *Registry) Metadata(id string) (node.Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.nodes[id]
	if !ok {
		return node.Metadata{}, &NodeNotFoundError{NodeID: id}
	}
	return reg.Metadata, nil
}

// List returns the metadata of every registered node, sorted by id.
func (r *Registry) List() []node.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]node.Metadata, 0, len(r.nodes))
	for _, reg := range r.nodes {
		out = append(out, reg.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListBySource returns the metadata of every node registered under the
// given provenance tag, sorted by id.
func (r *Registry) ListBySource(source string) []node.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []node.Metadata
	for _, reg := range r.nodes {
		if reg.Source == source {
			out = append(out, reg.Metadata)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Has reports whether the id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.nodes[id]
	return ok
}

// Unregister removes a node from the catalogue.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nodes[id]; !ok {
		return &NodeNotFoundError{NodeID: id}
	}
	delete(r.nodes, id)
	delete(r.singletons, id)
	delete(r.manifests, id)
	return nil
}

// Clear removes every registration and manifest.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = make(map[string]*Registration)
	r.singletons = make(map[string]node.Node)
	r.manifests = make(map[string]*manifest.Node)
}

// Size returns the number of registered nodes.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
