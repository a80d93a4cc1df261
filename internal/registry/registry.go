// Package registry is the in-memory database of known assets: UUID and path
// indices, a reference table, and the dependency graph, all guarded by one
// registry-wide mutex. No operation here is hot enough to justify finer
// locking, and the single lock rules out lost updates between concurrent
// imports and queries.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/catalog"
	"github.com/vehement/assetdb/internal/codec"
	"github.com/vehement/assetdb/internal/log"
	"github.com/vehement/assetdb/internal/migration"
)

var (
	// ErrNotFound indicates no asset with the given identifier or path.
	ErrNotFound = errors.New("asset not registered")
	// ErrDuplicateID indicates an identifier collision on registration.
	ErrDuplicateID = errors.New("identifier already registered")
	// ErrInvalidAsset indicates an asset missing its minimum identity.
	ErrInvalidAsset = errors.New("asset invalid for registration")
)

// Registry holds every known asset. A Reference exists for every known
// identifier; a materialized Asset exists only for loaded ones.
type Registry struct {
	mu     sync.Mutex
	codec  *codec.Codec
	engine *migration.Engine
	tracer trace.Tracer
	store  IndexStore

	settings      ImportSettings
	caseSensitive bool

	assets  map[string]*asset.Asset
	refs    map[string]*asset.Reference
	byPath  map[string]string
	graph   *Graph
	reloads int
	pending int
}

// Option configures a Registry.
type Option func(*Registry)

// WithTracer sets the tracer used for import and scan spans.
func WithTracer(tr trace.Tracer) Option {
	return func(r *Registry) { r.tracer = tr }
}

// WithIndexStore sets the persistence backend for SaveIndex/LoadIndex.
func WithIndexStore(store IndexStore) Option {
	return func(r *Registry) { r.store = store }
}

// WithCaseSensitiveSearch makes SearchByName match case-sensitively.
func WithCaseSensitiveSearch() Option {
	return func(r *Registry) { r.caseSensitive = true }
}

// WithDefaultImportSettings replaces the settings used when callers pass
// none.
func WithDefaultImportSettings(s ImportSettings) Option {
	return func(r *Registry) { r.settings = s }
}

// New creates an empty registry. The codec and migration engine must share
// the same catalog.
func New(cat *catalog.Catalog, cdc *codec.Codec, opts ...Option) *Registry {
	r := &Registry{
		codec:    cdc,
		engine:   migration.NewEngine(cat),
		tracer:   noop.NewTracerProvider().Tracer("registry"),
		settings: DefaultImportSettings(),
		assets:   make(map[string]*asset.Asset),
		refs:     make(map[string]*asset.Reference),
		byPath:   make(map[string]string),
		graph:    NewGraph(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an in-memory asset to all three indices and refreshes its
// dependency edges. It fails on identifier collisions and on assets missing
// type or identifier; a path collision with a different identifier is also a
// failure, since path to identifier must stay a bijection.
func (r *Registry) Register(a *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.registerLocked(a); err != nil {
		return err
	}
	r.refreshEdgesLocked(a)
	return nil
}

func (r *Registry) registerLocked(a *asset.Asset) error {
	if !a.Valid() {
		return fmt.Errorf("%w: type=%v id=%q", ErrInvalidAsset, a.Metadata.Type, a.Metadata.ID)
	}
	id := a.Metadata.ID
	if _, exists := r.refs[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	if a.Path != "" {
		if other, exists := r.byPath[a.Path]; exists && other != id {
			return fmt.Errorf("path %s already registered to %s", a.Path, other)
		}
	}

	r.storeLocked(a)

	log.Info(log.CatRegistry, "registered asset",
		"id", id, "type", a.Metadata.Type, "path", a.Path)
	return nil
}

// storeLocked writes the asset into the indices, overwriting any previous
// entry for the same identifier.
func (r *Registry) storeLocked(a *asset.Asset) {
	id := a.Metadata.ID
	if prev, ok := r.refs[id]; ok && prev.Path != "" && prev.Path != a.Path {
		delete(r.byPath, prev.Path)
	}

	r.assets[id] = a
	r.refs[id] = &asset.Reference{
		ID:         id,
		Type:       a.Metadata.Type,
		Name:       a.Metadata.Name,
		Path:       a.Path,
		Tags:       append([]string(nil), a.Metadata.Tags...),
		Loaded:     true,
		ModifiedAt: time.Now(),
	}
	if a.Path != "" {
		r.byPath[a.Path] = id
	}
}

// refreshEdgesLocked re-derives this asset's outgoing dependency edges.
func (r *Registry) refreshEdgesLocked(a *asset.Asset) {
	deps := codec.ExtractDependencies(a, lockedPathIndex{r})
	r.graph.RefreshAsset(a.Metadata.ID, deps)
}

// Unregister removes the asset from all indices and strips its edges from
// the dependency graph in both directions. Removing an unknown identifier
// returns ErrNotFound.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.refs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(r.assets, id)
	delete(r.refs, id)
	if ref.Path != "" {
		delete(r.byPath, ref.Path)
	}
	r.graph.RemoveNode(id)

	log.Info(log.CatRegistry, "unregistered asset", "id", id, "path", ref.Path)
	return nil
}

// Get returns the materialized asset for id.
func (r *Registry) Get(id string) (*asset.Asset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	return a, ok
}

// GetByPath returns the materialized asset registered at path.
func (r *Registry) GetByPath(path string) (*asset.Asset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPath[path]
	if !ok {
		return nil, false
	}
	a, ok := r.assets[id]
	return a, ok
}

// Reference returns the bookkeeping record for id, loaded or not.
func (r *Registry) Reference(id string) (asset.Reference, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.refs[id]
	if !ok {
		return asset.Reference{}, false
	}
	return *ref, true
}

// IDForPath resolves a registered path to its identifier. Satisfies
// codec.PathIndex for external callers.
func (r *Registry) IDForPath(path string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPath[path]
	return id, ok
}

// lockedPathIndex reads the path index without taking the mutex; only for
// use from methods that already hold it.
type lockedPathIndex struct{ r *Registry }

func (l lockedPathIndex) IDForPath(path string) (string, bool) {
	id, ok := l.r.byPath[path]
	return id, ok
}

// GetAssetsByType returns references for every asset of the given type.
func (r *Registry) GetAssetsByType(t asset.Type) []asset.Reference {
	return r.selectRefs(func(ref *asset.Reference) bool {
		return ref.Type == t
	})
}

// GetAssetsByTag returns references for every asset carrying the tag.
func (r *Registry) GetAssetsByTag(tag string) []asset.Reference {
	return r.selectRefs(func(ref *asset.Reference) bool {
		for _, t := range ref.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// SearchByName returns references whose name contains the query as a
// substring. Matching is case-insensitive unless the registry was built with
// WithCaseSensitiveSearch.
func (r *Registry) SearchByName(query string) []asset.Reference {
	match := func(name string) bool {
		return strings.Contains(name, query)
	}
	if !r.caseSensitive {
		lower := strings.ToLower(query)
		match = func(name string) bool {
			return strings.Contains(strings.ToLower(name), lower)
		}
	}
	return r.selectRefs(func(ref *asset.Reference) bool {
		return match(ref.Name)
	})
}

// ListAll returns every reference, sorted by name then identifier.
func (r *Registry) ListAll() []asset.Reference {
	return r.selectRefs(func(*asset.Reference) bool { return true })
}

// ListRecent returns up to n references ordered by most recent registration
// or reload first.
func (r *Registry) ListRecent(n int) []asset.Reference {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]asset.Reference, 0, len(r.refs))
	for _, ref := range r.refs {
		out = append(out, *ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModifiedAt.Equal(out[j].ModifiedAt) {
			return out[i].ModifiedAt.After(out[j].ModifiedAt)
		}
		return out[i].ID < out[j].ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// selectRefs snapshots references matching the predicate, sorted by name
// then identifier for stable listings.
func (r *Registry) selectRefs(keep func(*asset.Reference) bool) []asset.Reference {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []asset.Reference
	for _, ref := range r.refs {
		if keep(ref) {
			out = append(out, *ref)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AddTag appends a tag to the asset's metadata if not already present.
func (r *Registry) AddTag(id, tag string) error {
	return r.mutateTags(id, func(tags []string) []string {
		for _, t := range tags {
			if t == tag {
				return tags
			}
		}
		return append(tags, tag)
	})
}

// RemoveTag removes a tag from the asset's metadata.
func (r *Registry) RemoveTag(id, tag string) error {
	return r.mutateTags(id, func(tags []string) []string {
		out := tags[:0]
		for _, t := range tags {
			if t != tag {
				out = append(out, t)
			}
		}
		return out
	})
}

// SetTags replaces the asset's tag list.
func (r *Registry) SetTags(id string, tags []string) error {
	return r.mutateTags(id, func([]string) []string {
		return append([]string(nil), tags...)
	})
}

func (r *Registry) mutateTags(id string, fn func([]string) []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a.Metadata.Tags = fn(a.Metadata.Tags)
	r.refs[id].Tags = append([]string(nil), a.Metadata.Tags...)
	return nil
}

// SetProperty sets a custom string property on the asset's metadata.
func (r *Registry) SetProperty(id, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if a.Metadata.Properties == nil {
		a.Metadata.Properties = make(map[string]string)
	}
	a.Metadata.Properties[key] = value
	return nil
}

// Property reads a custom string property from the asset's metadata.
func (r *Registry) Property(id, key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[id]
	if !ok {
		return "", false
	}
	v, ok := a.Metadata.Properties[key]
	return v, ok
}

// GetDependencies returns the asset's direct dependencies.
func (r *Registry) GetDependencies(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph.Dependencies(id)
}

// GetDependents returns the assets that directly depend on id.
func (r *Registry) GetDependents(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph.Dependents(id)
}

// DependencyTree returns everything id depends on transitively, in
// breadth-first order. Safe on cyclic graphs.
func (r *Registry) DependencyTree(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph.TransitiveDependencies(id)
}

// HasCircularDependency reports whether id participates in a dependency
// cycle. Cycles are tolerated, not rejected; this exists so tooling can warn.
func (r *Registry) HasCircularDependency(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph.HasCycle(id)
}

// BuildDependencyGraph clears and recomputes every edge from the loaded
// assets' extracted dependencies. Used after bulk imports and after loading
// a persisted index.
func (r *Registry) BuildDependencyGraph() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.graph.Clear()
	for _, a := range r.assets {
		r.refreshEdgesLocked(a)
	}
	log.Info(log.CatRegistry, "rebuilt dependency graph",
		"assets", len(r.assets), "edges", r.graph.EdgeCount())
}
