// Package catalog maps asset types to display names, validation schemas,
// declared versions, and migration steps. The catalog is data: adding support
// for a new asset type means registering a schema and serializer, not editing
// a switch statement.
package catalog

import (
	"sync"

	"github.com/vehement/assetdb/internal/asset"
)

// CompatibilityPolicy decides whether an asset declaring version a can be
// used against a catalog expecting version b. The rule is a product decision;
// MajorEquality is the default.
type CompatibilityPolicy func(a, b asset.Version) bool

// MajorEquality treats two versions as compatible iff their major components
// match.
func MajorEquality(a, b asset.Version) bool {
	return a.Major == b.Major
}

// Catalog holds per-type registrations. Safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	names      map[asset.Type]string
	schemas    map[asset.Type]*Schema
	migrations map[asset.Type][]Step
	policy     CompatibilityPolicy
}

// New creates an empty catalog with the MajorEquality policy.
func New() *Catalog {
	return &Catalog{
		names:      make(map[asset.Type]string),
		schemas:    make(map[asset.Type]*Schema),
		migrations: make(map[asset.Type][]Step),
		policy:     MajorEquality,
	}
}

// SetCompatibilityPolicy replaces the version-compatibility rule.
// A nil policy restores MajorEquality.
func (c *Catalog) SetCompatibilityPolicy(p CompatibilityPolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		p = MajorEquality
	}
	c.policy = p
}

// Compatible applies the configured policy.
func (c *Catalog) Compatible(a, b asset.Version) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy(a, b)
}

// TypeName returns the human-readable name for a type. Types without a
// registered name fall back to their canonical lowercase identifier.
func (c *Catalog) TypeName(t asset.Type) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.names[t]; ok {
		return name
	}
	return t.String()
}

// TypeFor maps a name to its asset type, falling back to asset.ParseType.
// Unrecognized names return asset.TypeUnknown; this never fails.
func (c *Catalog) TypeFor(name string) asset.Type {
	c.mu.RLock()
	for t, display := range c.names {
		if display == name {
			c.mu.RUnlock()
			return t
		}
	}
	c.mu.RUnlock()
	return asset.ParseType(name)
}

// RegisterTypeName sets the display name for a type. Registration is
// idempotent per (type, name); re-registering replaces the previous name.
func (c *Catalog) RegisterTypeName(t asset.Type, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[t] = name
}

// SchemaFor returns the validation schema for a type, or false when none is
// registered.
func (c *Catalog) SchemaFor(t asset.Type) (*Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[t]
	return s, ok
}

// RegisterSchema installs the schema for a type. Last write wins.
func (c *Catalog) RegisterSchema(t asset.Type, s *Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[t] = s
}

// LatestVersion returns the version declared by the type's schema, or false
// when the type has no schema.
func (c *Catalog) LatestVersion(t asset.Type) (asset.Version, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[t]
	if !ok {
		return asset.Version{}, false
	}
	return s.Version, true
}

// RegisterMigration appends a migration step for a type. Steps accumulate;
// duplicate registrations are caller error and are not deduplicated here.
func (c *Catalog) RegisterMigration(t asset.Type, step Step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.migrations[t] = append(c.migrations[t], step)
}

// MigrationsFor returns a copy of the registered steps for a type, in
// registration order.
func (c *Catalog) MigrationsFor(t asset.Type) []Step {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Step(nil), c.migrations[t]...)
}
