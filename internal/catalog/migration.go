package catalog

import "github.com/vehement/assetdb/internal/asset"

// Transform rewrites a document from one version's shape to another's.
// Transforms must be pure: they return a new or modified document and never
// touch registry state.
type Transform func(doc asset.Document) (asset.Document, error)

// Step is a single directed migration edge in a type's version graph.
// Multiple steps may share a FromVersion; the catalog owner is responsible
// for keeping at least one path to the latest version.
type Step struct {
	From        asset.Version
	To          asset.Version
	Description string
	Apply       Transform
}
