// Package migration upgrades asset documents across schema versions using the
// migration steps registered in the catalog. Upgrades run step by step along
// the shortest path from the document's version to the type's latest.
package migration

import (
	"errors"
	"fmt"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/catalog"
	"github.com/vehement/assetdb/internal/log"
)

// ErrMigrationGap is returned when no chain of registered steps connects the
// document's version to the target version.
var ErrMigrationGap = errors.New("no migration path")

// Engine resolves and applies migration paths for a catalog's types.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates a migration engine over the given catalog.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// FindPath returns the shortest chain of steps that takes a document of the
// given type from one version to another. Matching is on exact version
// strings; compatibility policies do not blur step endpoints. A from == to
// request returns an empty path.
func (e *Engine) FindPath(t asset.Type, from, to asset.Version) ([]catalog.Step, error) {
	if from == to {
		return nil, nil
	}

	steps := e.catalog.MigrationsFor(t)
	byFrom := make(map[asset.Version][]catalog.Step)
	for _, s := range steps {
		byFrom[s.From] = append(byFrom[s.From], s)
	}

	// BFS over version nodes; the first arrival at `to` is a shortest path.
	type node struct {
		version asset.Version
		path    []catalog.Step
	}
	visited := map[asset.Version]bool{from: true}
	queue := []node{{version: from}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, s := range byFrom[cur.version] {
			if visited[s.To] {
				continue
			}
			path := append(append([]catalog.Step(nil), cur.path...), s)
			if s.To == to {
				return path, nil
			}
			visited[s.To] = true
			queue = append(queue, node{version: s.To, path: path})
		}
	}

	return nil, fmt.Errorf("%w for %s from %s to %s", ErrMigrationGap, t, from, to)
}

// Result records what a migration run did to a document.
type Result struct {
	From    asset.Version
	To      asset.Version
	Applied int
	// Document is the migrated payload. On failure it holds the output of the
	// last successful step; partial progress is preserved, never rolled back.
	Document asset.Document
}

// MigrateToLatest upgrades a document of type t from its declared version to
// the catalog's latest for that type. Documents already at or above the
// latest version are returned unchanged. The input document is never
// modified.
func (e *Engine) MigrateToLatest(t asset.Type, from asset.Version, doc asset.Document) (Result, error) {
	res := Result{From: from, To: from, Document: doc}

	latest, ok := e.catalog.LatestVersion(t)
	if !ok || !from.Less(latest) {
		return res, nil
	}

	path, err := e.FindPath(t, from, latest)
	if err != nil {
		return res, err
	}

	current := doc.Clone()
	res.Document = current
	for _, step := range path {
		next, err := step.Apply(current)
		if err != nil {
			log.ErrorErr(log.CatMigrate, "migration step failed", err,
				"type", t, "from", step.From, "to", step.To)
			return res, fmt.Errorf("migrate %s %s to %s: %w", t, step.From, step.To, err)
		}
		current = next
		res.Document = current
		res.To = step.To
		res.Applied++
		log.Debug(log.CatMigrate, "applied migration step",
			"type", t, "from", step.From, "to", step.To, "desc", step.Description)
	}

	return res, nil
}
