package registry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/log"
	"github.com/vehement/assetdb/internal/tracing"
)

// IndexStore persists the registry's bookkeeping: the identifier to path
// mapping and the reference table. Per-asset documents stay on disk at their
// own paths and are never stored here.
type IndexStore interface {
	SaveReferences(ctx context.Context, refs []asset.Reference) error
	LoadReferences(ctx context.Context) ([]asset.Reference, error)
}

// SaveIndex writes the current reference table to the index store, replacing
// whatever was persisted before.
func (r *Registry) SaveIndex(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, tracing.SpanSaveIndex)
	defer span.End()

	if r.store == nil {
		return fmt.Errorf("no index store configured")
	}

	r.mu.Lock()
	refs := make([]asset.Reference, 0, len(r.refs))
	for _, ref := range r.refs {
		refs = append(refs, *ref)
	}
	r.mu.Unlock()

	if err := r.store.SaveReferences(ctx, refs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("save index: %w", err)
	}

	span.SetAttributes(attribute.Int("index.references", len(refs)))
	log.Info(log.CatIndex, "saved index", "references", len(refs))
	return nil
}

// LoadIndex restores the reference table and path index from the store, so a
// fresh process knows every asset without re-scanning the tree. Restored
// entries are known but not materialized; documents load on demand via
// ReimportAsset. References already present in memory are kept over their
// persisted counterparts.
func (r *Registry) LoadIndex(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, tracing.SpanLoadIndex)
	defer span.End()

	if r.store == nil {
		return fmt.Errorf("no index store configured")
	}

	refs, err := r.store.LoadReferences(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("load index: %w", err)
	}

	r.mu.Lock()
	restored := 0
	for _, ref := range refs {
		if _, exists := r.refs[ref.ID]; exists {
			continue
		}
		if ref.Path != "" {
			if owner, claimed := r.byPath[ref.Path]; claimed && owner != ref.ID {
				// Stale persisted entry; the path belongs to a live asset.
				log.Warn(log.CatIndex, "skipped stale reference",
					"id", ref.ID, "path", ref.Path, "owner", owner)
				continue
			}
		}
		stored := ref
		stored.Loaded = false
		r.refs[ref.ID] = &stored
		if stored.Path != "" {
			r.byPath[stored.Path] = stored.ID
		}
		restored++
	}
	r.mu.Unlock()

	span.SetAttributes(attribute.Int("index.references", restored))
	log.Info(log.CatIndex, "loaded index", "references", restored)
	return nil
}
