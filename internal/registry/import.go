package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/codec"
	"github.com/vehement/assetdb/internal/log"
	"github.com/vehement/assetdb/internal/tracing"
)

// ImportSettings control the optional stages of an import.
type ImportSettings struct {
	// GenerateThumbnail is an editor-side hint; the registry records it but
	// does nothing with it.
	GenerateThumbnail bool
	// ValidateOnImport runs schema validation and rejects invalid documents.
	ValidateOnImport bool
	// AutoMigrate upgrades the document to the catalog's latest version.
	AutoMigrate bool
	// TrackDependencies extracts and indexes dependency edges.
	TrackDependencies bool
}

// DefaultImportSettings enables everything except thumbnails.
func DefaultImportSettings() ImportSettings {
	return ImportSettings{
		ValidateOnImport:  true,
		AutoMigrate:       true,
		TrackDependencies: true,
	}
}

// ImportAsset loads the document at path and registers it. The stages run in
// order: parse, type detection, identifier assignment, migration,
// validation, registration, dependency extraction. Failure at any stage
// leaves the registry unchanged. Importing a path that is already registered
// replaces that entry in place, preserving its identifier; a document at a
// new path declaring an identifier registered elsewhere is rejected with
// ErrDuplicateID.
func (r *Registry) ImportAsset(ctx context.Context, path string, settings ImportSettings) (*asset.Asset, error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanImportAsset)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrAssetPath, path),
		attribute.Bool(tracing.AttrImportValidate, settings.ValidateOnImport),
		attribute.Bool(tracing.AttrImportMigrate, settings.AutoMigrate),
		attribute.Bool(tracing.AttrImportTrackDeps, settings.TrackDependencies),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.prepareLocked(ctx, path, settings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	id := a.Metadata.ID
	if existing, ok := r.byPath[path]; ok && existing != id {
		err := fmt.Errorf("path %s already registered to %s", path, existing)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if ref, ok := r.refs[id]; ok {
		if ref.Path != "" && ref.Path != path {
			// A copied file carrying another asset's embedded identifier
			// must not steal that asset's registry entry.
			err := fmt.Errorf("%w: %s is registered at %s", ErrDuplicateID, id, ref.Path)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		// Same identifier at the same path: replace in place.
		r.storeLocked(a)
	} else if err := r.registerLocked(a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if settings.TrackDependencies {
		r.refreshEdgesLocked(a)
	} else {
		r.graph.RefreshAsset(id, nil)
	}

	span.SetAttributes(
		attribute.String(tracing.AttrAssetID, id),
		attribute.String(tracing.AttrAssetType, a.Metadata.Type.String()),
		attribute.String(tracing.AttrAssetVersion, a.Metadata.Version.String()),
	)
	return a, nil
}

// prepareLocked runs the registry-independent import stages: load, type
// detection, identifier assignment, migration, validation. On success the
// returned asset is ready for the indices; on failure nothing was mutated.
func (r *Registry) prepareLocked(ctx context.Context, path string, settings ImportSettings) (*asset.Asset, error) {
	a, err := r.codec.LoadFromFile(ctx, path)
	if err != nil {
		return nil, err
	}

	if a.Metadata.Type == asset.TypeUnknown {
		if t := codec.DetectTypeFromPath(path); t != asset.TypeUnknown {
			log.Debug(log.CatRegistry, "detected type from extension",
				"path", path, "type", t)
			a.Metadata.Type = t
		}
	}
	if a.Metadata.ID == "" {
		a.Metadata.ID = r.codec.GenerateUUID()
		log.Debug(log.CatRegistry, "assigned identifier", "path", path, "id", a.Metadata.ID)
	}

	if settings.AutoMigrate {
		res, err := r.engine.MigrateToLatest(a.Metadata.Type, a.Metadata.Version, a.Document)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		if res.Applied > 0 {
			a.Document = res.Document
			a.Metadata.Version = res.To
			log.Info(log.CatMigrate, "migrated on import",
				"path", path, "from", res.From, "to", res.To, "steps", res.Applied)
		}
	}

	if settings.ValidateOnImport {
		vr := r.codec.Validate(a)
		if !vr.Valid {
			return nil, fmt.Errorf("import %s: validation failed: %s",
				path, strings.Join(vr.Errors, "; "))
		}
		for _, w := range vr.Warnings {
			log.Warn(log.CatRegistry, "validation warning", "path", path, "warning", w)
		}
	}

	return a, nil
}

// ReimportAsset re-runs the import against the asset's recorded source path,
// replacing metadata and payload in place. The identifier survives even
// though the document is fully reparsed. On failure the previous in-memory
// asset is left untouched.
func (r *Registry) ReimportAsset(ctx context.Context, id string) (*asset.Asset, error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanReimportAsset)
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrAssetID, id))

	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.refs[id]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if ref.Path == "" {
		err := fmt.Errorf("asset %s has no source path", id)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	a, err := r.prepareLocked(ctx, ref.Path, r.settings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("reimport %s: %w", id, err)
	}
	// The document may have been hand-edited to carry a different id; the
	// registry's identifier wins.
	a.Metadata.ID = id

	if prev, ok := r.assets[id]; ok {
		r.logDocumentDiffLocked(id, prev.Document, a.Document)
	}

	r.storeLocked(a)
	if r.settings.TrackDependencies {
		r.refreshEdgesLocked(a)
	}
	r.reloads++

	log.Info(log.CatRegistry, "reimported asset", "id", id, "path", ref.Path)
	span.SetAttributes(attribute.String(tracing.AttrAssetType, a.Metadata.Type.String()))
	return a, nil
}

// logDocumentDiffLocked emits a character diff of the old and new payloads
// at debug level, for diagnosing surprising hot reloads.
func (r *Registry) logDocumentDiffLocked(id string, oldDoc, newDoc asset.Document) {
	oldJSON, err1 := json.MarshalIndent(oldDoc, "", "  ")
	newJSON, err2 := json.MarshalIndent(newDoc, "", "  ")
	if err1 != nil || err2 != nil {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(oldJSON), string(newJSON), false)
	if len(diffs) == 1 && diffs[0].Type == diffmatchpatch.DiffEqual {
		return
	}
	log.Debug(log.CatRegistry, "document changed", "id", id,
		"diff", dmp.DiffPrettyText(diffs))
}

// ImportDirectory walks root and imports every recognized asset file.
// Per-file failures are logged and do not abort the batch. Returns the
// number of files imported and the number that failed.
func (r *Registry) ImportDirectory(ctx context.Context, root string, recursive bool, settings ImportSettings) (imported, failed int, err error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanImportDirectory)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrScanRoot, root),
		attribute.Bool(tracing.AttrScanRecursive, recursive),
	)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !codec.IsAssetFile(path) {
			return nil
		}

		if _, err := r.ImportAsset(ctx, path, settings); err != nil {
			failed++
			log.ErrorErr(log.CatRegistry, "import failed", err, "path", path)
			return nil
		}
		imported++
		return nil
	})
	if walkErr != nil {
		span.RecordError(walkErr)
		span.SetStatus(codes.Error, walkErr.Error())
		return imported, failed, fmt.Errorf("scan %s: %w", root, walkErr)
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrScanImported, imported),
		attribute.Int(tracing.AttrScanFailed, failed),
	)
	log.Info(log.CatRegistry, "directory import complete",
		"root", root, "imported", imported, "failed", failed)
	return imported, failed, nil
}

// ExportAsset writes the current in-memory asset to an arbitrary path. The
// registry's bookkeeping for the asset's canonical source path is untouched.
func (r *Registry) ExportAsset(ctx context.Context, id, path string) error {
	r.mu.Lock()
	a, ok := r.assets[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	snapshot := a.Clone()
	r.mu.Unlock()

	if err := r.codec.SaveToFile(ctx, snapshot, path); err != nil {
		return fmt.Errorf("export %s: %w", id, err)
	}
	log.Info(log.CatRegistry, "exported asset", "id", id, "path", path)
	return nil
}

// ValidateAll validates every loaded asset, adding broken-reference warnings
// for dependency edges that point at unregistered identifiers and a warning
// for assets sitting on a dependency cycle. Iteration order is the identifier
// index's map order; callers must not depend on it.
func (r *Registry) ValidateAll() []asset.ValidationResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]asset.ValidationResult, 0, len(r.assets))
	for id, a := range r.assets {
		res := r.codec.Validate(a)
		for _, dep := range r.graph.Dependencies(id) {
			if _, ok := r.refs[dep]; !ok {
				res.AddWarning("dependency %s is not registered", dep)
			}
		}
		if r.graph.HasCycle(id) {
			res.AddWarning("asset is on a dependency cycle")
		}
		out = append(out, res)
	}
	return out
}
