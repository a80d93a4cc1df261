// Package codec loads and saves assets as structured JSON documents. Metadata
// lives in well-known top-level fields of the same document as the payload;
// loading extracts it, saving overlays it back, so a load/save round trip is
// lossless. Hand-edited documents may carry //-style comments, which are
// stripped before parsing.
package codec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/cachemanager"
	"github.com/vehement/assetdb/internal/catalog"
	"github.com/vehement/assetdb/internal/log"
)

var (
	// ErrNotFound indicates the source file does not exist.
	ErrNotFound = errors.New("asset file not found")
	// ErrParse indicates the document could not be parsed.
	ErrParse = errors.New("asset document parse error")
)

// DefaultVersion is assumed for documents that do not declare a version.
var DefaultVersion = asset.Version{Major: 1, Minor: 0, Patch: 0}

// Options configures a Codec.
type Options struct {
	// ValidationEnabled gates Validate; when false, Validate reports every
	// asset valid without running checks.
	ValidationEnabled bool
	// CacheTTL bounds how long a parsed document stays cached. Zero uses the
	// cache manager default.
	CacheTTL time.Duration
	// SkipCache disables the parsed-document cache entirely.
	SkipCache bool
}

// Codec parses asset documents against a type catalog. Parsed documents are
// cached keyed by path and modification time, so an unchanged file is parsed
// once.
type Codec struct {
	catalog  *catalog.Catalog
	opts     Options
	cache    cachemanager.CacheManager[string, asset.Document]
	docCache *cachemanager.ReadThroughCache[string, asset.Document, string]
}

// New creates a codec over the given catalog.
func New(cat *catalog.Catalog, opts Options) *Codec {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cachemanager.DefaultExpiration
	}
	c := &Codec{catalog: cat, opts: opts}
	c.cache = cachemanager.NewInMemoryCacheManager[string, asset.Document](
		"documents", opts.CacheTTL, cachemanager.DefaultCleanupInterval)
	c.docCache = cachemanager.NewReadThroughCache[string, asset.Document, string](
		c.cache, c.parseFile, opts.SkipCache)
	return c
}

// LoadFromFile reads, parses, and extracts an asset from a document file.
// A missing file wraps ErrNotFound; a malformed document wraps ErrParse.
func (c *Codec) LoadFromFile(ctx context.Context, path string) (*asset.Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	key := fmt.Sprintf("%s|%d", path, info.ModTime().UnixNano())
	doc, err := c.docCache.Get(ctx, key, path, c.opts.CacheTTL)
	if err != nil {
		return nil, err
	}

	a := c.LoadFromDocument(doc)
	a.Path = path
	return a, nil
}

// parseFile is the cache loader: raw bytes to Document.
func (c *Codec) parseFile(ctx context.Context, path string) (asset.Document, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: asset paths come from the project tree
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc asset.Document
	if err := json.Unmarshal(StripComments(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	log.Debug(log.CatCodec, "parsed document", "path", path, "fields", len(doc))
	return doc, nil
}

// LoadFromDocument builds an asset from an already-parsed document. It never
// fails: an absent type field yields TypeUnknown, an absent version yields
// DefaultVersion, and other absent fields receive zero values. The document
// is cloned, so the caller's copy stays independent.
func (c *Codec) LoadFromDocument(doc asset.Document) *asset.Asset {
	meta := asset.Metadata{
		Type:         c.catalog.TypeFor(doc.GetString("type", "")),
		Version:      DefaultVersion,
		Name:         doc.GetString("name", ""),
		ID:           doc.GetString("id", ""),
		Description:  doc.GetString("description", ""),
		Tags:         doc.GetStringSlice("tags"),
		Dependencies: doc.GetStringSlice("dependencies"),
		Author:       doc.GetString("author", ""),
		CreatedAt:    doc.GetString("created", ""),
		ModifiedAt:   doc.GetString("modified", ""),
		Properties:   doc.GetStringMap("properties"),
	}
	if raw := doc.GetString("version", ""); raw != "" {
		if v, err := asset.ParseVersion(raw); err == nil {
			meta.Version = v
		} else {
			log.Warn(log.CatCodec, "unparseable version field, assuming default",
				"version", raw, "default", DefaultVersion)
		}
	}

	return &asset.Asset{Metadata: meta, Document: doc.Clone()}
}

// SaveToDocument renders the asset back into a single document: the payload,
// with the metadata fields overlaid on top-level keys.
func (c *Codec) SaveToDocument(a *asset.Asset) asset.Document {
	doc := a.Document.Clone()
	if doc == nil {
		doc = asset.Document{}
	}

	doc["type"] = a.Metadata.Type.String()
	doc["version"] = a.Metadata.Version.String()
	doc["name"] = a.Metadata.Name
	doc["id"] = a.Metadata.ID
	setOrDelete(doc, "description", a.Metadata.Description)
	setOrDelete(doc, "author", a.Metadata.Author)
	setOrDelete(doc, "created", a.Metadata.CreatedAt)
	setOrDelete(doc, "modified", a.Metadata.ModifiedAt)

	if len(a.Metadata.Tags) > 0 {
		doc["tags"] = toAnySlice(a.Metadata.Tags)
	} else {
		delete(doc, "tags")
	}
	if len(a.Metadata.Dependencies) > 0 {
		doc["dependencies"] = toAnySlice(a.Metadata.Dependencies)
	} else {
		delete(doc, "dependencies")
	}
	if len(a.Metadata.Properties) > 0 {
		props := make(map[string]any, len(a.Metadata.Properties))
		for k, v := range a.Metadata.Properties {
			props[k] = v
		}
		doc["properties"] = props
	} else {
		delete(doc, "properties")
	}

	return doc
}

// SaveToFile writes the asset's document to path, pretty-printed with sorted
// keys. Parent directories are created as needed.
func (c *Codec) SaveToFile(ctx context.Context, a *asset.Asset, path string) error {
	doc := c.SaveToDocument(a)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // G306: asset documents are project files
		return fmt.Errorf("write %s: %w", path, err)
	}

	log.Debug(log.CatCodec, "saved document", "path", path, "id", a.Metadata.ID)
	return nil
}

// Validate checks the asset's document against its type's schema, collecting
// every failure rather than stopping at the first. When validation is
// disabled the result is valid with no checks run.
func (c *Codec) Validate(a *asset.Asset) asset.ValidationResult {
	res := asset.NewValidationResult(a.Metadata.ID)
	if !c.opts.ValidationEnabled {
		return res
	}

	if a.Metadata.Type == asset.TypeUnknown {
		res.AddError("unknown asset type")
	}
	if a.Metadata.ID == "" {
		res.AddError("missing identifier")
	}
	if a.Metadata.Name == "" {
		res.AddWarning("missing name")
	}

	schema, ok := c.catalog.SchemaFor(a.Metadata.Type)
	if !ok {
		if a.Metadata.Type != asset.TypeUnknown {
			res.AddWarning("no schema registered for type %s", a.Metadata.Type)
		}
		return res
	}

	if !c.catalog.Compatible(a.Metadata.Version, schema.Version) {
		res.AddError("version %s incompatible with schema version %s",
			a.Metadata.Version, schema.Version)
	}

	schema.Validate(a.Document, &res)
	return res
}

// GenerateUUID returns a fresh random identifier in canonical
// 8-4-4-4-12 form.
func (c *Codec) GenerateUUID() string {
	return uuid.NewString()
}

// FlushCache drops every cached parsed document.
func (c *Codec) FlushCache(ctx context.Context) {
	_ = c.cache.Flush(ctx)
}

func setOrDelete(doc asset.Document, key, value string) {
	if value != "" {
		doc[key] = value
	} else {
		delete(doc, key)
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
