package codec

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/catalog"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	cat, err := catalog.NewWithBuiltins()
	require.NoError(t, err)
	return New(cat, Options{ValidationEnabled: true})
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCodec_LoadFromFile(t *testing.T) {
	c := newTestCodec(t)
	dir := t.TempDir()

	path := writeDoc(t, dir, "stone.mat", `{
		// hand-edited material
		"type": "material",
		"version": "1.1.0",
		"name": "stone",
		"id": "11111111-2222-3333-4444-555555555555",
		"shader": "shaders/pbr.shader",
		"roughness": 0.8,
		"tags": ["env", "rock"]
	}`)

	a, err := c.LoadFromFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, asset.TypeMaterial, a.Metadata.Type)
	assert.Equal(t, "1.1.0", a.Metadata.Version.String())
	assert.Equal(t, "stone", a.Metadata.Name)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", a.Metadata.ID)
	assert.Equal(t, []string{"env", "rock"}, a.Metadata.Tags)
	assert.Equal(t, path, a.Path)
	assert.Equal(t, 0.8, a.Document.GetFloat("roughness", 0))
}

func TestCodec_LoadFromFile_NotFound(t *testing.T) {
	c := newTestCodec(t)

	_, err := c.LoadFromFile(context.Background(), "/nonexistent/asset.mat")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCodec_LoadFromFile_Malformed(t *testing.T) {
	c := newTestCodec(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "broken.mat", `{"type": "material", "name": }`)

	_, err := c.LoadFromFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestCodec_LoadFromDocument_Defaults(t *testing.T) {
	c := newTestCodec(t)

	a := c.LoadFromDocument(asset.Document{"name": "mystery"})
	assert.Equal(t, asset.TypeUnknown, a.Metadata.Type)
	assert.Equal(t, DefaultVersion, a.Metadata.Version)
	assert.Equal(t, "mystery", a.Metadata.Name)
	assert.Empty(t, a.Metadata.ID)
}

func TestCodec_LoadFromDocument_DisplayName(t *testing.T) {
	c := newTestCodec(t)

	a := c.LoadFromDocument(asset.Document{"type": "Material"})
	assert.Equal(t, asset.TypeMaterial, a.Metadata.Type)
}

func TestCodec_LoadFromDocument_ClonesPayload(t *testing.T) {
	c := newTestCodec(t)
	doc := asset.Document{"type": "material", "roughness": 0.5}

	a := c.LoadFromDocument(doc)
	a.Document["roughness"] = 0.9

	assert.Equal(t, 0.5, doc["roughness"])
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	dir := t.TempDir()

	original := &asset.Asset{
		Metadata: asset.Metadata{
			Type:         asset.TypeMaterial,
			Version:      asset.Version{Major: 1, Minor: 1, Patch: 0},
			Name:         "stone",
			ID:           c.GenerateUUID(),
			Description:  "rocky surface",
			Tags:         []string{"env", "rock"},
			Dependencies: []string{"aaaa-bbbb"},
			Author:       "artd",
			CreatedAt:    "2026-01-10T09:00:00Z",
			ModifiedAt:   "2026-02-01T12:00:00Z",
			Properties:   map[string]string{"quality": "high"},
		},
		Document: asset.Document{
			"shader":    "shaders/pbr.shader",
			"roughness": 0.8,
		},
	}

	path := filepath.Join(dir, "out", "stone.mat")
	require.NoError(t, c.SaveToFile(context.Background(), original, path))

	loaded, err := c.LoadFromFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, original.Metadata, loaded.Metadata)
	assert.Equal(t, "shaders/pbr.shader", loaded.Document.GetString("shader", ""))
	assert.Equal(t, 0.8, loaded.Document.GetFloat("roughness", 0))
}

func TestCodec_SaveToDocument_OmitsEmptyOptionals(t *testing.T) {
	c := newTestCodec(t)

	a := &asset.Asset{
		Metadata: asset.Metadata{
			Type:    asset.TypeTexture,
			Version: DefaultVersion,
			Name:    "grass",
			ID:      "x",
		},
		Document: asset.Document{"source": "grass.png"},
	}
	doc := c.SaveToDocument(a)

	assert.NotContains(t, doc, "description")
	assert.NotContains(t, doc, "tags")
	assert.NotContains(t, doc, "dependencies")
	assert.Equal(t, "texture", doc["type"])
	assert.Equal(t, "grass.png", doc["source"])
}

func TestCodec_Validate(t *testing.T) {
	c := newTestCodec(t)

	a := &asset.Asset{
		Metadata: asset.Metadata{
			Type:    asset.TypeMaterial,
			Version: asset.Version{Major: 1, Minor: 1, Patch: 0},
			Name:    "stone",
			ID:      "x",
		},
		Document: asset.Document{
			"name":   "stone",
			"shader": "shaders/pbr.shader",
		},
	}
	res := c.Validate(a)
	assert.True(t, res.Valid, "errors: %v", res.Errors)

	a.Document = asset.Document{"name": "stone"}
	res = c.Validate(a)
	assert.False(t, res.Valid)
}

func TestCodec_Validate_IncompatibleVersion(t *testing.T) {
	c := newTestCodec(t)

	a := &asset.Asset{
		Metadata: asset.Metadata{
			Type:    asset.TypeShader,
			Version: asset.Version{Major: 1, Minor: 0, Patch: 0},
			Name:    "pbr",
			ID:      "x",
		},
		Document: asset.Document{
			"name":   "pbr",
			"stages": map[string]any{"vertex": "v"},
		},
	}
	// Shader schema is at 2.0.0; a 1.x document fails the major check.
	res := c.Validate(a)
	assert.False(t, res.Valid)
}

func TestCodec_Validate_Disabled(t *testing.T) {
	cat, err := catalog.NewWithBuiltins()
	require.NoError(t, err)
	c := New(cat, Options{ValidationEnabled: false})

	res := c.Validate(&asset.Asset{})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestCodec_GenerateUUID(t *testing.T) {
	c := newTestCodec(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := c.GenerateUUID()
		assert.Len(t, id, 36)
		assert.False(t, seen[id], "duplicate uuid %s", id)
		seen[id] = true
	}
}

func TestCodec_CacheReloadsOnModTimeChange(t *testing.T) {
	c := newTestCodec(t)
	dir := t.TempDir()

	path := writeDoc(t, dir, "a.mat", `{"type": "material", "name": "one", "id": "x"}`)
	a, err := c.LoadFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "one", a.Metadata.Name)

	// Rewrite with a strictly newer mod time.
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "material", "name": "two", "id": "x"}`), 0644))
	future := timeNowPlusSecond(t, path)
	require.NoError(t, os.Chtimes(path, future, future))

	a, err = c.LoadFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "two", a.Metadata.Name)
}

// timeNowPlusSecond returns a timestamp strictly after the file's current mod
// time, so cache keys differ even on coarse filesystem clocks.
func timeNowPlusSecond(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime().Add(time.Second)
}
