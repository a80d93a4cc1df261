package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vehement/assetdb/internal/asset"
)

// mapIndex is a PathIndex backed by a plain map.
type mapIndex map[string]string

func (m mapIndex) IDForPath(path string) (string, bool) {
	id, ok := m[path]
	return id, ok
}

func TestExtractDependencies_Material(t *testing.T) {
	index := mapIndex{
		"shaders/pbr.shader":  "shader-id",
		"textures/albedo.tex": "albedo-id",
		"textures/normal.tex": "normal-id",
	}
	a := &asset.Asset{
		Metadata: asset.Metadata{Type: asset.TypeMaterial},
		Document: asset.Document{
			"shader": "shaders/pbr.shader",
			"textures": map[string]any{
				"albedo": "textures/albedo.tex",
				"normal": "textures/normal.tex",
			},
		},
	}

	deps := ExtractDependencies(a, index)
	assert.Equal(t, []string{"shader-id", "albedo-id", "normal-id"}, deps)
}

func TestExtractDependencies_MetadataFirst(t *testing.T) {
	index := mapIndex{"shaders/pbr.shader": "shader-id"}
	a := &asset.Asset{
		Metadata: asset.Metadata{
			Type:         asset.TypeMaterial,
			Dependencies: []string{"explicit-id"},
		},
		Document: asset.Document{"shader": "shaders/pbr.shader"},
	}

	deps := ExtractDependencies(a, index)
	assert.Equal(t, []string{"explicit-id", "shader-id"}, deps)
}

func TestExtractDependencies_UnresolvedOmitted(t *testing.T) {
	a := &asset.Asset{
		Metadata: asset.Metadata{Type: asset.TypeMaterial},
		Document: asset.Document{"shader": "shaders/missing.shader"},
	}

	deps := ExtractDependencies(a, mapIndex{})
	assert.Empty(t, deps)
}

func TestExtractDependencies_Deduplicates(t *testing.T) {
	index := mapIndex{"m.mat": "mat-id"}
	a := &asset.Asset{
		Metadata: asset.Metadata{
			Type:         asset.TypeParticles,
			Dependencies: []string{"mat-id"},
		},
		Document: asset.Document{"material": "m.mat"},
	}

	deps := ExtractDependencies(a, index)
	assert.Equal(t, []string{"mat-id"}, deps)
}

func TestExtractDependencies_RelativeToAssetDir(t *testing.T) {
	index := mapIndex{"assets/materials/shaders/pbr.shader": "shader-id"}
	a := &asset.Asset{
		Metadata: asset.Metadata{Type: asset.TypeMaterial},
		Document: asset.Document{"shader": "shaders/pbr.shader"},
		Path:     "assets/materials/stone.mat",
	}

	deps := ExtractDependencies(a, index)
	assert.Equal(t, []string{"shader-id"}, deps)
}

func TestExtractDependencies_Model(t *testing.T) {
	index := mapIndex{
		"meshes/body.mesh":  "body-id",
		"meshes/head.mesh":  "head-id",
		"mats/skin.mat":     "skin-id",
		"rigs/humanoid.rig": "rig-id",
	}
	a := &asset.Asset{
		Metadata: asset.Metadata{Type: asset.TypeModel},
		Document: asset.Document{
			"meshes":    []any{"meshes/body.mesh", "meshes/head.mesh"},
			"materials": []any{"mats/skin.mat"},
			"skeleton":  "rigs/humanoid.rig",
		},
	}

	deps := ExtractDependencies(a, index)
	assert.Equal(t, []string{"body-id", "head-id", "skin-id", "rig-id"}, deps)
}

func TestExtractDependencies_PrefabHierarchy(t *testing.T) {
	index := mapIndex{
		"mats/wall.mat":   "wall-id",
		"models/door.mdl": "door-id",
	}
	a := &asset.Asset{
		Metadata: asset.Metadata{Type: asset.TypePrefab},
		Document: asset.Document{
			"root": map[string]any{
				"material": "mats/wall.mat",
				"children": []any{
					map[string]any{"model": "models/door.mdl"},
				},
			},
		},
	}

	deps := ExtractDependencies(a, index)
	assert.Equal(t, []string{"wall-id", "door-id"}, deps)
}

func TestExtractDependencies_NoExtractorType(t *testing.T) {
	a := &asset.Asset{
		Metadata: asset.Metadata{
			Type:         asset.TypeTexture,
			Dependencies: []string{"meta-id"},
		},
		Document: asset.Document{"source": "grass.png"},
	}

	deps := ExtractDependencies(a, mapIndex{"grass.png": "x"})
	assert.Equal(t, []string{"meta-id"}, deps)
}

func TestResolveAssetPath(t *testing.T) {
	assert.Equal(t, "base/sub/a.mat", ResolveAssetPath("sub/a.mat", "base"))
	assert.Equal(t, "/abs/a.mat", ResolveAssetPath("/abs/a.mat", "base"))
	assert.Equal(t, "a.mat", ResolveAssetPath("sub/../a.mat", ""))
	assert.Equal(t, "", ResolveAssetPath("", "base"))
}

func TestDetectTypeFromPath(t *testing.T) {
	assert.Equal(t, asset.TypeMaterial, DetectTypeFromPath("assets/stone.mat"))
	assert.Equal(t, asset.TypeShader, DetectTypeFromPath("assets/PBR.SHADER"))
	assert.Equal(t, asset.TypeUnknown, DetectTypeFromPath("notes.txt"))
}

func TestIsAssetFile(t *testing.T) {
	assert.True(t, IsAssetFile("a.mat"))
	assert.True(t, IsAssetFile("a.asset"))
	assert.True(t, IsAssetFile("a.json"))
	assert.False(t, IsAssetFile("a.txt"))
	assert.False(t, IsAssetFile("a"))
}

func TestRegisterRefExtractor(t *testing.T) {
	original := refExtractors[asset.TypeAudio]
	t.Cleanup(func() {
		if original == nil {
			delete(refExtractors, asset.TypeAudio)
		} else {
			refExtractors[asset.TypeAudio] = original
		}
	})

	RegisterRefExtractor(asset.TypeAudio, func(doc asset.Document) []string {
		if bank := doc.GetString("bank", ""); bank != "" {
			return []string{bank}
		}
		return nil
	})

	a := &asset.Asset{
		Metadata: asset.Metadata{ID: "snd-1", Type: asset.TypeAudio},
		Document: asset.Document{"bank": "audio/master.bank"},
		Path:     "audio/steps.audio",
	}
	deps := ExtractDependencies(a, mapIndex{"audio/master.bank": "bank-id"})
	assert.Equal(t, []string{"bank-id"}, deps)
}
