package codec

import (
	"path/filepath"
	"strings"

	"github.com/vehement/assetdb/internal/asset"
)

// ResolveAssetPath resolves a document-relative reference against basePath.
// Absolute references are cleaned and returned as-is. Every type-specific
// extractor uses this same rule.
func ResolveAssetPath(path, basePath string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(basePath, path))
}

// extensionTypes maps file extensions to asset types for documents that do
// not declare one.
var extensionTypes = map[string]asset.Type{
	".mat":       asset.TypeMaterial,
	".material":  asset.TypeMaterial,
	".tex":       asset.TypeTexture,
	".texture":   asset.TypeTexture,
	".mesh":      asset.TypeMesh,
	".model":     asset.TypeModel,
	".anim":      asset.TypeAnimation,
	".animation": asset.TypeAnimation,
	".shader":    asset.TypeShader,
	".audio":     asset.TypeAudio,
	".particles": asset.TypeParticles,
	".physics":   asset.TypePhysics,
	".vscript":   asset.TypeVisualScript,
	".light":     asset.TypeLight,
	".prefab":    asset.TypePrefab,
}

// DetectTypeFromPath infers an asset type from a file extension, for
// documents missing a type discriminator. Unrecognized extensions return
// TypeUnknown.
func DetectTypeFromPath(path string) asset.Type {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return asset.TypeUnknown
}

// IsAssetFile reports whether the path carries a recognized asset document
// extension, or the generic .asset extension.
func IsAssetFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".asset" || ext == ".json" {
		return true
	}
	_, ok := extensionTypes[ext]
	return ok
}
