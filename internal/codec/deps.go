package codec

import (
	"path/filepath"
	"sort"

	"github.com/vehement/assetdb/internal/asset"
)

// PathIndex resolves an asset path to its identifier. The registry's path
// index satisfies this.
type PathIndex interface {
	IDForPath(path string) (string, bool)
}

// RefExtractor returns the raw asset references (paths or identifiers) a
// document of one type carries in its payload fields.
type RefExtractor func(doc asset.Document) []string

var refExtractors = map[asset.Type]RefExtractor{
	asset.TypeMaterial:  materialRefs,
	asset.TypeModel:     modelRefs,
	asset.TypeAnimation: animationRefs,
	asset.TypeParticles: particlesRefs,
	asset.TypePrefab:    prefabRefs,
	asset.TypeLight:     lightRefs,
}

// RegisterRefExtractor installs the payload reference scanner for a type,
// replacing any previous one. Types without an extractor contribute only
// their metadata dependencies list. Supporting a new asset type is a schema
// entry plus, when its payload carries references, one extractor registered
// here.
func RegisterRefExtractor(t asset.Type, fn RefExtractor) {
	refExtractors[t] = fn
}

func materialRefs(doc asset.Document) []string {
	refs := make([]string, 0, 4)
	if shader := doc.GetString("shader", ""); shader != "" {
		refs = append(refs, shader)
	}
	// Texture slots are a map, so sort for deterministic output.
	textures := doc.GetStringMap("textures")
	for _, slot := range sortedKeys(textures) {
		if textures[slot] != "" {
			refs = append(refs, textures[slot])
		}
	}
	return refs
}

func modelRefs(doc asset.Document) []string {
	refs := doc.GetStringSlice("meshes")
	refs = append(refs, doc.GetStringSlice("materials")...)
	if skeleton := doc.GetString("skeleton", ""); skeleton != "" {
		refs = append(refs, skeleton)
	}
	return refs
}

func animationRefs(doc asset.Document) []string {
	if skeleton := doc.GetString("skeleton", ""); skeleton != "" {
		return []string{skeleton}
	}
	return nil
}

func particlesRefs(doc asset.Document) []string {
	if material := doc.GetString("material", ""); material != "" {
		return []string{material}
	}
	return nil
}

func lightRefs(doc asset.Document) []string {
	// IES-style profile textures.
	if profile := doc.GetString("profile", ""); profile != "" {
		return []string{profile}
	}
	return nil
}

// prefabRefs walks the entity hierarchy collecting component asset fields.
func prefabRefs(doc asset.Document) []string {
	var refs []string
	var walk func(node asset.Document)
	walk = func(node asset.Document) {
		for _, key := range []string{"material", "model", "mesh", "prefab", "audio"} {
			if ref := node.GetString(key, ""); ref != "" {
				refs = append(refs, ref)
			}
		}
		if children, ok := node["children"].([]any); ok {
			for _, child := range children {
				if m, ok := child.(map[string]any); ok {
					walk(asset.Document(m))
				}
			}
		}
	}
	if root := doc.GetMap("root"); root != nil {
		walk(root)
	}
	return refs
}

// ExtractDependencies returns the identifiers of every asset this one
// references, in document order with duplicates removed. Identifiers listed
// in the metadata dependencies field pass through unchanged; type-specific
// payload references are paths, resolved to identifiers through the index.
// References the index cannot resolve are omitted, not errors.
func ExtractDependencies(a *asset.Asset, index PathIndex) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(a.Metadata.Dependencies))

	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, id := range a.Metadata.Dependencies {
		add(id)
	}

	extract, ok := refExtractors[a.Metadata.Type]
	if !ok || index == nil {
		return out
	}

	base := filepath.Dir(a.Path)
	for _, ref := range extract(a.Document) {
		if id, ok := index.IDForPath(ref); ok {
			add(id)
			continue
		}
		// Relative references resolve against the asset's own directory.
		if id, ok := index.IDForPath(ResolveAssetPath(ref, base)); ok {
			add(id)
		}
	}

	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
