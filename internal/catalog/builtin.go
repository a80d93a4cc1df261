package catalog

import (
	"encoding/json"

	"github.com/vehement/assetdb/internal/asset"
)

// RegisterBuiltinMigrations installs the migration steps for the built-in
// schemas. Each step's To must stay reachable from every shipped From so old
// project files keep loading.
func RegisterBuiltinMigrations(c *Catalog) {
	// material 1.0.0 -> 1.1.0: shininess is replaced by roughness, and the
	// old color field becomes base_color.
	c.RegisterMigration(asset.TypeMaterial, Step{
		From:        asset.Version{Major: 1, Minor: 0, Patch: 0},
		To:          asset.Version{Major: 1, Minor: 1, Patch: 0},
		Description: "replace shininess with roughness, rename color to base_color",
		Apply: func(doc asset.Document) (asset.Document, error) {
			out := doc.Clone()
			if shininess, ok := out["shininess"]; ok {
				if f, isNum := toFloat(shininess); isNum {
					// Shininess was an inverse-roughness exponent on a 0..256
					// scale.
					r := 1 - f/256
					if r < 0 {
						r = 0
					}
					if r > 1 {
						r = 1
					}
					out["roughness"] = r
				}
				delete(out, "shininess")
			}
			if color, ok := out["color"]; ok {
				out["base_color"] = color
				delete(out, "color")
			}
			return out, nil
		},
	})

	// shader 1.0.0 -> 1.1.0: loose vertex/fragment/compute fields move under
	// a stages map.
	c.RegisterMigration(asset.TypeShader, Step{
		From:        asset.Version{Major: 1, Minor: 0, Patch: 0},
		To:          asset.Version{Major: 1, Minor: 1, Patch: 0},
		Description: "collect stage source paths under stages",
		Apply: func(doc asset.Document) (asset.Document, error) {
			out := doc.Clone()
			stages := map[string]any{}
			for _, stage := range []string{"vertex", "fragment", "compute", "geometry"} {
				if src, ok := out[stage]; ok {
					stages[stage] = src
					delete(out, stage)
				}
			}
			if len(stages) > 0 {
				out["stages"] = stages
			}
			return out, nil
		},
	})

	// shader 1.1.0 -> 2.0.0: blend_mode becomes blend, depth testing is
	// explicit and defaults on.
	c.RegisterMigration(asset.TypeShader, Step{
		From:        asset.Version{Major: 1, Minor: 1, Patch: 0},
		To:          asset.Version{Major: 2, Minor: 0, Patch: 0},
		Description: "rename blend_mode to blend, default depth_test to true",
		Apply: func(doc asset.Document) (asset.Document, error) {
			out := doc.Clone()
			if mode, ok := out["blend_mode"]; ok {
				out["blend"] = mode
				delete(out, "blend_mode")
			}
			if _, ok := out["depth_test"]; !ok {
				out["depth_test"] = true
			}
			return out, nil
		},
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
