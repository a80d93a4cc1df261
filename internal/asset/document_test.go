package asset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocument_TypedGetters(t *testing.T) {
	doc := Document{
		"name":      "stone_wall",
		"roughness": 0.8,
		"tier":      3.0,
		"two_sided": true,
		"tags":      []any{"env", "rock", 42.0},
		"textures":  map[string]any{"albedo": "textures/stone.json", "lod": 1.0},
	}

	require.Equal(t, "stone_wall", doc.GetString("name", "fallback"))
	require.Equal(t, "fallback", doc.GetString("missing", "fallback"))
	require.Equal(t, 0.8, doc.GetFloat("roughness", 0))
	require.Equal(t, 1.5, doc.GetFloat("missing", 1.5))
	require.Equal(t, 3, doc.GetInt("tier", 0))
	require.True(t, doc.GetBool("two_sided", false))
	require.False(t, doc.GetBool("missing", false))

	require.Equal(t, []string{"env", "rock"}, doc.GetStringSlice("tags"),
		"non-string elements are skipped")
	require.Nil(t, doc.GetStringSlice("name"))

	require.Equal(t, map[string]string{"albedo": "textures/stone.json"},
		doc.GetStringMap("textures"))
	require.Equal(t, Document{"albedo": "textures/stone.json", "lod": 1.0},
		doc.GetMap("textures"))
	require.Nil(t, doc.GetMap("name"))
}

func TestDocument_Clone(t *testing.T) {
	doc := Document{
		"nested": map[string]any{"list": []any{1.0, "a"}},
	}

	c := doc.Clone()
	c["nested"].(map[string]any)["list"].([]any)[0] = 99.0
	c["top"] = "added"

	require.Equal(t, 1.0, doc["nested"].(map[string]any)["list"].([]any)[0])
	require.NotContains(t, doc, "top")

	var nilDoc Document
	require.Nil(t, nilDoc.Clone())
}
