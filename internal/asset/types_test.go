package asset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{"material", TypeMaterial},
		{"Material", TypeMaterial},
		{"SHADER", TypeShader},
		{"visualscript", TypeVisualScript},
		{"visual_script", TypeVisualScript},
		{" prefab ", TypePrefab},
		{"renderer", TypeUnknown},
		{"", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, ParseType(tt.input))
		})
	}
}

func TestAsset_Valid(t *testing.T) {
	a := &Asset{Metadata: Metadata{Type: TypeMaterial, ID: "abc"}}
	require.True(t, a.Valid())

	require.False(t, (&Asset{Metadata: Metadata{Type: TypeUnknown, ID: "abc"}}).Valid())
	require.False(t, (&Asset{Metadata: Metadata{Type: TypeMaterial}}).Valid())

	var nilAsset *Asset
	require.False(t, nilAsset.Valid())
}

func TestAsset_Clone_IsDeep(t *testing.T) {
	a := &Asset{
		Metadata: Metadata{
			Type:         TypeModel,
			ID:           "model-1",
			Tags:         []string{"hero"},
			Dependencies: []string{"mesh-1"},
			Properties:   map[string]string{"tier": "2"},
		},
		Document: Document{"lod": []any{map[string]any{"distance": 10.0}}},
		Path:     "models/hero.json",
	}

	c := a.Clone()
	c.Metadata.Tags[0] = "villain"
	c.Metadata.Properties["tier"] = "3"
	c.Document["lod"].([]any)[0].(map[string]any)["distance"] = 99.0

	require.Equal(t, "hero", a.Metadata.Tags[0])
	require.Equal(t, "2", a.Metadata.Properties["tier"])
	require.Equal(t, 10.0, a.Document["lod"].([]any)[0].(map[string]any)["distance"])
}

func TestValidationResult(t *testing.T) {
	r := NewValidationResult("asset-1")
	require.True(t, r.Valid)

	r.AddWarning("deprecated field %q", "shininess")
	require.True(t, r.Valid, "warnings must not invalidate")

	r.AddError("missing field %q", "name")
	require.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	require.Len(t, r.Warnings, 1)

	other := NewValidationResult("asset-1")
	other.AddError("bad range")
	r.Merge(other)
	require.Len(t, r.Errors, 2)
}
