package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "line comment",
			input: "{\n// a material\n\"name\": \"stone\"\n}",
			want:  map[string]any{"name": "stone"},
		},
		{
			name:  "trailing line comment",
			input: "{\"name\": \"stone\" // display name\n}",
			want:  map[string]any{"name": "stone"},
		},
		{
			name:  "block comment",
			input: "{/* header\nspanning lines */\"name\": \"stone\"}",
			want:  map[string]any{"name": "stone"},
		},
		{
			name:  "slashes inside string survive",
			input: `{"shader": "shaders//pbr.shader"}`,
			want:  map[string]any{"shader": "shaders//pbr.shader"},
		},
		{
			name:  "escaped quote inside string",
			input: `{"name": "sto\"ne // not a comment"}`,
			want:  map[string]any{"name": `sto"ne // not a comment`},
		},
		{
			name:  "no comments untouched",
			input: `{"a": 1, "b": [true, null]}`,
			want:  map[string]any{"a": 1.0, "b": []any{true, nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			require.NoError(t, json.Unmarshal(StripComments([]byte(tt.input)), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripComments_PreservesLineNumbers(t *testing.T) {
	input := "{\n// one\n// two\n\"name\": oops\n}"
	stripped := StripComments([]byte(input))

	// Newlines survive so parser error offsets match the original file.
	assert.Equal(t, countByte(input, '\n'), countByte(string(stripped), '\n'))
}

func countByte(s string, b byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			n++
		}
	}
	return n
}
