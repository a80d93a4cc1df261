package catalog

import "embed"

// builtinFS carries the schema definitions shipped with the engine.
//
//go:embed schemas/*.yaml
var builtinFS embed.FS
