package catalog

import "github.com/vehement/assetdb/internal/asset"

// Schema is a structural description of a document: required fields, field
// types, and numeric constraints. Its Version is the latest version of the
// type it validates.
type Schema struct {
	Type       asset.Type           `yaml:"type"`
	Name       string               `yaml:"name"`
	Version    asset.Version        `yaml:"-"`
	Required   []string             `yaml:"required"`
	Properties map[string]*Property `yaml:"properties"`
}

// Property constrains a single document field.
type Property struct {
	// Type is one of "string", "number", "integer", "boolean", "array",
	// "object". Empty means any type is accepted.
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Enum        []string `yaml:"enum"`
	Minimum     *float64 `yaml:"minimum"`
	Maximum     *float64 `yaml:"maximum"`
	// Deprecated marks fields that still parse but should warn.
	Deprecated bool `yaml:"deprecated"`
}
