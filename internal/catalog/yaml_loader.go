package catalog

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/vehement/assetdb/internal/asset"
)

// SchemaFile is the root structure of a schema definition YAML file.
type SchemaFile struct {
	Schemas []SchemaDef `yaml:"schemas"`
}

// SchemaDef defines a single type schema in YAML.
type SchemaDef struct {
	Type       string               `yaml:"type"`    // e.g. "material"
	Name       string               `yaml:"name"`    // e.g. "Material"
	Version    string               `yaml:"version"` // e.g. "1.1.0"
	Required   []string             `yaml:"required"`
	Properties map[string]*Property `yaml:"properties"`
}

// LoadSchemasFromYAML reads every schemas/*.yaml file in fsys and registers
// the definitions into the catalog. Later files win for duplicate types,
// matching the catalog's last-write-wins schema rule.
func LoadSchemasFromYAML(c *Catalog, fsys fs.FS) error {
	loaded := 0

	err := fs.WalkDir(fsys, "schemas", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var file SchemaFile
		if err := yaml.Unmarshal(content, &file); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		for _, def := range file.Schemas {
			schema, err := buildSchemaFromDef(def)
			if err != nil {
				return fmt.Errorf("schema %s in %s: %w", def.Type, path, err)
			}
			c.RegisterSchema(schema.Type, schema)
			if def.Name != "" {
				c.RegisterTypeName(schema.Type, def.Name)
			}
			loaded++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan schema definitions: %w", err)
	}

	if loaded == 0 {
		return fmt.Errorf("no schema definitions found in schemas/*.yaml")
	}
	return nil
}

// buildSchemaFromDef converts a SchemaDef into a validated Schema.
func buildSchemaFromDef(def SchemaDef) (*Schema, error) {
	t := asset.ParseType(def.Type)
	if t == asset.TypeUnknown {
		return nil, fmt.Errorf("unknown asset type %q", def.Type)
	}

	version, err := asset.ParseVersion(def.Version)
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}

	props := def.Properties
	if props == nil {
		props = map[string]*Property{}
	}

	return &Schema{
		Type:       t,
		Name:       def.Name,
		Version:    version,
		Required:   def.Required,
		Properties: props,
	}, nil
}

// NewWithBuiltins creates a catalog preloaded with the embedded schema
// definitions and the built-in migration steps.
func NewWithBuiltins() (*Catalog, error) {
	c := New()
	if err := LoadSchemasFromYAML(c, builtinFS); err != nil {
		return nil, fmt.Errorf("load builtin schemas: %w", err)
	}
	RegisterBuiltinMigrations(c)
	return c, nil
}
