// Package asset defines the core content types shared by the catalog, codec,
// registry, and watcher: asset types, semantic versions, metadata, documents,
// and validation results.
//
// This package contains only pure Go with standard library imports. It has no
// knowledge of file formats, schemas, or persistence.
package asset

import (
	"strings"
	"time"
)

// Type identifies the kind of content an asset holds.
// The set is closed; unrecognized names map to TypeUnknown.
type Type string

const (
	TypeMaterial     Type = "material"
	TypeTexture      Type = "texture"
	TypeMesh         Type = "mesh"
	TypeModel        Type = "model"
	TypeAnimation    Type = "animation"
	TypeShader       Type = "shader"
	TypeAudio        Type = "audio"
	TypeParticles    Type = "particles"
	TypePhysics      Type = "physics"
	TypeVisualScript Type = "visualscript"
	TypeLight        Type = "light"
	TypePrefab       Type = "prefab"
	TypeUnknown      Type = "unknown"
)

// Types lists every known asset type except TypeUnknown.
var Types = []Type{
	TypeMaterial, TypeTexture, TypeMesh, TypeModel, TypeAnimation,
	TypeShader, TypeAudio, TypeParticles, TypePhysics, TypeVisualScript,
	TypeLight, TypePrefab,
}

// ParseType maps a type name to a Type. Matching is case-insensitive.
// Unrecognized names return TypeUnknown, never an error.
func ParseType(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeMaterial:
		return TypeMaterial
	case TypeTexture:
		return TypeTexture
	case TypeMesh:
		return TypeMesh
	case TypeModel:
		return TypeModel
	case TypeAnimation:
		return TypeAnimation
	case TypeShader:
		return TypeShader
	case TypeAudio:
		return TypeAudio
	case TypeParticles:
		return TypeParticles
	case TypePhysics:
		return TypePhysics
	case TypeVisualScript, "visual_script", "visual-script":
		return TypeVisualScript
	case TypeLight:
		return TypeLight
	case TypePrefab:
		return TypePrefab
	default:
		return TypeUnknown
	}
}

// String returns the canonical lowercase name.
func (t Type) String() string {
	return string(t)
}

// Metadata describes an asset independently of its document payload.
// Timestamps are ISO-8601 strings as found in the document.
type Metadata struct {
	Type         Type              `json:"type"`
	Version      Version           `json:"version"`
	Name         string            `json:"name"`
	ID           string            `json:"id"`
	Description  string            `json:"description,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Author       string            `json:"author,omitempty"`
	CreatedAt    string            `json:"created,omitempty"`
	ModifiedAt   string            `json:"modified,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Asset is a registered unit of content: metadata, an opaque document
// payload, and the source path it was loaded from.
type Asset struct {
	Metadata Metadata
	Document Document
	Path     string
}

// Valid reports whether the asset carries the minimum identity required for
// registration: a known type and a non-empty identifier.
func (a *Asset) Valid() bool {
	return a != nil && a.Metadata.Type != TypeUnknown && a.Metadata.ID != ""
}

// Clone returns a deep copy of the asset. The document payload is cloned so
// migrations and edits on the copy never leak into the original.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	c := *a
	c.Metadata.Tags = append([]string(nil), a.Metadata.Tags...)
	c.Metadata.Dependencies = append([]string(nil), a.Metadata.Dependencies...)
	if a.Metadata.Properties != nil {
		c.Metadata.Properties = make(map[string]string, len(a.Metadata.Properties))
		for k, v := range a.Metadata.Properties {
			c.Metadata.Properties[k] = v
		}
	}
	c.Document = a.Document.Clone()
	return &c
}

// Reference is the registry-side record for a known asset. It mirrors the
// metadata fields cheap enough to scan for listings; the full Asset may or
// may not be materialized in memory.
type Reference struct {
	ID         string
	Type       Type
	Name       string
	Path       string
	Tags       []string
	Loaded     bool
	ModifiedAt time.Time
}
