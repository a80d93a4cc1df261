package sqlite

import (
	"encoding/json"
	"time"

	"github.com/vehement/assetdb/internal/asset"
)

// ReferenceModel represents the database row for the asset_references table.
// Tags are JSON encoded; timestamps are Unix seconds.
type ReferenceModel struct {
	ID         string
	Type       string
	Name       string
	Path       string
	Tags       *string // nullable, JSON encoded
	ModifiedAt int64
}

// toReferenceModel converts a domain reference to a database row.
func toReferenceModel(ref asset.Reference) *ReferenceModel {
	m := &ReferenceModel{
		ID:         ref.ID,
		Type:       ref.Type.String(),
		Name:       ref.Name,
		Path:       ref.Path,
		ModifiedAt: ref.ModifiedAt.Unix(),
	}
	if len(ref.Tags) > 0 {
		if tagsJSON, err := json.Marshal(ref.Tags); err == nil {
			tags := string(tagsJSON)
			m.Tags = &tags
		}
	}
	return m
}

// toDomain converts a database row to a domain reference. Loaded is always
// false: the index records what is known, not what is materialized.
func (m *ReferenceModel) toDomain() asset.Reference {
	ref := asset.Reference{
		ID:   m.ID,
		Type: asset.ParseType(m.Type),
		Name: m.Name,
		Path: m.Path,
	}
	if m.Tags != nil {
		_ = json.Unmarshal([]byte(*m.Tags), &ref.Tags)
	}
	if m.ModifiedAt > 0 {
		ref.ModifiedAt = time.Unix(m.ModifiedAt, 0)
	}
	return ref
}
