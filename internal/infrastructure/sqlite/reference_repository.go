package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/registry"
)

// referenceColumns is the list of columns to select for reference queries.
const referenceColumns = `id, type, name, path, tags, modified_at`

// ReferenceRepository implements registry.IndexStore using SQLite.
type ReferenceRepository struct {
	db *sql.DB
}

// newReferenceRepository creates a new ReferenceRepository instance.
func newReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Ensure ReferenceRepository implements registry.IndexStore.
var _ registry.IndexStore = (*ReferenceRepository)(nil)

// scanReference scans a row into a ReferenceModel.
func scanReference(scanner interface{ Scan(...any) error }) (*ReferenceModel, error) {
	var model ReferenceModel
	err := scanner.Scan(
		&model.ID, &model.Type, &model.Name, &model.Path,
		&model.Tags, &model.ModifiedAt,
	)
	return &model, err
}

// SaveReferences replaces the persisted reference table with the given
// snapshot, atomically.
func (r *ReferenceRepository) SaveReferences(ctx context.Context, refs []asset.Reference) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_references`); err != nil {
		return fmt.Errorf("clear references: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO asset_references (id, type, name, path, tags, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, ref := range refs {
		model := toReferenceModel(ref)
		if _, err := stmt.ExecContext(ctx,
			model.ID, model.Type, model.Name, model.Path,
			model.Tags, model.ModifiedAt,
		); err != nil {
			return fmt.Errorf("insert reference %s: %w", model.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadReferences reads every persisted reference.
func (r *ReferenceRepository) LoadReferences(ctx context.Context) ([]asset.Reference, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+referenceColumns+` FROM asset_references ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []asset.Reference
	for rows.Next() {
		model, err := scanReference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reference row: %w", err)
		}
		refs = append(refs, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference rows: %w", err)
	}
	return refs, nil
}
