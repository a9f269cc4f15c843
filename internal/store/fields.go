package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/anakralj/vitrina/internal/model"
)

// Taxonomy field errors. ErrDuplicateField is distinct from generic write
// failures because a duplicate name is an expected, recoverable user mistake.
var (
	ErrDuplicateField = errors.New("a field with this name already exists")
	ErrFieldNotFound  = errors.New("taxonomy field not found")
)

// FetchActiveFields returns a user's active taxonomy entries in insertion
// order. Deactivated rows are excluded; they remain referencable by ID only.
func FetchActiveFields(ctx context.Context, db *sql.DB, userID string) ([]model.TaxonomyField, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, field_type, field_name, user_id, is_active, created_at
		 FROM taxonomy_fields
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching taxonomy fields: %w", err)
	}
	defer rows.Close()

	var fields []model.TaxonomyField
	for rows.Next() {
		var f model.TaxonomyField
		if err := rows.Scan(&f.ID, &f.FieldType, &f.FieldName, &f.UserID, &f.IsActive, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning taxonomy field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// CreateField inserts a new active taxonomy entry. Name uniqueness within a
// user's active set for a field type is enforced case-insensitively by a
// partial unique index, so concurrent creates cannot both succeed.
func CreateField(ctx context.Context, db *sql.DB, fieldType model.FieldType, name, userID string) (*model.TaxonomyField, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO taxonomy_fields (id, field_type, field_name, user_id, is_active)
		 VALUES (?, ?, ?, ?, 1)`,
		id, fieldType, name, userID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateField
		}
		return nil, fmt.Errorf("creating taxonomy field: %w", err)
	}

	f := &model.TaxonomyField{}
	err = db.QueryRowContext(ctx,
		`SELECT id, field_type, field_name, user_id, is_active, created_at
		 FROM taxonomy_fields WHERE id = ?`, id,
	).Scan(&f.ID, &f.FieldType, &f.FieldName, &f.UserID, &f.IsActive, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting taxonomy field: %w", err)
	}
	return f, nil
}

// DeactivateField soft-deletes the matching entry by clearing is_active.
// The row is kept so items referencing its ID stay resolvable.
func DeactivateField(ctx context.Context, db *sql.DB, fieldType model.FieldType, name, userID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE taxonomy_fields SET is_active = 0
		 WHERE user_id = ? AND field_type = ? AND field_name = ? COLLATE NOCASE AND is_active = 1`,
		userID, fieldType, name,
	)
	if err != nil {
		return fmt.Errorf("deactivating taxonomy field: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating taxonomy field: %w", err)
	}
	if affected == 0 {
		return ErrFieldNotFound
	}
	return nil
}
