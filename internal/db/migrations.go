package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: taxonomy names were originally unique across all rows,
	// which blocked re-creating a name after deactivating it. Replace the
	// hard index with a partial one that only covers active entries.
	`DROP INDEX IF EXISTS idx_fields_name`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_fields_name_active
	     ON taxonomy_fields(user_id, field_type, field_name COLLATE NOCASE)
	     WHERE is_active = 1`,
}

// Migrate ensures the schema exists and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
