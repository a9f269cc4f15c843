package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    display_name  TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(id),
    name              TEXT NOT NULL,
    category          TEXT NOT NULL DEFAULT '',
    category_id       TEXT,
    condition         TEXT NOT NULL DEFAULT '',
    condition_id      TEXT,
    subcategory       TEXT NOT NULL DEFAULT '',
    subcategory_id    TEXT,
    manufacturer      TEXT NOT NULL DEFAULT '',
    pattern           TEXT NOT NULL DEFAULT '',
    year_manufactured INTEGER,
    description       TEXT NOT NULL DEFAULT '',
    location          TEXT NOT NULL DEFAULT '',
    purchase_price    TEXT NOT NULL DEFAULT '0',
    current_value     TEXT NOT NULL DEFAULT '0',
    quantity          INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    purchase_date     DATETIME,
    photo_url         TEXT,
    deleted           INTEGER NOT NULL DEFAULT 0 CHECK (deleted IN (0, 1)),
    favorite          INTEGER NOT NULL DEFAULT 0 CHECK (favorite IN (0, 1)),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_user_deleted
    ON items(user_id, deleted);

CREATE TABLE IF NOT EXISTS taxonomy_fields (
    id         TEXT PRIMARY KEY,
    field_type TEXT NOT NULL CHECK (field_type IN ('category', 'condition', 'subcategory')),
    field_name TEXT NOT NULL,
    user_id    TEXT NOT NULL REFERENCES users(id),
    is_active  INTEGER NOT NULL DEFAULT 1 CHECK (is_active IN (0, 1)),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_fields_name_active
    ON taxonomy_fields(user_id, field_type, field_name COLLATE NOCASE)
    WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS share_links (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    share_id   TEXT NOT NULL UNIQUE,
    settings   TEXT NOT NULL DEFAULT '{}',
    is_active  INTEGER NOT NULL DEFAULT 1 CHECK (is_active IN (0, 1)),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS valuations (
    id          INTEGER PRIMARY KEY,
    item_id     TEXT NOT NULL REFERENCES items(id),
    user_id     TEXT NOT NULL REFERENCES users(id),
    value       TEXT NOT NULL,
    recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_valuations_item
    ON valuations(item_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
