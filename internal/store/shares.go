package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/anakralj/vitrina/internal/model"
)

// CreateShareLink creates a new active share link with a fresh share ID.
func CreateShareLink(ctx context.Context, db *sql.DB, userID string, settings model.ShareSettings) (*model.ShareLink, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encoding share settings: %w", err)
	}

	id := uuid.NewString()
	shareID := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO share_links (id, user_id, share_id, settings, is_active)
		 VALUES (?, ?, ?, ?, 1)`,
		id, userID, shareID, string(settingsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("creating share link: %w", err)
	}

	return getShareLink(ctx, db, `id = ?`, id)
}

// GetShareLinkByShareID returns an active share link by its public share ID.
func GetShareLinkByShareID(ctx context.Context, db *sql.DB, shareID string) (*model.ShareLink, error) {
	return getShareLink(ctx, db, `share_id = ? AND is_active = 1`, shareID)
}

// ListShareLinks returns all of a user's share links, active or not.
func ListShareLinks(ctx context.Context, db *sql.DB, userID string) ([]model.ShareLink, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, share_id, settings, is_active, created_at
		 FROM share_links WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing share links: %w", err)
	}
	defer rows.Close()

	var links []model.ShareLink
	for rows.Next() {
		link, err := scanShareLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning share link: %w", err)
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// UpdateShareSettings replaces the settings of a user's share link.
func UpdateShareSettings(ctx context.Context, db *sql.DB, id, userID string, settings model.ShareSettings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding share settings: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE share_links SET settings = ? WHERE id = ? AND user_id = ?`,
		string(settingsJSON), id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating share settings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating share settings: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateShareLink revokes a share link without removing it.
func DeactivateShareLink(ctx context.Context, db *sql.DB, id, userID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE share_links SET is_active = 0 WHERE id = ? AND user_id = ? AND is_active = 1`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivating share link: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating share link: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func getShareLink(ctx context.Context, db *sql.DB, where string, args ...any) (*model.ShareLink, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, user_id, share_id, settings, is_active, created_at
		 FROM share_links WHERE `+where, args...)

	link, err := scanShareLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting share link: %w", err)
	}
	return link, nil
}

func scanShareLink(s interface{ Scan(...any) error }) (*model.ShareLink, error) {
	link := &model.ShareLink{}
	var settingsJSON string
	if err := s.Scan(&link.ID, &link.UserID, &link.ShareID, &settingsJSON, &link.IsActive, &link.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(settingsJSON), &link.Settings); err != nil {
		return nil, fmt.Errorf("decoding share settings: %w", err)
	}
	return link, nil
}
