package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/model"
)

// RecordValuation appends a value-history entry for an item. Callers record
// one whenever a write changes the item's current value.
func RecordValuation(ctx context.Context, db *sql.DB, itemID, userID string, value decimal.Decimal) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO valuations (item_id, user_id, value) VALUES (?, ?, ?)`,
		itemID, userID, value.String(),
	)
	if err != nil {
		return fmt.Errorf("recording valuation: %w", err)
	}
	return nil
}

// GetItemValuations returns an item's value history, newest first.
func GetItemValuations(ctx context.Context, db *sql.DB, itemID, userID string) ([]model.Valuation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT v.id, v.item_id, v.user_id, v.value, v.recorded_at, i.name AS item_name
		 FROM valuations v
		 JOIN items i ON i.id = v.item_id
		 WHERE v.item_id = ? AND v.user_id = ?
		 ORDER BY v.recorded_at DESC, v.id DESC`,
		itemID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item valuations: %w", err)
	}
	defer rows.Close()

	return scanValuations(rows)
}

// ListValuations returns a user's value history across all items, newest first.
func ListValuations(ctx context.Context, db *sql.DB, userID string, limit int) ([]model.Valuation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT v.id, v.item_id, v.user_id, v.value, v.recorded_at, i.name AS item_name
		 FROM valuations v
		 JOIN items i ON i.id = v.item_id
		 WHERE v.user_id = ?
		 ORDER BY v.recorded_at DESC, v.id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing valuations: %w", err)
	}
	defer rows.Close()

	return scanValuations(rows)
}

func scanValuations(rows *sql.Rows) ([]model.Valuation, error) {
	var valuations []model.Valuation
	for rows.Next() {
		var v model.Valuation
		if err := rows.Scan(&v.ID, &v.ItemID, &v.UserID, &v.Value, &v.RecordedAt, &v.ItemName); err != nil {
			return nil, fmt.Errorf("scanning valuation: %w", err)
		}
		valuations = append(valuations, v)
	}
	return valuations, rows.Err()
}
