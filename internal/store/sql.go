package store

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/model"
)

// SQL binds the store functions to a database handle so that callers can
// depend on an interface instead of a concrete *sql.DB.
type SQL struct {
	DB *sql.DB
}

func (s *SQL) ListItems(ctx context.Context, userID string, view model.ViewMode) ([]model.InventoryItem, error) {
	return ListItems(ctx, s.DB, userID, view)
}

func (s *SQL) GetItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	return GetItem(ctx, s.DB, id)
}

func (s *SQL) InsertItem(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error) {
	return InsertItem(ctx, s.DB, item)
}

func (s *SQL) UpdateItem(ctx context.Context, id, userID string, patch ItemPatch) error {
	return UpdateItem(ctx, s.DB, id, userID, patch)
}

func (s *SQL) ArchiveItem(ctx context.Context, id, userID string) error {
	return ArchiveItem(ctx, s.DB, id, userID)
}

func (s *SQL) RestoreItem(ctx context.Context, id, userID string) error {
	return RestoreItem(ctx, s.DB, id, userID)
}

func (s *SQL) FetchActiveFields(ctx context.Context, userID string) ([]model.TaxonomyField, error) {
	return FetchActiveFields(ctx, s.DB, userID)
}

func (s *SQL) RecordValuation(ctx context.Context, itemID, userID string, value decimal.Decimal) error {
	return RecordValuation(ctx, s.DB, itemID, userID, value)
}
