package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valuation is one entry in an item's value history. A row is appended
// whenever a write changes the item's current value.
type Valuation struct {
	ID         int64           `json:"id"`
	ItemID     string          `json:"item_id"`
	UserID     string          `json:"user_id"`
	Value      decimal.Decimal `json:"value"`
	RecordedAt time.Time       `json:"recorded_at"`

	// Joined field (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// CategoryTotal is a per-category rollup used by collection stats.
type CategoryTotal struct {
	Category   string          `json:"category"`
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// CollectionStats summarizes a user's active collection.
type CollectionStats struct {
	ItemCount     int             `json:"item_count"`
	FavoriteCount int             `json:"favorite_count"`
	ArchivedCount int             `json:"archived_count"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ByCategory    []CategoryTotal `json:"by_category"`
}
