package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem represents a single cataloged collectible.
//
// Category, Condition and Subcategory carry a dual representation: the text
// field is the display value snapshotted at write time, while the matching
// *ID field (when non-nil) references a taxonomy entry and takes precedence
// for lookups. Neither side may be assumed populated.
type InventoryItem struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Name             string  `json:"name"`
	Category         string  `json:"category,omitempty"`
	CategoryID       *string `json:"category_id,omitempty"`
	Condition        string  `json:"condition,omitempty"`
	ConditionID      *string `json:"condition_id,omitempty"`
	Subcategory      string  `json:"subcategory,omitempty"`
	SubcategoryID    *string `json:"subcategory_id,omitempty"`
	Manufacturer     string  `json:"manufacturer,omitempty"`
	Pattern          string  `json:"pattern,omitempty"`
	YearManufactured *int    `json:"year_manufactured,omitempty"`
	Description      string  `json:"description,omitempty"`
	Location         string  `json:"location,omitempty"`

	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	Quantity      int             `json:"quantity"`
	PurchaseDate  *time.Time      `json:"purchase_date,omitempty"`

	PhotoURL *string `json:"photo_url,omitempty"`

	Deleted  bool `json:"deleted"`
	Favorite bool `json:"favorite"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ViewMode selects which partition of a user's items a fetch returns.
type ViewMode string

// View modes. An item is in exactly one of the two at any time.
const (
	ViewActive   ViewMode = "active"
	ViewArchived ViewMode = "archived"
)

// Valid reports whether v is a known view mode.
func (v ViewMode) Valid() bool {
	return v == ViewActive || v == ViewArchived
}
