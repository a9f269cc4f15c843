package model

import "time"

// FieldType identifies which taxonomy a field belongs to.
type FieldType string

// Taxonomy field types.
const (
	FieldCategory    FieldType = "category"
	FieldCondition   FieldType = "condition"
	FieldSubcategory FieldType = "subcategory"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	return t == FieldCategory || t == FieldCondition || t == FieldSubcategory
}

// TaxonomyRef is the dual representation of a taxonomy value on an item:
// the display text plus an optional backing entry ID. Resolution prefers the
// ID when present and falls back to the text; neither side is guaranteed.
type TaxonomyRef struct {
	Text string  `json:"text"`
	ID   *string `json:"id,omitempty"`
}

// TaxonomyField is a user-created taxonomy entry. Entries are never
// physically removed; deactivating one clears IsActive so that items already
// pointing at its ID keep a resolvable reference.
type TaxonomyField struct {
	ID        string    `json:"id"`
	FieldType FieldType `json:"field_type"`
	FieldName string    `json:"field_name"`
	UserID    string    `json:"user_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
