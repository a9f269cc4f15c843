// Package taxonomy resolves between the display names and backing IDs of
// category, condition and subcategory values. Each field type merges two
// sources into one logical namespace per user: a built-in default set and the
// user's custom entries. Resolution never fuzzy-matches: an absent match is a
// valid outcome, not an error.
package taxonomy

import (
	"context"
	"database/sql"
	"strings"

	"github.com/anakralj/vitrina/internal/model"
	"github.com/anakralj/vitrina/internal/store"
)

// LookupIDByName resolves a display name to an ID over the defaults plus the
// given custom entries. Defaults win; the match is exact. A nil result means
// the name is unresolvable and callers persist the raw text with no ID.
func LookupIDByName(fieldType model.FieldType, name string, custom []model.TaxonomyField) *string {
	for _, opt := range DefaultsFor(fieldType) {
		if opt.Name == name {
			id := opt.ID
			return &id
		}
	}
	for _, f := range custom {
		if f.FieldType == fieldType && f.IsActive && f.FieldName == name {
			id := f.ID
			return &id
		}
	}
	return nil
}

// LookupNameByID resolves an ID to its display name over the defaults plus
// the given custom entries. The second result reports whether a match was
// found.
func LookupNameByID(fieldType model.FieldType, id string, custom []model.TaxonomyField) (string, bool) {
	for _, opt := range DefaultsFor(fieldType) {
		if opt.ID == id {
			return opt.Name, true
		}
	}
	for _, f := range custom {
		if f.FieldType == fieldType && f.IsActive && f.ID == id {
			return f.FieldName, true
		}
	}
	return "", false
}

// AllForType returns the full option list for a field type: defaults first,
// then the active custom entries in their fetch order. The custom slice is
// not re-sorted.
func AllForType(fieldType model.FieldType, custom []model.TaxonomyField) []Option {
	options := append([]Option(nil), DefaultsFor(fieldType)...)
	for _, f := range custom {
		if f.FieldType == fieldType && f.IsActive {
			options = append(options, Option{ID: f.ID, Name: f.FieldName})
		}
	}
	return options
}

// SyncView is AllForType over an already-fetched field list. It performs no
// I/O, so render paths that cannot await a round-trip can call it directly.
func SyncView(cached []model.TaxonomyField, fieldType model.FieldType) []Option {
	return AllForType(fieldType, cached)
}

// ResolveIDByName is the remote-backed form of LookupIDByName. A fetch
// failure propagates as an error; it is never treated as "no custom fields".
func ResolveIDByName(ctx context.Context, db *sql.DB, fieldType model.FieldType, name, userID string) (*string, error) {
	// Defaults need no fetch.
	for _, opt := range DefaultsFor(fieldType) {
		if opt.Name == name {
			id := opt.ID
			return &id, nil
		}
	}

	fields, err := store.FetchActiveFields(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	return LookupIDByName(fieldType, name, fields), nil
}

// ResolveNameByID is the remote-backed form of LookupNameByID. When neither
// the defaults nor the active custom set contain the ID, the ID itself is
// returned unchanged, so the result is never empty. Only a fetch failure is
// an error.
func ResolveNameByID(ctx context.Context, db *sql.DB, fieldType model.FieldType, id, userID string) (string, error) {
	if name, ok := LookupNameByID(fieldType, id, nil); ok {
		return name, nil
	}

	fields, err := store.FetchActiveFields(ctx, db, userID)
	if err != nil {
		return "", err
	}
	if name, ok := LookupNameByID(fieldType, id, fields); ok {
		return name, nil
	}
	return id, nil
}

// CreateField adds a custom taxonomy entry after checking the name against
// the combined default and active custom set, case-insensitively. The check
// is a fast descriptive rejection; the store's unique index remains the
// actual guarantee under concurrent creates.
func CreateField(ctx context.Context, db *sql.DB, fieldType model.FieldType, name, userID string) (*model.TaxonomyField, error) {
	fields, err := store.FetchActiveFields(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	for _, opt := range AllForType(fieldType, fields) {
		if strings.EqualFold(opt.Name, name) {
			return nil, store.ErrDuplicateField
		}
	}

	return store.CreateField(ctx, db, fieldType, name, userID)
}
