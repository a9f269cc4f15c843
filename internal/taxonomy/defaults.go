package taxonomy

import "github.com/anakralj/vitrina/internal/model"

// Option is one selectable taxonomy value, from either the default set or a
// user's custom entries.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Built-in taxonomy values. These exist for every user, are never stored,
// and cannot be deactivated. Custom entries extend them per user.
var defaultOptions = map[model.FieldType][]Option{
	model.FieldCategory: {
		{ID: "default-cat-crystal", Name: "Crystal"},
		{ID: "default-cat-stemware", Name: "Stemware"},
		{ID: "default-cat-barware", Name: "Barware"},
		{ID: "default-cat-vases", Name: "Vases"},
		{ID: "default-cat-figurines", Name: "Figurines"},
	},
	model.FieldCondition: {
		{ID: "default-cond-mint", Name: "Mint"},
		{ID: "default-cond-excellent", Name: "Excellent"},
		{ID: "default-cond-good", Name: "Good"},
		{ID: "default-cond-fair", Name: "Fair"},
		{ID: "default-cond-poor", Name: "Poor"},
	},
	// Subcategories have no defaults; they are entirely user-defined.
	model.FieldSubcategory: nil,
}

// DefaultsFor returns the built-in options for a field type.
func DefaultsFor(fieldType model.FieldType) []Option {
	return defaultOptions[fieldType]
}
