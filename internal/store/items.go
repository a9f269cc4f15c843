package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/model"
)

// ErrNotFound is returned when a guarded mutation matches no row, either
// because the ID does not exist, the row belongs to another user, or the
// row is not in the expected lifecycle state.
var ErrNotFound = errors.New("item not found")

const itemColumns = `id, user_id, name, category, category_id, condition, condition_id,
	subcategory, subcategory_id, manufacturer, pattern, year_manufactured,
	description, location, purchase_price, current_value, quantity,
	purchase_date, photo_url, deleted, favorite, created_at, updated_at`

// scanItem scans one item row from either *sql.Row or *sql.Rows.
func scanItem(s interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	var categoryID, conditionID, subcategoryID, photoURL sql.NullString
	var year sql.NullInt64
	var purchaseDate sql.NullTime

	err := s.Scan(&item.ID, &item.UserID, &item.Name,
		&item.Category, &categoryID, &item.Condition, &conditionID,
		&item.Subcategory, &subcategoryID, &item.Manufacturer, &item.Pattern,
		&year, &item.Description, &item.Location,
		&item.PurchasePrice, &item.CurrentValue, &item.Quantity,
		&purchaseDate, &photoURL, &item.Deleted, &item.Favorite,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		item.CategoryID = &categoryID.String
	}
	if conditionID.Valid {
		item.ConditionID = &conditionID.String
	}
	if subcategoryID.Valid {
		item.SubcategoryID = &subcategoryID.String
	}
	if photoURL.Valid {
		item.PhotoURL = &photoURL.String
	}
	if year.Valid {
		y := int(year.Int64)
		item.YearManufactured = &y
	}
	if purchaseDate.Valid {
		d := purchaseDate.Time
		item.PurchaseDate = &d
	}
	return item, nil
}

// InsertItem creates a new item row and returns it with the server-assigned
// timestamps. New items are always active.
func InsertItem(ctx context.Context, db *sql.DB, item *model.InventoryItem) (*model.InventoryItem, error) {
	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, user_id, name, category, category_id, condition, condition_id,
		     subcategory, subcategory_id, manufacturer, pattern, year_manufactured,
		     description, location, purchase_price, current_value, quantity,
		     purchase_date, photo_url, favorite)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, item.UserID, item.Name,
		item.Category, item.CategoryID, item.Condition, item.ConditionID,
		item.Subcategory, item.SubcategoryID, item.Manufacturer, item.Pattern,
		item.YearManufactured, item.Description, item.Location,
		item.PurchasePrice.String(), item.CurrentValue.String(), item.Quantity,
		item.PurchaseDate, item.PhotoURL, item.Favorite,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, regardless of lifecycle state.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns a user's items in the requested view, newest first.
// The active and archived views partition the user's rows.
func ListItems(ctx context.Context, db *sql.DB, userID string, view model.ViewMode) ([]model.InventoryItem, error) {
	deleted := 0
	if view == model.ViewArchived {
		deleted = 1
	}

	// rowid breaks ties between rows created within the same second.
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE user_id = ? AND deleted = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID, deleted,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ItemPatch describes a partial item update. Nil fields are left untouched.
type ItemPatch struct {
	Name             *string
	Category         *model.TaxonomyRef
	Condition        *model.TaxonomyRef
	Subcategory      *model.TaxonomyRef
	Manufacturer     *string
	Pattern          *string
	YearManufactured *int
	Description      *string
	Location         *string
	PurchasePrice    *decimal.Decimal
	CurrentValue     *decimal.Decimal
	Quantity         *int
	PurchaseDate     *time.Time
	PhotoURL         *string
	Favorite         *bool
}

// UpdateItem applies a partial update to an item owned by userID and
// refreshes updated_at. Returns ErrNotFound if no row matches.
func UpdateItem(ctx context.Context, db *sql.DB, id, userID string, patch ItemPatch) error {
	var set []string
	var args []any

	add := func(column string, value any) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", patch.Category.Text)
		add("category_id", patch.Category.ID)
	}
	if patch.Condition != nil {
		add("condition", patch.Condition.Text)
		add("condition_id", patch.Condition.ID)
	}
	if patch.Subcategory != nil {
		add("subcategory", patch.Subcategory.Text)
		add("subcategory_id", patch.Subcategory.ID)
	}
	if patch.Manufacturer != nil {
		add("manufacturer", *patch.Manufacturer)
	}
	if patch.Pattern != nil {
		add("pattern", *patch.Pattern)
	}
	if patch.YearManufactured != nil {
		add("year_manufactured", *patch.YearManufactured)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.PurchasePrice != nil {
		add("purchase_price", patch.PurchasePrice.String())
	}
	if patch.CurrentValue != nil {
		add("current_value", patch.CurrentValue.String())
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if patch.PurchaseDate != nil {
		add("purchase_date", *patch.PurchaseDate)
	}
	if patch.PhotoURL != nil {
		add("photo_url", *patch.PhotoURL)
	}
	if patch.Favorite != nil {
		add("favorite", *patch.Favorite)
	}

	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id, userID)

	result, err := db.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(set, ", ")+` WHERE id = ? AND user_id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ArchiveItem atomically flips an active item to archived. The transition is
// guarded by both the item ID and the owning user ID.
func ArchiveItem(ctx context.Context, db *sql.DB, id, userID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND deleted = 0`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("archiving item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("archiving item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RestoreItem is the inverse transition of ArchiveItem, with the same guard.
func RestoreItem(ctx context.Context, db *sql.DB, id, userID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND deleted = 1`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("restoring item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("restoring item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
