// Package inventory owns the canonical view of a user's collectible items.
// All item mutations go through the Synchronizer, which resolves taxonomy
// names to IDs before writing and refetches the full list after every write
// instead of patching locally. Refetching recomputes display names from the
// current taxonomy state on every call, so a custom field renamed or
// deactivated elsewhere can never leave a stale name in the cache.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/model"
	"github.com/anakralj/vitrina/internal/notify"
	"github.com/anakralj/vitrina/internal/store"
	"github.com/anakralj/vitrina/internal/taxonomy"
)

// ErrNotAuthenticated is returned by every operation invoked without a user.
var ErrNotAuthenticated = errors.New("user not authenticated")

// Store is the persistent-store capability the Synchronizer writes through.
// *store.SQL implements it; tests substitute failing wrappers.
type Store interface {
	ListItems(ctx context.Context, userID string, view model.ViewMode) ([]model.InventoryItem, error)
	GetItem(ctx context.Context, id string) (*model.InventoryItem, error)
	InsertItem(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id, userID string, patch store.ItemPatch) error
	ArchiveItem(ctx context.Context, id, userID string) error
	RestoreItem(ctx context.Context, id, userID string) error
	FetchActiveFields(ctx context.Context, userID string) ([]model.TaxonomyField, error)
	RecordValuation(ctx context.Context, itemID, userID string, value decimal.Decimal) error
}

type cacheKey struct {
	userID string
	view   model.ViewMode
}

// Synchronizer is the sole writer of item mutations and keeps the last
// fetched list per user and view. The cache is only ever replaced by a
// completed fetch, so a failed write leaves the previous state intact and
// concurrent fetches settle on whichever completes last.
type Synchronizer struct {
	store    Store
	notifier notify.Notifier

	mu    sync.RWMutex
	cache map[cacheKey][]model.InventoryItem
}

// NewSynchronizer creates a Synchronizer over the given store. The notifier
// may be nil, in which case notifications are dropped.
func NewSynchronizer(s Store, n notify.Notifier) *Synchronizer {
	return &Synchronizer{
		store:    s,
		notifier: n,
		cache:    make(map[cacheKey][]model.InventoryItem),
	}
}

func (s *Synchronizer) notify(title, body string) {
	if s.notifier != nil {
		s.notifier.Notify(title, body)
	}
}

// FetchItems returns a user's items in the requested view, newest first,
// with taxonomy display names recomputed from the current field state. A
// failure to load the custom field set degrades to the stored text values;
// it never fails the fetch.
func (s *Synchronizer) FetchItems(ctx context.Context, userID string, view model.ViewMode) ([]model.InventoryItem, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if !view.Valid() {
		return nil, fmt.Errorf("invalid view mode %q", view)
	}

	items, err := s.store.ListItems(ctx, userID, view)
	if err != nil {
		return nil, err
	}

	fields, err := s.store.FetchActiveFields(ctx, userID)
	if err != nil {
		slog.Warn("taxonomy hydration degraded to stored names", "user", userID, "error", err)
		fields = nil
	}
	for i := range items {
		hydrate(&items[i], fields)
	}

	s.mu.Lock()
	s.cache[cacheKey{userID, view}] = items
	s.mu.Unlock()

	return items, nil
}

// Cached returns the most recently fetched list for a user and view, without
// touching the store. The slice must not be mutated by callers.
func (s *Synchronizer) Cached(userID string, view model.ViewMode) []model.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[cacheKey{userID, view}]
}

// hydrate recomputes an item's display names from its taxonomy IDs. A miss
// keeps the text snapshotted at write time.
func hydrate(item *model.InventoryItem, fields []model.TaxonomyField) {
	if item.CategoryID != nil {
		if name, ok := taxonomy.LookupNameByID(model.FieldCategory, *item.CategoryID, fields); ok {
			item.Category = name
		}
	}
	if item.ConditionID != nil {
		if name, ok := taxonomy.LookupNameByID(model.FieldCondition, *item.ConditionID, fields); ok {
			item.Condition = name
		}
	}
	if item.SubcategoryID != nil {
		if name, ok := taxonomy.LookupNameByID(model.FieldSubcategory, *item.SubcategoryID, fields); ok {
			item.Subcategory = name
		}
	}
}

// ItemInput carries the fields of a new item as received from the client.
// Quantity arrives as a JSON number and is validated to be a positive whole
// number before any write.
type ItemInput struct {
	Name             string
	Category         string
	Condition        string
	Subcategory      string
	Manufacturer     string
	Pattern          string
	YearManufactured *int
	Description      string
	Location         string
	PurchasePrice    decimal.Decimal
	CurrentValue     decimal.Decimal
	Quantity         float64
	PurchaseDate     *time.Time
	PhotoURL         *string
	Favorite         bool
}

func validateQuantity(q float64) (int, error) {
	if q != math.Trunc(q) || q < 1 {
		return 0, fmt.Errorf("quantity must be a positive whole number")
	}
	// Bound before converting; int(q) overflows for huge JSON numbers.
	if q > math.MaxInt32 {
		return 0, fmt.Errorf("quantity too large")
	}
	return int(q), nil
}

func validatePrice(name string, value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%s must not be negative", name)
	}
	return nil
}

// AddItem validates the input, resolves taxonomy names to IDs best-effort
// (a miss stores the raw text with no ID), writes the item and refetches the
// active view so the returned item matches what a fresh fetch produces.
func (s *Synchronizer) AddItem(ctx context.Context, userID string, input ItemInput) (*model.InventoryItem, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if input.Name == "" {
		return nil, fmt.Errorf("name required")
	}

	// All validation happens before any I/O.
	quantity, err := validateQuantity(input.Quantity)
	if err != nil {
		return nil, err
	}
	if err := validatePrice("purchase price", input.PurchasePrice); err != nil {
		return nil, err
	}
	if err := validatePrice("current value", input.CurrentValue); err != nil {
		return nil, err
	}

	fields := s.fieldsForWrite(ctx, userID)

	item := &model.InventoryItem{
		UserID:           userID,
		Name:             input.Name,
		Category:         input.Category,
		Condition:        input.Condition,
		Subcategory:      input.Subcategory,
		Manufacturer:     input.Manufacturer,
		Pattern:          input.Pattern,
		YearManufactured: input.YearManufactured,
		Description:      input.Description,
		Location:         input.Location,
		PurchasePrice:    input.PurchasePrice,
		CurrentValue:     input.CurrentValue,
		Quantity:         quantity,
		PurchaseDate:     input.PurchaseDate,
		PhotoURL:         input.PhotoURL,
		Favorite:         input.Favorite,
	}
	if input.Category != "" {
		item.CategoryID = taxonomy.LookupIDByName(model.FieldCategory, input.Category, fields)
	}
	if input.Condition != "" {
		item.ConditionID = taxonomy.LookupIDByName(model.FieldCondition, input.Condition, fields)
	}
	if input.Subcategory != "" {
		item.SubcategoryID = taxonomy.LookupIDByName(model.FieldSubcategory, input.Subcategory, fields)
	}

	created, err := s.store.InsertItem(ctx, item)
	if err != nil {
		s.notify("Add failed", fmt.Sprintf("%q could not be saved: %v", input.Name, err))
		return nil, err
	}

	if created.CurrentValue.IsPositive() {
		if err := s.store.RecordValuation(ctx, created.ID, userID, created.CurrentValue); err != nil {
			slog.Warn("recording initial valuation failed", "item", created.ID, "error", err)
		}
	}

	s.notify("Item added", created.Name)
	return s.refreshed(ctx, userID, created)
}

// ItemUpdate describes a partial item edit. Nil fields are left untouched;
// taxonomy fields are given as display names and re-resolved on write.
type ItemUpdate struct {
	Name             *string
	Category         *string
	Condition        *string
	Subcategory      *string
	Manufacturer     *string
	Pattern          *string
	YearManufactured *int
	Description      *string
	Location         *string
	PurchasePrice    *decimal.Decimal
	CurrentValue     *decimal.Decimal
	Quantity         *float64
	PurchaseDate     *time.Time
	PhotoURL         *string
	Favorite         *bool
}

// UpdateItem applies a partial edit to an item owned by userID, re-resolving
// any taxonomy names present in the patch, then refetches the item's view.
func (s *Synchronizer) UpdateItem(ctx context.Context, userID, id string, update ItemUpdate) (*model.InventoryItem, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	if update.Quantity != nil {
		if _, err := validateQuantity(*update.Quantity); err != nil {
			return nil, err
		}
	}
	if update.PurchasePrice != nil {
		if err := validatePrice("purchase price", *update.PurchasePrice); err != nil {
			return nil, err
		}
	}
	if update.CurrentValue != nil {
		if err := validatePrice("current value", *update.CurrentValue); err != nil {
			return nil, err
		}
	}

	previous, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if previous == nil || previous.UserID != userID {
		return nil, store.ErrNotFound
	}

	var fields []model.TaxonomyField
	if update.Category != nil || update.Condition != nil || update.Subcategory != nil {
		fields = s.fieldsForWrite(ctx, userID)
	}

	patch := store.ItemPatch{
		Name:             update.Name,
		Manufacturer:     update.Manufacturer,
		Pattern:          update.Pattern,
		YearManufactured: update.YearManufactured,
		Description:      update.Description,
		Location:         update.Location,
		PurchasePrice:    update.PurchasePrice,
		CurrentValue:     update.CurrentValue,
		PurchaseDate:     update.PurchaseDate,
		PhotoURL:         update.PhotoURL,
		Favorite:         update.Favorite,
	}
	if update.Quantity != nil {
		q, _ := validateQuantity(*update.Quantity)
		patch.Quantity = &q
	}
	if update.Category != nil {
		patch.Category = &model.TaxonomyRef{
			Text: *update.Category,
			ID:   taxonomy.LookupIDByName(model.FieldCategory, *update.Category, fields),
		}
	}
	if update.Condition != nil {
		patch.Condition = &model.TaxonomyRef{
			Text: *update.Condition,
			ID:   taxonomy.LookupIDByName(model.FieldCondition, *update.Condition, fields),
		}
	}
	if update.Subcategory != nil {
		patch.Subcategory = &model.TaxonomyRef{
			Text: *update.Subcategory,
			ID:   taxonomy.LookupIDByName(model.FieldSubcategory, *update.Subcategory, fields),
		}
	}

	if err := s.store.UpdateItem(ctx, id, userID, patch); err != nil {
		s.notify("Update failed", fmt.Sprintf("%q could not be saved: %v", previous.Name, err))
		return nil, err
	}

	if update.CurrentValue != nil && !previous.CurrentValue.Equal(*update.CurrentValue) {
		if err := s.store.RecordValuation(ctx, id, userID, *update.CurrentValue); err != nil {
			slog.Warn("recording valuation failed", "item", id, "error", err)
		}
	}

	s.notify("Item updated", previous.Name)
	return s.refreshed(ctx, userID, previous)
}

// Archive flips an active item to the archived view. The transition is
// guarded server-side by both the item ID and the owning user ID.
func (s *Synchronizer) Archive(ctx context.Context, userID, id string) error {
	return s.transition(ctx, userID, id, s.store.ArchiveItem, "Item archived", "Archive failed")
}

// Restore returns an archived item to the active view.
func (s *Synchronizer) Restore(ctx context.Context, userID, id string) error {
	return s.transition(ctx, userID, id, s.store.RestoreItem, "Item restored", "Restore failed")
}

func (s *Synchronizer) transition(ctx context.Context, userID, id string,
	op func(context.Context, string, string) error, okTitle, failTitle string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := op(ctx, id, userID); err != nil {
		s.notify(failTitle, err.Error())
		return err
	}

	// Both views changed; refetch them so neither partition goes stale.
	if _, err := s.FetchItems(ctx, userID, model.ViewActive); err != nil {
		slog.Warn("refetch after transition failed", "user", userID, "error", err)
	}
	if _, err := s.FetchItems(ctx, userID, model.ViewArchived); err != nil {
		slog.Warn("refetch after transition failed", "user", userID, "error", err)
	}

	s.notify(okTitle, id)
	return nil
}

// ToggleFavorite computes the opposite of the caller-supplied current flag
// and delegates to UpdateItem. Callers doing an optimistic flip pass the
// value they observed, not the one they are already rendering.
func (s *Synchronizer) ToggleFavorite(ctx context.Context, userID, id string, current bool) (*model.InventoryItem, error) {
	next := !current
	return s.UpdateItem(ctx, userID, id, ItemUpdate{Favorite: &next})
}

// fieldsForWrite loads the custom field set for name resolution on a write
// path. Resolution is best-effort there, so a fetch failure degrades to
// "nothing resolves" instead of blocking the write.
func (s *Synchronizer) fieldsForWrite(ctx context.Context, userID string) []model.TaxonomyField {
	fields, err := s.store.FetchActiveFields(ctx, userID)
	if err != nil {
		slog.Warn("taxonomy resolution degraded, storing names without IDs", "user", userID, "error", err)
		return nil
	}
	return fields
}

// refreshed performs the post-mutation refetch and returns the written
// item as the fresh fetch sees it. If the refetch fails the mutation still
// succeeded, so the pre-refetch item is returned rather than an error.
func (s *Synchronizer) refreshed(ctx context.Context, userID string, written *model.InventoryItem) (*model.InventoryItem, error) {
	view := model.ViewActive
	if written.Deleted {
		view = model.ViewArchived
	}

	items, err := s.FetchItems(ctx, userID, view)
	if err != nil {
		slog.Warn("refetch after mutation failed", "user", userID, "error", err)
		return written, nil
	}
	for i := range items {
		if items[i].ID == written.ID {
			return &items[i], nil
		}
	}
	return written, nil
}

// Stats summarizes a user's collection across both views, using the
// hydrated display names so per-category totals follow taxonomy renames.
func (s *Synchronizer) Stats(ctx context.Context, userID string) (*model.CollectionStats, error) {
	active, err := s.FetchItems(ctx, userID, model.ViewActive)
	if err != nil {
		return nil, err
	}
	archived, err := s.FetchItems(ctx, userID, model.ViewArchived)
	if err != nil {
		return nil, err
	}

	stats := &model.CollectionStats{
		ItemCount:     len(active),
		ArchivedCount: len(archived),
		TotalValue:    decimal.Zero,
	}

	byCategory := make(map[string]*model.CategoryTotal)
	for _, item := range active {
		if item.Favorite {
			stats.FavoriteCount++
		}
		value := item.CurrentValue.Mul(decimal.NewFromInt(int64(item.Quantity)))
		stats.TotalValue = stats.TotalValue.Add(value)

		category := item.Category
		if category == "" {
			category = "Uncategorized"
		}
		total, ok := byCategory[category]
		if !ok {
			total = &model.CategoryTotal{Category: category, TotalValue: decimal.Zero}
			byCategory[category] = total
		}
		total.ItemCount++
		total.TotalValue = total.TotalValue.Add(value)
	}

	for _, total := range byCategory {
		stats.ByCategory = append(stats.ByCategory, *total)
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})

	return stats, nil
}
