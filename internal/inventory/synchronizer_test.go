package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/db"
	"github.com/anakralj/vitrina/internal/model"
	"github.com/anakralj/vitrina/internal/notify"
	"github.com/anakralj/vitrina/internal/store"
	"github.com/anakralj/vitrina/internal/taxonomy"
)

// testEnv wires a Synchronizer over a fresh in-memory store and records
// every notification it emits.
type testEnv struct {
	sync     *Synchronizer
	database *sql.DB
	userID   string
	notes    *[]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := db.NewTestDB(t)
	user, err := store.CreateUser(context.Background(), database, "collector@example.com", "hash", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	notes := &[]string{}
	n := notify.Func(func(title, body string) {
		*notes = append(*notes, title)
	})

	return &testEnv{
		sync:     NewSynchronizer(&store.SQL{DB: database}, n),
		database: database,
		userID:   user.ID,
		notes:    notes,
	}
}

func (e *testEnv) hasNote(title string) bool {
	for _, n := range *e.notes {
		if n == title {
			return true
		}
	}
	return false
}

func TestOperationsRequireUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.sync.FetchItems(ctx, "", model.ViewActive); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("FetchItems: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := env.sync.AddItem(ctx, "", ItemInput{Name: "Bowl", Quantity: 1}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("AddItem: expected ErrNotAuthenticated, got %v", err)
	}
	if err := env.sync.Archive(ctx, "", "some-id"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Archive: expected ErrNotAuthenticated, got %v", err)
	}
}

func TestFetchItemsRejectsUnknownView(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sync.FetchItems(context.Background(), env.userID, "everything")
	if err == nil || !strings.Contains(err.Error(), "invalid view mode") {
		t.Errorf("expected invalid view mode error, got %v", err)
	}
}

func TestAddItemValidatesQuantityBeforeWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 9.3e18 is a whole number but overflows a machine int on conversion.
	for _, quantity := range []float64{0, -1, 1.5, 9.3e18} {
		_, err := env.sync.AddItem(ctx, env.userID, ItemInput{Name: "Bad", Quantity: quantity})
		if err == nil {
			t.Errorf("expected rejection for quantity %v", quantity)
		}
	}

	// No row reached the store.
	items, err := store.ListItems(ctx, env.database, env.userID, model.ViewActive)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no rows after rejected writes, got %d", len(items))
	}

	item, err := env.sync.AddItem(ctx, env.userID, ItemInput{Name: "Good", Quantity: 3})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("expected quantity stored as exactly 3, got %d", item.Quantity)
	}
}

func TestAddItemRejectsNegativePrices(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sync.AddItem(context.Background(), env.userID, ItemInput{
		Name:         "Bowl",
		Quantity:     1,
		CurrentValue: decimal.NewFromInt(-5),
	})
	if err == nil {
		t.Error("expected rejection for negative current value")
	}
}

func TestAddItemResolvesTaxonomyBestEffort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := taxonomy.CreateField(ctx, env.database, model.FieldCategory, "Depression Glass", env.userID)
	if err != nil {
		t.Fatalf("CreateField: %v", err)
	}

	item, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name:      "Pink Bowl",
		Category:  "Depression Glass",
		Condition: "Mint",    // default set
		Pattern:   "Adam",    // free text, no taxonomy
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.CategoryID == nil || *item.CategoryID != created.ID {
		t.Errorf("expected category resolved to %q, got %v", created.ID, item.CategoryID)
	}
	if item.ConditionID == nil || *item.ConditionID != "default-cond-mint" {
		t.Errorf("expected condition resolved to default ID, got %v", item.ConditionID)
	}

	// An unresolvable name does not block creation; the text is kept alone.
	degraded, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name:     "Mystery Vase",
		Category: "Uranium Glass",
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if degraded.CategoryID != nil {
		t.Errorf("expected no category ID for unresolvable name, got %v", *degraded.CategoryID)
	}
	if degraded.Category != "Uranium Glass" {
		t.Errorf("expected raw text kept, got %q", degraded.Category)
	}

	if !env.hasNote("Item added") {
		t.Error("expected a success notification")
	}
}

func TestFetchItemsRehydratesRenamedField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := taxonomy.CreateField(ctx, env.database, model.FieldCategory, "Depression Glass", env.userID); err != nil {
		t.Fatalf("CreateField: %v", err)
	}
	if _, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name: "Pink Bowl", Category: "Depression Glass", Quantity: 1,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Rename the field behind the item's back; the fetch recomputes the
	// display name from the ID.
	if _, err := env.database.ExecContext(ctx,
		`UPDATE taxonomy_fields SET field_name = 'Depression Era Glass' WHERE field_name = 'Depression Glass'`,
	); err != nil {
		t.Fatalf("renaming field: %v", err)
	}

	items, err := env.sync.FetchItems(ctx, env.userID, model.ViewActive)
	if err != nil {
		t.Fatalf("FetchItems: %v", err)
	}
	if items[0].Category != "Depression Era Glass" {
		t.Errorf("expected rehydrated name, got %q", items[0].Category)
	}
}

func TestFetchItemsFallsBackToStoredText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := taxonomy.CreateField(ctx, env.database, model.FieldCategory, "Depression Glass", env.userID); err != nil {
		t.Fatalf("CreateField: %v", err)
	}
	if _, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name: "Pink Bowl", Category: "Depression Glass", Quantity: 1,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Deactivating the field leaves the item's ID dangling; the stored text
	// snapshot is what the user keeps seeing.
	if err := store.DeactivateField(ctx, env.database, model.FieldCategory, "Depression Glass", env.userID); err != nil {
		t.Fatalf("DeactivateField: %v", err)
	}

	items, err := env.sync.FetchItems(ctx, env.userID, model.ViewActive)
	if err != nil {
		t.Fatalf("FetchItems: %v", err)
	}
	if items[0].Category != "Depression Glass" {
		t.Errorf("expected stored text fallback, got %q", items[0].Category)
	}
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := taxonomy.CreateField(ctx, env.database, model.FieldCategory, "Depression Glass", env.userID); err != nil {
		t.Fatalf("CreateField: %v", err)
	}

	added, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name:         "Pink Bowl",
		Category:     "Depression Glass",
		Quantity:     2,
		CurrentValue: decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	active, err := env.sync.FetchItems(ctx, env.userID, model.ViewActive)
	if err != nil {
		t.Fatalf("FetchItems: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Pink Bowl" {
		t.Fatalf("expected one active item 'Pink Bowl', got %+v", active)
	}
	if active[0].Category != "Depression Glass" || active[0].CategoryID == nil {
		t.Fatalf("expected resolved category, got %+v", active[0])
	}

	if err := env.sync.Archive(ctx, env.userID, added.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	active, _ = env.sync.FetchItems(ctx, env.userID, model.ViewActive)
	if len(active) != 0 {
		t.Fatalf("expected empty active view after archive, got %d items", len(active))
	}
	archived, _ := env.sync.FetchItems(ctx, env.userID, model.ViewArchived)
	if len(archived) != 1 {
		t.Fatalf("expected one archived item, got %d", len(archived))
	}

	if err := env.sync.Restore(ctx, env.userID, added.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	active, _ = env.sync.FetchItems(ctx, env.userID, model.ViewActive)
	archived, _ = env.sync.FetchItems(ctx, env.userID, model.ViewArchived)
	if len(active) != 1 || len(archived) != 0 {
		t.Fatalf("expected item back in active view, got %d active / %d archived", len(active), len(archived))
	}

	// Observably equal to the original in all fields except updated_at.
	got := active[0]
	if got.ID != added.ID || got.Name != added.Name || got.Quantity != added.Quantity ||
		!got.CurrentValue.Equal(added.CurrentValue) || got.Category != added.Category ||
		!got.CreatedAt.Equal(added.CreatedAt) {
		t.Errorf("round-tripped item differs: %+v vs %+v", got, added)
	}

	if !env.hasNote("Item archived") || !env.hasNote("Item restored") {
		t.Error("expected archive and restore notifications")
	}
}

func TestToggleFavoriteDelegates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added, err := env.sync.AddItem(ctx, env.userID, ItemInput{Name: "Goblet", Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	item, err := env.sync.ToggleFavorite(ctx, env.userID, added.ID, added.Favorite)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !item.Favorite {
		t.Error("expected favorite set")
	}

	item, err = env.sync.ToggleFavorite(ctx, env.userID, added.ID, item.Favorite)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if item.Favorite {
		t.Error("expected favorite cleared")
	}
}

func TestUpdateItemGuardsOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stranger, err := store.CreateUser(ctx, env.database, "stranger@example.com", "hash", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	added, err := env.sync.AddItem(ctx, env.userID, ItemInput{Name: "Guarded", Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	name := "Hijacked"
	_, err = env.sync.UpdateItem(ctx, stranger.ID, added.ID, ItemUpdate{Name: &name})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cross-user update, got %v", err)
	}
}

// failingStore wraps a Store and fails every UpdateItem call.
type failingStore struct {
	Store
}

func (f *failingStore) UpdateItem(ctx context.Context, id, userID string, patch store.ItemPatch) error {
	return fmt.Errorf("store unavailable")
}

// fieldFailStore wraps a Store and fails every FetchActiveFields call.
type fieldFailStore struct {
	Store
}

func (f *fieldFailStore) FetchActiveFields(ctx context.Context, userID string) ([]model.TaxonomyField, error) {
	return nil, fmt.Errorf("field store unavailable")
}

func TestFieldFetchFailureNeverFailsTheFetch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := taxonomy.CreateField(ctx, env.database, model.FieldCategory, "Depression Glass", env.userID); err != nil {
		t.Fatalf("CreateField: %v", err)
	}
	if _, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name: "Pink Bowl", Category: "Depression Glass", Quantity: 1,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	broken := NewSynchronizer(&fieldFailStore{Store: &store.SQL{DB: env.database}}, nil)

	// Hydration degrades to the stored text instead of failing the fetch.
	items, err := broken.FetchItems(ctx, env.userID, model.ViewActive)
	if err != nil {
		t.Fatalf("expected degraded fetch, got error: %v", err)
	}
	if len(items) != 1 || items[0].Category != "Depression Glass" {
		t.Errorf("expected stored text kept, got %+v", items)
	}

	// Writes degrade to storing names without IDs rather than blocking.
	degraded, err := broken.AddItem(ctx, env.userID, ItemInput{
		Name: "Green Cup", Category: "Depression Glass", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if degraded.CategoryID != nil {
		t.Errorf("expected no resolved ID while fields are unavailable, got %v", *degraded.CategoryID)
	}
	if degraded.Category != "Depression Glass" {
		t.Errorf("expected raw text kept, got %q", degraded.Category)
	}
}

func TestFailedWriteLeavesCacheIntact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added, err := env.sync.AddItem(ctx, env.userID, ItemInput{Name: "Stable", Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	before := env.sync.Cached(env.userID, model.ViewActive)
	if len(before) != 1 {
		t.Fatalf("expected primed cache, got %d items", len(before))
	}

	broken := NewSynchronizer(&failingStore{Store: &store.SQL{DB: env.database}}, nil)
	if _, err := broken.FetchItems(ctx, env.userID, model.ViewActive); err != nil {
		t.Fatalf("FetchItems: %v", err)
	}

	name := "Changed"
	if _, err := broken.UpdateItem(ctx, env.userID, added.ID, ItemUpdate{Name: &name}); err == nil {
		t.Fatal("expected update to fail")
	}

	cached := broken.Cached(env.userID, model.ViewActive)
	if len(cached) != 1 || cached[0].Name != "Stable" {
		t.Errorf("expected cache unchanged after failed write, got %+v", cached)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name: "Pink Bowl", Category: "Crystal", Quantity: 2,
		CurrentValue: decimal.NewFromInt(40), Favorite: true,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := env.sync.AddItem(ctx, env.userID, ItemInput{
		Name: "Odd Cup", Quantity: 1, CurrentValue: decimal.NewFromInt(5),
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	archived, err := env.sync.AddItem(ctx, env.userID, ItemInput{Name: "Broken", Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := env.sync.Archive(ctx, env.userID, archived.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	stats, err := env.sync.Stats(ctx, env.userID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ItemCount != 2 || stats.ArchivedCount != 1 || stats.FavoriteCount != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	// 2 × 40 + 1 × 5.
	if !stats.TotalValue.Equal(decimal.NewFromInt(85)) {
		t.Errorf("expected total value 85, got %s", stats.TotalValue)
	}
	if len(stats.ByCategory) != 2 || stats.ByCategory[0].Category != "Crystal" || stats.ByCategory[1].Category != "Uncategorized" {
		t.Errorf("unexpected category rollup: %+v", stats.ByCategory)
	}
}
