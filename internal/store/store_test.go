package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/db"
	"github.com/anakralj/vitrina/internal/model"
)

// createTestUser inserts a user and returns its ID. Most store tables have a
// foreign key to users, so nearly every test needs one.
func createTestUser(t *testing.T, database *sql.DB, email string) string {
	t.Helper()

	user, err := CreateUser(context.Background(), database, email, "hash", "Test Collector")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user.ID
}

// createTestItem inserts a minimal item for the given user.
func createTestItem(t *testing.T, database *sql.DB, userID, name string) *model.InventoryItem {
	t.Helper()

	item, err := InsertItem(context.Background(), database, &model.InventoryItem{
		UserID:       userID,
		Name:         name,
		Quantity:     1,
		CurrentValue: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	return item
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return db.NewTestDB(t)
}
