package borrow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/internal/cart"
	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:borrow_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS equipment_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  location TEXT,
  tags TEXT NOT NULL DEFAULT '{}',
  total_qty INTEGER NOT NULL DEFAULT 0,
  borrowed_qty INTEGER NOT NULL DEFAULT 0,
  state TEXT NOT NULL DEFAULT 'normal',
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	records := `
CREATE TABLE IF NOT EXISTS borrow_records (
  id TEXT PRIMARY KEY,
  equipment_id TEXT NOT NULL,
  borrower_name TEXT NOT NULL,
  borrower_contact TEXT,
  qty INTEGER NOT NULL,
  borrowed_at DATETIME NOT NULL,
  returned_at DATETIME,
  is_returned BOOLEAN NOT NULL DEFAULT FALSE,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(records).Error)
	return db
}

func seedItem(t *testing.T, db *gorm.DB, item models.EquipmentItem) models.EquipmentItem {
	t.Helper()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Category == "" {
		item.Category = enums.EquipmentCategoryMisc
	}
	if item.State == "" {
		item.State = enums.ItemStateNormal
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

// gormTxRunner mirrors the db client's transaction helper for tests.
type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeCart struct {
	lines   map[string][]cart.Line
	cleared []string
}

func newFakeCart() *fakeCart {
	return &fakeCart{lines: map[string][]cart.Line{}}
}

func (f *fakeCart) Lines(ctx context.Context, sessionID string) ([]cart.Line, error) {
	return f.lines[sessionID], nil
}

func (f *fakeCart) Clear(ctx context.Context, sessionID string) error {
	delete(f.lines, sessionID)
	f.cleared = append(f.cleared, sessionID)
	return nil
}
