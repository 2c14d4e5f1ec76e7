package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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
	require.NoError(t, db.Exec(schema).Error)
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
