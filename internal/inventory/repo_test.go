package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	"github.com/orangegegege/equipment-manager/pkg/pagination"
)

func TestAdjustBorrowedClampsIntoRange(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, models.EquipmentItem{Name: "Tripod", TotalQty: 5, BorrowedQty: 2})

	updated, err := repo.AdjustBorrowed(ctx, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.BorrowedQty)

	// Over the top clamps to total, never past it.
	updated, err = repo.AdjustBorrowed(ctx, item.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.BorrowedQty)

	// Below zero clamps to zero.
	updated, err = repo.AdjustBorrowed(ctx, item.ID, -100)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.BorrowedQty)
}

func TestAdjustBorrowedUnknownItem(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.AdjustBorrowed(context.Background(), uuid.New(), 1)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestReserveStockConditionalUpdate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, models.EquipmentItem{Name: "Camera", TotalQty: 5})

	ok, err := repo.ReserveStock(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only 2 left now, the second 3-unit claim must lose.
	ok, err = repo.ReserveStock(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.BorrowedQty)
}

func TestReserveStockRejectsNonNormalState(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, models.EquipmentItem{
		Name:     "Drill",
		TotalQty: 5,
		State:    enums.ItemStateUnderRepair,
	})

	ok, err := repo.ReserveStock(ctx, item.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "under repair must block reservations even with stock left")
}

func TestOverrideBorrowed(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, models.EquipmentItem{Name: "Cable", TotalQty: 10, BorrowedQty: 7})

	require.NoError(t, repo.OverrideBorrowed(ctx, item.ID, 2))

	reloaded, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.BorrowedQty)

	err = repo.OverrideBorrowed(ctx, uuid.New(), 1)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListFiltersAndPagination(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedItem(t, db, models.EquipmentItem{Name: "Canon R5", Category: enums.EquipmentCategoryCamera, TotalQty: 2})
	seedItem(t, db, models.EquipmentItem{Name: "Sony A7", Category: enums.EquipmentCategoryCamera, TotalQty: 1})
	seedItem(t, db, models.EquipmentItem{Name: "Shotgun Mic", Category: enums.EquipmentCategoryAudio, TotalQty: 4})

	camera := enums.EquipmentCategoryCamera
	page, err := repo.List(ctx, ListQuery{Category: &camera, Pagination: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = repo.List(ctx, ListQuery{Query: "shotgun", Pagination: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Shotgun Mic", page.Items[0].Name)

	page, err = repo.List(ctx, ListQuery{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.List(ctx, ListQuery{Pagination: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestDeleteRemovesRow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, models.EquipmentItem{Name: "Lantern", TotalQty: 1})

	require.NoError(t, repo.Delete(ctx, item.ID))

	_, err := repo.GetByID(ctx, item.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.Delete(ctx, item.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
