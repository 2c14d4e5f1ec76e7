package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	"github.com/orangegegege/equipment-manager/pkg/pagination"
)

// Repository manages persistence for equipment items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.EquipmentItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EquipmentItem, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Update(ctx context.Context, item *models.EquipmentItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustBorrowed(ctx context.Context, id uuid.UUID, delta int) (*models.EquipmentItem, error)
	ReserveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	OverrideBorrowed(ctx context.Context, id uuid.UUID, borrowedQty int) error
}

// ListQuery carries list filters plus cursor pagination inputs.
type ListQuery struct {
	Query      string
	Category   *enums.EquipmentCategory
	State      *enums.ItemState
	Pagination pagination.Params
}

// ListResult is one page of items plus the cursor for the next page.
type ListResult struct {
	Items      []models.EquipmentItem
	NextCursor string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an equipment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.EquipmentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EquipmentItem, error) {
	var item models.EquipmentItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.EquipmentItem{})

	if query.Category != nil {
		qb = qb.Where("category = ?", *query.Category)
	}
	if query.State != nil {
		qb = qb.Where("state = ?", *query.State)
	}
	if search := strings.TrimSpace(query.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("LOWER(name) LIKE ?", pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.Timestamp, cursor.Timestamp, cursor.ID)
	}

	var items []models.EquipmentItem
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&items).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(items) > pageSize {
		items = items[:pageSize]
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Items: items, NextCursor: nextCursor}, nil
}

func (r *repository) Update(ctx context.Context, item *models.EquipmentItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.EquipmentItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustBorrowed applies a clamped delta to borrowed_qty in a single UPDATE,
// so 0 <= borrowed_qty <= total_qty holds no matter what delta arrives.
func (r *repository) AdjustBorrowed(ctx context.Context, id uuid.UUID, delta int) (*models.EquipmentItem, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EquipmentItem{}).
		Where("id = ?", id).
		Update("borrowed_qty", gorm.Expr(
			"CASE WHEN borrowed_qty + ? < 0 THEN 0 WHEN borrowed_qty + ? > total_qty THEN total_qty ELSE borrowed_qty + ? END",
			delta, delta, delta,
		))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// ReserveStock increments borrowed_qty only while stock remains and the item
// is in its normal state. Zero rows affected means the reservation lost.
func (r *repository) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EquipmentItem{}).
		Where("id = ? AND borrowed_qty + ? <= total_qty AND state = ?", id, qty, enums.ItemStateNormal).
		Update("borrowed_qty", gorm.Expr("borrowed_qty + ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) OverrideBorrowed(ctx context.Context, id uuid.UUID, borrowedQty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.EquipmentItem{}).
		Where("id = ?", id).
		Update("borrowed_qty", borrowedQty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
