package borrow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	"github.com/orangegegege/equipment-manager/pkg/pagination"
)

// RecordRepository manages persistence for the append-only borrow ledger.
type RecordRepository interface {
	WithTx(tx *gorm.DB) RecordRepository
	Create(ctx context.Context, record *models.BorrowRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BorrowRecord, error)
	List(ctx context.Context, query RecordListQuery) (*RecordListResult, error)
	ListOpenByBorrower(ctx context.Context, borrowerName string) ([]models.BorrowRecord, error)
	MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) (bool, error)
}

// RecordListQuery carries record list filters plus cursor pagination inputs.
type RecordListQuery struct {
	BorrowerName string
	ActiveOnly   bool
	Pagination   pagination.Params
}

// RecordListResult is one page of records joined with their item names.
type RecordListResult struct {
	Records    []RecordRow
	NextCursor string
}

// RecordRow is a borrow record joined with the item it references.
type RecordRow struct {
	models.BorrowRecord
	EquipmentName     string
	EquipmentCategory enums.EquipmentCategory
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository returns a borrow record repository bound to the provided database.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) WithTx(tx *gorm.DB) RecordRepository {
	if tx == nil {
		return r
	}
	return &recordRepository{db: tx}
}

func (r *recordRepository) Create(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) List(ctx context.Context, query RecordListQuery) (*RecordListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("borrow_records br").
		Select("br.*, COALESCE(ei.name, '') AS equipment_name, COALESCE(ei.category, '') AS equipment_category").
		Joins("LEFT JOIN equipment_items ei ON ei.id = br.equipment_id")

	if name := strings.TrimSpace(query.BorrowerName); name != "" {
		pattern := "%" + strings.ToLower(name) + "%"
		qb = qb.Where("LOWER(br.borrower_name) LIKE ?", pattern)
	}
	if query.ActiveOnly {
		qb = qb.Where("br.is_returned = ?", false)
	}

	if cursor != nil {
		qb = qb.Where("(br.borrowed_at < ?) OR (br.borrowed_at = ? AND br.id < ?)", cursor.Timestamp, cursor.Timestamp, cursor.ID)
	}

	var rows []RecordRow
	if err := qb.Order("br.borrowed_at DESC").Order("br.id DESC").Limit(limitWithBuffer).Scan(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.BorrowedAt, ID: last.ID})
	}

	return &RecordListResult{Records: rows, NextCursor: nextCursor}, nil
}

func (r *recordRepository) ListOpenByBorrower(ctx context.Context, borrowerName string) ([]models.BorrowRecord, error) {
	var records []models.BorrowRecord
	if err := r.db.WithContext(ctx).
		Where("borrower_name = ? AND is_returned = ?", borrowerName, false).
		Order("borrowed_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkReturned closes the record only while it is still open, so a racing
// double return cannot decrement the ledger twice.
func (r *recordRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ? AND is_returned = ?", id, false).
		Updates(map[string]any{
			"is_returned": true,
			"returned_at": returnedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
