package borrow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/internal/cart"
	"github.com/orangegegege/equipment-manager/internal/inventory"
	"github.com/orangegegege/equipment-manager/pkg/db/models"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
	"github.com/orangegegege/equipment-manager/pkg/metrics"
	"github.com/orangegegege/equipment-manager/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccess interface {
	Lines(ctx context.Context, sessionID string) ([]cart.Line, error)
	Clear(ctx context.Context, sessionID string) error
}

// Service applies and reverses borrow transactions against the ledger.
type Service interface {
	Commit(ctx context.Context, sessionID string, input CommitInput) (*CommitResult, error)
	Return(ctx context.Context, recordID uuid.UUID) (*RecordDTO, error)
	ReturnAllForBorrower(ctx context.Context, borrowerName string) (*BulkReturnResult, error)
	ListRecords(ctx context.Context, input ListRecordsInput) (*ListRecordsResult, error)
}

// ListRecordsInput carries record list filters from the API layer.
type ListRecordsInput struct {
	BorrowerName string
	ActiveOnly   bool
	Pagination   pagination.Params
}

type service struct {
	tx      txRunner
	items   inventory.Repository
	records RecordRepository
	carts   cartAccess
	logg    *logger.Logger
	metrics *metrics.WorkflowMetrics
}

// NewService wires a borrow service. The metrics handle may be nil.
func NewService(tx txRunner, items inventory.Repository, records RecordRepository, carts cartAccess, logg *logger.Logger, workflow *metrics.WorkflowMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if items == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if records == nil {
		return nil, fmt.Errorf("record repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:      tx,
		items:   items,
		records: records,
		carts:   carts,
		logg:    logg,
		metrics: workflow,
	}, nil
}

// Commit turns the session cart into borrow records. Each line claims stock
// through a conditional update inside one transaction; any line that cannot
// claim aborts the whole commit so no partial application is observable.
func (s *service) Commit(ctx context.Context, sessionID string, input CommitInput) (*CommitResult, error) {
	started := time.Now()

	borrower := strings.TrimSpace(input.BorrowerName)
	if borrower == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrower name is required")
	}

	lines, err := s.carts.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	borrowedAt := time.Now().UTC()
	if input.BorrowedAt != nil {
		borrowedAt = input.BorrowedAt.UTC()
	}

	result := &CommitResult{
		BorrowerName:    borrower,
		BorrowerContact: input.BorrowerContact,
		BorrowedAt:      borrowedAt,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.items.WithTx(tx)
		recordRepo := s.records.WithTx(tx)

		for _, line := range lines {
			item, err := itemRepo.GetByID(ctx, line.EquipmentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, "an item in the cart no longer exists").
						WithDetails(map[string]any{"equipment_id": line.EquipmentID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
			}

			claimed, err := itemRepo.ReserveStock(ctx, line.EquipmentID, line.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming stock")
			}
			if !claimed {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("%q no longer has %d available", item.Name, line.Qty)).
					WithDetails(map[string]any{
						"equipment_id": item.ID,
						"name":         item.Name,
						"requested":    line.Qty,
						"available":    item.AvailableQty(),
					})
			}

			record := &models.BorrowRecord{
				EquipmentID:     line.EquipmentID,
				BorrowerName:    borrower,
				BorrowerContact: input.BorrowerContact,
				Qty:             line.Qty,
				BorrowedAt:      borrowedAt,
			}
			if err := recordRepo.Create(ctx, record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating borrow record")
			}

			result.Records = append(result.Records, toRecordDTO(*record, item.Name, item.Category))
			result.Lines = append(result.Lines, CommittedLine{
				EquipmentID: item.ID,
				Name:        item.Name,
				Category:    item.Category,
				Qty:         line.Qty,
			})
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncBorrowConflict()
			s.metrics.ObserveBorrowCommit("conflict", time.Since(started))
		} else {
			s.metrics.ObserveBorrowCommit("error", time.Since(started))
		}
		return nil, err
	}

	// The commit is durable; a cart that fails to clear only means a stale
	// cart render until the session expires.
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "clearing cart after borrow commit failed")
	}

	s.metrics.ObserveBorrowCommit("success", time.Since(started))
	s.logg.Info(s.logg.WithSessionID(ctx, sessionID),
		fmt.Sprintf("borrow committed: %d lines for %s", len(result.Lines), borrower))

	return result, nil
}

// Return reverses a single record. Already-returned is terminal, not
// idempotent-silent.
func (s *service) Return(ctx context.Context, recordID uuid.UUID) (*RecordDTO, error) {
	if recordID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}

	var dto RecordDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.items.WithTx(tx)
		recordRepo := s.records.WithTx(tx)

		record, err := recordRepo.GetByID(ctx, recordID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "borrow record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading borrow record")
		}
		if record.IsReturned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "borrow record is already returned")
		}

		item, err := itemRepo.AdjustBorrowed(ctx, record.EquipmentID, -record.Qty)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "equipment item for record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reversing ledger adjustment")
		}

		returnedAt := time.Now().UTC()
		closed, err := recordRepo.MarkReturned(ctx, recordID, returnedAt)
		if err != nil {
			// The ledger decrement already ran inside this transaction; the
			// rollback undoes it, but the broken invariant gets operator
			// visibility either way.
			s.logg.Error(ctx, "return failed after ledger decrement, rolling back", err)
			return pkgerrors.Wrap(pkgerrors.CodeInconsistency, err, "closing borrow record")
		}
		if !closed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "borrow record is already returned")
		}

		record.IsReturned = true
		record.ReturnedAt = &returnedAt
		dto = toRecordDTO(*record, item.Name, item.Category)
		return nil
	})
	if err != nil {
		s.metrics.IncReturn(returnOutcome(err))
		return nil, err
	}

	s.metrics.IncReturn("success")
	return &dto, nil
}

// ReturnAllForBorrower reverses every open record for the borrower,
// continuing past individual failures.
func (s *service) ReturnAllForBorrower(ctx context.Context, borrowerName string) (*BulkReturnResult, error) {
	borrower := strings.TrimSpace(borrowerName)
	if borrower == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrower name is required")
	}

	records, err := s.records.ListOpenByBorrower(ctx, borrower)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing open records")
	}

	result := &BulkReturnResult{BorrowerName: borrower}
	var failures error
	for _, record := range records {
		if _, err := s.Return(ctx, record.ID); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("record %s: %s", record.ID, err))
			failures = multierr.Append(failures, err)
			continue
		}
		result.Returned++
	}

	if failures != nil {
		s.logg.Warn(ctx, fmt.Sprintf("bulk return for %s finished with %d failures: %v", borrower, result.Failed, failures))
	}
	return result, nil
}

func (s *service) ListRecords(ctx context.Context, input ListRecordsInput) (*ListRecordsResult, error) {
	page, err := s.records.List(ctx, RecordListQuery{
		BorrowerName: input.BorrowerName,
		ActiveOnly:   input.ActiveOnly,
		Pagination:   input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing borrow records")
	}

	records := make([]RecordDTO, 0, len(page.Records))
	for _, row := range page.Records {
		records = append(records, toRecordDTO(row.BorrowRecord, row.EquipmentName, row.EquipmentCategory))
	}
	return &ListRecordsResult{Records: records, NextCursor: page.NextCursor}, nil
}

func returnOutcome(err error) string {
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return "not_found"
	case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
		return "already_returned"
	case pkgerrors.IsCode(err, pkgerrors.CodeInconsistency):
		return "inconsistency"
	default:
		return "error"
	}
}
