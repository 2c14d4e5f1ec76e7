package borrow

import (
	"time"

	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
)

// CommitInput is what a borrower supplies when turning their cart into
// durable records. BorrowedAt may be back- or future-dated; it defaults to
// the commit time.
type CommitInput struct {
	BorrowerName    string     `json:"borrower_name"`
	BorrowerContact string     `json:"borrower_contact"`
	BorrowedAt      *time.Time `json:"borrowed_at"`
}

// CommittedLine is one applied cart line, carrying enough item detail for
// downstream manifest generation.
type CommittedLine struct {
	EquipmentID uuid.UUID               `json:"equipment_id"`
	Name        string                  `json:"name"`
	Category    enums.EquipmentCategory `json:"category"`
	Qty         int                     `json:"qty"`
}

// CommitResult is the durable outcome of a borrow commit.
type CommitResult struct {
	BorrowerName    string          `json:"borrower_name"`
	BorrowerContact string          `json:"borrower_contact,omitempty"`
	BorrowedAt      time.Time       `json:"borrowed_at"`
	Records         []RecordDTO     `json:"records"`
	Lines           []CommittedLine `json:"lines"`
}

// RecordDTO is a borrow record joined with its item name.
type RecordDTO struct {
	ID                uuid.UUID               `json:"id"`
	EquipmentID       uuid.UUID               `json:"equipment_id"`
	EquipmentName     string                  `json:"equipment_name,omitempty"`
	EquipmentCategory enums.EquipmentCategory `json:"equipment_category,omitempty"`
	BorrowerName      string                  `json:"borrower_name"`
	BorrowerContact   string                  `json:"borrower_contact,omitempty"`
	Qty               int                     `json:"qty"`
	BorrowedAt        time.Time               `json:"borrowed_at"`
	ReturnedAt        *time.Time              `json:"returned_at,omitempty"`
	IsReturned        bool                    `json:"is_returned"`
}

// BulkReturnResult reports a partial-failure tolerant bulk return.
type BulkReturnResult struct {
	BorrowerName string   `json:"borrower_name"`
	Returned     int      `json:"returned"`
	Failed       int      `json:"failed"`
	Failures     []string `json:"failures,omitempty"`
}

// ListRecordsResult is one page of record DTOs.
type ListRecordsResult struct {
	Records    []RecordDTO `json:"records"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toRecordDTO(record models.BorrowRecord, equipmentName string, category enums.EquipmentCategory) RecordDTO {
	return RecordDTO{
		ID:                record.ID,
		EquipmentID:       record.EquipmentID,
		EquipmentName:     equipmentName,
		EquipmentCategory: category,
		BorrowerName:      record.BorrowerName,
		BorrowerContact:   record.BorrowerContact,
		Qty:               record.Qty,
		BorrowedAt:        record.BorrowedAt,
		ReturnedAt:        record.ReturnedAt,
		IsReturned:        record.IsReturned,
	}
}
