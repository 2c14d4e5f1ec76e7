package models

import (
	"time"

	"github.com/google/uuid"
)

// BorrowRecord is one line of the append-only borrow ledger. Created exactly
// once by a borrow commit; mutated exactly once by a return; never deleted.
type BorrowRecord struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EquipmentID     uuid.UUID  `gorm:"column:equipment_id;type:uuid;not null;index" json:"equipment_id"`
	BorrowerName    string     `gorm:"column:borrower_name;not null;index" json:"borrower_name"`
	BorrowerContact string     `gorm:"column:borrower_contact" json:"borrower_contact"`
	Qty             int        `gorm:"column:qty;not null" json:"qty"`
	BorrowedAt      time.Time  `gorm:"column:borrowed_at;not null" json:"borrowed_at"`
	ReturnedAt      *time.Time `gorm:"column:returned_at" json:"returned_at,omitempty"`
	IsReturned      bool       `gorm:"column:is_returned;not null;default:false;index" json:"is_returned"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name independent of gorm pluralization rules.
func (BorrowRecord) TableName() string { return "borrow_records" }
