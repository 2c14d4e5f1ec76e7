package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/orangegegege/equipment-manager/pkg/enums"
)

// EquipmentItem is one row of physical stock. BorrowedQty only ever moves
// through the inventory service; 0 <= BorrowedQty <= TotalQty holds at
// every observable state.
type EquipmentItem struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string                  `gorm:"column:name;not null" json:"name"`
	Category    enums.EquipmentCategory `gorm:"column:category;not null" json:"category"`
	Location    string                  `gorm:"column:location" json:"location"`
	Tags        pq.StringArray          `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]" json:"tags"`
	TotalQty    int                     `gorm:"column:total_qty;not null" json:"total_qty"`
	BorrowedQty int                     `gorm:"column:borrowed_qty;not null;default:0" json:"borrowed_qty"`
	State       enums.ItemState         `gorm:"column:state;not null;default:normal" json:"state"`
	ImageURL    *string                 `gorm:"column:image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name independent of gorm pluralization rules.
func (EquipmentItem) TableName() string { return "equipment_items" }

// AvailableQty derives the stock still available to borrowers.
func (i EquipmentItem) AvailableQty() int {
	return i.TotalQty - i.BorrowedQty
}

// Borrowable reports whether the item can accept a new reservation at all.
// A manual state override wins even while stock remains.
func (i EquipmentItem) Borrowable() bool {
	return i.State == enums.ItemStateNormal && i.AvailableQty() > 0
}
