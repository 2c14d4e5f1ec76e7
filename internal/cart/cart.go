package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/internal/inventory"
)

// Line is one reserved candidate in a session cart. Quantities are requests,
// not holds; nothing is decremented until the borrow commits.
type Line struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	Qty         int       `json:"qty"`
	AddedAt     time.Time `json:"added_at"`
}

// LineDTO is a cart line joined with the item's current state, re-read at
// render time so the user sees live availability rather than the cart-time
// snapshot.
type LineDTO struct {
	Item    inventory.ItemDTO `json:"item"`
	Qty     int               `json:"qty"`
	AddedAt time.Time         `json:"added_at"`
}

// CartDTO is the rendered cart for one session.
type CartDTO struct {
	Lines []LineDTO `json:"lines"`
}
