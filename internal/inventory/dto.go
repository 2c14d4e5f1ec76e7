package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
)

// ItemDTO is the item row plus its derived availability fields.
type ItemDTO struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Category     enums.EquipmentCategory `json:"category"`
	Location     string                  `json:"location,omitempty"`
	Tags         []string                `json:"tags"`
	TotalQty     int                     `json:"total_qty"`
	BorrowedQty  int                     `json:"borrowed_qty"`
	AvailableQty int                     `json:"available_qty"`
	State        enums.ItemState         `json:"state"`
	Status       Status                  `json:"status"`
	ImageURL     *string                 `json:"image_url,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

func ToItemDTO(item models.EquipmentItem) ItemDTO {
	return ItemDTO{
		ID:           item.ID,
		Name:         item.Name,
		Category:     item.Category,
		Location:     item.Location,
		Tags:         item.Tags,
		TotalQty:     item.TotalQty,
		BorrowedQty:  item.BorrowedQty,
		AvailableQty: item.AvailableQty(),
		State:        item.State,
		Status:       ComputeStatus(item),
		ImageURL:     item.ImageURL,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
