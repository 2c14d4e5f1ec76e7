package inventory

import (
	"fmt"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
)

// Status is the human-facing availability summary derived from an item row.
type Status struct {
	Label    string               `json:"label"`
	Severity enums.StatusSeverity `json:"severity"`
}

// ComputeStatus derives the display status for an item. A manual state
// override wins over anything the quantity math would say.
func ComputeStatus(item models.EquipmentItem) Status {
	switch item.State {
	case enums.ItemStateUnderRepair:
		return Status{Label: "under repair", Severity: enums.StatusSeverityNeutral}
	case enums.ItemStateRetired:
		return Status{Label: "retired", Severity: enums.StatusSeverityNeutral}
	}

	available := item.AvailableQty()
	if available <= 0 {
		return Status{Label: "out of stock", Severity: enums.StatusSeverityCritical}
	}
	if item.BorrowedQty > 0 {
		return Status{
			Label:    fmt.Sprintf("partially available (%d left)", available),
			Severity: enums.StatusSeverityWarning,
		}
	}
	return Status{Label: "fully in stock", Severity: enums.StatusSeverityOK}
}
