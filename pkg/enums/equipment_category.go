package enums

import "fmt"

// EquipmentCategory is the fixed set of categories an item can belong to.
type EquipmentCategory string

const (
	EquipmentCategoryCamera   EquipmentCategory = "camera"
	EquipmentCategoryLens     EquipmentCategory = "lens"
	EquipmentCategoryLighting EquipmentCategory = "lighting"
	EquipmentCategoryAudio    EquipmentCategory = "audio"
	EquipmentCategoryTripod   EquipmentCategory = "tripod"
	EquipmentCategoryCable    EquipmentCategory = "cable"
	EquipmentCategoryTools    EquipmentCategory = "tools"
	EquipmentCategoryKitchen  EquipmentCategory = "kitchen"
	EquipmentCategoryOutdoor  EquipmentCategory = "outdoor"
	EquipmentCategoryMisc     EquipmentCategory = "misc"
)

var validEquipmentCategories = []EquipmentCategory{
	EquipmentCategoryCamera,
	EquipmentCategoryLens,
	EquipmentCategoryLighting,
	EquipmentCategoryAudio,
	EquipmentCategoryTripod,
	EquipmentCategoryCable,
	EquipmentCategoryTools,
	EquipmentCategoryKitchen,
	EquipmentCategoryOutdoor,
	EquipmentCategoryMisc,
}

// String implements fmt.Stringer.
func (c EquipmentCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known EquipmentCategory.
func (c EquipmentCategory) IsValid() bool {
	for _, candidate := range validEquipmentCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseEquipmentCategory converts raw input into an EquipmentCategory.
func ParseEquipmentCategory(value string) (EquipmentCategory, error) {
	for _, candidate := range validEquipmentCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid equipment category %q", value)
}

// EquipmentCategories returns the full ordered category list.
func EquipmentCategories() []EquipmentCategory {
	out := make([]EquipmentCategory, len(validEquipmentCategories))
	copy(out, validEquipmentCategories)
	return out
}
