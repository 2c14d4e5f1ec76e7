package enums

import "fmt"

// ItemState is the manual availability override on an item. Any state other
// than Normal blocks new borrow reservations regardless of quantity math.
type ItemState string

const (
	ItemStateNormal      ItemState = "normal"
	ItemStateUnderRepair ItemState = "under_repair"
	ItemStateRetired     ItemState = "retired"
)

var validItemStates = []ItemState{
	ItemStateNormal,
	ItemStateUnderRepair,
	ItemStateRetired,
}

// String implements fmt.Stringer.
func (s ItemState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemState.
func (s ItemState) IsValid() bool {
	for _, candidate := range validItemStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemState converts raw input into an ItemState.
func ParseItemState(value string) (ItemState, error) {
	for _, candidate := range validItemStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item state %q", value)
}
