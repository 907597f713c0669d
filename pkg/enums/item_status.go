package enums

import "fmt"

// ItemStatus tracks the kitchen lifecycle of a ticket line item.
type ItemStatus string

const (
	ItemStatusNew       ItemStatus = "NEW"
	ItemStatusPreparing ItemStatus = "PREPARING"
	ItemStatusReady     ItemStatus = "READY"
)

var validItemStatuses = []ItemStatus{
	ItemStatusNew,
	ItemStatusPreparing,
	ItemStatusReady,
}

// String implements fmt.Stringer.
func (i ItemStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemStatus.
func (i ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
