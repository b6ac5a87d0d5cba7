package enums

import "fmt"

// ItemStatus tracks whether an item can be ordered.
type ItemStatus string

const (
	ItemStatusForSale      ItemStatus = "FOR_SALE"
	ItemStatusSoldOut      ItemStatus = "SOLD_OUT"
	ItemStatusDiscontinued ItemStatus = "DISCONTINUED"
)

var validItemStatuses = []ItemStatus{
	ItemStatusForSale,
	ItemStatusSoldOut,
	ItemStatusDiscontinued,
}

// String implements fmt.Stringer.
func (v ItemStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ItemStatus.
func (v ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into a ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
