package enums

import "fmt"

// SellerStatus tracks the admin review of a seller application.
type SellerStatus string

const (
	SellerStatusPending  SellerStatus = "PENDING"
	SellerStatusApproved SellerStatus = "APPROVED"
	SellerStatusRejected SellerStatus = "REJECTED"
)

var validSellerStatuses = []SellerStatus{
	SellerStatusPending,
	SellerStatusApproved,
	SellerStatusRejected,
}

// String implements fmt.Stringer.
func (v SellerStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known SellerStatus.
func (v SellerStatus) IsValid() bool {
	for _, candidate := range validSellerStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseSellerStatus converts raw input into a SellerStatus.
func ParseSellerStatus(value string) (SellerStatus, error) {
	for _, candidate := range validSellerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller status %q", value)
}
