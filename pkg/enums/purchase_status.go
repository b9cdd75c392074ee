package enums

import "fmt"

// PurchaseStatus is the authoritative work-lifecycle state of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusPending    PurchaseStatus = "pending"
	PurchaseStatusInProgress PurchaseStatus = "in_progress"
	PurchaseStatusCompleted  PurchaseStatus = "completed"
	PurchaseStatusCancelled  PurchaseStatus = "cancelled"
)

var validPurchaseStatuses = []PurchaseStatus{
	PurchaseStatusPending,
	PurchaseStatusInProgress,
	PurchaseStatusCompleted,
	PurchaseStatusCancelled,
}

// String implements fmt.Stringer.
func (p PurchaseStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaseStatus.
func (p PurchaseStatus) IsValid() bool {
	for _, candidate := range validPurchaseStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaseStatus converts raw input into a PurchaseStatus. Legacy
// clients send "IN PROGRESS" style values, so matching is lenient.
func ParsePurchaseStatus(value string) (PurchaseStatus, error) {
	normalized := normalizeStatusInput(value)
	for _, candidate := range validPurchaseStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase status %q", value)
}
