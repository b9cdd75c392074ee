package enums

import "fmt"

// PurchaseDecision captures the seller's one-shot accept/decline verdict.
type PurchaseDecision string

const (
	PurchaseDecisionPending  PurchaseDecision = "pending"
	PurchaseDecisionAccepted PurchaseDecision = "accepted"
	PurchaseDecisionDeclined PurchaseDecision = "declined"
)

var validPurchaseDecisions = []PurchaseDecision{
	PurchaseDecisionPending,
	PurchaseDecisionAccepted,
	PurchaseDecisionDeclined,
}

// String implements fmt.Stringer.
func (p PurchaseDecision) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaseDecision.
func (p PurchaseDecision) IsValid() bool {
	for _, candidate := range validPurchaseDecisions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaseDecision converts raw input into a PurchaseDecision.
func ParsePurchaseDecision(value string) (PurchaseDecision, error) {
	normalized := normalizeStatusInput(value)
	for _, candidate := range validPurchaseDecisions {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase decision %q", value)
}
