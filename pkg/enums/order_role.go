package enums

import "fmt"

// OrderRole distinguishes which side of an order the caller is acting as.
type OrderRole string

const (
	OrderRoleSold   OrderRole = "sold"
	OrderRoleBought OrderRole = "bought"
)

var validOrderRoles = []OrderRole{
	OrderRoleSold,
	OrderRoleBought,
}

// String implements fmt.Stringer.
func (r OrderRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known OrderRole.
func (r OrderRole) IsValid() bool {
	for _, candidate := range validOrderRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOrderRole converts raw input into an OrderRole.
func ParseOrderRole(value string) (OrderRole, error) {
	normalized := normalizeStatusInput(value)
	for _, candidate := range validOrderRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order role %q", value)
}
