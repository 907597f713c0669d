package enums

import "fmt"

// StaffRole identifies what a staff member does on the floor. Handover can
// only target roles that own orders.
type StaffRole string

const (
	StaffRoleCaptain StaffRole = "CAPTAIN"
	StaffRoleWaiter  StaffRole = "WAITER"
	StaffRoleCashier StaffRole = "CASHIER"
	StaffRoleManager StaffRole = "MANAGER"
	StaffRoleChef    StaffRole = "CHEF"
)

var validStaffRoles = []StaffRole{
	StaffRoleCaptain,
	StaffRoleWaiter,
	StaffRoleCashier,
	StaffRoleManager,
	StaffRoleChef,
}

var handoverEligibleRoles = []StaffRole{
	StaffRoleCaptain,
	StaffRoleWaiter,
	StaffRoleCashier,
	StaffRoleManager,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsHandoverEligible reports whether the role can receive a shift handover.
func (r StaffRole) IsHandoverEligible() bool {
	for _, candidate := range handoverEligibleRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HandoverEligibleRoles returns the roles allowed to receive open orders.
func HandoverEligibleRoles() []StaffRole {
	out := make([]StaffRole, len(handoverEligibleRoles))
	copy(out, handoverEligibleRoles)
	return out
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
