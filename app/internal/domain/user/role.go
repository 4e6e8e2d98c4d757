package user

import "strings"

type RoleCode string

const (
	RoleCodeSuperAdmin RoleCode = "SUPER_ADMIN"
	RoleCodeAdmin      RoleCode = "ADMIN"
	RoleCodeCustomer   RoleCode = "CUSTOMER"
)

func (c RoleCode) IsValid() bool {
	switch c {
	case RoleCodeSuperAdmin, RoleCodeAdmin, RoleCodeCustomer:
		return true
	default:
		return false
	}
}

// IsStaff is true for roles allowed into the back office.
func (c RoleCode) IsStaff() bool {
	return c == RoleCodeAdmin || c == RoleCodeSuperAdmin
}

// ParseRoleCode normalises a role read from a request, token or database row.
func ParseRoleCode(s string) (RoleCode, error) {
	c := RoleCode(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidRoleCode
	}
	return c, nil
}

// CanAssignRole reports whether executor may give target to an account. Only
// a super admin hands out staff roles.
func CanAssignRole(executor, target RoleCode) bool {
	if target.IsStaff() {
		return executor == RoleCodeSuperAdmin
	}
	return executor.IsStaff()
}
