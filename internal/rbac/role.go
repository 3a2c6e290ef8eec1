package rbac

import (
	"errors"
	"fmt"
)

// Role is the closed set of account roles. The numeric privilege level is
// derived from the role, never stored independently.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAssistance Role = "assistance"
	RoleMember     Role = "member"
)

// MinGrantLevel is the minimum privilege level required to grant any role.
const MinGrantLevel = 3

var ErrUnknownRole = errors.New("unknown role")

var roleLevels = map[Role]int{
	RoleSuperAdmin: 5,
	RoleAdmin:      4,
	RoleManager:    3,
	RoleAssistance: 2,
	RoleMember:     1,
}

// Level returns the privilege level for the role, 0 for an unknown role.
func (r Role) Level() int {
	return roleLevels[r]
}

func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// CanGrant reports whether a caller at callerLevel may create or modify an
// account at targetLevel. A caller must hold at least manager level and may
// never grant a role more privileged than their own.
func CanGrant(callerLevel, targetLevel int) bool {
	return callerLevel >= MinGrantLevel && callerLevel >= targetLevel
}
