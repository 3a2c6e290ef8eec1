package rbac

// Principal is the authenticated caller attached to a request context by the
// auth middleware. Claims is the zero value (level 0) when the account has no
// custom claims yet.
type Principal struct {
	UID    string
	Email  string
	Claims Claims
}

func (p Principal) Level() int { return p.Claims.Level() }

// IsStaff reports whether the caller holds any system-user role
// (assistance or above).
func (p Principal) IsStaff() bool {
	return p.Level() >= RoleAssistance.Level()
}
