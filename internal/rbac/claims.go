package rbac

import (
	"errors"
	"fmt"
)

// Claims is the custom-claims record attached to an identity-provider
// account. It is a value type: mutation goes through WithRole, which always
// produces a record whose roleLevel matches the role.
type Claims struct {
	Role      Role
	MemberID  string
	CreatedBy string
}

var ErrLevelMismatch = errors.New("roleLevel does not match role")

func NewClaims(role Role, createdBy string) (Claims, error) {
	if !role.Valid() {
		return Claims{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return Claims{Role: role, CreatedBy: createdBy}, nil
}

func (c Claims) Level() int { return c.Role.Level() }

// WithRole returns a copy with the role replaced. Other fields are kept.
func (c Claims) WithRole(role Role) (Claims, error) {
	if !role.Valid() {
		return Claims{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	c.Role = role
	return c, nil
}

func (c Claims) WithMemberID(id string) Claims {
	c.MemberID = id
	return c
}

// Map encodes the wire shape {role, roleLevel, memberId?, createdBy} written
// to the identity provider.
func (c Claims) Map() map[string]any {
	m := map[string]any{
		"role":      string(c.Role),
		"roleLevel": c.Role.Level(),
		"createdBy": c.CreatedBy,
	}
	if c.MemberID != "" {
		m["memberId"] = c.MemberID
	}
	return m
}

// ClaimsFromMap decodes a claims map as found on a verified token or an
// account record. It fails when the stored roleLevel has drifted from the
// role's canonical level.
func ClaimsFromMap(m map[string]any) (Claims, error) {
	roleStr, _ := m["role"].(string)
	role, err := ParseRole(roleStr)
	if err != nil {
		return Claims{}, err
	}

	level, ok := claimNumber(m["roleLevel"])
	if !ok {
		return Claims{}, fmt.Errorf("%w: roleLevel missing", ErrLevelMismatch)
	}
	if level != role.Level() {
		return Claims{}, fmt.Errorf("%w: role %q level %d", ErrLevelMismatch, role, level)
	}

	c := Claims{Role: role}
	c.MemberID, _ = m["memberId"].(string)
	c.CreatedBy, _ = m["createdBy"].(string)
	return c, nil
}

// claimNumber normalizes the numeric types JSON decoding and the token
// verifier produce for roleLevel.
func claimNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
