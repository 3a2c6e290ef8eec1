package account

import (
	"strings"

	"gym-manager/backend/internal/rbac"
)

// Record is the view of an identity-provider account the service returns to
// callers after a lifecycle operation.
type Record struct {
	UID         string         `json:"uid"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName"`
	Claims      map[string]any `json:"claims"`
}

// SystemUserRow is one row of the /system_user/summary document, keyed by
// account uid.
type SystemUserRow struct {
	Name  string `firestore:"name" json:"name"`
	Email string `firestore:"email" json:"email"`
	Role  string `firestore:"role" json:"role"`
}

type CreateSystemUserInput struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"` // doubles as the initial password
	Role        string `json:"role"`
}

func (in *CreateSystemUserInput) Trim() {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Role = strings.TrimSpace(in.Role)
}

type CreateMemberInput struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
}

func (in *CreateMemberInput) Trim() {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
}

type UpdateSystemUserInput struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role,omitempty"`
}

func (in *UpdateSystemUserInput) Trim() {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Role = strings.TrimSpace(in.Role)
}

func roleOf(claims map[string]any) rbac.Claims {
	c, err := rbac.ClaimsFromMap(claims)
	if err != nil {
		return rbac.Claims{}
	}
	return c
}
