package account

import (
	"context"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/rbac"
)

type Service struct {
	identity Identity
	sysUsers Directory
	members  member.Store
}

func NewService(identity Identity, sysUsers Directory, members member.Store) *Service {
	return &Service{identity: identity, sysUsers: sysUsers, members: members}
}

// CreateSystemUser provisions a staff account and attaches its claims. The
// account is created email-unverified and enabled, with the mobile number as
// the initial password. No claims are written when provisioning fails.
func (s *Service) CreateSystemUser(ctx context.Context, caller *rbac.Principal, in CreateSystemUserInput) (*Record, error) {
	in.Trim()
	role, err := rbac.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if role == rbac.RoleMember {
		return nil, fmt.Errorf("%w: members are created via addMember", ErrBadRequest)
	}
	if err := s.checkGrant(caller, role.Level()); err != nil {
		return nil, err
	}
	if in.Email == "" || in.DisplayName == "" || in.Mobile == "" {
		return nil, fmt.Errorf("%w: displayName, email and mobile are required", ErrBadRequest)
	}

	claims, err := rbac.NewClaims(role, caller.UID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	rec, err := s.provision(ctx, in.DisplayName, in.Email, in.Mobile, claims)
	if err != nil {
		return nil, err
	}

	row := SystemUserRow{Name: in.DisplayName, Email: in.Email, Role: string(role)}
	if err := s.sysUsers.Put(ctx, rec.UID, row); err != nil {
		log.Printf("system user %s created but summary write failed: %v", rec.UID, err)
	}
	return rec, nil
}

// CreateMember provisions a member account, allocates the next sequential
// member id and writes the member documents. The memberId travels in the
// account's claims so the booking portal can match rosters to the caller.
func (s *Service) CreateMember(ctx context.Context, caller *rbac.Principal, in CreateMemberInput) (*Record, error) {
	in.Trim()
	if err := s.checkGrant(caller, rbac.RoleMember.Level()); err != nil {
		return nil, err
	}
	if in.Email == "" || in.DisplayName == "" || in.Mobile == "" {
		return nil, fmt.Errorf("%w: displayName, email and mobile are required", ErrBadRequest)
	}

	// The auth account is provisioned before any member document exists, so
	// a failed creation (duplicate email, disabled project) leaves no row in
	// the summary and burns no member id.
	u, err := s.createAuthUser(ctx, in.DisplayName, in.Email, in.Mobile)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	joinDate := now.Format("2006-01-02")
	memberID, err := s.members.AllocateID(ctx, member.Summary{
		Name:     in.DisplayName,
		Email:    in.Email,
		Mobile:   in.Mobile,
		JoinDate: joinDate,
	})
	if err != nil {
		if derr := s.identity.DeleteUser(ctx, u.UID); derr != nil {
			log.Printf("member id allocation failed and account %s rollback failed: %v", u.UID, derr)
		}
		return nil, fmt.Errorf("%w: %v", ErrAccountCreation, err)
	}

	claims, _ := rbac.NewClaims(rbac.RoleMember, caller.UID)
	claims = claims.WithMemberID(memberID)
	if err := s.identity.SetCustomUserClaims(ctx, u.UID, claims.Map()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsWrite, err)
	}

	rec, err := s.record(ctx, u.UID)
	if err != nil {
		return nil, err
	}

	detail := member.Detail{
		ID:        memberID,
		UID:       rec.UID,
		Name:      in.DisplayName,
		Email:     in.Email,
		Mobile:    in.Mobile,
		JoinDate:  joinDate,
		CreatedBy: caller.UID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.members.PutDetail(ctx, detail); err != nil {
		log.Printf("member %s created but detail write failed: %v", memberID, err)
	}
	return rec, nil
}

// UpdateSystemUser looks the target up by email and applies a display-name
// change, a role change, or both. A display-name change never touches
// claims; a role change merges into the existing claims record, preserving
// unrelated claim fields.
func (s *Service) UpdateSystemUser(ctx context.Context, caller *rbac.Principal, in UpdateSystemUserInput) (*Record, error) {
	in.Trim()
	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrBadRequest)
	}
	if in.DisplayName == "" && in.Role == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}

	target, err := s.identity.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, in.Email)
	}
	targetClaims := roleOf(target.CustomClaims)
	if err := s.checkGrant(caller, targetClaims.Level()); err != nil {
		return nil, err
	}

	if in.DisplayName != "" {
		upd := (&auth.UserToUpdate{}).DisplayName(in.DisplayName)
		if _, err := s.identity.UpdateUser(ctx, target.UID, upd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrClaimsWrite, err)
		}
	}

	newRole := targetClaims.Role
	if in.Role != "" {
		newRole, err = rbac.ParseRole(in.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		if err := s.checkGrant(caller, newRole.Level()); err != nil {
			return nil, err
		}
		merged := mergeRole(target.CustomClaims, newRole)
		if err := s.identity.SetCustomUserClaims(ctx, target.UID, merged); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrClaimsWrite, err)
		}
	}

	name := in.DisplayName
	if name == "" {
		name = target.DisplayName
	}
	row := SystemUserRow{Name: name, Email: in.Email, Role: string(newRole)}
	if err := s.sysUsers.Put(ctx, target.UID, row); err != nil {
		log.Printf("system user %s updated but summary write failed: %v", target.UID, err)
	}

	return s.record(ctx, target.UID)
}

// DeleteSystemUser looks the target up by email, privilege-checks against
// the target's current level, then deletes the account and its summary row.
func (s *Service) DeleteSystemUser(ctx context.Context, caller *rbac.Principal, email string) error {
	target, err := s.lookupForDelete(ctx, caller, email)
	if err != nil {
		return err
	}
	if err := s.identity.DeleteUser(ctx, target.UID); err != nil {
		return fmt.Errorf("%w: %v", ErrDeletion, err)
	}
	if err := s.sysUsers.Remove(ctx, target.UID); err != nil {
		log.Printf("system user %s deleted but summary cleanup failed: %v", target.UID, err)
	}
	return nil
}

// DeleteMember deletes the account plus the member documents.
func (s *Service) DeleteMember(ctx context.Context, caller *rbac.Principal, email string) error {
	target, err := s.lookupForDelete(ctx, caller, email)
	if err != nil {
		return err
	}
	memberID := roleOf(target.CustomClaims).MemberID
	if err := s.identity.DeleteUser(ctx, target.UID); err != nil {
		return fmt.Errorf("%w: %v", ErrDeletion, err)
	}
	if memberID != "" {
		if err := s.members.Delete(ctx, memberID); err != nil {
			log.Printf("member %s deleted but document cleanup failed: %v", memberID, err)
		}
	}
	return nil
}

// InitSuperAdmin self-grants super-admin claims to the caller. Only valid
// while no system user has ever been recorded; after first boot the
// init-super-admin CLI is the recovery path.
func (s *Service) InitSuperAdmin(ctx context.Context, caller *rbac.Principal) (*Record, error) {
	empty, err := s.sysUsers.Empty(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsWrite, err)
	}
	if !empty {
		return nil, ErrBootstrapped
	}

	claims, _ := rbac.NewClaims(rbac.RoleSuperAdmin, caller.UID)
	if err := s.identity.SetCustomUserClaims(ctx, caller.UID, claims.Map()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsWrite, err)
	}

	rec, err := s.record(ctx, caller.UID)
	if err != nil {
		return nil, err
	}
	row := SystemUserRow{Name: rec.DisplayName, Email: rec.Email, Role: string(rbac.RoleSuperAdmin)}
	if err := s.sysUsers.Put(ctx, caller.UID, row); err != nil {
		log.Printf("super admin initialized but summary write failed: %v", err)
	}
	return rec, nil
}

func (s *Service) SystemUsers(ctx context.Context, caller *rbac.Principal) (map[string]SystemUserRow, error) {
	if caller == nil || caller.Level() < rbac.MinGrantLevel {
		return nil, fmt.Errorf("%w: manager role required", ErrUnauthorized)
	}
	return s.sysUsers.Rows(ctx)
}

// provision creates the auth user then attaches claims. Claims are written
// only after provisioning succeeds, so a failed creation leaves no visible
// state.
func (s *Service) provision(ctx context.Context, displayName, email, password string, claims rbac.Claims) (*Record, error) {
	u, err := s.createAuthUser(ctx, displayName, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.identity.SetCustomUserClaims(ctx, u.UID, claims.Map()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsWrite, err)
	}
	return s.record(ctx, u.UID)
}

func (s *Service) createAuthUser(ctx context.Context, displayName, email, password string) (*auth.UserRecord, error) {
	create := (&auth.UserToCreate{}).
		DisplayName(displayName).
		Email(email).
		EmailVerified(false).
		Password(password).
		Disabled(false)

	u, err := s.identity.CreateUser(ctx, create)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountCreation, err)
	}
	return u, nil
}

func (s *Service) record(ctx context.Context, uid string) (*Record, error) {
	u, err := s.identity.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, uid)
	}
	return &Record{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Claims:      u.CustomClaims,
	}, nil
}

func (s *Service) lookupForDelete(ctx context.Context, caller *rbac.Principal, email string) (*auth.UserRecord, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrBadRequest)
	}
	target, err := s.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, email)
	}
	if err := s.checkGrant(caller, roleOf(target.CustomClaims).Level()); err != nil {
		return nil, err
	}
	return target, nil
}

// checkGrant applies the dual privilege condition: the caller must hold at
// least manager level and at least the target's level.
func (s *Service) checkGrant(caller *rbac.Principal, targetLevel int) error {
	if caller == nil || !rbac.CanGrant(caller.Level(), targetLevel) {
		return fmt.Errorf("%w: requires level >= %d and >= target", ErrUnauthorized, rbac.MinGrantLevel)
	}
	return nil
}

// mergeRole overwrites role and roleLevel in an existing claims map,
// keeping every other field.
func mergeRole(existing map[string]any, role rbac.Role) map[string]any {
	merged := make(map[string]any, len(existing)+2)
	for k, v := range existing {
		merged[k] = v
	}
	merged["role"] = string(role)
	merged["roleLevel"] = role.Level()
	return merged
}
