package roster

import (
	"context"
	"fmt"
	"strings"

	"gym-manager/backend/internal/rbac"
)

// CoachDirectory answers whether an instructor is registered and qualified
// for a class type. The lookup is advisory, not transactional with the
// roster write.
type CoachDirectory interface {
	Qualified(ctx context.Context, coach, classType string) (bool, error)
}

type Service struct {
	store            Store
	coaches          CoachDirectory
	requireQualified bool
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SetCoachDirectory enables the instructor-qualification check on class
// writes. Without a directory the check is skipped (manual override mode).
func (s *Service) SetCoachDirectory(d CoachDirectory, require bool) {
	s.coaches = d
	s.requireQualified = require
}

type AddClassInput struct {
	Time         string `json:"time"`
	Duration     int    `json:"duration"`
	ClassType    string `json:"classType"`
	Instructor   string `json:"instructor"`
	MaxAttendees int    `json:"maxAttendees"`
}

func (in *AddClassInput) Trim() {
	in.Time = strings.TrimSpace(in.Time)
	in.ClassType = strings.TrimSpace(in.ClassType)
	in.Instructor = strings.TrimSpace(in.Instructor)
}

// EditClassInput carries the replaceable fields of a class slot. Time is
// immutable once created; a non-empty Time differing from the stored value
// is rejected because the slot key encodes the am/pm session.
type EditClassInput struct {
	Time         string `json:"time,omitempty"`
	Duration     int    `json:"duration"`
	ClassType    string `json:"classType"`
	Instructor   string `json:"instructor"`
	MaxAttendees int    `json:"maxAttendees"`
}

func (in *EditClassInput) Trim() {
	in.Time = strings.TrimSpace(in.Time)
	in.ClassType = strings.TrimSpace(in.ClassType)
	in.Instructor = strings.TrimSpace(in.Instructor)
}

// Day returns the class set for a date. Callers use SortedKeys for display
// order (am before pm, chronological within a session).
func (s *Service) Day(ctx context.Context, date string) (DailyClassSet, error) {
	if !ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest)
	}
	return s.store.Day(ctx, date)
}

func (s *Service) AddClass(ctx context.Context, caller *rbac.Principal, date string, in AddClassInput) (string, error) {
	in.Trim()
	if err := s.requireStaff(caller); err != nil {
		return "", err
	}
	if !ValidDate(date) {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest)
	}
	c := ClassInstance{
		Time:         in.Time,
		Duration:     in.Duration,
		ClassType:    in.ClassType,
		Instructor:   in.Instructor,
		MaxAttendees: in.MaxAttendees,
		Attendees:    map[string]string{},
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	key, err := SlotKey(c.Time)
	if err != nil {
		return "", err
	}
	if err := s.checkInstructor(ctx, c.Instructor, c.ClassType); err != nil {
		return "", err
	}
	if err := s.store.AddSlot(ctx, date, key, c); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Service) EditClass(ctx context.Context, caller *rbac.Principal, date, key string, in EditClassInput) (ClassInstance, error) {
	in.Trim()
	if err := s.requireStaff(caller); err != nil {
		return ClassInstance{}, err
	}
	if !ValidDate(date) || !ValidSlotKey(key) {
		return ClassInstance{}, fmt.Errorf("%w: invalid date or class key", ErrBadRequest)
	}
	if err := s.checkInstructor(ctx, in.Instructor, in.ClassType); err != nil {
		return ClassInstance{}, err
	}
	return s.store.MutateSlot(ctx, date, key, func(cur ClassInstance) (ClassInstance, error) {
		if in.Time != "" && in.Time != cur.Time {
			return ClassInstance{}, fmt.Errorf("%w: delete and re-add instead", ErrTimeImmutable)
		}
		next := ClassInstance{
			Time:         cur.Time,
			Duration:     in.Duration,
			ClassType:    in.ClassType,
			Instructor:   in.Instructor,
			MaxAttendees: in.MaxAttendees,
			Attendees:    cur.Attendees,
		}
		if err := next.Validate(); err != nil {
			return ClassInstance{}, err
		}
		return next, nil
	})
}

func (s *Service) DeleteClass(ctx context.Context, caller *rbac.Principal, date, key string) error {
	if err := s.requireStaff(caller); err != nil {
		return err
	}
	if !ValidDate(date) || !ValidSlotKey(key) {
		return fmt.Errorf("%w: invalid date or class key", ErrBadRequest)
	}
	return s.store.DeleteSlot(ctx, date, key)
}

// Enroll adds a member to a class roster. The capacity and duplicate checks
// run inside the store's atomic mutate, so two racing enrollments at
// capacity-1 cannot both succeed.
func (s *Service) Enroll(ctx context.Context, caller *rbac.Principal, date, key, memberID, displayName string) (ClassInstance, error) {
	if err := s.checkMemberAccess(caller, memberID); err != nil {
		return ClassInstance{}, err
	}
	if !ValidDate(date) || !ValidSlotKey(key) {
		return ClassInstance{}, fmt.Errorf("%w: invalid date or class key", ErrBadRequest)
	}
	if memberID == "" || displayName == "" {
		return ClassInstance{}, fmt.Errorf("%w: memberId and displayName are required", ErrBadRequest)
	}
	return s.store.MutateSlot(ctx, date, key, func(cur ClassInstance) (ClassInstance, error) {
		if _, ok := cur.Attendees[memberID]; ok {
			return ClassInstance{}, fmt.Errorf("%w: %s", ErrAlreadyEnrolled, memberID)
		}
		if len(cur.Attendees) >= cur.MaxAttendees {
			return ClassInstance{}, fmt.Errorf("%w: %s %s", ErrClassFull, date, key)
		}
		next := cur
		next.Attendees = make(map[string]string, len(cur.Attendees)+1)
		for id, name := range cur.Attendees {
			next.Attendees[id] = name
		}
		next.Attendees[memberID] = displayName
		return next, nil
	})
}

// Withdraw removes a member from a roster. Withdrawing an absent member is
// not an error.
func (s *Service) Withdraw(ctx context.Context, caller *rbac.Principal, date, key, memberID string) (ClassInstance, error) {
	if err := s.checkMemberAccess(caller, memberID); err != nil {
		return ClassInstance{}, err
	}
	if !ValidDate(date) || !ValidSlotKey(key) {
		return ClassInstance{}, fmt.Errorf("%w: invalid date or class key", ErrBadRequest)
	}
	if memberID == "" {
		return ClassInstance{}, fmt.Errorf("%w: memberId is required", ErrBadRequest)
	}
	return s.store.MutateSlot(ctx, date, key, func(cur ClassInstance) (ClassInstance, error) {
		next := cur
		next.Attendees = make(map[string]string, len(cur.Attendees))
		for id, name := range cur.Attendees {
			if id != memberID {
				next.Attendees[id] = name
			}
		}
		return next, nil
	})
}

func (s *Service) requireStaff(caller *rbac.Principal) error {
	if caller == nil || !caller.IsStaff() {
		return fmt.Errorf("%w: staff role required", ErrUnauthorized)
	}
	return nil
}

// checkMemberAccess lets staff act on any roster entry, members only on
// their own.
func (s *Service) checkMemberAccess(caller *rbac.Principal, memberID string) error {
	if caller == nil {
		return fmt.Errorf("%w: no caller", ErrUnauthorized)
	}
	if caller.IsStaff() {
		return nil
	}
	if caller.Claims.Role == rbac.RoleMember && caller.Claims.MemberID == memberID && memberID != "" {
		return nil
	}
	return fmt.Errorf("%w: members may only manage their own enrollment", ErrUnauthorized)
}

func (s *Service) checkInstructor(ctx context.Context, instructor, classType string) error {
	if s.coaches == nil || !s.requireQualified {
		return nil
	}
	if instructor == "" {
		return fmt.Errorf("%w: instructor is required", ErrBadRequest)
	}
	ok, err := s.coaches.Qualified(ctx, instructor, classType)
	if err != nil {
		return fmt.Errorf("failed to check coach qualification: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is not a qualified %s coach", ErrBadRequest, instructor, classType)
	}
	return nil
}
