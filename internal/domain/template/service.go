package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym-manager/backend/internal/domain/roster"
	"gym-manager/backend/internal/rbac"
)

// DayCreator is the roster-side dependency Apply needs: atomic creation of a
// date document that must not exist yet.
type DayCreator interface {
	CreateDay(ctx context.Context, date string, set roster.DailyClassSet) error
}

type Service struct {
	store            Store
	days             DayCreator
	coaches          roster.CoachDirectory
	requireQualified bool
}

func NewService(store Store, days DayCreator) *Service {
	return &Service{store: store, days: days}
}

func (s *Service) SetCoachDirectory(d roster.CoachDirectory, require bool) {
	s.coaches = d
	s.requireQualified = require
}

func (s *Service) Weekly(ctx context.Context, caller *rbac.Principal) (Weekly, error) {
	if err := s.requireStaff(caller); err != nil {
		return nil, err
	}
	return s.store.Weekly(ctx)
}

// AddSlot adds a class to one weekday's template. Attendees always start
// empty; a template holds no real members.
func (s *Service) AddSlot(ctx context.Context, caller *rbac.Principal, day string, in roster.AddClassInput) (string, error) {
	in.Trim()
	if err := s.requireStaff(caller); err != nil {
		return "", err
	}
	if !ValidWeekday(day) {
		return "", fmt.Errorf("%w: weekday must be mon..sun", ErrBadRequest)
	}
	c := roster.ClassInstance{
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
	key, err := roster.SlotKey(c.Time)
	if err != nil {
		return "", err
	}
	if err := s.checkInstructor(ctx, c.Instructor, c.ClassType); err != nil {
		return "", err
	}
	err = s.store.MutateWeekday(ctx, day, func(cur roster.DailyClassSet) (roster.DailyClassSet, error) {
		if _, exists := cur[key]; exists {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateSlot, day, c.Time)
		}
		next := cloneDay(cur)
		next[key] = c
		return next, nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *Service) EditSlot(ctx context.Context, caller *rbac.Principal, day, key string, in roster.EditClassInput) error {
	in.Trim()
	if err := s.requireStaff(caller); err != nil {
		return err
	}
	if !ValidWeekday(day) || !roster.ValidSlotKey(key) {
		return fmt.Errorf("%w: invalid weekday or class key", ErrBadRequest)
	}
	if err := s.checkInstructor(ctx, in.Instructor, in.ClassType); err != nil {
		return err
	}
	return s.store.MutateWeekday(ctx, day, func(cur roster.DailyClassSet) (roster.DailyClassSet, error) {
		slot, ok := cur[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotNotFound, day, key)
		}
		if in.Time != "" && in.Time != slot.Time {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeImmutable, day, key)
		}
		repl := roster.ClassInstance{
			Time:         slot.Time,
			Duration:     in.Duration,
			ClassType:    in.ClassType,
			Instructor:   in.Instructor,
			MaxAttendees: in.MaxAttendees,
			Attendees:    map[string]string{},
		}
		if err := repl.Validate(); err != nil {
			return nil, err
		}
		next := cloneDay(cur)
		next[key] = repl
		return next, nil
	})
}

func (s *Service) DeleteSlot(ctx context.Context, caller *rbac.Principal, day, key string) error {
	if err := s.requireStaff(caller); err != nil {
		return err
	}
	if !ValidWeekday(day) || !roster.ValidSlotKey(key) {
		return fmt.Errorf("%w: invalid weekday or class key", ErrBadRequest)
	}
	return s.store.MutateWeekday(ctx, day, func(cur roster.DailyClassSet) (roster.DailyClassSet, error) {
		if _, ok := cur[key]; !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotNotFound, day, key)
		}
		next := cloneDay(cur)
		delete(next, key)
		return next, nil
	})
}

// Apply projects one weekday's template onto every matching calendar date in
// [startDate, endDate]. Dates that already have a class document are skipped
// and reported; absent dates are created atomically. An empty weekday
// template writes nothing and reports every matching date as skipped. The
// loop is best effort across dates: a failure is recorded per date and does
// not stop later dates.
func (s *Service) Apply(ctx context.Context, caller *rbac.Principal, day, startDate, endDate string) ([]DateResult, error) {
	if err := s.requireStaff(caller); err != nil {
		return nil, err
	}
	if !ValidWeekday(day) {
		return nil, fmt.Errorf("%w: weekday must be mon..sun", ErrBadRequest)
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", ErrBadRequest)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: endDate must be YYYY-MM-DD", ErrBadRequest)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, startDate, endDate)
	}

	set, err := s.store.Weekday(ctx, day)
	if err != nil {
		return nil, err
	}

	results := []DateResult{}
	want := weekdayOf(day)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != want {
			continue
		}
		date := d.Format("2006-01-02")
		if len(set) == 0 {
			results = append(results, DateResult{Date: date, Outcome: OutcomeSkipped, Reason: "no template classes for " + day})
			continue
		}
		err := s.days.CreateDay(ctx, date, set)
		switch {
		case err == nil:
			results = append(results, DateResult{Date: date, Outcome: OutcomeApplied})
		case isDayExists(err):
			results = append(results, DateResult{Date: date, Outcome: OutcomeSkipped, Reason: "already exists, edit manually"})
		default:
			results = append(results, DateResult{Date: date, Outcome: OutcomeFailed, Reason: err.Error()})
		}
	}
	return results, nil
}

func (s *Service) requireStaff(caller *rbac.Principal) error {
	if caller == nil || !caller.IsStaff() {
		return fmt.Errorf("%w: staff role required", ErrUnauthorized)
	}
	return nil
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

func cloneDay(set roster.DailyClassSet) roster.DailyClassSet {
	next := make(roster.DailyClassSet, len(set)+1)
	for k, v := range set {
		next[k] = v
	}
	return next
}

func isDayExists(err error) bool {
	return errors.Is(err, roster.ErrDayExists)
}
