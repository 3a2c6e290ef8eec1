package template

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gym-manager/backend/internal/domain/roster"
	"gym-manager/backend/internal/rbac"
)

type memStore struct {
	mu     sync.Mutex
	weekly Weekly
}

func newMemStore() *memStore {
	return &memStore{weekly: Weekly{}}
}

func (m *memStore) Weekly(_ context.Context) (Weekly, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(Weekly, len(m.weekly))
	for day, set := range m.weekly {
		out[day] = set
	}
	return out, nil
}

func (m *memStore) Weekday(_ context.Context, day string) (roster.DailyClassSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.weekly[day]
	if set == nil {
		set = roster.DailyClassSet{}
	}
	return set, nil
}

func (m *memStore) MutateWeekday(_ context.Context, day string, fn func(roster.DailyClassSet) (roster.DailyClassSet, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.weekly[day]
	if cur == nil {
		cur = roster.DailyClassSet{}
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	m.weekly[day] = next
	return nil
}

// memDays fakes the roster store's create-if-absent date write.
type memDays struct {
	mu      sync.Mutex
	days    map[string]roster.DailyClassSet
	failOn  string
	failErr error
}

func newMemDays() *memDays {
	return &memDays{days: map[string]roster.DailyClassSet{}}
}

func (m *memDays) CreateDay(_ context.Context, date string, set roster.DailyClassSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if date == m.failOn {
		return m.failErr
	}
	if _, exists := m.days[date]; exists {
		return fmt.Errorf("%w: %s", roster.ErrDayExists, date)
	}
	cp := make(roster.DailyClassSet, len(set))
	for k, c := range set {
		cp[k] = c
	}
	m.days[date] = cp
	return nil
}

func staff() *rbac.Principal {
	return &rbac.Principal{UID: "staff-1", Claims: rbac.Claims{Role: rbac.RoleAssistance}}
}

func slotInput(hhmm string) roster.AddClassInput {
	return roster.AddClassInput{Time: hhmm, Duration: 60, ClassType: "yoga", Instructor: "Ana", MaxAttendees: 10}
}

func TestAddSlot(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, newMemDays())
	ctx := context.Background()

	key, err := svc.AddSlot(ctx, staff(), "mon", slotInput("18:30"))
	if err != nil {
		t.Fatalf("AddSlot: %v", err)
	}
	if key != "pm_1830" {
		t.Errorf("key = %q, want pm_1830", key)
	}

	if _, err := svc.AddSlot(ctx, staff(), "mon", slotInput("18:30")); !errors.Is(err, ErrDuplicateSlot) {
		t.Errorf("duplicate err = %v, want ErrDuplicateSlot", err)
	}
	if _, err := svc.AddSlot(ctx, staff(), "monday", slotInput("06:00")); !errors.Is(err, ErrBadRequest) {
		t.Errorf("bad weekday err = %v, want ErrBadRequest", err)
	}

	member := &rbac.Principal{UID: "m", Claims: rbac.Claims{Role: rbac.RoleMember, MemberID: "ri_0001"}}
	if _, err := svc.AddSlot(ctx, member, "mon", slotInput("06:00")); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("member caller err = %v, want ErrUnauthorized", err)
	}
}

func TestEditSlot(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, newMemDays())
	ctx := context.Background()

	key, _ := svc.AddSlot(ctx, staff(), "wed", slotInput("06:00"))

	err := svc.EditSlot(ctx, staff(), "wed", key, roster.EditClassInput{
		Duration: 45, ClassType: "spin", Instructor: "Bob", MaxAttendees: 8,
	})
	if err != nil {
		t.Fatalf("EditSlot: %v", err)
	}

	w, _ := svc.Weekly(ctx, staff())
	c := w["wed"][key]
	if c.ClassType != "spin" || c.Duration != 45 || c.Time != "06:00" {
		t.Errorf("edited slot = %+v", c)
	}

	err = svc.EditSlot(ctx, staff(), "wed", key, roster.EditClassInput{
		Time: "07:00", Duration: 45, ClassType: "spin", MaxAttendees: 8,
	})
	if !errors.Is(err, ErrTimeImmutable) {
		t.Errorf("time change err = %v, want ErrTimeImmutable", err)
	}

	err = svc.EditSlot(ctx, staff(), "wed", "pm_1900", roster.EditClassInput{
		Duration: 45, ClassType: "spin", MaxAttendees: 8,
	})
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("missing slot err = %v, want ErrSlotNotFound", err)
	}
}

func TestDeleteSlot(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, newMemDays())
	ctx := context.Background()

	k1, _ := svc.AddSlot(ctx, staff(), "fri", slotInput("06:00"))
	k2, _ := svc.AddSlot(ctx, staff(), "fri", slotInput("18:30"))

	if err := svc.DeleteSlot(ctx, staff(), "fri", k1); err != nil {
		t.Fatalf("DeleteSlot: %v", err)
	}
	if err := svc.DeleteSlot(ctx, staff(), "fri", k1); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("repeat delete err = %v, want ErrSlotNotFound", err)
	}

	w, _ := svc.Weekly(ctx, staff())
	if _, ok := w["fri"][k2]; !ok {
		t.Error("sibling slot was lost")
	}
}

func TestApply(t *testing.T) {
	store := newMemStore()
	days := newMemDays()
	svc := NewService(store, days)
	ctx := context.Background()

	if _, err := svc.AddSlot(ctx, staff(), "mon", slotInput("18:30")); err != nil {
		t.Fatal(err)
	}

	// 2026-09-01 is a Tuesday; the Mondays in range are the 7th, 14th, 21st
	// and 28th.
	results, err := svc.Apply(ctx, staff(), "mon", "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{"2026-09-07", "2026-09-14", "2026-09-21", "2026-09-28"}
	if len(results) != len(want) {
		t.Fatalf("results = %+v, want %d dates", results, len(want))
	}
	for i, r := range results {
		if r.Date != want[i] || r.Outcome != OutcomeApplied {
			t.Errorf("result[%d] = %+v, want applied %s", i, r, want[i])
		}
	}
	if _, ok := days.days["2026-09-07"]["pm_1830"]; !ok {
		t.Error("template class missing from created date")
	}
}

func TestApplySkipsExistingDates(t *testing.T) {
	store := newMemStore()
	days := newMemDays()
	days.days["2026-09-14"] = roster.DailyClassSet{"am_0600": {Time: "06:00"}}
	svc := NewService(store, days)
	ctx := context.Background()

	if _, err := svc.AddSlot(ctx, staff(), "mon", slotInput("18:30")); err != nil {
		t.Fatal(err)
	}

	results, err := svc.Apply(ctx, staff(), "mon", "2026-09-07", "2026-09-14")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Outcome != OutcomeApplied {
		t.Errorf("result[0] = %+v", results[0])
	}
	if results[1].Outcome != OutcomeSkipped || results[1].Reason == "" {
		t.Errorf("result[1] = %+v, want skipped with reason", results[1])
	}

	// The pre-existing date was not overwritten.
	if _, ok := days.days["2026-09-14"]["pm_1830"]; ok {
		t.Error("existing date was overwritten")
	}
}

func TestApplyRecordsFailuresAndContinues(t *testing.T) {
	store := newMemStore()
	days := newMemDays()
	days.failOn = "2026-09-14"
	days.failErr = errors.New("backend unavailable")
	svc := NewService(store, days)
	ctx := context.Background()

	if _, err := svc.AddSlot(ctx, staff(), "mon", slotInput("18:30")); err != nil {
		t.Fatal(err)
	}

	results, err := svc.Apply(ctx, staff(), "mon", "2026-09-07", "2026-09-21")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	if results[1].Outcome != OutcomeFailed || results[1].Reason != "backend unavailable" {
		t.Errorf("result[1] = %+v, want failed", results[1])
	}
	if results[2].Outcome != OutcomeApplied {
		t.Errorf("result[2] = %+v, later date must still apply", results[2])
	}
}

func TestApplyValidation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, newMemDays())
	ctx := context.Background()

	if _, err := svc.Apply(ctx, staff(), "mon", "2026-09-30", "2026-09-01"); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("inverted range err = %v, want ErrInvalidRange", err)
	}
	if _, err := svc.Apply(ctx, staff(), "mon", "not-a-date", "2026-09-30"); !errors.Is(err, ErrBadRequest) {
		t.Errorf("bad start err = %v, want ErrBadRequest", err)
	}
}

func TestApplyEmptyTemplateReportsSkipped(t *testing.T) {
	store := newMemStore()
	days := newMemDays()
	svc := NewService(store, days)
	ctx := context.Background()

	results, err := svc.Apply(ctx, staff(), "mon", "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %+v, want one per matching Monday", results)
	}
	for _, r := range results {
		if r.Outcome != OutcomeSkipped || r.Reason == "" {
			t.Errorf("result = %+v, want skipped with reason", r)
		}
	}
	if len(days.days) != 0 {
		t.Errorf("created days = %v, want none", days.days)
	}
}

func TestApplySingleDayRange(t *testing.T) {
	store := newMemStore()
	days := newMemDays()
	svc := NewService(store, days)
	ctx := context.Background()

	if _, err := svc.AddSlot(ctx, staff(), "mon", slotInput("18:30")); err != nil {
		t.Fatal(err)
	}

	// start == end, on the matching weekday.
	results, err := svc.Apply(ctx, staff(), "mon", "2026-09-07", "2026-09-07")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(results) != 1 || results[0].Outcome != OutcomeApplied {
		t.Errorf("results = %+v", results)
	}

	// start == end, on a non-matching weekday: no results at all.
	results, err = svc.Apply(ctx, staff(), "mon", "2026-09-08", "2026-09-08")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}
