package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/domain/coach"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/roster"
	"gym-manager/backend/internal/domain/template"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	switch idToken {
	case "staff-token":
		return &auth.Token{UID: "staff-uid", Claims: map[string]any{
			"email": "mgr@example.com", "role": "manager", "roleLevel": int64(3), "createdBy": "root",
		}}, nil
	case "member-token":
		return &auth.Token{UID: "member-uid", Claims: map[string]any{
			"email": "sam@example.com", "role": "member", "roleLevel": int64(1),
			"memberId": "ri_0001", "createdBy": "staff-uid",
		}}, nil
	}
	return nil, errors.New("unknown token")
}

type fakeRosterStore struct {
	mu   sync.Mutex
	days map[string]roster.DailyClassSet
}

func (f *fakeRosterStore) Day(_ context.Context, date string) (roster.DailyClassSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.days[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", roster.ErrDayNotFound, date)
	}
	return set, nil
}

func (f *fakeRosterStore) AddSlot(_ context.Context, date, key string, c roster.ClassInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.days[date]
	if !ok {
		f.days[date] = roster.DailyClassSet{key: c}
		return nil
	}
	if _, exists := set[key]; exists {
		return fmt.Errorf("%w: %s %s", roster.ErrDuplicateSlot, date, c.Time)
	}
	set[key] = c
	return nil
}

func (f *fakeRosterStore) CreateDay(_ context.Context, date string, set roster.DailyClassSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.days[date]; exists {
		return fmt.Errorf("%w: %s", roster.ErrDayExists, date)
	}
	f.days[date] = set
	return nil
}

func (f *fakeRosterStore) DeleteSlot(_ context.Context, date, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.days[date]
	if !ok {
		return fmt.Errorf("%w: %s", roster.ErrDayNotFound, date)
	}
	delete(set, key)
	return nil
}

func (f *fakeRosterStore) MutateSlot(_ context.Context, date, key string, fn func(roster.ClassInstance) (roster.ClassInstance, error)) (roster.ClassInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.days[date]
	if !ok {
		return roster.ClassInstance{}, fmt.Errorf("%w: %s", roster.ErrDayNotFound, date)
	}
	cur, ok := set[key]
	if !ok {
		return roster.ClassInstance{}, fmt.Errorf("%w: %s %s", roster.ErrSlotNotFound, date, key)
	}
	next, err := fn(cur)
	if err != nil {
		return roster.ClassInstance{}, err
	}
	set[key] = next
	return next, nil
}

type fakeTemplateStore struct {
	mu     sync.Mutex
	weekly template.Weekly
}

func (f *fakeTemplateStore) Weekly(_ context.Context) (template.Weekly, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.weekly, nil
}

func (f *fakeTemplateStore) Weekday(_ context.Context, day string) (roster.DailyClassSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.weekly[day]
	if set == nil {
		set = roster.DailyClassSet{}
	}
	return set, nil
}

func (f *fakeTemplateStore) MutateWeekday(_ context.Context, day string, fn func(roster.DailyClassSet) (roster.DailyClassSet, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := f.weekly[day]
	if cur == nil {
		cur = roster.DailyClassSet{}
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	f.weekly[day] = next
	return nil
}

type fakeCoachStore struct {
	mu  sync.Mutex
	reg coach.Registry
}

func (f *fakeCoachStore) Registry(_ context.Context) (coach.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reg, nil
}

func (f *fakeCoachStore) MutateRegistry(_ context.Context, fn func(coach.Registry) (coach.Registry, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := fn(f.reg)
	if err != nil {
		return err
	}
	f.reg = next
	return nil
}

type fakeMemberStore struct{}

func (fakeMemberStore) AllocateID(_ context.Context, _ member.Summary) (string, error) {
	return "ri_0001", nil
}
func (fakeMemberStore) PutDetail(_ context.Context, _ member.Detail) error { return nil }
func (fakeMemberStore) Summaries(_ context.Context) (map[string]member.Summary, error) {
	return map[string]member.Summary{"ri_0001": {Name: "Sam", Email: "sam@example.com"}}, nil
}
func (fakeMemberStore) Delete(_ context.Context, _ string) error { return nil }

func newTestRouter() http.Handler {
	rosterStore := &fakeRosterStore{days: map[string]roster.DailyClassSet{}}
	rosterSvc := roster.NewService(rosterStore)
	templateSvc := template.NewService(&fakeTemplateStore{weekly: template.Weekly{}}, rosterStore)
	coachSvc := coach.NewService(&fakeCoachStore{reg: coach.Registry{Coaches: map[string]map[string]bool{}}})

	return NewRouter(RouterDeps{
		Cfg:         config.Config{Port: "8080", AllowedOrigins: []string{"*"}},
		Verifier:    fakeVerifier{},
		RosterSvc:   rosterSvc,
		TemplateSvc: templateSvc,
		CoachSvc:    coachSvc,
		MemberStore: fakeMemberStore{},
	})
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	h := newTestRouter()
	for _, path := range []string{"/v1/me", "/v1/classes/2026-09-01", "/v1/template", "/v1/coaches"} {
		rec := do(t, h, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, rec.Code)
		}
	}
}

func TestClassLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter()
	body := `{"time":"18:30","duration":60,"classType":"yoga","instructor":"Ana","maxAttendees":2}`

	rec := do(t, h, http.MethodPost, "/v1/classes/2026-09-01", "staff-token", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add class = %d body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Key != "pm_1830" {
		t.Errorf("key = %q", created.Key)
	}

	// Same slot again conflicts.
	rec = do(t, h, http.MethodPost, "/v1/classes/2026-09-01", "staff-token", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate add = %d, want 409", rec.Code)
	}

	// Members cannot add classes.
	rec = do(t, h, http.MethodPost, "/v1/classes/2026-09-01", "member-token", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("member add = %d, want 401", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/classes/2026-09-01", "member-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("day read = %d", rec.Code)
	}
	var day struct {
		Classes roster.DailyClassSet `json:"classes"`
		Order   []string             `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &day); err != nil {
		t.Fatal(err)
	}
	if len(day.Order) != 1 || day.Order[0] != "pm_1830" {
		t.Errorf("order = %v", day.Order)
	}
}

func TestEnrollOverHTTP(t *testing.T) {
	h := newTestRouter()
	body := `{"time":"18:30","duration":60,"classType":"yoga","instructor":"Ana","maxAttendees":1}`
	if rec := do(t, h, http.MethodPost, "/v1/classes/2026-09-01", "staff-token", body); rec.Code != http.StatusCreated {
		t.Fatal(rec.Body.String())
	}

	// A member may enroll themselves.
	rec := do(t, h, http.MethodPost, "/v1/classes/2026-09-01/pm_1830/enroll", "member-token",
		`{"memberId":"ri_0001","displayName":"Sam"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("self enroll = %d body %s", rec.Code, rec.Body.String())
	}

	// Not someone else.
	rec = do(t, h, http.MethodPost, "/v1/classes/2026-09-01/pm_1830/enroll", "member-token",
		`{"memberId":"ri_0002","displayName":"Kim"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("cross-member enroll = %d, want 401", rec.Code)
	}

	// Full class conflicts even for staff.
	rec = do(t, h, http.MethodPost, "/v1/classes/2026-09-01/pm_1830/enroll", "staff-token",
		`{"memberId":"ri_0003","displayName":"Pat"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("full class enroll = %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/v1/classes/2026-09-01/pm_1830/withdraw", "member-token",
		`{"memberId":"ri_0001"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("withdraw = %d", rec.Code)
	}
}

func TestTemplateApplyOverHTTP(t *testing.T) {
	h := newTestRouter()
	body := `{"time":"06:00","duration":45,"classType":"spin","instructor":"Bob","maxAttendees":8}`
	if rec := do(t, h, http.MethodPost, "/v1/template/mon", "staff-token", body); rec.Code != http.StatusCreated {
		t.Fatal(rec.Body.String())
	}

	rec := do(t, h, http.MethodPost, "/v1/template/mon/apply", "staff-token",
		`{"startDate":"2026-09-07","endDate":"2026-09-14"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply = %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []template.DateResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 || resp.Results[0].Outcome != template.OutcomeApplied {
		t.Errorf("results = %+v", resp.Results)
	}

	// The applied dates are now readable as regular class days.
	rec = do(t, h, http.MethodGet, "/v1/classes/2026-09-07", "member-token", "")
	if rec.Code != http.StatusOK {
		t.Errorf("applied day read = %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/v1/template/mon/apply", "staff-token",
		`{"startDate":"2026-09-14","endDate":"2026-09-07"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted range = %d, want 400", rec.Code)
	}
}

func TestCoachRegistryOverHTTP(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodPost, "/v1/coaches/class-types", "staff-token", `{"name":"yoga"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add type = %d body %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/v1/coaches/class-types", "staff-token", `{"name":"yoga"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate type = %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodPut, "/v1/coaches/Ana", "staff-token", `{"qualifications":{"yoga":true}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert coach = %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/coaches", "staff-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("registry read = %d", rec.Code)
	}
	var reg coach.Registry
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatal(err)
	}
	if !reg.Coaches["Ana"]["yoga"] {
		t.Errorf("registry = %+v", reg)
	}

	// Registry reads are staff-only.
	rec = do(t, h, http.MethodGet, "/v1/coaches", "member-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("member registry read = %d, want 401", rec.Code)
	}
}

func TestMembersListOverHTTP(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodGet, "/v1/members", "staff-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("members = %d", rec.Code)
	}
	var rows map[string]member.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if rows["ri_0001"].Name != "Sam" {
		t.Errorf("rows = %v", rows)
	}

	rec = do(t, h, http.MethodGet, "/v1/members", "member-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("member list as member = %d, want 401", rec.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/v1/me", "member-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me = %d", rec.Code)
	}
	var me struct {
		UID    string         `json:"uid"`
		Email  string         `json:"email"`
		Claims map[string]any `json:"claims"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatal(err)
	}
	if me.UID != "member-uid" || me.Claims["memberId"] != "ri_0001" {
		t.Errorf("me = %+v", me)
	}
}
