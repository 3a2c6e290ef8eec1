package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gym-manager/backend/internal/authctx"
	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/domain/account"
	"gym-manager/backend/internal/domain/coach"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/roster"
	"gym-manager/backend/internal/domain/template"
	"gym-manager/backend/internal/middleware"
)

type RouterDeps struct {
	Cfg         config.Config
	Verifier    middleware.TokenVerifier
	AccountSvc  *account.Service
	RosterSvc   *roster.Service
	TemplateSvc *template.Service
	CoachSvc    *coach.Service
	MemberStore member.Store
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.Verifier))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			WriteJSON(w, 200, map[string]any{
				"uid":    p.UID,
				"email":  p.Email,
				"claims": p.Claims.Map(),
			})
		})

		// ===== Account surface (legacy flat paths, consumed by both UIs) =====
		pr.Post("/initSuperAdmin", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			rec, err := d.AccountSvc.InitSuperAdmin(r.Context(), p)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, rec)
		})

		pr.Post("/addSystemUser", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in account.CreateSystemUserInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			rec, err := d.AccountSvc.CreateSystemUser(r.Context(), p, in)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, rec)
		})

		pr.Post("/addMember", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in account.CreateMemberInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			rec, err := d.AccountSvc.CreateMember(r.Context(), p, in)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, rec)
		})

		pr.Post("/editSystemUser", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in account.UpdateSystemUserInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			rec, err := d.AccountSvc.UpdateSystemUser(r.Context(), p, in)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, rec)
		})

		pr.Delete("/deleteSystemUser", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in struct {
				Email string `json:"email"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if err := d.AccountSvc.DeleteSystemUser(r.Context(), p, in.Email); err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"deleted": in.Email})
		})

		pr.Delete("/deleteMember", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in struct {
				Email string `json:"email"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if err := d.AccountSvc.DeleteMember(r.Context(), p, in.Email); err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"deleted": in.Email})
		})

		pr.Get("/v1/systemUsers", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			rows, err := d.AccountSvc.SystemUsers(r.Context(), p)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, rows)
		})

		pr.Get("/v1/members", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			if !p.IsStaff() {
				Fail(w, 401, "staff role required")
				return
			}
			rows, err := d.MemberStore.Summaries(r.Context())
			if err != nil {
				Fail(w, 500, "failed to read member list")
				return
			}
			WriteJSON(w, 200, rows)
		})

		// ===== Class roster =====
		pr.Get("/v1/classes/{date}", func(w http.ResponseWriter, r *http.Request) {
			set, err := d.RosterSvc.Day(r.Context(), chi.URLParam(r, "date"))
			if err != nil {
				status, msg := mapRosterError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"classes": set, "order": roster.SortedKeys(set)})
		})

		pr.Post("/v1/classes/{date}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in roster.AddClassInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			key, err := d.RosterSvc.AddClass(r.Context(), p, chi.URLParam(r, "date"), in)
			if err != nil {
				status, msg := mapRosterError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{"key": key})
		})

		pr.Patch("/v1/classes/{date}/{key}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in roster.EditClassInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			c, err := d.RosterSvc.EditClass(r.Context(), p, chi.URLParam(r, "date"), chi.URLParam(r, "key"), in)
			if err != nil {
				status, msg := mapRosterError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, c)
		})

		pr.Delete("/v1/classes/{date}/{key}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			if err := d.RosterSvc.DeleteClass(r.Context(), p, chi.URLParam(r, "date"), chi.URLParam(r, "key")); err != nil {
				status, msg := mapRosterError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"deleted": chi.URLParam(r, "key")})
		})

		pr.Post("/v1/classes/{date}/{key}/enroll", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in struct {
				MemberID    string `json:"memberId"`
				DisplayName string `json:"displayName"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			c, err := d.RosterSvc.Enroll(r.Context(), p, chi.URLParam(r, "date"), chi.URLParam(r, "key"), in.MemberID, in.DisplayName)
			if err != nil {
				status, msg := mapRosterError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, c)
		})

		pr.Post("/v1/classes/{date}/{key}/withdraw", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in struct {
				MemberID string `json:"memberId"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			c, err := d.RosterSvc.Withdraw(r.Context(), p, chi.URLParam(r, "date"), chi.URLParam(r, "key"), in.MemberID)
			if err != nil {
				status, msg := mapRosterError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, c)
		})

		// ===== Weekly template =====
		pr.Get("/v1/template", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			weekly, err := d.TemplateSvc.Weekly(r.Context(), p)
			if err != nil {
				status, msg := mapTemplateError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, weekly)
		})

		pr.Post("/v1/template/{weekday}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in roster.AddClassInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			key, err := d.TemplateSvc.AddSlot(r.Context(), p, chi.URLParam(r, "weekday"), in)
			if err != nil {
				status, msg := mapTemplateError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{"key": key})
		})

		pr.Patch("/v1/template/{weekday}/{key}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in roster.EditClassInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if err := d.TemplateSvc.EditSlot(r.Context(), p, chi.URLParam(r, "weekday"), chi.URLParam(r, "key"), in); err != nil {
				status, msg := mapTemplateError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"updated": chi.URLParam(r, "key")})
		})

		pr.Delete("/v1/template/{weekday}/{key}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			if err := d.TemplateSvc.DeleteSlot(r.Context(), p, chi.URLParam(r, "weekday"), chi.URLParam(r, "key")); err != nil {
				status, msg := mapTemplateError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"deleted": chi.URLParam(r, "key")})
		})

		pr.Post("/v1/template/{weekday}/apply", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in struct {
				StartDate string `json:"startDate"`
				EndDate   string `json:"endDate"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			results, err := d.TemplateSvc.Apply(r.Context(), p, chi.URLParam(r, "weekday"), in.StartDate, in.EndDate)
			if err != nil {
				status, msg := mapTemplateError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"results": results})
		})

		// ===== Coach registry =====
		pr.Get("/v1/coaches", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			reg, err := d.CoachSvc.Registry(r.Context(), p)
			if err != nil {
				status, msg := mapCoachError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, reg)
		})

		pr.Post("/v1/coaches/class-types", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if err := d.CoachSvc.AddClassType(r.Context(), p, in.Name); err != nil {
				status, msg := mapCoachError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{"added": in.Name})
		})

		pr.Delete("/v1/coaches/class-types/{name}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			if err := d.CoachSvc.RemoveClassType(r.Context(), p, chi.URLParam(r, "name")); err != nil {
				status, msg := mapCoachError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"deleted": chi.URLParam(r, "name")})
		})

		pr.Put("/v1/coaches/{name}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			var in struct {
				Qualifications map[string]bool `json:"qualifications"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if err := d.CoachSvc.UpsertCoach(r.Context(), p, chi.URLParam(r, "name"), in.Qualifications); err != nil {
				status, msg := mapCoachError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"coach": chi.URLParam(r, "name")})
		})

		pr.Delete("/v1/coaches/{name}", func(w http.ResponseWriter, r *http.Request) {
			p, _ := authctx.Principal(r.Context())
			if err := d.CoachSvc.RemoveCoach(r.Context(), p, chi.URLParam(r, "name")); err != nil {
				status, msg := mapCoachError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"deleted": chi.URLParam(r, "name")})
		})
	})

	return r
}
