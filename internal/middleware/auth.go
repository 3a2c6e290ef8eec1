package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/authctx"
	"gym-manager/backend/internal/httpjson"
	"gym-manager/backend/internal/rbac"
)

// TokenVerifier is the slice of *auth.Client the middleware needs. Tests
// substitute a fake.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// WithAuth verifies the bearer token on every request and attaches the
// decoded principal to the request context. A missing or ill-formed header
// is 401; an empty or unverifiable token is 400. On any failure the chain
// halts without reaching the next handler.
func WithAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				httpjson.Error(w, http.StatusUnauthorized, "missing Authorization: Bearer <token>")
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])
			if idToken == "" {
				httpjson.Error(w, http.StatusBadRequest, "malformed bearer token")
				return
			}

			tok, err := verifier.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "token verification failed")
				return
			}

			p := &rbac.Principal{UID: tok.UID}
			if v, ok := tok.Claims["email"].(string); ok {
				p.Email = v
			}
			// Accounts without custom claims (never provisioned through the
			// lifecycle manager) carry zero-value claims, level 0.
			if c, err := rbac.ClaimsFromMap(tok.Claims); err == nil {
				p.Claims = c
			}

			ctx := authctx.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
