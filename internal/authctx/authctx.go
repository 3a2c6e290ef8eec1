package authctx

import (
	"context"

	"gym-manager/backend/internal/rbac"
)

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p *rbac.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func Principal(ctx context.Context) (*rbac.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*rbac.Principal)
	return p, ok && p != nil
}
