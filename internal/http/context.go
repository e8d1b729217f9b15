package http

import (
	"context"
)

// Principal is the caller identity resolved at the HTTP edge. Privileged is
// computed from development mode or a verified operator key; the engine only
// ever sees the resulting boolean.
type Principal struct {
	UserID     string
	Privileged bool
}

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal returns a derived context carrying the caller identity.
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the caller identity if the middleware set one.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(Principal)
	return principal, ok
}
