package middleware

import (
	"context"

	"github.com/platedrop/ordercore/pkg/auth"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the authenticated caller, or nil when the
// request carried no valid session.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*auth.Identity); ok {
		return v
	}
	return nil
}

// WithIdentity injects the authenticated caller into the context.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}
