package middleware

import (
	"net/http"
	"strings"

	"github.com/platedrop/ordercore/api/responses"
	pkgAuth "github.com/platedrop/ordercore/pkg/auth"
	"github.com/platedrop/ordercore/pkg/config"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/logger"
)

// Auth validates a bearer session token and seeds the request context
// with the caller's identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identity, err := pkgAuth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    identity.UserID,
					"actor_role": string(identity.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose session carries a different role.
func RequireRole(role pkgAuth.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil || identity.Role != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
