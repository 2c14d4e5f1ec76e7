package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/orangegegege/equipment-manager/api/responses"
	pkgauth "github.com/orangegegege/equipment-manager/pkg/auth"
	"github.com/orangegegege/equipment-manager/pkg/auth/session"
	"github.com/orangegegege/equipment-manager/pkg/config"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
)

// Auth validates a bearer token against its Redis session and seeds the
// request context with the role and session id. The session id doubles as
// the cart key downstream.
func Auth(cfg config.JWTConfig, sessions session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
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

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			// The session is the revocation point: a logged-out token is
			// rejected even before its expiry.
			role, err := sessions.Role(r.Context(), claims.ID)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}
			if role != claims.Role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
				return
			}

			ctx := WithRole(r.Context(), string(claims.Role))
			ctx = WithSessionID(ctx, claims.ID)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"actor_role": string(claims.Role),
					"session_id": claims.ID,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
