package middleware

import (
	"fmt"
	"net/http"

	"github.com/orangegegege/equipment-manager/api/responses"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
)

// RequireRole gates a route group to sessions holding the given role. The
// session role is whatever Auth resolved from Redis, so a revoked or
// downgraded session loses access immediately.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actual := RoleFromContext(r.Context())
			if actual != role {
				if logg != nil {
					logg.Warn(logg.WithFields(r.Context(), map[string]any{
						"required_role": role,
						"actual_role":   actual,
						"path":          r.URL.Path,
					}), "auth.role.denied")
				}
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s role required", role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
