package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization gates routes on the permission snapshot embedded in
// the request identity. Authorization failures never mutate state.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || identity == nil {
			ra.logger.Warn("authorization check failed: identity not found in context")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !identity.HasPermission(permission) {
			ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", identity.ID,
				"required_permission", permission,
				"user_permissions", identity.Permissions)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// Require returns a chi-compatible middleware enforcing one permission.
func (ra *RBACAuthorization) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}
