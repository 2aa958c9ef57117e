package middleware

import (
	"net/http"

	"clinic-queue-manager/pkg/response"
)

// RequireRole creates a middleware that checks if the token carries any
// of the given role names. Roles are set by AuthMiddleware from JWT
// claims.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := GetRolesFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
		outer:
			for _, role := range roles {
				for _, allowedRole := range allowedRoles {
					if role == allowedRole {
						allowed = true
						break outer
					}
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole("admin")(next)
}

// RequireStaff allows clinic staff and admins
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole("staff", "admin")(next)
}
