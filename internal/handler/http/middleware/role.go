package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrInsufficientPermissions)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok || !user.Role(roleStr).IsManager() {
			response.HandleError(w, user.ErrInsufficientPermissions)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks the caller's role against the grant table
func RequirePermission(action user.Action, resource user.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s %s'", action, resource))
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s %s'", action, resource))
				return
			}

			role := user.Role(roleStr)
			if !user.Can(role, action, resource) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s %s', but user role is '%s'", action, resource, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
