package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the user has at least one of
// the specified roles. Admins pass every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == "admin" {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// ScopeHospitals intersects a requested hospital selection with the user's
// grant. An empty grant passes the request through; an empty request with a
// grant narrows to the grant.
func ScopeHospitals(requested, granted []string) []string {
	if len(granted) == 0 {
		return requested
	}
	if len(requested) == 0 {
		return granted
	}
	allowed := make(map[string]struct{}, len(granted))
	for _, h := range granted {
		allowed[h] = struct{}{}
	}
	var out []string
	for _, h := range requested {
		if _, ok := allowed[h]; ok {
			out = append(out, h)
		}
	}
	if out == nil {
		// Nothing of the request survives the grant; fall back to the
		// grant rather than silently widening to everything.
		return granted
	}
	return out
}
