package middleware // middleware package contains reusable echo middlewares

import (
	"net/http" // http provides status code constants

	"github.com/labstack/echo/v4" // echo is the web framework used for middleware
)

// RequireRole rejects requests whose role (set by JWTAuth) is not one of
// roles with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles)) // lookup set of accepted roles
	for _, r := range roles {                     // copy each role into the set
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc { // wrap the next handler
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string) // role claim stored by JWTAuth, "" when absent
			if !allowed[role] {                // caller's role is not accepted
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"}) // respond with 403
			}
			return next(c) // role accepted, continue the chain
		}
	}
}
