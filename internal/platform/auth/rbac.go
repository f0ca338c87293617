package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	RoleUser     = "USER"
	RoleLabAdmin = "LAB_ADMIN"
	RoleAdmin    = "ADMIN"
)

// RequireRole returns middleware that checks if the user has one of the
// specified roles. ADMIN always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// CanAccessLab is the single capability check consulted by handlers that
// touch laboratory-owned resources: ADMIN reaches every lab, everyone else
// only their own.
func CanAccessLab(ctx context.Context, laboratoryID string) bool {
	if RoleFromContext(ctx) == RoleAdmin {
		return true
	}
	own := LaboratoryFromContext(ctx)
	return own != "" && strings.EqualFold(own, laboratoryID)
}

// RequireLabAccess wraps CanAccessLab as route middleware keyed on the :labId
// path parameter.
func RequireLabAccess(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			labID := c.Param(param)
			if labID == "" {
				labID = c.QueryParam("labId")
			}
			if labID == "" {
				return next(c)
			}
			if !CanAccessLab(c.Request().Context(), labID) {
				return echo.NewHTTPError(http.StatusForbidden, "laboratory access denied")
			}
			return next(c)
		}
	}
}
