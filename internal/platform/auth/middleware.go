package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireAuth parses the bearer session token and stores the actor on the
// request context. Requests without a valid token get 401.
func RequireAuth(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			actor, err := issuer.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	}
}

// RequireClinicalAdmin enforces the clinical-admin gate behind RequireAuth:
// 401 for unauthenticated callers, 403 for authenticated callers that fail
// the policy.
func RequireClinicalAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFromContext(c.Request().Context())
			if !actor.Authenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !CanAccessClinicalAdmin(actor) {
				return echo.NewHTTPError(http.StatusForbidden, "clinical admin access required")
			}
			return next(c)
		}
	}
}
