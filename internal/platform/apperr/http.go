package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Respond writes the HTTP response for a service error: 400 with field
// details for validation failures, 404 for missing records, 401 for failed
// authentication, 500 otherwise.
func Respond(c echo.Context, err error) error {
	if v, ok := AsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": v.Fields,
		})
	}
	if IsNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
