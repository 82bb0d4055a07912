package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the staff dashboard on the authenticated surface and
// the record-totals dashboard on the admin surface.
func (h *Handler) RegisterRoutes(authed, admin *echo.Group) {
	authed.GET("/dashboard", h.Overview)
	admin.GET("/dashboard", h.AdminOverview)
}

func (h *Handler) Overview(c echo.Context) error {
	out, err := h.svc.Overview(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) AdminOverview(c echo.Context) error {
	out, err := h.svc.AdminOverview(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
