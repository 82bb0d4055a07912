package patient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/blobstore"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc    *Service
	photos blobstore.Store
}

func NewHandler(svc *Service, photos blobstore.Store) *Handler {
	return &Handler{svc: svc, photos: photos}
}

// RegisterRoutes mounts the patient registry on both surfaces. The admin
// group mirrors the general CRUD set and adds the quick-search endpoint.
func (h *Handler) RegisterRoutes(authed, admin *echo.Group) {
	for _, g := range []*echo.Group{authed, admin} {
		g.GET("/patients", h.List)
		g.POST("/patients", h.Create)
		g.GET("/patients/:id", h.Get)
		g.PUT("/patients/:id", h.Update)
		g.DELETE("/patients/:id", h.Delete)
	}
	authed.POST("/patients/:id/photo", h.UploadPhoto)
	authed.GET("/photos/:photoId", h.ServePhoto)
	admin.GET("/patient-search", h.QuickSearch)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	p, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	f := Filter{Query: c.QueryParam("q")}
	if g := c.QueryParam("gender"); g != "" {
		f.Gender = &g
	}
	if bg := c.QueryParam("blood_group"); bg != "" {
		f.BloodGroup = &bg
	}

	pg := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), f, pg.Limit(), pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) QuickSearch(c echo.Context) error {
	results, err := h.svc.QuickSearch(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func (h *Handler) UploadPhoto(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	// Resolve the patient before touching the store so a bad id cannot
	// leave an orphaned blob behind.
	if _, err := h.svc.Get(c.Request().Context(), id); err != nil {
		return apperr.Respond(c, err)
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open upload")
	}
	defer src.Close()

	actor := auth.ActorFromContext(c.Request().Context())
	meta, err := h.photos.Put(c.Request().Context(), blobstore.PhotoMetadata{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		UploadedBy:  actor.Username,
	}, src)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrInvalidContentType):
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, blobstore.ErrPhotoTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	p, err := h.svc.AttachPhoto(c.Request().Context(), id, meta.ID)
	if err != nil {
		_ = h.photos.Delete(c.Request().Context(), meta.ID)
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ServePhoto(c echo.Context) error {
	rc, meta, err := h.photos.Get(c.Request().Context(), c.Param("photoId"))
	if err != nil {
		if errors.Is(err, blobstore.ErrPhotoNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "photo not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, meta.FileName))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}
