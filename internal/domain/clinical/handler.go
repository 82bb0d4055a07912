package clinical

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the clinical record graph on both surfaces. The
// admin group mirrors the record CRUD and adds the filtered list endpoints
// with their aggregate counters.
func (h *Handler) RegisterRoutes(authed, admin *echo.Group) {
	for _, g := range []*echo.Group{authed, admin} {
		g.POST("/patients/:id/histories", h.AddHistory)
		g.GET("/patients/:id/histories", h.ListHistories)
		g.GET("/patients/:id/summary", h.Summary)
		g.POST("/patients/:id/allergies", h.CreateAllergyForPatient)

		g.GET("/histories/:id", h.GetHistory)
		g.POST("/histories/:id/diagnoses", h.AddDiagnosis)
		g.POST("/histories/:id/allergies", h.AddAllergy)
		g.POST("/histories/:id/medications", h.AddMedication)

		g.GET("/diagnoses/:id", h.GetDiagnosis)
		g.PUT("/diagnoses/:id", h.UpdateDiagnosis)
		g.DELETE("/diagnoses/:id", h.DeleteDiagnosis)

		g.GET("/allergies/:id", h.GetAllergy)
		g.PUT("/allergies/:id", h.UpdateAllergy)
		g.DELETE("/allergies/:id", h.DeleteAllergy)

		g.GET("/medications/:id", h.GetMedication)
		g.PUT("/medications/:id", h.UpdateMedication)
		g.DELETE("/medications/:id", h.DeleteMedication)
	}

	admin.GET("/diagnoses", h.ListDiagnoses)
	admin.GET("/allergies", h.ListAllergies)
	admin.GET("/medications", h.ListMedications)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Histories --

func (h *Handler) AddHistory(c echo.Context) error {
	patientID, err := pathID(c)
	if err != nil {
		return err
	}
	var in HistoryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	history, err := h.svc.AddHistory(c.Request().Context(), actor, patientID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, history)
}

func (h *Handler) ListHistories(c echo.Context) error {
	patientID, err := pathID(c)
	if err != nil {
		return err
	}
	histories, err := h.svc.ListHistories(c.Request().Context(), patientID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, histories)
}

func (h *Handler) GetHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	detail, err := h.svc.GetHistoryDetail(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) Summary(c echo.Context) error {
	patientID, err := pathID(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.Summary(c.Request().Context(), patientID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// -- Diagnoses --

func (h *Handler) AddDiagnosis(c echo.Context) error {
	historyID, err := pathID(c)
	if err != nil {
		return err
	}
	var in DiagnosisInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.AddDiagnosis(c.Request().Context(), historyID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDiagnosis(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDiagnosis(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDiagnosis(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in DiagnosisInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateDiagnosis(c.Request().Context(), id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDiagnosis(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDiagnosis(c.Request().Context(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListDiagnoses(c echo.Context) error {
	f := DiagnosisFilter{Query: c.QueryParam("q")}
	if sev := c.QueryParam("severity"); sev != "" {
		f.Severity = &sev
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDiagnoses(c.Request().Context(), f, pg.Limit(), pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	counters, err := h.svc.DiagnosisCounters(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, struct {
		*pagination.Response
		Counters DiagnosisCounters `json:"counters"`
	}{pagination.NewResponse(items, total, pg), counters})
}

// -- Allergies --

func (h *Handler) CreateAllergyForPatient(c echo.Context) error {
	patientID, err := pathID(c)
	if err != nil {
		return err
	}
	var in AllergyInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.svc.CreateAllergyForPatient(c.Request().Context(), actor, patientID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) AddAllergy(c echo.Context) error {
	historyID, err := pathID(c)
	if err != nil {
		return err
	}
	var in AllergyInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.AddAllergy(c.Request().Context(), historyID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAllergy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAllergy(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAllergy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in AllergyInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateAllergy(c.Request().Context(), id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAllergy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAllergy(c.Request().Context(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAllergies(c echo.Context) error {
	f := AllergyFilter{Query: c.QueryParam("q")}
	if sev := c.QueryParam("severity"); sev != "" {
		f.Severity = &sev
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAllergies(c.Request().Context(), f, pg.Limit(), pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

// -- Medications --

func (h *Handler) AddMedication(c echo.Context) error {
	historyID, err := pathID(c)
	if err != nil {
		return err
	}
	var in MedicationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	m, err := h.svc.AddMedication(c.Request().Context(), actor, historyID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMedication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetMedication(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in MedicationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.UpdateMedication(c.Request().Context(), id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMedication(c.Request().Context(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMedications(c echo.Context) error {
	f := MedicationFilter{Query: c.QueryParam("q")}
	if active := c.QueryParam("is_active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "is_active must be true or false")
		}
		f.IsActive = &v
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListMedications(c.Request().Context(), f, pg.Limit(), pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	counters, err := h.svc.MedicationCounters(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, struct {
		*pagination.Response
		Counters MedicationCounters `json:"counters"`
	}{pagination.NewResponse(items, total, pg), counters})
}
