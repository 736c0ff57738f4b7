package scheduling

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
	"github.com/ElBenerDev/CRM/internal/platform/auth"
	"github.com/ElBenerDev/CRM/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "dentist", "receptionist"))
	g.POST("/appointments", h.CreateAppointment)
	g.GET("/appointments", h.ListAppointments)
	g.GET("/appointments/:id", h.GetAppointment)
	g.PATCH("/appointments/:id", h.UpdateAppointment)
	g.POST("/appointments/:id/cancel", h.CancelAppointment)
	g.DELETE("/appointments/:id", h.DeleteAppointment)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}

type createAppointmentRequest struct {
	PatientID       string  `json:"patient_id"`
	StartTime       string  `json:"start_time"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	DurationMinutes int     `json:"duration_minutes"`
	ServiceType     string  `json:"service_type"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes"`
}

// startTimeLayouts are the accepted timestamp shapes. Clients send either a
// single start_time or a date plus time pair.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseStartTime(startTime, date, clock string) (time.Time, error) {
	raw := startTime
	if raw == "" {
		if date == "" || clock == "" {
			return time.Time{}, apperr.Validationf("start_time or date+time is required")
		}
		raw = date + " " + clock
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validationf("cannot parse start time %q", raw)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	start, err := parseStartTime(req.StartTime, req.Date, req.Time)
	if err != nil {
		return httpError(err)
	}

	a := Appointment{
		PatientID:       patientID,
		StartTime:       start,
		DurationMinutes: req.DurationMinutes,
		ServiceType:     req.ServiceType,
		Status:          req.Status,
		Notes:           req.Notes,
	}
	if err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f Filter
	if p := c.QueryParam("patient_id"); p != "" {
		pid, err := uuid.Parse(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &pid
	}
	if st := c.QueryParam("status"); st != "" {
		f.Status = &st
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := parseStartTime(from, "", "")
		if err != nil {
			return httpError(err)
		}
		f.From = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := parseStartTime(to, "", "")
		if err != nil {
			return httpError(err)
		}
		f.To = &t
	}

	orderDesc := c.QueryParam("order") == "desc"

	items, total, err := h.svc.ListAppointments(c.Request().Context(), f, orderDesc, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type updateAppointmentRequest struct {
	StartTime       *string `json:"start_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	ServiceType     *string `json:"service_type"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	upd := AppointmentUpdate{
		DurationMinutes: req.DurationMinutes,
		ServiceType:     req.ServiceType,
		Status:          req.Status,
		Notes:           req.Notes,
	}
	if req.StartTime != nil {
		t, err := parseStartTime(*req.StartTime, "", "")
		if err != nil {
			return httpError(err)
		}
		upd.StartTime = &t
	}

	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.CancelAppointment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
