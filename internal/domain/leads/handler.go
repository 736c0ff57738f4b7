package leads

import (
	"net/http"
	"strconv"

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
	g.POST("/leads", h.CreateLead)
	g.GET("/leads", h.ListLeads)
	g.GET("/leads/:id", h.GetLead)
	g.PATCH("/leads/:id", h.UpdateLead)
	g.POST("/leads/:id/status", h.UpdateLeadStatus)
	g.DELETE("/leads/:id", h.DeleteLead)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}

func (h *Handler) CreateLead(c echo.Context) error {
	var l Lead
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateLead(c.Request().Context(), &l); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) GetLead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	l, err := h.svc.GetLead(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) ListLeads(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f Filter
	if st := c.QueryParam("status"); st != "" {
		f.Status = &st
	}
	if min := c.QueryParam("min_value"); min != "" {
		v, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_value")
		}
		f.MinValue = &v
	}
	if max := c.QueryParam("max_value"); max != "" {
		v, err := strconv.ParseFloat(max, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_value")
		}
		f.MaxValue = &v
	}

	items, total, err := h.svc.ListLeads(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateLead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd LeadUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l, err := h.svc.UpdateLead(c.Request().Context(), id, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, l)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateLeadStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l, err := h.svc.UpdateLeadStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) DeleteLead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteLead(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
