package reporting

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
	"github.com/ElBenerDev/CRM/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "dentist", "receptionist"))
	g.GET("/dashboard", h.Dashboard)
}

func (h *Handler) Dashboard(c echo.Context) error {
	s, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, s)
}
