package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenancy-service/internal/service"
)

// PropertyHandler serves property listings and dashboard aggregates
type PropertyHandler struct {
	properties *service.PropertyService
	dashboard  *service.DashboardService
}

// NewPropertyHandler creates a PropertyHandler
func NewPropertyHandler(properties *service.PropertyService, dashboard *service.DashboardService) *PropertyHandler {
	return &PropertyHandler{properties: properties, dashboard: dashboard}
}

// ListProperties returns every property with user and complaint counts
func (h *PropertyHandler) ListProperties(c echo.Context) error {
	properties, err := h.properties.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Properties retrieved successfully", properties)
}

// DashboardStats returns headline counts
func (h *PropertyHandler) DashboardStats(c echo.Context) error {
	stats, err := h.dashboard.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Dashboard stats retrieved successfully", stats)
}
