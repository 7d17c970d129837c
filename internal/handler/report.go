package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReportHandler serves the read-only aggregate reports.
type ReportHandler struct {
	Reports ReportStore
}

func NewReportHandler(reports ReportStore) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

// Inspectors handles GET /v1/reports/inspectors.
func (h *ReportHandler) Inspectors(c echo.Context) error {
	rows, err := h.Reports.Inspectors(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Owners handles GET /v1/reports/owners: each owner with their
// vehicles and the violations recorded against each vehicle.
func (h *ReportHandler) Owners(c echo.Context) error {
	reports, err := h.Reports.Owners(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reports)
}

// Violations handles GET /v1/reports/violations.
func (h *ReportHandler) Violations(c echo.Context) error {
	rows, err := h.Reports.Violations(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}
