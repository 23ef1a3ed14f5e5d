package handler

import (
	"net/http"
	"strconv"
	"time"

	"opticpos/internal/apierror"
	"opticpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	svc        service.ReportService
	locationID string
}

func NewReportsHandler(svc service.ReportService, locationID string) *ReportsHandler {
	return &ReportsHandler{svc: svc, locationID: locationID}
}

// Daily godoc
// @Summary      Daily sales summary
// @Tags         reports
// @Produce      json
// @Param        date path string true "Day (YYYY-MM-DD)"
// @Success      200  {object} dto.DailySummaryResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/reports/daily/{date} [get]
func (h *ReportsHandler) Daily(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("date must be YYYY-MM-DD"))
		return
	}
	resp, err := h.svc.GetDailySummary(c.Request.Context(), date, h.locationID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Monthly godoc
// @Summary      Monthly sales summary
// @Tags         reports
// @Produce      json
// @Param        year  path int true "Year"
// @Param        month path int true "Month (1-12)"
// @Success      200   {object} dto.MonthlySummaryResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Router       /v1/reports/monthly/{year}/{month} [get]
func (h *ReportsHandler) Monthly(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 {
		c.JSON(http.StatusBadRequest, apierror.New("year must be a four digit number"))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, apierror.New("month must be between 1 and 12"))
		return
	}
	resp, err := h.svc.GetMonthlySummary(c.Request.Context(), year, month, h.locationID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recompute godoc
// @Summary      Recompute a day's summary
// @Description  Forces a full recompute of the daily summary (and its monthly rollup) from stored records.
// @Tags         reports
// @Produce      json
// @Param        date path string true "Day (YYYY-MM-DD)"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Router       /v1/reports/daily/{date}/recompute [post]
func (h *ReportsHandler) Recompute(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("date must be YYYY-MM-DD"))
		return
	}
	if err := h.svc.UpdateDailySummary(c.Request.Context(), date, h.locationID); err != nil {
		c.JSON(http.StatusBadGateway, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
