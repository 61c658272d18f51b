// internal/handlers/report.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GET /reports/summary?period=today|week|month
func (h *ReportHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	period := services.Period(c.DefaultQuery("period", "today"))
	summary, err := h.reportService.Summary(userID, period)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, summary)
}

// GET /reports/compare?period=today|week|month
func (h *ReportHandler) Compare(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	period := services.Period(c.DefaultQuery("period", "month"))
	comparison, err := h.reportService.ComparePeriods(userID, period)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, comparison)
}

// GET /reports/revenue?start_date=&end_date=
func (h *ReportHandler) Revenue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var start, end *time.Time
	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			utils.BadRequestResponse(c, "invalid start_date", nil)
			return
		}
		start = &parsed
	}
	if e := c.Query("end_date"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			utils.BadRequestResponse(c, "invalid end_date", nil)
			return
		}
		inclusive := parsed.AddDate(0, 0, 1).Add(-time.Second)
		end = &inclusive
	}

	report, err := h.reportService.TotalRevenue(userID, start, end)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, report)
}

// GET /reports/products?start_date=&end_date=
func (h *ReportHandler) ProductRevenue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			utils.BadRequestResponse(c, "invalid start_date", nil)
			return
		}
		start = parsed
	}
	if e := c.Query("end_date"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			utils.BadRequestResponse(c, "invalid end_date", nil)
			return
		}
		end = parsed.AddDate(0, 0, 1)
	}

	revenue, err := h.reportService.RevenueByProduct(userID, start, end)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"start_date": start,
		"end_date":   end,
		"products":   revenue,
	})
}
