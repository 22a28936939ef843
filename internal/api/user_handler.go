package api

import (
	"alcyxob/fitlog-bot/internal/service"
	"alcyxob/fitlog-bot/internal/stats"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes reports and exports of a single bot user to admins.
type UserHandler struct {
	reportService service.ReportService
	exportService service.ExportService
}

func NewUserHandler(reportService service.ReportService, exportService service.ExportService) *UserHandler {
	return &UserHandler{reportService: reportService, exportService: exportService}
}

// GetStats godoc
// @Summary Aggregated statistics of a user
// @Tags Users
// @Produce json
// @Param telegramId path int true "Telegram user ID"
// @Param window query string false "weekly, monthly or all"
// @Success 200 {object} stats.Report
// @Failure 400 {object} gin.H "Invalid ID or window"
// @Failure 404 {object} gin.H "User not found"
// @Security BearerAuth
// @Router /users/{telegramId}/stats [get]
func (h *UserHandler) GetStats(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}
	window, err := stats.ParseWindow(c.Query("window"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reportService.Compute(c.Request.Context(), telegramID, window)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to compute statistics")
		}
		return
	}
	if report.Empty && report.Last != nil {
		// An empty period carries no last-session block.
		trimmed := *report
		trimmed.Last = nil
		report = &trimmed
	}

	c.JSON(http.StatusOK, report)
}

// CreateExport godoc
// @Summary Export all set records of a user as CSV
// @Tags Users
// @Produce json
// @Param telegramId path int true "Telegram user ID"
// @Success 201 {object} service.Export
// @Failure 404 {object} gin.H "User not found"
// @Failure 503 {object} gin.H "Export storage is not configured"
// @Security BearerAuth
// @Router /users/{telegramId}/export [post]
func (h *UserHandler) CreateExport(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	export, err := h.exportService.Export(c.Request.Context(), telegramID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExportDisabled):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to export records")
		}
		return
	}

	c.JSON(http.StatusCreated, export)
}

func telegramIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("telegramId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid telegram ID: %q", raw))
		return 0, false
	}
	return id, true
}
