package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

// reportingHandler handles ledger aggregate reads.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(reportingService portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

// trialBalance godoc
// @Summary Trial balance for a scope
// @Description Aggregates posted debits and credits per account. The two grand totals are equal for a healthy ledger.
// @Tags reporting
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Success 200 {object} dto.TrialBalanceResponse
// @Router /scopes/{scopeID}/reports/trial-balance [get]
func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.reportingService.TrialBalance(c.Request.Context(), c.Param("scopeID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute trial balance")
		return
	}

	c.JSON(http.StatusOK, report)
}

// registerReportingRoutes registers reporting routes.
func registerReportingRoutes(group *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	group.GET("/scopes/:scopeID/reports/trial-balance", h.trialBalance)
}
