package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

// outboxHandler handles the asynchronous posting queue.
type outboxHandler struct {
	outboxService portssvc.OutboxSvcFacade
}

func newOutboxHandler(outboxService portssvc.OutboxSvcFacade) *outboxHandler {
	return &outboxHandler{outboxService: outboxService}
}

// enqueuePosting godoc
// @Summary Queue a posting request
// @Description Persists the request and returns immediately; the background worker posts it and records the outcome. Use this from business-state transitions that must not block on the ledger.
// @Tags outbox
// @Accept  json
// @Produce  json
// @Param   request body dto.PostRequest true "Posting request"
// @Success 202 {object} dto.PostingRequestResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /postings/queue [post]
func (h *outboxHandler) enqueuePosting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for enqueuePosting", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing actor identity"})
		return
	}

	request, err := h.outboxService.EnqueuePosting(c.Request.Context(), req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to enqueue posting request")
		return
	}

	c.JSON(http.StatusAccepted, dto.ToPostingRequestResponse(request))
}

// listRequests godoc
// @Summary List a scope's posting requests
// @Description Newest first; filter by status to find parked FAILED requests needing reconciliation.
// @Tags outbox
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Param   status query string false "PENDING, SUCCEEDED or FAILED"
// @Param   limit query int false "Page size"
// @Success 200 {array} dto.PostingRequestResponse
// @Router /scopes/{scopeID}/posting-requests [get]
func (h *outboxHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListPostingRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listRequests", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	requests, err := h.outboxService.ListRequests(c.Request.Context(), c.Param("scopeID"), domain.PostingRequestStatus(params.Status), params.Limit)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list posting requests")
		return
	}

	c.JSON(http.StatusOK, dto.ToPostingRequestResponses(requests))
}

// registerOutboxRoutes registers the posting queue routes.
func registerOutboxRoutes(group *gin.RouterGroup, outboxService portssvc.OutboxSvcFacade) {
	h := newOutboxHandler(outboxService)

	group.POST("/postings/queue", h.enqueuePosting)
	group.GET("/scopes/:scopeID/posting-requests", h.listRequests)
}
