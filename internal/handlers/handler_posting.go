package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

// postingHandler handles the synchronous posting and reversal endpoints.
type postingHandler struct {
	postingService  portssvc.PostingSvcFacade
	reversalService portssvc.ReversalSvcFacade
}

func newPostingHandler(postingService portssvc.PostingSvcFacade, reversalService portssvc.ReversalSvcFacade) *postingHandler {
	return &postingHandler{
		postingService:  postingService,
		reversalService: reversalService,
	}
}

// post godoc
// @Summary Post one stage of a business event
// @Description Evaluates the stage's posting rule against the supplied amounts and commits a balanced journal entry exactly once. Retries with the same (stage, sourceType, sourceID) return the original entry with alreadyPosted=true.
// @Tags posting
// @Accept  json
// @Produce  json
// @Param   request body dto.PostRequest true "Posting request"
// @Success 200 {object} dto.PostResponse "Idempotent hit, original entry returned"
// @Success 201 {object} dto.PostResponse "New entry committed"
// @Failure 400 {object} map[string]string "Invalid request or rule configuration"
// @Failure 422 {object} map[string]string "Chart defect: missing account or unbalanced entry"
// @Router /postings [post]
func (h *postingHandler) post(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for post", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing actor identity"})
		return
	}

	entry, alreadyPosted, err := h.postingService.Post(c.Request.Context(), req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post entry")
		return
	}

	status := http.StatusCreated
	if alreadyPosted {
		status = http.StatusOK
	}
	c.JSON(status, dto.PostResponse{
		AlreadyPosted: alreadyPosted,
		Entry:         dto.ToJournalEntryResponse(entry),
	})
}

// reverse godoc
// @Summary Reverse a posted entry
// @Description Commits a sign-inverted correction entry linked to the original via correctionOf and marks the original REVERSED. The original is never modified.
// @Tags posting
// @Accept  json
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Param   entryID path string true "Entry ID to reverse"
// @Param   request body dto.ReverseRequest true "Reversal reason"
// @Success 201 {object} dto.JournalEntryResponse "The reversal entry"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is a reversal or already reversed"
// @Router /scopes/{scopeID}/entries/{entryID}/reverse [post]
func (h *postingHandler) reverse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reverse", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing actor identity"})
		return
	}

	reversal, err := h.reversalService.Reverse(c.Request.Context(), c.Param("scopeID"), c.Param("entryID"), req.Reason, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}

// registerPostingRoutes registers the posting and reversal routes.
func registerPostingRoutes(group *gin.RouterGroup, postingService portssvc.PostingSvcFacade, reversalService portssvc.ReversalSvcFacade) {
	h := newPostingHandler(postingService, reversalService)

	group.POST("/postings", h.post)
	group.POST("/scopes/:scopeID/entries/:entryID/reverse", h.reverse)
}
