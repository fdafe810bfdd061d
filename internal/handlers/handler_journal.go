package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

// journalHandler handles read access to the journal.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: journalService}
}

// getEntry godoc
// @Summary Get a journal entry with its lines
// @Tags journal
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /scopes/{scopeID}/entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), c.Param("scopeID"), c.Param("entryID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List a scope's journal entries
// @Description Cursor-paginated, newest first. With includeReversals=false, reversed entries and their corrections are omitted.
// @Tags journal
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Cursor from the previous page"
// @Param   includeReversals query bool false "Include reversed entries and corrections"
// @Param   includeLines query bool false "Attach lines to each entry"
// @Success 200 {object} dto.ListEntriesResponse
// @Router /scopes/{scopeID}/entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.journalService.ListEntries(c.Request.Context(), c.Param("scopeID"), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entries")
		return
	}

	c.JSON(http.StatusOK, page)
}

// getEntriesBySource godoc
// @Summary Get all entries produced by one business event
// @Description Returns every entry for (sourceType, sourceID), reversals included, oldest first. Serves audit trails and "what has this document posted" checks.
// @Tags journal
// @Produce  json
// @Param   sourceType path string true "Source document type"
// @Param   sourceID path string true "Source document ID"
// @Success 200 {array} dto.JournalEntryResponse
// @Router /sources/{sourceType}/{sourceID}/entries [get]
func (h *journalHandler) getEntriesBySource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	entries, err := h.journalService.GetEntriesBySource(c.Request.Context(), c.Param("sourceType"), c.Param("sourceID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entries for source")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponses(entries))
}

// registerJournalRoutes registers journal read routes.
func registerJournalRoutes(group *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	group.GET("/scopes/:scopeID/entries", h.listEntries)
	group.GET("/scopes/:scopeID/entries/:entryID", h.getEntry)
	group.GET("/sources/:sourceType/:sourceID/entries", h.getEntriesBySource)
}
