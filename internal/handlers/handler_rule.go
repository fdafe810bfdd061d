package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

// ruleHandler handles posting rule management.
type ruleHandler struct {
	ruleService portssvc.RuleSvcFacade
}

func newRuleHandler(ruleService portssvc.RuleSvcFacade) *ruleHandler {
	return &ruleHandler{ruleService: ruleService}
}

// createRule godoc
// @Summary Seed a posting rule version
// @Description Creates a new version of (scope, code). The previous active version's effective range is closed at the new version's start.
// @Tags rules
// @Accept  json
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Param   rule body dto.CreateRuleRequest true "Rule definition"
// @Success 201 {object} dto.RuleResponse
// @Failure 400 {object} map[string]string "Invalid rule definition"
// @Router /scopes/{scopeID}/rules [post]
func (h *ruleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.ScopeID = c.Param("scopeID")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing actor identity"})
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create rule")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRuleResponse(rule))
}

// getRule godoc
// @Summary Get a rule version
// @Tags rules
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Param   ruleID path string true "Rule version ID"
// @Success 200 {object} dto.RuleResponse
// @Failure 404 {object} map[string]string "Rule not found"
// @Router /scopes/{scopeID}/rules/{ruleID} [get]
func (h *ruleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rule, err := h.ruleService.GetRuleByID(c.Request.Context(), c.Param("scopeID"), c.Param("ruleID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve rule")
		return
	}

	c.JSON(http.StatusOK, dto.ToRuleResponse(rule))
}

// listRules godoc
// @Summary List a scope's rule versions
// @Tags rules
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Success 200 {array} dto.RuleResponse
// @Router /scopes/{scopeID}/rules [get]
func (h *ruleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rules, err := h.ruleService.ListRules(c.Request.Context(), c.Param("scopeID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list rules")
		return
	}

	c.JSON(http.StatusOK, dto.ToRuleResponses(rules))
}

// deactivateRule godoc
// @Summary Deactivate a rule version
// @Description Marks the version inactive; used rule versions are never deleted
// @Tags rules
// @Produce  json
// @Param   scopeID path string true "Scope ID"
// @Param   ruleID path string true "Rule version ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Rule not found"
// @Router /scopes/{scopeID}/rules/{ruleID} [delete]
func (h *ruleHandler) deactivateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing actor identity"})
		return
	}

	if err := h.ruleService.DeactivateRule(c.Request.Context(), c.Param("scopeID"), c.Param("ruleID"), actorID); err != nil {
		respondServiceError(c, logger, err, "Failed to deactivate rule")
		return
	}

	c.Status(http.StatusNoContent)
}

// registerRuleRoutes registers posting rule management routes.
func registerRuleRoutes(group *gin.RouterGroup, ruleService portssvc.RuleSvcFacade) {
	h := newRuleHandler(ruleService)

	rules := group.Group("/scopes/:scopeID/rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.GET("/:ruleID", h.getRule)
		rules.DELETE("/:ruleID", h.deactivateRule)
	}
}
