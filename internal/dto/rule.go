package dto

import (
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
)

// LineTemplateRequest defines one leg of a posting rule being created.
type LineTemplateRequest struct {
	Kind        string `json:"kind" binding:"required,linekind"`
	AccountCode string `json:"accountCode"`
	LinkKey     string `json:"linkKey"`
	Side        string `json:"side" binding:"required,entryside"`
	AmountField string `json:"amountField" binding:"required"`
	Numerator   int64  `json:"numerator"`
	Denominator int64  `json:"denominator"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

// CreateRuleRequest defines the payload for seeding a posting rule version.
type CreateRuleRequest struct {
	ScopeID       string                `json:"scopeID" binding:"required,uuid"`
	Code          string                `json:"code" binding:"required"`
	Name          string                `json:"name" binding:"required"`
	EffectiveFrom *time.Time            `json:"effectiveFrom"`
	Lines         []LineTemplateRequest `json:"lines" binding:"required,min=2,dive"`
}

// RuleResponse defines the data returned for a posting rule version.
type RuleResponse struct {
	RuleID        string                `json:"ruleID"`
	ScopeID       string                `json:"scopeID"`
	Code          string                `json:"code"`
	Name          string                `json:"name"`
	Version       int                   `json:"version"`
	EffectiveFrom time.Time             `json:"effectiveFrom"`
	EffectiveTo   *time.Time            `json:"effectiveTo,omitempty"`
	IsActive      bool                  `json:"isActive"`
	Lines         []domain.LineTemplate `json:"lines"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
}

// ToRuleResponse converts a domain.PostingRule to its DTO.
func ToRuleResponse(r *domain.PostingRule) RuleResponse {
	return RuleResponse{
		RuleID:        r.RuleID,
		ScopeID:       r.ScopeID,
		Code:          r.Code,
		Name:          r.Name,
		Version:       r.Version,
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
		IsActive:      r.IsActive,
		Lines:         r.Lines,
		CreatedAt:     r.CreatedAt,
		CreatedBy:     r.CreatedBy,
	}
}

// ToRuleResponses converts a slice of domain rules.
func ToRuleResponses(rules []domain.PostingRule) []RuleResponse {
	responses := make([]RuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToRuleResponse(&rules[i])
	}
	return responses
}
