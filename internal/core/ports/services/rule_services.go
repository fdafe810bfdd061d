package services

import (
	"context"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
)

// RuleSvcFacade manages posting rule versions.
type RuleSvcFacade interface {
	// CreateRule seeds a new version of (scope, code); the previous active
	// version's effective range is closed at the new version's start.
	CreateRule(ctx context.Context, req dto.CreateRuleRequest, actorID string) (*domain.PostingRule, error)
	GetRuleByID(ctx context.Context, scopeID, ruleID string) (*domain.PostingRule, error)
	ListRules(ctx context.Context, scopeID string) ([]domain.PostingRule, error)
	DeactivateRule(ctx context.Context, scopeID, ruleID string, actorID string) error
}
