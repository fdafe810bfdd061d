package repositories

import (
	"context"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
)

// RuleReader defines read operations for posting rule data.
type RuleReader interface {
	// FindRuleByID retrieves a specific rule version by its unique identifier.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.PostingRule, error)

	// FindRuleByCode retrieves the active rule version for (scope, code)
	// whose effective range covers the given instant.
	FindRuleByCode(ctx context.Context, scopeID, code string, at time.Time) (*domain.PostingRule, error)

	// ListRules retrieves all rule versions for a scope, newest first.
	ListRules(ctx context.Context, scopeID string) ([]domain.PostingRule, error)
}

// RuleWriter defines write operations for posting rule data.
type RuleWriter interface {
	// SaveRule persists a new rule version.
	SaveRule(ctx context.Context, rule domain.PostingRule) error

	// DeactivateRule marks a rule version inactive. Used rules are never
	// deleted, preserving historical reproducibility.
	DeactivateRule(ctx context.Context, ruleID string, actorID string, now time.Time) error
}

// RuleRepositoryFacade combines all rule-related repository interfaces.
type RuleRepositoryFacade interface {
	RuleReader
	RuleWriter
}
