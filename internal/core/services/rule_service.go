package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portsrepo "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

var ErrRuleNotBalanced = errors.New("rule has no debit or no credit template")

// ruleService manages posting rule versions. Rules are seeded, never edited
// in place: a change to (scope, code) creates version n+1 and closes the
// previous version's effective range, so replaying a historical entry always
// finds the rule that produced it.
type ruleService struct {
	ruleRepo portsrepo.RuleRepositoryFacade
}

// NewRuleService creates the posting rule management service.
func NewRuleService(ruleRepo portsrepo.RuleRepositoryFacade) portssvc.RuleSvcFacade {
	return &ruleService{ruleRepo: ruleRepo}
}

var _ portssvc.RuleSvcFacade = (*ruleService)(nil)

// CreateRule seeds a new version of (scope, code).
func (s *ruleService) CreateRule(ctx context.Context, req dto.CreateRuleRequest, actorID string) (*domain.PostingRule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	lines, err := buildLineTemplates(req.Lines)
	if err != nil {
		return nil, err
	}

	effectiveFrom := time.Now().UTC()
	if req.EffectiveFrom != nil {
		effectiveFrom = req.EffectiveFrom.UTC()
	}

	version := 1
	previous, err := s.ruleRepo.FindRuleByCode(ctx, req.ScopeID, code, effectiveFrom)
	if err == nil {
		version = previous.Version + 1
		if !previous.EffectiveFrom.Before(effectiveFrom) {
			return nil, fmt.Errorf("%w: new version of rule %s must start after %s", apperrors.ErrValidation, code, previous.EffectiveFrom.Format(time.RFC3339))
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up current version of rule %s: %w", code, err)
	}

	now := time.Now().UTC()
	rule := domain.PostingRule{
		RuleID:        uuid.NewString(),
		ScopeID:       req.ScopeID,
		Code:          code,
		Name:          req.Name,
		Version:       version,
		EffectiveFrom: effectiveFrom,
		IsActive:      true,
		Lines:         lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	// SaveRule closes the previous open version at the new EffectiveFrom in
	// the same transaction, so no instant is covered by two versions.
	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: rule %s version %d already exists in scope %s", apperrors.ErrDuplicate, code, version, req.ScopeID)
		}
		logger.Error("Failed to save posting rule", slog.String("error", err.Error()), slog.String("code", code))
		return nil, fmt.Errorf("failed to save posting rule: %w", err)
	}

	logger.Info("Posting rule created",
		slog.String("rule_id", rule.RuleID),
		slog.String("code", code),
		slog.Int("version", version),
		slog.String("scope_id", req.ScopeID))
	return &rule, nil
}

// GetRuleByID retrieves a rule version, hiding rules of other scopes.
func (s *ruleService) GetRuleByID(ctx context.Context, scopeID, ruleID string) (*domain.PostingRule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rule %s: %w", ruleID, err)
	}
	if rule.ScopeID != scopeID {
		return nil, apperrors.ErrNotFound
	}
	return rule, nil
}

// ListRules retrieves all rule versions for a scope, newest first.
func (s *ruleService) ListRules(ctx context.Context, scopeID string) ([]domain.PostingRule, error) {
	return s.ruleRepo.ListRules(ctx, scopeID)
}

// DeactivateRule marks a rule version inactive. Versions referenced by posted
// entries are never deleted.
func (s *ruleService) DeactivateRule(ctx context.Context, scopeID, ruleID string, actorID string) error {
	if _, err := s.GetRuleByID(ctx, scopeID, ruleID); err != nil {
		return err
	}
	if err := s.ruleRepo.DeactivateRule(ctx, ruleID, actorID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to deactivate rule %s: %w", ruleID, err)
	}
	return nil
}

// buildLineTemplates validates and converts the request templates. A rule
// must be able to produce both sides of an entry or nothing it posts can ever
// balance.
func buildLineTemplates(reqs []dto.LineTemplateRequest) ([]domain.LineTemplate, error) {
	lines := make([]domain.LineTemplate, len(reqs))
	hasDebit, hasCredit := false, false
	for i, lr := range reqs {
		kind := domain.LineKind(lr.Kind)
		side := domain.EntrySide(lr.Side)
		switch kind {
		case domain.FixedAccount:
			if strings.TrimSpace(lr.AccountCode) == "" {
				return nil, fmt.Errorf("%w: line %d: fixed-account template requires accountCode", apperrors.ErrValidation, i)
			}
		case domain.LinkedAccount:
			if strings.TrimSpace(lr.LinkKey) == "" {
				return nil, fmt.Errorf("%w: line %d: linked-account template requires linkKey", apperrors.ErrValidation, i)
			}
		default:
			return nil, fmt.Errorf("%w: line %d: unknown line kind %q", apperrors.ErrValidation, i, lr.Kind)
		}
		if (lr.Numerator == 0) != (lr.Denominator == 0) {
			return nil, fmt.Errorf("%w: line %d: numerator and denominator must be set together", apperrors.ErrValidation, i)
		}
		if lr.Denominator > 0 && (lr.Numerator <= 0 || lr.Numerator > lr.Denominator) {
			return nil, fmt.Errorf("%w: line %d: numerator must be in 1..denominator", apperrors.ErrValidation, i)
		}
		switch side {
		case domain.DebitSide:
			hasDebit = true
		case domain.CreditSide:
			hasCredit = true
		}
		lines[i] = domain.LineTemplate{
			Kind:        kind,
			AccountCode: strings.TrimSpace(lr.AccountCode),
			LinkKey:     strings.TrimSpace(lr.LinkKey),
			Side:        side,
			AmountField: strings.TrimSpace(lr.AmountField),
			Numerator:   lr.Numerator,
			Denominator: lr.Denominator,
			Description: lr.Description,
			Tag:         lr.Tag,
		}
	}
	if !hasDebit || !hasCredit {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrRuleNotBalanced)
	}
	return lines, nil
}
