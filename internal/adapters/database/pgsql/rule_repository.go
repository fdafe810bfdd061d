package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	"github.com/himanshudhami/InvoiceX-sub009/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ruleColumns = `rule_id, scope_id, code, name, version, effective_from, effective_to, is_active, templates, created_at, created_by, last_updated_at, last_updated_by`

type PgxRuleRepository struct {
	baseRepository
}

// NewPgxRuleRepository creates a new repository for posting rule data.
func NewPgxRuleRepository(pool *pgxpool.Pool) repositories.RuleRepositoryFacade {
	return &PgxRuleRepository{baseRepository{pool: pool}}
}

// SaveRule persists a new rule version and, in the same transaction, closes
// the previous open version of (scope, code) at the new version's start, so
// no instant is covered by two versions.
func (r *PgxRuleRepository) SaveRule(ctx context.Context, rule domain.PostingRule) error {
	templates, err := json.Marshal(rule.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal templates for rule %s: %w", rule.RuleID, err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	closeQuery := `
		UPDATE posting_rules
		SET effective_to = $3, last_updated_at = $4, last_updated_by = $5
		WHERE scope_id = $1 AND code = $2 AND effective_to IS NULL AND version < $6;
	`
	_, err = tx.Exec(ctx, closeQuery, rule.ScopeID, rule.Code, rule.EffectiveFrom, rule.LastUpdatedAt, rule.LastUpdatedBy, rule.Version)
	if err != nil {
		return fmt.Errorf("failed to close previous version of rule %s: %w", rule.Code, err)
	}

	insertQuery := `
		INSERT INTO posting_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, insertQuery,
		rule.RuleID,
		rule.ScopeID,
		rule.Code,
		rule.Name,
		rule.Version,
		rule.EffectiveFrom,
		rule.EffectiveTo,
		rule.IsActive,
		templates,
		rule.CreatedAt,
		rule.CreatedBy,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert rule %s: %w", rule.RuleID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit rule %s: %v", apperrors.ErrStorageUnavailable, rule.RuleID, err)
	}
	return nil
}

// FindRuleByID retrieves a specific rule version by its unique identifier.
func (r *PgxRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.PostingRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM posting_rules WHERE rule_id = $1;`
	rule, err := scanRule(r.pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rule by ID %s: %w", ruleID, err)
	}
	return rule, nil
}

// FindRuleByCode retrieves the active rule version for (scope, code) whose
// effective range covers the given instant.
func (r *PgxRuleRepository) FindRuleByCode(ctx context.Context, scopeID, code string, at time.Time) (*domain.PostingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM posting_rules
		WHERE scope_id = $1 AND code = $2 AND is_active = TRUE
		  AND effective_from <= $3
		  AND (effective_to IS NULL OR effective_to > $3)
		ORDER BY version DESC
		LIMIT 1;
	`
	rule, err := scanRule(r.pool.QueryRow(ctx, query, scopeID, code, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rule %q in scope %s: %w", code, scopeID, err)
	}
	return rule, nil
}

// ListRules retrieves all rule versions for a scope, newest first.
func (r *PgxRuleRepository) ListRules(ctx context.Context, scopeID string) ([]domain.PostingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM posting_rules
		WHERE scope_id = $1
		ORDER BY code, version DESC;
	`
	rows, err := r.pool.Query(ctx, query, scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules for scope %s: %w", scopeID, err)
	}
	defer rows.Close()

	rules := []domain.PostingRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row for scope %s: %w", scopeID, err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows for scope %s: %w", scopeID, err)
	}
	return rules, nil
}

// DeactivateRule marks a rule version inactive. Used rule versions are never
// deleted, preserving historical reproducibility.
func (r *PgxRuleRepository) DeactivateRule(ctx context.Context, ruleID string, actorID string, now time.Time) error {
	query := `
		UPDATE posting_rules
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE rule_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, ruleID, now, actorID)
	if err != nil {
		return fmt.Errorf("failed to deactivate rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// scanRule scans one ruleColumns row and unmarshals the JSONB templates.
func scanRule(row pgx.Row) (*domain.PostingRule, error) {
	var m models.PostingRule
	err := row.Scan(
		&m.RuleID,
		&m.ScopeID,
		&m.Code,
		&m.Name,
		&m.Version,
		&m.EffectiveFrom,
		&m.EffectiveTo,
		&m.IsActive,
		&m.Templates,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	var lines []domain.LineTemplate
	if err := json.Unmarshal(m.Templates, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal templates for rule %s: %w", m.RuleID, err)
	}

	return &domain.PostingRule{
		RuleID:        m.RuleID,
		ScopeID:       m.ScopeID,
		Code:          m.Code,
		Name:          m.Name,
		Version:       m.Version,
		EffectiveFrom: m.EffectiveFrom,
		EffectiveTo:   m.EffectiveTo,
		IsActive:      m.IsActive,
		Lines:         lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}
