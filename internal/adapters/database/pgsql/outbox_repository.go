package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	"github.com/himanshudhami/InvoiceX-sub009/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const outboxColumns = `request_id, scope_id, stage, source_type, source_id, amounts, account_links, actor_id, status, attempts, last_error, entry_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxOutboxRepository struct {
	baseRepository
}

// NewPgxOutboxRepository creates a new repository for the posting outbox.
func NewPgxOutboxRepository(pool *pgxpool.Pool) repositories.OutboxRepositoryFacade {
	return &PgxOutboxRepository{baseRepository{pool: pool}}
}

// Enqueue persists a new pending posting request.
func (r *PgxOutboxRepository) Enqueue(ctx context.Context, request domain.PostingRequest) error {
	amounts, err := json.Marshal(request.Amounts)
	if err != nil {
		return fmt.Errorf("failed to marshal amounts for request %s: %w", request.RequestID, err)
	}
	links, err := json.Marshal(request.AccountLinks)
	if err != nil {
		return fmt.Errorf("failed to marshal account links for request %s: %w", request.RequestID, err)
	}

	query := `
		INSERT INTO posting_outbox (` + outboxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = r.pool.Exec(ctx, query,
		request.RequestID,
		request.ScopeID,
		request.Stage,
		request.SourceType,
		request.SourceID,
		amounts,
		links,
		request.ActorID,
		string(request.Status),
		request.Attempts,
		request.LastError,
		request.EntryID,
		request.CreatedAt,
		request.CreatedBy,
		request.LastUpdatedAt,
		request.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert posting request %s: %w", request.RequestID, err)
	}
	return nil
}

// ClaimPending atomically selects up to limit pending requests that have not
// exhausted maxAttempts and increments their attempt counter. SKIP LOCKED
// keeps concurrent workers off each other's rows.
func (r *PgxOutboxRepository) ClaimPending(ctx context.Context, limit int, maxAttempts int) ([]domain.PostingRequest, error) {
	query := `
		UPDATE posting_outbox
		SET attempts = attempts + 1, last_updated_at = NOW()
		WHERE request_id IN (
			SELECT request_id
			FROM posting_outbox
			WHERE status = 'PENDING' AND attempts < $2
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns + `;
	`
	rows, err := r.pool.Query(ctx, query, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending posting requests: %w", err)
	}
	defer rows.Close()

	requests := []domain.PostingRequest{}
	for rows.Next() {
		request, err := scanPostingRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claimed posting request: %w", err)
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed posting requests: %w", err)
	}
	return requests, nil
}

// MarkSucceeded records the committed entry for a request.
func (r *PgxOutboxRepository) MarkSucceeded(ctx context.Context, requestID string, entryID string, now time.Time) error {
	query := `
		UPDATE posting_outbox
		SET status = 'SUCCEEDED', entry_id = $2, last_error = '', last_updated_at = $3
		WHERE request_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, requestID, entryID, now)
	if err != nil {
		return fmt.Errorf("failed to mark request %s succeeded: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkFailed parks a request for operator reconciliation.
func (r *PgxOutboxRepository) MarkFailed(ctx context.Context, requestID string, reason string, now time.Time) error {
	query := `
		UPDATE posting_outbox
		SET status = 'FAILED', last_error = $2, last_updated_at = $3
		WHERE request_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, requestID, reason, now)
	if err != nil {
		return fmt.Errorf("failed to mark request %s failed: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RecordTransientFailure leaves a request pending for a later retry, keeping
// the last error for observability.
func (r *PgxOutboxRepository) RecordTransientFailure(ctx context.Context, requestID string, reason string, now time.Time) error {
	query := `
		UPDATE posting_outbox
		SET last_error = $2, last_updated_at = $3
		WHERE request_id = $1 AND status = 'PENDING';
	`
	if _, err := r.pool.Exec(ctx, query, requestID, reason, now); err != nil {
		return fmt.Errorf("failed to record transient failure for request %s: %w", requestID, err)
	}
	return nil
}

// ListRequests retrieves requests for a scope filtered by status, newest first.
func (r *PgxOutboxRepository) ListRequests(ctx context.Context, scopeID string, status domain.PostingRequestStatus, limit int) ([]domain.PostingRequest, error) {
	args := []any{scopeID}
	query := `SELECT ` + outboxColumns + ` FROM posting_outbox WHERE scope_id = $1`
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d;`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posting requests for scope %s: %w", scopeID, err)
	}
	defer rows.Close()

	requests := []domain.PostingRequest{}
	for rows.Next() {
		request, err := scanPostingRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting request for scope %s: %w", scopeID, err)
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posting requests for scope %s: %w", scopeID, err)
	}
	return requests, nil
}

// scanPostingRequest scans one outboxColumns row and unmarshals the JSONB
// payloads.
func scanPostingRequest(row pgx.Row) (*domain.PostingRequest, error) {
	var m models.PostingRequest
	err := row.Scan(
		&m.RequestID,
		&m.ScopeID,
		&m.Stage,
		&m.SourceType,
		&m.SourceID,
		&m.Amounts,
		&m.AccountLinks,
		&m.ActorID,
		&m.Status,
		&m.Attempts,
		&m.LastError,
		&m.EntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	var amounts map[string]decimal.Decimal
	if err := json.Unmarshal(m.Amounts, &amounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal amounts for request %s: %w", m.RequestID, err)
	}
	var links map[string]string
	if len(m.AccountLinks) > 0 {
		if err := json.Unmarshal(m.AccountLinks, &links); err != nil {
			return nil, fmt.Errorf("failed to unmarshal account links for request %s: %w", m.RequestID, err)
		}
	}

	return &domain.PostingRequest{
		RequestID:    m.RequestID,
		ScopeID:      m.ScopeID,
		Stage:        m.Stage,
		SourceType:   m.SourceType,
		SourceID:     m.SourceID,
		Amounts:      amounts,
		AccountLinks: links,
		ActorID:      m.ActorID,
		Status:       domain.PostingRequestStatus(m.Status),
		Attempts:     m.Attempts,
		LastError:    m.LastError,
		EntryID:      m.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}
