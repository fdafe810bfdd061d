package repositories

import (
	"context"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
)

// OutboxRepositoryFacade persists queued posting requests. The claim step
// uses row locking (FOR UPDATE SKIP LOCKED) so multiple workers never process
// the same request concurrently.
type OutboxRepositoryFacade interface {
	// Enqueue persists a new pending posting request.
	Enqueue(ctx context.Context, request domain.PostingRequest) error

	// ClaimPending atomically selects up to limit pending requests that have
	// not exhausted maxAttempts, increments their attempt counter, and
	// returns them.
	ClaimPending(ctx context.Context, limit int, maxAttempts int) ([]domain.PostingRequest, error)

	// MarkSucceeded records the committed entry for a request.
	MarkSucceeded(ctx context.Context, requestID string, entryID string, now time.Time) error

	// MarkFailed parks a request for operator reconciliation.
	MarkFailed(ctx context.Context, requestID string, reason string, now time.Time) error

	// RecordTransientFailure leaves a request pending for a later retry,
	// keeping the last error for observability.
	RecordTransientFailure(ctx context.Context, requestID string, reason string, now time.Time) error

	// ListRequests retrieves requests for a scope filtered by status.
	ListRequests(ctx context.Context, scopeID string, status domain.PostingRequestStatus, limit int) ([]domain.PostingRequest, error)
}
