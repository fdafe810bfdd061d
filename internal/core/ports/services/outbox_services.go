package services

import (
	"context"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
)

// OutboxSvcFacade decouples business-state transitions from posting: the
// adapter enqueues and commits its own transition; the worker posts later and
// records the outcome, so failures are visible and retryable rather than
// swallowed.
type OutboxSvcFacade interface {
	// EnqueuePosting persists a pending posting request.
	EnqueuePosting(ctx context.Context, req dto.PostRequest, actorID string) (*domain.PostingRequest, error)

	// ListRequests returns a scope's requests filtered by status, newest first.
	ListRequests(ctx context.Context, scopeID string, status domain.PostingRequestStatus, limit int) ([]domain.PostingRequest, error)
}

// ReportingSvcFacade serves read-only ledger aggregates.
type ReportingSvcFacade interface {
	// TrialBalance aggregates posted debits and credits per account.
	TrialBalance(ctx context.Context, scopeID string) (*dto.TrialBalanceResponse, error)
}
