package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portsrepo "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

const defaultRequestPageSize = 50

// outboxService enqueues posting work for the background worker. Posting stays
// idempotent end to end, so a request that is enqueued twice still yields one
// journal entry.
type outboxService struct {
	outboxRepo portsrepo.OutboxRepositoryFacade
}

// NewOutboxService creates the posting outbox service.
func NewOutboxService(outboxRepo portsrepo.OutboxRepositoryFacade) portssvc.OutboxSvcFacade {
	return &outboxService{outboxRepo: outboxRepo}
}

var _ portssvc.OutboxSvcFacade = (*outboxService)(nil)

// EnqueuePosting persists a pending posting request.
func (s *outboxService) EnqueuePosting(ctx context.Context, req dto.PostRequest, actorID string) (*domain.PostingRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	request := domain.PostingRequest{
		RequestID:    uuid.NewString(),
		ScopeID:      req.ScopeID,
		Stage:        req.Stage,
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		Amounts:      req.Amounts,
		AccountLinks: req.AccountLinks,
		ActorID:      actorID,
		Status:       domain.RequestPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.outboxRepo.Enqueue(ctx, request); err != nil {
		logger.Error("Failed to enqueue posting request", slog.String("error", err.Error()), slog.String("scope_id", req.ScopeID))
		return nil, fmt.Errorf("failed to enqueue posting request: %w", err)
	}

	logger.Info("Posting request enqueued",
		slog.String("request_id", request.RequestID),
		slog.String("stage", req.Stage),
		slog.String("source_type", req.SourceType),
		slog.String("source_id", req.SourceID))
	return &request, nil
}

// ListRequests returns a scope's requests filtered by status, newest first.
func (s *outboxService) ListRequests(ctx context.Context, scopeID string, status domain.PostingRequestStatus, limit int) ([]domain.PostingRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultRequestPageSize
	}
	return s.outboxRepo.ListRequests(ctx, scopeID, status, limit)
}
