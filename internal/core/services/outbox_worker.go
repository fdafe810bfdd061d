package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portsrepo "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
)

// PostingWorkerConfig tunes the outbox drain loop.
type PostingWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// PostingWorker drains the posting outbox: it claims pending requests, runs
// them through the orchestrator and records the outcome. Multiple workers can
// run against the same table; the claim query's row locks keep them from
// colliding.
type PostingWorker struct {
	outboxRepo portsrepo.OutboxRepositoryFacade
	posting    portssvc.PostingSvcFacade
	logger     *slog.Logger
	cfg        PostingWorkerConfig
}

// NewPostingWorker creates an outbox worker.
func NewPostingWorker(outboxRepo portsrepo.OutboxRepositoryFacade, posting portssvc.PostingSvcFacade, logger *slog.Logger, cfg PostingWorkerConfig) *PostingWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &PostingWorker{
		outboxRepo: outboxRepo,
		posting:    posting,
		logger:     logger.With(slog.String("component", "posting_worker")),
		cfg:        cfg,
	}
}

// Run polls until the context is cancelled. Blocking; run it in its own
// goroutine.
func (w *PostingWorker) Run(ctx context.Context) {
	w.logger.Info("Posting worker started",
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Int("batch_size", w.cfg.BatchSize),
		slog.Int("max_attempts", w.cfg.MaxAttempts))

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Posting worker stopped")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch claims and processes one batch of pending requests. Exported
// so callers can drain synchronously (tests, one-shot maintenance commands).
func (w *PostingWorker) ProcessBatch(ctx context.Context) {
	requests, err := w.outboxRepo.ClaimPending(ctx, w.cfg.BatchSize, w.cfg.MaxAttempts)
	if err != nil {
		w.logger.Error("Failed to claim pending posting requests", slog.String("error", err.Error()))
		return
	}
	for i := range requests {
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, &requests[i])
	}
}

func (w *PostingWorker) process(ctx context.Context, request *domain.PostingRequest) {
	logger := w.logger.With(
		slog.String("request_id", request.RequestID),
		slog.String("stage", request.Stage),
		slog.String("source_type", request.SourceType),
		slog.String("source_id", request.SourceID),
		slog.Int("attempt", request.Attempts))
	ctx = middleware.WithLogger(ctx, logger)

	req := dto.PostRequest{
		ScopeID:      request.ScopeID,
		Stage:        request.Stage,
		SourceType:   request.SourceType,
		SourceID:     request.SourceID,
		Amounts:      request.Amounts,
		AccountLinks: request.AccountLinks,
	}

	entry, alreadyPosted, err := w.posting.Post(ctx, req, request.ActorID)
	now := time.Now().UTC()
	if err == nil {
		if markErr := w.outboxRepo.MarkSucceeded(ctx, request.RequestID, entry.EntryID, now); markErr != nil {
			// Posting committed; the next claim cycle will hit the idempotent
			// path and mark the row then.
			logger.Error("Posting committed but outbox update failed", slog.String("error", markErr.Error()))
			return
		}
		logger.Info("Posting request completed",
			slog.String("entry_id", entry.EntryID),
			slog.Bool("already_posted", alreadyPosted))
		return
	}

	if apperrors.IsFatalPostingError(err) {
		// Configuration or data defect; retrying cannot help. Park the row
		// for operator reconciliation.
		logger.Error("Posting request failed permanently", slog.String("error", err.Error()))
		if markErr := w.outboxRepo.MarkFailed(ctx, request.RequestID, err.Error(), now); markErr != nil {
			logger.Error("Failed to mark posting request failed", slog.String("error", markErr.Error()))
		}
		return
	}

	if request.Attempts >= w.cfg.MaxAttempts {
		logger.Error("Posting request exhausted retries", slog.String("error", err.Error()))
		if markErr := w.outboxRepo.MarkFailed(ctx, request.RequestID, err.Error(), now); markErr != nil {
			logger.Error("Failed to mark posting request failed", slog.String("error", markErr.Error()))
		}
		return
	}

	logger.Warn("Posting request failed, will retry", slog.String("error", err.Error()))
	if markErr := w.outboxRepo.RecordTransientFailure(ctx, request.RequestID, err.Error(), now); markErr != nil {
		logger.Error("Failed to record transient failure", slog.String("error", markErr.Error()))
	}
}
