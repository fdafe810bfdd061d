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
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
	"github.com/himanshudhami/InvoiceX-sub009/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrReasonRequired     = errors.New("reversal reason is required")
	ErrReverseReversal    = errors.New("a reversal entry cannot itself be reversed")
	ErrAlreadyReversed    = errors.New("entry is already reversed")
	ErrOriginalHasNoLines = errors.New("original entry has no lines")
)

// reversalService produces sign-inverted correction entries. The ledger is
// append-only: a reversal adds a mirror entry and links it to the original via
// correctionOf; the original's lines are never modified.
type reversalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewReversalService creates the reversal/correction service.
func NewReversalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.ReversalSvcFacade {
	return &reversalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.ReversalSvcFacade = (*reversalService)(nil)

// Reverse commits the mirror of a posted entry and flips the original to
// REVERSED in the same transaction. Retrying a reversal that already committed
// returns the existing reversal entry rather than stacking a second one.
func (s *reversalService) Reverse(ctx context.Context, scopeID, entryID, reason, actorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("entry_id", entryID), slog.String("scope_id", scopeID))

	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrReasonRequired)
	}

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if original.ScopeID != scopeID {
		return nil, apperrors.ErrNotFound
	}
	if original.IsReversal() {
		// A mistaken reversal is corrected by re-posting the stage, not by
		// reversing the reversal.
		return nil, fmt.Errorf("%w: %s: entry %s", apperrors.ErrConflict, ErrReverseReversal, entryID)
	}

	key := domain.ReversalIdempotencyKey(entryID)
	if original.Status == domain.Reversed {
		existing, findErr := s.journalRepo.FindEntryByIdempotencyKey(ctx, key)
		if findErr == nil {
			logger.Info("Entry already reversed, returning existing reversal", slog.String("reversal_entry_id", existing.EntryID))
			existing.Lines, findErr = s.journalRepo.FindLinesByEntryID(ctx, existing.EntryID)
			if findErr != nil {
				return nil, fmt.Errorf("failed to load reversal lines: %w", findErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %s: entry %s", apperrors.ErrConflict, ErrAlreadyReversed, entryID)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}
	if len(originalLines) == 0 {
		return nil, fmt.Errorf("%w: %s: entry %s", apperrors.ErrInternal, ErrOriginalHasNoLines, entryID)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	lines := make([]domain.JournalLine, len(originalLines))
	accountIDs := make([]string, 0, len(originalLines))
	for i, orig := range originalLines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     reversalID,
			AccountID:   orig.AccountID,
			Debit:       orig.Credit,
			Credit:      orig.Debit,
			Description: orig.Description,
			Tag:         orig.Tag,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		accountIDs = append(accountIDs, orig.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for reversal: %w", err)
	}
	balanceChanges := make(map[string]decimal.Decimal)
	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s referenced by entry %s no longer exists", apperrors.ErrInternal, line.AccountID, entryID)
		}
		delta, derr := accounting.SignedBalanceDelta(line, account.NormalSide)
		if derr != nil {
			return nil, fmt.Errorf("internal error computing balance delta: %w", derr)
		}
		balanceChanges[line.AccountID] = balanceChanges[line.AccountID].Add(delta)
	}

	totalDebit, totalCredit := accounting.EntryTotals(lines)
	correctionOf := original.EntryID
	reversal := domain.JournalEntry{
		EntryID:        reversalID,
		ScopeID:        original.ScopeID,
		EntryDate:      now,
		Description:    fmt.Sprintf("Reversal of entry %d: %s", original.EntryNo, reason),
		Status:         domain.Posted,
		SourceType:     original.SourceType,
		SourceID:       original.SourceID,
		IdempotencyKey: key,
		RuleCode:       original.RuleCode,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		CorrectionOf:   &correctionOf,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	committed, err := s.journalRepo.AppendReversal(ctx, reversal, lines, balanceChanges, original.EntryID, actorID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Concurrent reversal of the same entry won; return it.
			winner, findErr := s.journalRepo.FindEntryByIdempotencyKey(ctx, key)
			if findErr != nil {
				return nil, fmt.Errorf("reversal raced and winner lookup failed: %w", findErr)
			}
			winner.Lines, findErr = s.journalRepo.FindLinesByEntryID(ctx, winner.EntryID)
			if findErr != nil {
				return nil, fmt.Errorf("failed to load reversal lines: %w", findErr)
			}
			return winner, nil
		}
		logger.Error("Failed to append reversal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to append reversal for entry %s: %w", entryID, err)
	}

	committed.Lines = lines
	logger.Info("Entry reversed",
		slog.String("reversal_entry_id", committed.EntryID),
		slog.Int64("reversal_entry_no", committed.EntryNo),
		slog.String("reason", reason))
	return committed, nil
}
