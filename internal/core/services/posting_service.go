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
	"github.com/himanshudhami/InvoiceX-sub009/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrNoRuleForStage  = errors.New("no posting rule bound to stage")
	ErrNoLinesProduced = errors.New("rule produced no lines for the supplied amounts")
	ErrMissingLink     = errors.New("no account link supplied for linked-account line")
	ErrEntryMinLines   = errors.New("journal entry must have at least two lines")
)

// postingService is the posting orchestrator. It is stateless and safe for
// concurrent use; the only shared mutable state is the store's idempotency
// index, and exactly-once posting rests on that index's unique constraint,
// not on any in-process coordination.
type postingService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	ruleRepo    portsrepo.RuleRepositoryFacade
	directory   portssvc.AccountDirectory
}

// NewPostingService creates the posting orchestrator.
func NewPostingService(journalRepo portsrepo.JournalRepositoryFacade, ruleRepo portsrepo.RuleRepositoryFacade, directory portssvc.AccountDirectory) portssvc.PostingSvcFacade {
	return &postingService{
		journalRepo: journalRepo,
		ruleRepo:    ruleRepo,
		directory:   directory,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// Post turns one stage of a business event into a balanced journal entry
// exactly once. See the facade doc for the contract; failure kinds:
// MissingAccountError and UnbalancedEntryError are fatal configuration/data
// defects, everything storage-side is retryable with the same key because the
// key is only claimed by a successful commit.
func (s *postingService) Post(ctx context.Context, req dto.PostRequest, actorID string) (*domain.JournalEntry, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	key := domain.PostingIdempotencyKey(req.Stage, req.SourceType, req.SourceID)
	logger = logger.With(slog.String("idempotency_key", key), slog.String("scope_id", req.ScopeID))

	// 1. Idempotent-hit short circuit. A retried approval action lands here.
	existing, err := s.journalRepo.FindEntryByIdempotencyKey(ctx, key)
	if err == nil {
		logger.Info("Posting already committed, returning original entry", slog.String("entry_id", existing.EntryID))
		return s.withLines(ctx, existing)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	entryDate := time.Now().UTC()
	if req.EntryDate != nil {
		entryDate = req.EntryDate.UTC()
	}

	// 2. Evaluate the rule bound to the stage.
	rule, err := s.ruleRepo.FindRuleByCode(ctx, req.ScopeID, strings.ToUpper(strings.TrimSpace(req.Stage)), entryDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: %s: stage %q in scope %s", apperrors.ErrValidation, ErrNoRuleForStage, req.Stage, req.ScopeID)
		}
		return nil, false, fmt.Errorf("rule lookup failed for stage %q: %w", req.Stage, err)
	}

	evaluated, err := EvaluateTemplate(rule, req.Amounts)
	if err != nil {
		return nil, false, err
	}
	if len(evaluated) == 0 {
		return nil, false, fmt.Errorf("%w: %s: rule %s", apperrors.ErrValidation, ErrNoLinesProduced, rule.Code)
	}
	if len(evaluated) < 2 {
		return nil, false, fmt.Errorf("%w: %s: rule %s produced %d", apperrors.ErrValidation, ErrEntryMinLines, rule.Code, len(evaluated))
	}

	// 3. Resolve every symbolic code. Any unresolved account aborts the whole
	// attempt; no partial entry is ever written.
	codes := make([]string, 0, len(evaluated))
	for _, ev := range evaluated {
		code, err := lineAccountCode(ev, req.AccountLinks)
		if err != nil {
			return nil, false, err
		}
		codes = append(codes, code)
	}
	accountsByCode, err := s.directory.ResolveMany(ctx, req.ScopeID, codes)
	if err != nil {
		var missing *apperrors.MissingAccountError
		if errors.As(err, &missing) {
			logger.Warn("Posting rejected: account missing from chart", slog.String("code", missing.Code), slog.String("rule", rule.Code))
		}
		return nil, false, err
	}

	// 4. Build lines, validate the balance invariant.
	now := time.Now().UTC()
	entryID := uuid.NewString()
	lines := make([]domain.JournalLine, len(evaluated))
	for i, ev := range evaluated {
		code := codes[i]
		account := accountsByCode[code]
		line := domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   account.AccountID,
			Description: ev.Description,
			Tag:         ev.Tag,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if ev.Side == domain.DebitSide {
			line.Debit = ev.Amount
		} else {
			line.Credit = ev.Amount
		}
		lines[i] = line
	}

	totalDebit, totalCredit := accounting.EntryTotals(lines)
	if !totalDebit.Equal(totalCredit) {
		// Never coerced here; only an explicit suspense policy outside this
		// component may plug the gap.
		logger.Warn("Posting rejected: entry does not balance",
			slog.String("rule", rule.Code),
			slog.String("total_debit", totalDebit.String()),
			slog.String("total_credit", totalCredit.String()))
		return nil, false, &apperrors.UnbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}

	balanceChanges, err := s.balanceChanges(lines, accountsByCode, codes)
	if err != nil {
		return nil, false, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s for %s %s", rule.Name, req.SourceType, req.SourceID)
	}

	entry := domain.JournalEntry{
		EntryID:        entryID,
		ScopeID:        req.ScopeID,
		EntryDate:      entryDate,
		Description:    description,
		Status:         domain.Posted,
		SourceType:     req.SourceType,
		SourceID:       req.SourceID,
		IdempotencyKey: key,
		RuleCode:       rule.Code,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	// 5. Atomic append; the unique index arbitrates concurrent claims.
	committed, err := s.journalRepo.AppendEntry(ctx, entry, lines, balanceChanges)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race: another caller committed the same stage between
			// our lookup and append. Return their entry.
			winner, findErr := s.journalRepo.FindEntryByIdempotencyKey(ctx, key)
			if findErr != nil {
				return nil, false, fmt.Errorf("posting raced and winner lookup failed: %w", findErr)
			}
			logger.Info("Posting raced, returning winning entry", slog.String("entry_id", winner.EntryID))
			return s.withLines(ctx, winner)
		}
		logger.Error("Failed to append journal entry", slog.String("error", err.Error()), slog.String("rule", rule.Code))
		return nil, false, fmt.Errorf("failed to append journal entry: %w", err)
	}

	committed.Lines = lines
	logger.Info("Journal entry posted",
		slog.String("entry_id", committed.EntryID),
		slog.Int64("entry_no", committed.EntryNo),
		slog.String("rule", rule.Code),
		slog.String("total", totalDebit.String()))
	return committed, false, nil
}

// lineAccountCode resolves the symbolic code an evaluated line posts to,
// consulting the caller-supplied links for LINKED_ACCOUNT lines.
func lineAccountCode(ev EvaluatedLine, links map[string]string) (string, error) {
	if ev.Kind == domain.FixedAccount {
		return ev.AccountCode, nil
	}
	code, ok := links[ev.LinkKey]
	if !ok || code == "" {
		return "", fmt.Errorf("%w: %s: key %q", apperrors.ErrValidation, ErrMissingLink, ev.LinkKey)
	}
	return code, nil
}

// balanceChanges folds the lines into per-account balance deltas signed by
// each account's normal side.
func (s *postingService) balanceChanges(lines []domain.JournalLine, accountsByCode map[string]domain.Account, codes []string) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	for i, line := range lines {
		account := accountsByCode[codes[i]]
		delta, err := accounting.SignedBalanceDelta(line, account.NormalSide)
		if err != nil {
			return nil, fmt.Errorf("internal error computing balance delta: %w", err)
		}
		changes[line.AccountID] = changes[line.AccountID].Add(delta)
	}
	return changes, nil
}

// withLines returns an entry with its lines attached, flagged as an
// idempotent hit.
func (s *postingService) withLines(ctx context.Context, entry *domain.JournalEntry) (*domain.JournalEntry, bool, error) {
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entry.EntryID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load lines for entry %s: %w", entry.EntryID, err)
	}
	entry.Lines = lines
	return entry, true, nil
}
