package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	portsrepo "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
)

const defaultEntryPageSize = 50

// journalService serves read access to committed entries.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewJournalService creates the journal query service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// GetEntryByID returns an entry with its lines populated, hiding entries of
// other scopes.
func (s *journalService) GetEntryByID(ctx context.Context, scopeID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.ScopeID != scopeID {
		return nil, apperrors.ErrNotFound
	}

	entry.Lines, err = s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}
	return entry, nil
}

// GetEntriesBySource returns every entry produced by one business event,
// reversals included, oldest first, with lines attached.
func (s *journalService) GetEntriesBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error) {
	entries, err := s.journalRepo.FindEntriesBySource(ctx, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entries for %s %s: %w", sourceType, sourceID, err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	entryIDs := make([]string, len(entries))
	for i := range entries {
		entryIDs[i] = entries[i].EntryID
	}
	linesByEntry, err := s.journalRepo.FindLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for %s %s: %w", sourceType, sourceID, err)
	}
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
	}
	return entries, nil
}

// ListEntries returns a cursor-paginated page of a scope's entries, newest
// first.
func (s *journalService) ListEntries(ctx context.Context, scopeID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultEntryPageSize
	}

	entries, nextToken, err := s.journalRepo.ListEntriesByScope(ctx, scopeID, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for scope %s: %w", scopeID, err)
	}

	if params.IncludeLines && len(entries) > 0 {
		entryIDs := make([]string, len(entries))
		for i := range entries {
			entryIDs[i] = entries[i].EntryID
		}
		linesByEntry, lerr := s.journalRepo.FindLinesByEntryIDs(ctx, entryIDs)
		if lerr != nil {
			return nil, fmt.Errorf("failed to load lines for scope %s: %w", scopeID, lerr)
		}
		for i := range entries {
			entries[i].Lines = linesByEntry[entries[i].EntryID]
		}
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}
