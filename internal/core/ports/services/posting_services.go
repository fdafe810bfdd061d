package services

import (
	"context"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
)

// PostingSvcFacade is the posting orchestrator: it turns one stage of a
// business event into a balanced journal entry exactly once.
type PostingSvcFacade interface {
	// Post derives the idempotency key for (stage, sourceType, sourceID),
	// short-circuits if an entry already claimed it (alreadyPosted=true),
	// otherwise evaluates the stage's rule against the amounts, resolves
	// accounts, validates balance and appends atomically. Safe to call from
	// at-least-once delivery paths.
	Post(ctx context.Context, req dto.PostRequest, actorID string) (entry *domain.JournalEntry, alreadyPosted bool, err error)
}

// ReversalSvcFacade produces sign-inverted correction entries.
type ReversalSvcFacade interface {
	// Reverse builds and commits the mirror of a posted entry, links it via
	// correctionOf, and marks the original REVERSED. The reason is mandatory.
	Reverse(ctx context.Context, scopeID, entryID, reason, actorID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade serves read access to committed entries.
type JournalSvcFacade interface {
	// GetEntryByID returns an entry with its lines populated.
	GetEntryByID(ctx context.Context, scopeID, entryID string) (*domain.JournalEntry, error)

	// GetEntriesBySource returns every entry produced by one business event,
	// lines included, oldest first. Used for audit and "has this stage
	// already been posted" checks by adapters.
	GetEntriesBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error)

	// ListEntries returns a cursor-paginated page of a scope's entries.
	ListEntries(ctx context.Context, scopeID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}
