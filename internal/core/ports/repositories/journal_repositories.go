package repositories

import (
	"context"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalEntryReader defines read operations for journal entry data.
type JournalEntryReader interface {
	// FindEntryByID retrieves a specific entry header by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryByIdempotencyKey retrieves the posted entry claiming the given
	// key, or ErrNotFound. O(1) via the partial unique index.
	FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error)

	// FindEntriesBySource retrieves all entries produced by one business
	// event, reversals included, oldest first.
	FindEntriesBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error)

	// ListEntriesByScope retrieves a keyset-paginated list of entries for a
	// scope. It returns the entries, a token for the next page, and an error.
	ListEntriesByScope(ctx context.Context, scopeID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)
}

// JournalLineReader defines read operations for entry line data.
type JournalLineReader interface {
	// FindLinesByEntryID retrieves all lines of a single entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error)
}

// JournalEntryWriter defines the append-only write operations of the store.
type JournalEntryWriter interface {
	// AppendEntry persists an entry header and all its lines in one atomic
	// transaction, applying balance deltas to the affected accounts. The
	// returned entry carries the store-assigned entry number. A concurrent
	// claim of the same idempotency key surfaces as ErrDuplicate; the caller
	// re-reads by key.
	AppendEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)

	// AppendReversal persists a reversal entry and, in the same transaction,
	// flips the original entry's status to REVERSED. The original's lines are
	// never touched.
	AppendReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, originalEntryID string, actorID string, now time.Time) (*domain.JournalEntry, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalEntryReader
	JournalLineReader
	JournalEntryWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction
// capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
