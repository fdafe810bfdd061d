package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	"github.com/himanshudhami/InvoiceX-sub009/internal/models"
	"github.com/himanshudhami/InvoiceX-sub009/internal/utils/mapping"
	"github.com/himanshudhami/InvoiceX-sub009/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	entryColumns = `entry_id, entry_no, scope_id, entry_date, description, status, source_type, source_id, idempotency_key, rule_code, total_debit, total_credit, correction_of, created_at, created_by, last_updated_at, last_updated_by`
	lineColumns  = `line_id, entry_id, account_id, debit, credit, description, tag, created_at, created_by, last_updated_at, last_updated_by`

	// Partial unique index on idempotency_key WHERE status = 'POSTED'.
	idempotencyConstraint = "uq_journal_entries_idempotency_posted"
)

type PgxJournalRepository struct {
	baseRepository
	accounts repositories.AccountTransactionSupport
}

// NewPgxJournalRepository creates a new repository for journal entry data. The
// account transaction support is used to lock and adjust account balances
// inside the append transaction.
func NewPgxJournalRepository(pool *pgxpool.Pool, accounts repositories.AccountTransactionSupport) repositories.JournalRepositoryWithTx {
	return &PgxJournalRepository{baseRepository: baseRepository{pool: pool}, accounts: accounts}
}

// AppendEntry persists an entry header and all its lines in one atomic
// transaction and applies the balance deltas to the affected accounts. A
// concurrent claim of the same idempotency key surfaces as ErrDuplicate.
func (r *PgxJournalRepository) AppendEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	committed, err := r.appendEntryInTx(ctx, tx, entry, lines, balanceChanges)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit entry %s: %v", apperrors.ErrStorageUnavailable, entry.EntryID, err)
	}
	return committed, nil
}

// AppendReversal persists a reversal entry and, in the same transaction, flips
// the original entry's status to REVERSED. The original's lines are never
// touched.
func (r *PgxJournalRepository) AppendReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, originalEntryID string, actorID string, now time.Time) (*domain.JournalEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Flip the original first; the status guard arbitrates concurrent
	// reversals of the same entry.
	statusQuery := `
		UPDATE journal_entries
		SET status = 'REVERSED', last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND status = 'POSTED';
	`
	tag, err := tx.Exec(ctx, statusQuery, originalEntryID, now, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry %s reversed: %w", originalEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrDuplicate
	}

	committed, err := r.appendEntryInTx(ctx, tx, reversal, lines, balanceChanges)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit reversal of entry %s: %v", apperrors.ErrStorageUnavailable, originalEntryID, err)
	}
	return committed, nil
}

func (r *PgxJournalRepository) appendEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	m := mapping.ToModelJournalEntry(entry)

	// 1. Insert the header; the store assigns the entry number.
	headerQuery := `
		INSERT INTO journal_entries (entry_id, scope_id, entry_date, description, status, source_type, source_id, idempotency_key, rule_code, total_debit, total_credit, correction_of, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING entry_no;
	`
	err := tx.QueryRow(ctx, headerQuery,
		m.EntryID,
		m.ScopeID,
		m.EntryDate,
		m.Description,
		m.Status,
		m.SourceType,
		m.SourceID,
		m.IdempotencyKey,
		m.RuleCode,
		m.TotalDebit,
		m.TotalCredit,
		m.CorrectionOf,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&m.EntryNo)
	if err != nil {
		if isUniqueViolation(err, idempotencyConstraint) {
			return nil, apperrors.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
	}

	// 2. Insert all lines in one batch.
	lineQuery := `
		INSERT INTO journal_entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		lm := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			lm.LineID,
			lm.EntryID,
			lm.AccountID,
			lm.Debit,
			lm.Credit,
			lm.Description,
			lm.Tag,
			lm.CreatedAt,
			lm.CreatedBy,
			lm.LastUpdatedAt,
			lm.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to insert lines for entry %s: %w", m.EntryID, err)
	}

	// 3. Lock the affected accounts and apply the balance deltas.
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	locked, err := r.accounts.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, accountID := range accountIDs {
		if _, ok := locked[accountID]; !ok {
			return nil, fmt.Errorf("%w: account %s vanished during posting", apperrors.ErrInternal, accountID)
		}
	}
	if err := r.accounts.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
		return nil, err
	}

	committed := mapping.ToDomainJournalEntry(m)
	return &committed, nil
}

// FindEntryByID retrieves a specific entry header by its unique identifier.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	return entry, nil
}

// FindEntryByIdempotencyKey retrieves the posted entry claiming the given
// key. The partial unique index guarantees at most one row matches.
func (r *PgxJournalRepository) FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE idempotency_key = $1 AND status = 'POSTED';`
	entry, err := scanEntry(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by idempotency key: %w", err)
	}
	return entry, nil
}

// FindEntriesBySource retrieves all entries produced by one business event,
// reversals included, oldest first.
func (r *PgxJournalRepository) FindEntriesBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE source_type = $1 AND source_id = $2
		ORDER BY entry_no;
	`
	rows, err := r.pool.Query(ctx, query, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for %s %s: %w", sourceType, sourceID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row for %s %s: %w", sourceType, sourceID, err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows for %s %s: %w", sourceType, sourceID, err)
	}
	return entries, nil
}

// ListEntriesByScope retrieves a keyset-paginated list of entries for a scope,
// newest first. With includeReversals false, reversed originals and their
// correction entries are both omitted, leaving the effective ledger.
func (r *PgxJournalRepository) ListEntriesByScope(ctx context.Context, scopeID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := []any{scopeID}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE scope_id = $1`
	if !includeReversals {
		query += ` AND status = 'POSTED' AND correction_of IS NULL`
	}
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, entryDate, createdAt)
		query += fmt.Sprintf(` AND (entry_date, created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d;`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for scope %s: %w", scopeID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row for scope %s: %w", scopeID, err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows for scope %s: %w", scopeID, err)
	}

	// One extra row fetched to detect whether a next page exists.
	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}
	return entries, token, nil
}

// FindLinesByEntryID retrieves all lines of a single entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY created_at, line_id;`
	rows, err := r.pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	ms := []models.JournalLine{}
	for rows.Next() {
		var lm models.JournalLine
		if err := scanLine(rows, &lm); err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		ms = append(ms, lm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return mapping.ToDomainJournalLineSlice(ms), nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
func (r *PgxJournalRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalLine{}, nil
	}
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = ANY($1) ORDER BY created_at, line_id;`
	rows, err := r.pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entries: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.JournalLine, len(entryIDs))
	for rows.Next() {
		var lm models.JournalLine
		if err := scanLine(rows, &lm); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		result[lm.EntryID] = append(result[lm.EntryID], mapping.ToDomainJournalLine(lm))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return result, nil
}

// scanEntry scans one entryColumns row into a domain entry.
func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryNo,
		&m.ScopeID,
		&m.EntryDate,
		&m.Description,
		&m.Status,
		&m.SourceType,
		&m.SourceID,
		&m.IdempotencyKey,
		&m.RuleCode,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.CorrectionOf,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

// scanLine scans one lineColumns row into a model line.
func scanLine(row pgx.Row, lm *models.JournalLine) error {
	return row.Scan(
		&lm.LineID,
		&lm.EntryID,
		&lm.AccountID,
		&lm.Debit,
		&lm.Credit,
		&lm.Description,
		&lm.Tag,
		&lm.CreatedAt,
		&lm.CreatedBy,
		&lm.LastUpdatedAt,
		&lm.LastUpdatedBy,
	)
}
