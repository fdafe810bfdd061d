package pgsql

import (
	"context"
	"fmt"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	baseRepository
}

// NewPgxReportingRepository creates a new repository for ledger aggregates.
func NewPgxReportingRepository(pool *pgxpool.Pool) repositories.ReportingRepositoryFacade {
	return &PgxReportingRepository{baseRepository{pool: pool}}
}

// TrialBalanceRows aggregates debits and credits per account for a scope.
// Reversed originals and their correction entries are both included, so their
// effects cancel in the totals without any status filtering on lines.
func (r *PgxReportingRepository) TrialBalanceRows(ctx context.Context, scopeID string) ([]dto.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(l.debit), 0) AS total_debit,
		       COALESCE(SUM(l.credit), 0) AS total_credit
		FROM accounts a
		LEFT JOIN journal_entry_lines l ON l.account_id = a.account_id
		WHERE a.scope_id = $1
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.pool.Query(ctx, query, scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance for scope %s: %w", scopeID, err)
	}
	defer rows.Close()

	result := []dto.TrialBalanceRow{}
	for rows.Next() {
		var row dto.TrialBalanceRow
		if err := rows.Scan(
			&row.AccountID,
			&row.Code,
			&row.Name,
			&row.AccountType,
			&row.TotalDebit,
			&row.TotalCredit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row for scope %s: %w", scopeID, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows for scope %s: %w", scopeID, err)
	}
	return result, nil
}
