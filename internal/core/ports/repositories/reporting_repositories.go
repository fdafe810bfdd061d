package repositories

import (
	"context"

	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
)

// ReportingRepositoryFacade serves aggregate read queries over the ledger.
type ReportingRepositoryFacade interface {
	// TrialBalanceRows aggregates posted (non-reversed) debits and credits
	// per account for a scope, ordered by account code.
	TrialBalanceRows(ctx context.Context, scopeID string) ([]dto.TrialBalanceRow, error)
}
