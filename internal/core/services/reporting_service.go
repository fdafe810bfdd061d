package services

import (
	"context"
	"fmt"

	portsrepo "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/repositories"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/dto"
	"github.com/shopspring/decimal"
)

// reportingService serves read-only ledger aggregates.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepositoryFacade
}

// NewReportingService creates the reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepositoryFacade) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance aggregates posted debits and credits per account. Reversed
// entries and their reversals cancel each other, so the totals reflect the
// effective ledger.
func (s *reportingService) TrialBalance(ctx context.Context, scopeID string) (*dto.TrialBalanceResponse, error) {
	rows, err := s.reportingRepo.TrialBalanceRows(ctx, scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trial balance for scope %s: %w", scopeID, err)
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.TotalDebit)
		totalCredit = totalCredit.Add(row.TotalCredit)
	}

	return &dto.TrialBalanceResponse{
		ScopeID:     scopeID,
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}, nil
}
