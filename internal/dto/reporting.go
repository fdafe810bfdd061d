package dto

import "github.com/shopspring/decimal"

// TrialBalanceRow aggregates posted debits and credits for one account.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// TrialBalanceResponse is the full trial balance of a scope. For a healthy
// ledger the two grand totals are equal.
type TrialBalanceResponse struct {
	ScopeID     string            `json:"scopeID"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}
