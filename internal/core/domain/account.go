package domain

import "github.com/shopspring/decimal"

// AccountType defines the fundamental accounting classification of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// NormalSide is the side on which an account naturally increases.
type NormalSide string

const (
	DebitNormal  NormalSide = "DEBIT"
	CreditNormal NormalSide = "CREDIT"
)

// Account is one bucket in a scope's chart of accounts. (ScopeID, Code) is
// unique; the code is the stable symbolic identifier posting rules refer to.
// Accounts are created during chart setup, rarely mutated, and never deleted
// once a posted line references them - only deactivated.
type Account struct {
	AccountID       string          `json:"accountID"` // Primary key (UUID)
	ScopeID         string          `json:"scopeID"`   // Tenant / business unit
	Code            string          `json:"code"`      // Symbolic code, e.g. "2110"
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	NormalSide      NormalSide      `json:"normalSide"`
	ParentAccountID string          `json:"parentAccountID"` // Optional, for roll-up reporting
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"` // Denormalized, normal-side signed
	AuditFields
}

// DefaultNormalSide returns the conventional normal side for a classification.
func DefaultNormalSide(t AccountType) NormalSide {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}
