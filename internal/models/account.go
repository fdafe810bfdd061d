package models

import "github.com/shopspring/decimal"

// AccountType mirrors domain.AccountType for database mapping.
type AccountType string

// NormalSide mirrors domain.NormalSide for database mapping.
type NormalSide string

// Account is the database representation of a chart-of-accounts entry.
type Account struct {
	AccountID       string          `json:"accountID"`
	ScopeID         string          `json:"scopeID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	NormalSide      NormalSide      `json:"normalSide"`
	ParentAccountID string          `json:"parentAccountID"`
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"`
	AuditFields
}
