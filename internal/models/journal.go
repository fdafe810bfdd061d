package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors domain.EntryStatus for database mapping.
type EntryStatus string

// JournalEntry is the database representation of a journal entry header.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`
	EntryNo        int64           `json:"entryNo"`
	ScopeID        string          `json:"scopeID"`
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	Status         EntryStatus     `json:"status"`
	SourceType     string          `json:"sourceType"`
	SourceID       string          `json:"sourceID"`
	IdempotencyKey string          `json:"idempotencyKey"`
	RuleCode       string          `json:"ruleCode"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	CorrectionOf   *string         `json:"correctionOf"`
	AuditFields
}

// JournalLine is the database representation of one entry leg.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Tag         string          `json:"tag"`
	AuditFields
}
