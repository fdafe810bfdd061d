package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
// The only lifecycle is POSTED -> REVERSED; there is no draft state here,
// staging happens upstream in the source entity's own state machine.
type EntryStatus string

const (
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry is one atomic, balanced accounting transaction produced from a
// business event. Entries are written once fully computed and never updated
// in place; corrections are additive via a linked reversal entry.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`  // Primary key (UUID)
	EntryNo        int64           `json:"entryNo"`  // Sequential number assigned by the store
	ScopeID        string          `json:"scopeID"`  // Tenant / business unit
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	Status         EntryStatus     `json:"status"`
	SourceType     string          `json:"sourceType"` // e.g. "payroll_run"
	SourceID       string          `json:"sourceID"`   // Business entity UUID
	IdempotencyKey string          `json:"idempotencyKey"`
	RuleCode       string          `json:"ruleCode"` // Rule used, kept for audit (by code, not FK)
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	CorrectionOf   *string         `json:"correctionOf"` // Set on reversal entries only
	Lines          []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// IsReversal reports whether the entry corrects another entry.
func (e *JournalEntry) IsReversal() bool {
	return e.CorrectionOf != nil
}

// JournalLine is one leg of a journal entry. Exactly one of Debit/Credit is
// non-zero, both are non-negative, and amounts carry 2 decimal places.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Tag         string          `json:"tag"` // Sub-ledger link for drill-down, e.g. "bank", "party"
	AuditFields
}

// Validate checks the single-sided, non-negative line invariant.
func (l *JournalLine) Validate() error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return fmt.Errorf("line %s: debit and credit must be non-negative", l.LineID)
	}
	if l.Debit.IsPositive() == l.Credit.IsPositive() {
		return fmt.Errorf("line %s: exactly one of debit or credit must be non-zero", l.LineID)
	}
	return nil
}

// PostingIdempotencyKey derives the deterministic idempotency key for a
// posting stage of a business event, e.g. ("payroll_accrual", "payroll_run",
// "42ab...") -> "PAYROLL_ACCRUAL_payroll_run_42ab...". The derivation is a
// pure function of its inputs so the same stage always claims the same key,
// across retries and process restarts.
func PostingIdempotencyKey(stage, sourceType, sourceID string) string {
	return strings.ToUpper(strings.TrimSpace(stage)) + "_" +
		strings.ToLower(strings.TrimSpace(sourceType)) + "_" + strings.TrimSpace(sourceID)
}

// ReversalIdempotencyKey derives the key a reversal entry claims, making
// reversal itself safe against retries.
func ReversalIdempotencyKey(originalEntryID string) string {
	return "REVERSAL_" + originalEntryID
}
