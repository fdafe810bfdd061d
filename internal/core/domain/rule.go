package domain

import "time"

// LineKind selects how a line template finds its account.
type LineKind string

const (
	// FixedAccount lines name a symbolic account code directly.
	FixedAccount LineKind = "FIXED_ACCOUNT"
	// LinkedAccount lines resolve their code through a caller-supplied link,
	// e.g. "bank" -> the code of the bank account attached to the payment.
	LinkedAccount LineKind = "LINKED_ACCOUNT"
)

// EntrySide is the side of the entry a line template posts to.
type EntrySide string

const (
	DebitSide  EntrySide = "DEBIT"
	CreditSide EntrySide = "CREDIT"
)

// LineTemplate is one declarative leg of a posting rule. The amount is taken
// from the named field of the caller's amounts map; if that field is absent
// or zero the line is omitted (sparse posting). When Numerator/Denominator
// are set, several templates share one amount field and receive
// largest-remainder shares of it.
type LineTemplate struct {
	Kind        LineKind  `json:"kind"`
	AccountCode string    `json:"accountCode,omitempty"` // FIXED_ACCOUNT
	LinkKey     string    `json:"linkKey,omitempty"`     // LINKED_ACCOUNT
	Side        EntrySide `json:"side"`
	AmountField string    `json:"amountField"`
	Numerator   int64     `json:"numerator,omitempty"`
	Denominator int64     `json:"denominator,omitempty"`
	Description string    `json:"description,omitempty"`
	Tag         string    `json:"tag,omitempty"`
}

// IsSplit reports whether the template takes a fractional share of its field.
func (t *LineTemplate) IsSplit() bool {
	return t.Denominator > 0
}

// PostingRule is a named, versioned mapping from a business-event shape to
// journal lines. Rules are seeded per scope, versioned by an effective-date
// range so historical entries stay reproducible, and deactivated rather than
// deleted once used.
type PostingRule struct {
	RuleID        string         `json:"ruleID"`
	ScopeID       string         `json:"scopeID"`
	Code          string         `json:"code"` // e.g. "PAYROLL_ACCRUAL"
	Name          string         `json:"name"`
	Version       int            `json:"version"`
	EffectiveFrom time.Time      `json:"effectiveFrom"`
	EffectiveTo   *time.Time     `json:"effectiveTo"` // Open-ended when nil
	IsActive      bool           `json:"isActive"`
	Lines         []LineTemplate `json:"lines"`
	AuditFields
}

// EffectiveAt reports whether the rule version covers the given instant.
func (r *PostingRule) EffectiveAt(at time.Time) bool {
	if at.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || at.Before(*r.EffectiveTo)
}
