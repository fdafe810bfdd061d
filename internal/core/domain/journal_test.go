package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPostingIdempotencyKey(t *testing.T) {
	key := PostingIdempotencyKey("payroll_accrual", "Payroll_Run", "42ab")
	assert.Equal(t, "PAYROLL_ACCRUAL_payroll_run_42ab", key)

	// Whitespace and case differences collapse to the same key.
	assert.Equal(t, key, PostingIdempotencyKey("  Payroll_Accrual ", "payroll_run", " 42ab "))

	// Any component change yields a different key.
	assert.NotEqual(t, key, PostingIdempotencyKey("payroll_payment", "payroll_run", "42ab"))
	assert.NotEqual(t, key, PostingIdempotencyKey("payroll_accrual", "payroll_run", "42ac"))
}

func TestReversalIdempotencyKey(t *testing.T) {
	assert.Equal(t, "REVERSAL_abc", ReversalIdempotencyKey("abc"))
}

func TestJournalLineValidate(t *testing.T) {
	debit := JournalLine{LineID: "l1", Debit: decimal.NewFromInt(10), Credit: decimal.Zero}
	assert.NoError(t, debit.Validate())

	credit := JournalLine{LineID: "l2", Debit: decimal.Zero, Credit: decimal.NewFromInt(10)}
	assert.NoError(t, credit.Validate())

	bothSides := JournalLine{LineID: "l3", Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(10)}
	assert.Error(t, bothSides.Validate())

	neitherSide := JournalLine{LineID: "l4", Debit: decimal.Zero, Credit: decimal.Zero}
	assert.Error(t, neitherSide.Validate())

	negative := JournalLine{LineID: "l5", Debit: decimal.NewFromInt(-10), Credit: decimal.Zero}
	assert.Error(t, negative.Validate())
}

func TestJournalEntryIsReversal(t *testing.T) {
	entry := JournalEntry{EntryID: "e1"}
	assert.False(t, entry.IsReversal())

	original := "e0"
	entry.CorrectionOf = &original
	assert.True(t, entry.IsReversal())
}
