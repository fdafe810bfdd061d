package services_test

import (
	"testing"
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payrollRule(lines ...domain.LineTemplate) *domain.PostingRule {
	return &domain.PostingRule{
		RuleID:        uuid.NewString(),
		ScopeID:       uuid.NewString(),
		Code:          "PAYROLL_ACCRUAL",
		Name:          "Payroll accrual",
		Version:       1,
		EffectiveFrom: time.Now().UTC().Add(-time.Hour),
		IsActive:      true,
		Lines:         lines,
	}
}

func amounts(pairs map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(pairs))
	for field, v := range pairs {
		out[field] = decimal.RequireFromString(v)
	}
	return out
}

func TestEvaluateTemplate_FullShape(t *testing.T) {
	rule := payrollRule(
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5100", Side: domain.DebitSide, AmountField: "gross", Tag: "gross"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2310", Side: domain.CreditSide, AmountField: "tax"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "net"},
	)

	lines, err := services.EvaluateTemplate(rule, amounts(map[string]string{
		"gross": "1000.00",
		"tax":   "150.00",
		"net":   "850.00",
	}))

	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "5100", lines[0].AccountCode)
	assert.Equal(t, domain.DebitSide, lines[0].Side)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(t, "gross", lines[0].Tag)
	assert.Equal(t, domain.CreditSide, lines[1].Side)
	assert.True(t, lines[2].Amount.Equal(decimal.RequireFromString("850.00")))
}

func TestEvaluateTemplate_SparseOmission(t *testing.T) {
	rule := payrollRule(
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5100", Side: domain.DebitSide, AmountField: "gross"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2310", Side: domain.CreditSide, AmountField: "tax"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2320", Side: domain.CreditSide, AmountField: "pension"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "net"},
	)

	// "tax" is zero and "pension" is absent entirely: both legs drop out
	// without error.
	lines, err := services.EvaluateTemplate(rule, amounts(map[string]string{
		"gross": "500.00",
		"tax":   "0",
		"net":   "500.00",
	}))

	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "5100", lines[0].AccountCode)
	assert.Equal(t, "2100", lines[1].AccountCode)
}

func TestEvaluateTemplate_RoundsToLedgerPrecision(t *testing.T) {
	rule := payrollRule(
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5100", Side: domain.DebitSide, AmountField: "fee"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "fee"},
	)

	lines, err := services.EvaluateTemplate(rule, amounts(map[string]string{"fee": "10.005"}))

	require.NoError(t, err)
	require.Len(t, lines, 2)
	// Banker's rounding: 10.005 -> 10.00, identically on both sides.
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("10.00")), "got %s", lines[0].Amount)
	assert.True(t, lines[0].Amount.Equal(lines[1].Amount))
}

func TestEvaluateTemplate_SplitSharesSumExactly(t *testing.T) {
	rule := payrollRule(
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5210", Side: domain.DebitSide, AmountField: "insurance", Numerator: 1, Denominator: 2},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5220", Side: domain.DebitSide, AmountField: "insurance", Numerator: 1, Denominator: 2},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "insurance"},
	)

	// 100.01 halved cannot round evenly; the extra cent lands on one share and
	// the two shares still sum to the original.
	lines, err := services.EvaluateTemplate(rule, amounts(map[string]string{"insurance": "100.01"}))

	require.NoError(t, err)
	require.Len(t, lines, 3)
	sum := lines[0].Amount.Add(lines[1].Amount)
	assert.True(t, sum.Equal(decimal.RequireFromString("100.01")), "shares sum to %s", sum)
	assert.True(t, lines[0].Amount.Sub(lines[1].Amount).Abs().LessThanOrEqual(decimal.RequireFromString("0.01")))
	assert.True(t, lines[2].Amount.Equal(decimal.RequireFromString("100.01")))
}

func TestEvaluateTemplate_WeightedSplit(t *testing.T) {
	rule := payrollRule(
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5110", Side: domain.DebitSide, AmountField: "overhead", Numerator: 7, Denominator: 10},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5120", Side: domain.DebitSide, AmountField: "overhead", Numerator: 3, Denominator: 10},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "overhead"},
	)

	lines, err := services.EvaluateTemplate(rule, amounts(map[string]string{"overhead": "100.00"}))

	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("70.00")))
	assert.True(t, lines[1].Amount.Equal(decimal.RequireFromString("30.00")))
}

func TestEvaluateTemplate_SplitFieldAbsentDropsAllShares(t *testing.T) {
	rule := payrollRule(
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5210", Side: domain.DebitSide, AmountField: "insurance", Numerator: 1, Denominator: 2},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5220", Side: domain.DebitSide, AmountField: "insurance", Numerator: 1, Denominator: 2},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5100", Side: domain.DebitSide, AmountField: "gross"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "gross"},
	)

	lines, err := services.EvaluateTemplate(rule, amounts(map[string]string{"gross": "50.00"}))

	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "5100", lines[0].AccountCode)
}

func TestEvaluateTemplate_NegativeAmountRejected(t *testing.T) {
	rule := payrollRule(
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5100", Side: domain.DebitSide, AmountField: "gross"},
		domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "2100", Side: domain.CreditSide, AmountField: "gross"},
	)

	_, err := services.EvaluateTemplate(rule, amounts(map[string]string{"gross": "-10.00"}))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorContains(t, err, "gross")
}

func TestEvaluateTemplate_TemplateDefectsRejected(t *testing.T) {
	okAmounts := amounts(map[string]string{"gross": "10.00"})

	tests := []struct {
		name string
		line domain.LineTemplate
	}{
		{
			name: "fixed template without account code",
			line: domain.LineTemplate{Kind: domain.FixedAccount, Side: domain.DebitSide, AmountField: "gross"},
		},
		{
			name: "linked template without link key",
			line: domain.LineTemplate{Kind: domain.LinkedAccount, Side: domain.DebitSide, AmountField: "gross"},
		},
		{
			name: "unknown line kind",
			line: domain.LineTemplate{Kind: "SUSPENSE", AccountCode: "9999", Side: domain.DebitSide, AmountField: "gross"},
		},
		{
			name: "unknown entry side",
			line: domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5100", Side: "BOTH", AmountField: "gross"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule := payrollRule(tc.line)
			_, err := services.EvaluateTemplate(rule, okAmounts)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestEvaluateTemplate_SplitConfigRejected(t *testing.T) {
	okAmounts := amounts(map[string]string{"fee": "10.00"})

	t.Run("numerators must sum to denominator", func(t *testing.T) {
		rule := payrollRule(
			domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5110", Side: domain.DebitSide, AmountField: "fee", Numerator: 1, Denominator: 3},
			domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5120", Side: domain.DebitSide, AmountField: "fee", Numerator: 1, Denominator: 3},
		)
		_, err := services.EvaluateTemplate(rule, okAmounts)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("denominators must agree per field", func(t *testing.T) {
		rule := payrollRule(
			domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5110", Side: domain.DebitSide, AmountField: "fee", Numerator: 1, Denominator: 2},
			domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5120", Side: domain.DebitSide, AmountField: "fee", Numerator: 2, Denominator: 4},
		)
		_, err := services.EvaluateTemplate(rule, okAmounts)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("numerator must be positive", func(t *testing.T) {
		rule := payrollRule(
			domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5110", Side: domain.DebitSide, AmountField: "fee", Numerator: 0, Denominator: 2},
			domain.LineTemplate{Kind: domain.FixedAccount, AccountCode: "5120", Side: domain.DebitSide, AmountField: "fee", Numerator: 2, Denominator: 2},
		)
		_, err := services.EvaluateTemplate(rule, okAmounts)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
