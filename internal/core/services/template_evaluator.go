package services

import (
	"fmt"

	"github.com/himanshudhami/InvoiceX-sub009/internal/apperrors"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// EvaluatedLine is the intermediate output of template evaluation: an amount
// bound to a side and an account reference, before any account resolution.
type EvaluatedLine struct {
	Kind        domain.LineKind
	AccountCode string // FIXED_ACCOUNT only
	LinkKey     string // LINKED_ACCOUNT only
	Side        domain.EntrySide
	Amount      decimal.Decimal // > 0, ledger precision
	Description string
	Tag         string
}

// EvaluateTemplate applies a posting rule to a bag of named amounts. It is a
// pure function: no I/O, no account resolution, no clock. Line templates
// whose amount field is absent or zero are omitted (sparse posting). Split
// templates sharing one amount field receive largest-remainder shares so the
// shares always sum exactly to the rounded field value.
func EvaluateTemplate(rule *domain.PostingRule, amounts map[string]decimal.Decimal) ([]EvaluatedLine, error) {
	for field, amount := range amounts {
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount field %q is negative (%s)", apperrors.ErrValidation, field, amount.String())
		}
	}

	splitShares, err := allocateSplitFields(rule, amounts)
	if err != nil {
		return nil, err
	}

	lines := make([]EvaluatedLine, 0, len(rule.Lines))
	splitIdx := make(map[string]int)
	for i, tmpl := range rule.Lines {
		var amount decimal.Decimal
		if tmpl.IsSplit() {
			shares, ok := splitShares[tmpl.AmountField]
			if !ok {
				continue // whole field absent or zero
			}
			amount = shares[splitIdx[tmpl.AmountField]]
			splitIdx[tmpl.AmountField]++
		} else {
			raw, ok := amounts[tmpl.AmountField]
			if !ok {
				continue
			}
			amount = accounting.Round(raw)
		}
		if amount.IsZero() {
			continue
		}

		switch tmpl.Kind {
		case domain.FixedAccount:
			if tmpl.AccountCode == "" {
				return nil, fmt.Errorf("%w: rule %s line %d: fixed-account template has no account code", apperrors.ErrValidation, rule.Code, i)
			}
		case domain.LinkedAccount:
			if tmpl.LinkKey == "" {
				return nil, fmt.Errorf("%w: rule %s line %d: linked-account template has no link key", apperrors.ErrValidation, rule.Code, i)
			}
		default:
			return nil, fmt.Errorf("%w: rule %s line %d: unknown line kind %q", apperrors.ErrValidation, rule.Code, i, tmpl.Kind)
		}
		if tmpl.Side != domain.DebitSide && tmpl.Side != domain.CreditSide {
			return nil, fmt.Errorf("%w: rule %s line %d: unknown entry side %q", apperrors.ErrValidation, rule.Code, i, tmpl.Side)
		}

		lines = append(lines, EvaluatedLine{
			Kind:        tmpl.Kind,
			AccountCode: tmpl.AccountCode,
			LinkKey:     tmpl.LinkKey,
			Side:        tmpl.Side,
			Amount:      amount,
			Description: tmpl.Description,
			Tag:         tmpl.Tag,
		})
	}
	return lines, nil
}

// allocateSplitFields pre-computes the shares of every amount field consumed
// by split templates. All templates splitting one field must agree on the
// denominator and their numerators must sum to it, so the field is always
// distributed whole.
func allocateSplitFields(rule *domain.PostingRule, amounts map[string]decimal.Decimal) (map[string][]decimal.Decimal, error) {
	weights := make(map[string][]int64)
	denominators := make(map[string]int64)
	for i, tmpl := range rule.Lines {
		if !tmpl.IsSplit() {
			continue
		}
		if tmpl.Numerator <= 0 {
			return nil, fmt.Errorf("%w: rule %s line %d: split numerator must be positive", apperrors.ErrValidation, rule.Code, i)
		}
		if den, seen := denominators[tmpl.AmountField]; seen && den != tmpl.Denominator {
			return nil, fmt.Errorf("%w: rule %s: split templates for field %q disagree on denominator", apperrors.ErrValidation, rule.Code, tmpl.AmountField)
		}
		denominators[tmpl.AmountField] = tmpl.Denominator
		weights[tmpl.AmountField] = append(weights[tmpl.AmountField], tmpl.Numerator)
	}

	shares := make(map[string][]decimal.Decimal, len(weights))
	for field, ws := range weights {
		var sum int64
		for _, w := range ws {
			sum += w
		}
		if sum != denominators[field] {
			return nil, fmt.Errorf("%w: rule %s: split numerators for field %q sum to %d, want denominator %d", apperrors.ErrValidation, rule.Code, field, sum, denominators[field])
		}

		total, ok := amounts[field]
		if !ok {
			continue
		}
		total = accounting.Round(total)
		if total.IsZero() {
			continue
		}
		allocated, err := accounting.AllocateWeighted(total, ws)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %s: %v", apperrors.ErrValidation, rule.Code, err)
		}
		shares[field] = allocated
	}
	return shares, nil
}
