package accounting

import (
	"fmt"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedBalanceDelta returns the change a line applies to an account's
// denormalized balance, signed by the account's normal side: a debit grows a
// debit-normal account and shrinks a credit-normal one, and vice versa.
func SignedBalanceDelta(line domain.JournalLine, side domain.NormalSide) (decimal.Decimal, error) {
	switch side {
	case domain.DebitNormal:
		return line.Debit.Sub(line.Credit), nil
	case domain.CreditNormal:
		return line.Credit.Sub(line.Debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown normal side %q for account %s", side, line.AccountID)
	}
}

// EntryTotals sums the debit and credit sides of a set of lines.
func EntryTotals(lines []domain.JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
