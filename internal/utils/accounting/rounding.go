package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the fixed precision for all ledger amounts.
const Places = 2

// Round normalizes an amount to ledger precision using banker's rounding
// (round half to even), which avoids systematic drift on .5 boundaries.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(Places)
}

// AllocateWeighted splits total across len(weights) parts in proportion to
// the weights, at ledger precision, using the largest-remainder method so the
// parts always sum exactly to the rounded total. Ties go to the earliest
// part. Simple per-part division misrounds odd amounts (e.g. halving 100.01),
// which is exactly the defect this exists to avoid.
func AllocateWeighted(total decimal.Decimal, weights []int64) ([]decimal.Decimal, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("allocation requires at least one weight")
	}
	var weightSum int64
	for _, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("allocation weights must be positive, got %d", w)
		}
		weightSum += w
	}

	total = Round(total)
	// Work in integer cents so remainder distribution is exact.
	totalCents := total.Shift(Places).IntPart()
	weightSumDec := decimal.NewFromInt(weightSum)

	parts := make([]decimal.Decimal, len(weights))
	floorCents := make([]int64, len(weights))
	remainders := make([]decimal.Decimal, len(weights))
	var allocated int64
	for i, w := range weights {
		exact := decimal.NewFromInt(totalCents).Mul(decimal.NewFromInt(w)).Div(weightSumDec)
		floorCents[i] = exact.Floor().IntPart()
		remainders[i] = exact.Sub(exact.Floor())
		allocated += floorCents[i]
	}

	// Hand out the leftover cents to the largest remainders, earliest first.
	leftover := totalCents - allocated
	for leftover > 0 {
		best := -1
		for i, r := range remainders {
			if best == -1 || r.GreaterThan(remainders[best]) {
				best = i
			}
		}
		floorCents[best]++
		remainders[best] = decimal.Zero.Sub(decimal.NewFromInt(1)) // Exclude from further rounds
		leftover--
	}

	for i, c := range floorCents {
		parts[i] = decimal.NewFromInt(c).Shift(-Places)
	}
	return parts, nil
}

// SplitEven divides total into n equal parts at ledger precision, assigning
// leftover cents by largest remainder.
func SplitEven(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("split count must be positive, got %d", n)
	}
	weights := make([]int64, n)
	for i := range weights {
		weights[i] = 1
	}
	return AllocateWeighted(total, weights)
}
