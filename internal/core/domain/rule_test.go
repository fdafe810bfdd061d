package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostingRuleEffectiveAt(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	open := PostingRule{EffectiveFrom: from}
	assert.False(t, open.EffectiveAt(from.Add(-time.Second)))
	assert.True(t, open.EffectiveAt(from))
	assert.True(t, open.EffectiveAt(from.AddDate(10, 0, 0)))

	closed := PostingRule{EffectiveFrom: from, EffectiveTo: &to}
	assert.True(t, closed.EffectiveAt(to.Add(-time.Second)))
	// The range is half-open: the closing instant belongs to the next version.
	assert.False(t, closed.EffectiveAt(to))
}

func TestLineTemplateIsSplit(t *testing.T) {
	assert.False(t, (&LineTemplate{}).IsSplit())
	assert.True(t, (&LineTemplate{Numerator: 1, Denominator: 2}).IsSplit())
}
