package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostRequest asks the orchestrator to post the journal effects of one stage
// of a business event. Amounts is the bag of named decimal aggregates the
// source adapter computed; AccountLinks maps linked-account keys used by the
// rule (e.g. "bank") to concrete account codes of this event.
type PostRequest struct {
	ScopeID      string                     `json:"scopeID" binding:"required,uuid"`
	Stage        string                     `json:"stage" binding:"required"`
	SourceType   string                     `json:"sourceType" binding:"required"`
	SourceID     string                     `json:"sourceID" binding:"required,uuid"`
	EntryDate    *time.Time                 `json:"entryDate"`
	Description  string                     `json:"description"`
	Amounts      map[string]decimal.Decimal `json:"amounts" binding:"required"`
	AccountLinks map[string]string          `json:"accountLinks"`
}

// PostResponse is the outcome of a posting attempt. AlreadyPosted is true
// when the idempotency key was claimed by an earlier call; the entry returned
// is then the original, unchanged.
type PostResponse struct {
	AlreadyPosted bool                 `json:"alreadyPosted"`
	Entry         JournalEntryResponse `json:"entry"`
}

// ReverseRequest asks for a sign-inverted correction of a posted entry.
// The reason is mandatory; reversals are never silent.
type ReverseRequest struct {
	Reason string `json:"reason" binding:"required"`
}
