package domain

import "github.com/shopspring/decimal"

// PostingRequestStatus is the lifecycle of a queued posting request.
type PostingRequestStatus string

const (
	RequestPending   PostingRequestStatus = "PENDING"
	RequestSucceeded PostingRequestStatus = "SUCCEEDED"
	RequestFailed    PostingRequestStatus = "FAILED"
)

// PostingRequest is one outbox row. Business-action handlers enqueue a
// request and commit their own state transition independently; the outbox
// worker performs the posting and records the outcome, so a failure is
// visible and retryable instead of silently logged.
type PostingRequest struct {
	RequestID    string                     `json:"requestID"`
	ScopeID      string                     `json:"scopeID"`
	Stage        string                     `json:"stage"`
	SourceType   string                     `json:"sourceType"`
	SourceID     string                     `json:"sourceID"`
	Amounts      map[string]decimal.Decimal `json:"amounts"`
	AccountLinks map[string]string          `json:"accountLinks,omitempty"`
	ActorID      string                     `json:"actorID"`
	Status       PostingRequestStatus       `json:"status"`
	Attempts     int                        `json:"attempts"`
	LastError    string                     `json:"lastError,omitempty"`
	EntryID      *string                    `json:"entryID,omitempty"` // Set once posting succeeds
	AuditFields
}
