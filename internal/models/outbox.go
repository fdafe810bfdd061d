package models

// PostingRequest is the database representation of one outbox row. Amounts
// and account links are stored as JSONB.
type PostingRequest struct {
	RequestID    string  `json:"requestID"`
	ScopeID      string  `json:"scopeID"`
	Stage        string  `json:"stage"`
	SourceType   string  `json:"sourceType"`
	SourceID     string  `json:"sourceID"`
	Amounts      []byte  `json:"-"`
	AccountLinks []byte  `json:"-"`
	ActorID      string  `json:"actorID"`
	Status       string  `json:"status"`
	Attempts     int     `json:"attempts"`
	LastError    string  `json:"lastError"`
	EntryID      *string `json:"entryID"`
	AuditFields
}
