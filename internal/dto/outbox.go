package dto

import (
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
)

// PostingRequestResponse defines the data returned for a queued posting request.
type PostingRequestResponse struct {
	RequestID  string    `json:"requestID"`
	ScopeID    string    `json:"scopeID"`
	Stage      string    `json:"stage"`
	SourceType string    `json:"sourceType"`
	SourceID   string    `json:"sourceID"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"lastError,omitempty"`
	EntryID    *string   `json:"entryID,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListPostingRequestsParams filters the outbox listing.
type ListPostingRequestsParams struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

// ToPostingRequestResponse converts a domain.PostingRequest to its DTO.
func ToPostingRequestResponse(r *domain.PostingRequest) PostingRequestResponse {
	return PostingRequestResponse{
		RequestID:  r.RequestID,
		ScopeID:    r.ScopeID,
		Stage:      r.Stage,
		SourceType: r.SourceType,
		SourceID:   r.SourceID,
		Status:     string(r.Status),
		Attempts:   r.Attempts,
		LastError:  r.LastError,
		EntryID:    r.EntryID,
		CreatedAt:  r.CreatedAt,
	}
}

// ToPostingRequestResponses converts a slice of domain posting requests.
func ToPostingRequestResponses(requests []domain.PostingRequest) []PostingRequestResponse {
	responses := make([]PostingRequestResponse, len(requests))
	for i := range requests {
		responses[i] = ToPostingRequestResponse(&requests[i])
	}
	return responses
}
