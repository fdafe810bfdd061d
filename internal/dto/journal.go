package dto

import (
	"time"

	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineResponse defines the data returned for one entry leg.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	Tag         string          `json:"tag,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID        string                `json:"entryID"`
	EntryNo        int64                 `json:"entryNo"`
	ScopeID        string                `json:"scopeID"`
	EntryDate      time.Time             `json:"entryDate"`
	Description    string                `json:"description"`
	Status         string                `json:"status"`
	SourceType     string                `json:"sourceType"`
	SourceID       string                `json:"sourceID"`
	IdempotencyKey string                `json:"idempotencyKey"`
	RuleCode       string                `json:"ruleCode"`
	TotalDebit     decimal.Decimal       `json:"totalDebit"`
	TotalCredit    decimal.Decimal       `json:"totalCredit"`
	CorrectionOf   *string               `json:"correctionOf,omitempty"`
	Lines          []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
	IncludeLines     bool    `form:"includeLines"`
}

// ListEntriesResponse is a page of journal entries plus the next cursor.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain.JournalLine to its DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:      l.LineID,
		AccountID:   l.AccountID,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Description: l.Description,
		Tag:         l.Tag,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:        e.EntryID,
		EntryNo:        e.EntryNo,
		ScopeID:        e.ScopeID,
		EntryDate:      e.EntryDate,
		Description:    e.Description,
		Status:         string(e.Status),
		SourceType:     e.SourceType,
		SourceID:       e.SourceID,
		IdempotencyKey: e.IdempotencyKey,
		RuleCode:       e.RuleCode,
		TotalDebit:     e.TotalDebit,
		TotalCredit:    e.TotalCredit,
		CorrectionOf:   e.CorrectionOf,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToJournalLineResponse(&e.Lines[i])
		}
	}
	return resp
}

// ToJournalEntryResponses converts a slice of domain entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}
