package mapping

import (
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/domain"
	"github.com/himanshudhami/InvoiceX-sub009/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:        d.EntryID,
		EntryNo:        d.EntryNo,
		ScopeID:        d.ScopeID,
		EntryDate:      d.EntryDate,
		Description:    d.Description,
		Status:         models.EntryStatus(d.Status),
		SourceType:     d.SourceType,
		SourceID:       d.SourceID,
		IdempotencyKey: d.IdempotencyKey,
		RuleCode:       d.RuleCode,
		TotalDebit:     d.TotalDebit,
		TotalCredit:    d.TotalCredit,
		CorrectionOf:   d.CorrectionOf,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:        m.EntryID,
		EntryNo:        m.EntryNo,
		ScopeID:        m.ScopeID,
		EntryDate:      m.EntryDate,
		Description:    m.Description,
		Status:         domain.EntryStatus(m.Status),
		SourceType:     m.SourceType,
		SourceID:       m.SourceID,
		IdempotencyKey: m.IdempotencyKey,
		RuleCode:       m.RuleCode,
		TotalDebit:     m.TotalDebit,
		TotalCredit:    m.TotalCredit,
		CorrectionOf:   m.CorrectionOf,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine.
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: d.Description,
		Tag:         d.Tag,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
		Tag:         m.Tag,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of model lines to domain lines.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
