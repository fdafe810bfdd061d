package models

import "time"

// PostingRule is the database representation of one rule version. The line
// templates are stored as structured JSONB in the templates column.
type PostingRule struct {
	RuleID        string     `json:"ruleID"`
	ScopeID       string     `json:"scopeID"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Version       int        `json:"version"`
	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo"`
	IsActive      bool       `json:"isActive"`
	Templates     []byte     `json:"-"` // Raw JSONB payload
	AuditFields
}
