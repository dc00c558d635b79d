package models

import (
	"fmt"
	"time"
)

// DocumentSequence backs per-year document numbering. Each row holds
// the last value handed out for a scope/year pair; reservation happens
// with a single upsert so concurrent writers never share a number.
type DocumentSequence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Scope     string    `gorm:"size:10;not null;uniqueIndex:idx_sequences_scope_year" json:"scope"`
	Year      int       `gorm:"not null;uniqueIndex:idx_sequences_scope_year" json:"year"`
	Value     int       `gorm:"not null;default:0" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for DocumentSequence
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// Sequence scope constants. The scope doubles as the document number
// prefix.
const (
	SequenceScopeAllocation = "ALO"
	SequenceScopeOrder      = "ORD"
	SequenceScopeDebt       = "DBT"
	SequenceScopePlan       = "PLN"
)

// FormatDocumentNumber renders a reserved sequence value as a document
// number, e.g. "ORD-2026-007"
func FormatDocumentNumber(scope string, year, value int) string {
	return fmt.Sprintf("%s-%d-%03d", scope, year, value)
}
