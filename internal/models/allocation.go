package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation represents funds received by the unit from a source
type Allocation struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	ReferenceNumber string           `gorm:"uniqueIndex;not null" json:"reference_number"`
	ReceivedDate    time.Time        `gorm:"not null;index" json:"received_date"`
	Amount          decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency        string           `gorm:"default:YER;not null;index" json:"currency"`
	Source          string           `gorm:"not null" json:"source"`
	Notes           *string          `gorm:"type:text" json:"notes"`
	PreviousDebt    *decimal.Decimal `gorm:"type:decimal(18,2)" json:"previous_debt"`
	AttachmentPaths *string          `gorm:"type:text" json:"attachment_paths"` // JSON string of file paths
	CreatorID       *uint            `gorm:"index" json:"creator_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// Associations
	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

// TableName specifies the table name for Allocation
func (Allocation) TableName() string {
	return "allocations"
}

// AllocationResponse is the JSON response format for allocations
type AllocationResponse struct {
	ID              uint             `json:"id"`
	ReferenceNumber string           `json:"reference_number"`
	ReceivedDate    time.Time        `json:"received_date"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	FormattedAmount string           `json:"formatted_amount"`
	Source          string           `json:"source"`
	Notes           *string          `json:"notes"`
	PreviousDebt    *decimal.Decimal `json:"previous_debt"`
	AttachmentPaths *string          `json:"attachment_paths"`
	CreatedBy       string           `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ToResponse converts Allocation to AllocationResponse
func (a *Allocation) ToResponse() AllocationResponse {
	resp := AllocationResponse{
		ID:              a.ID,
		ReferenceNumber: a.ReferenceNumber,
		ReceivedDate:    a.ReceivedDate,
		Amount:          a.Amount,
		Currency:        a.Currency,
		FormattedAmount: FormatAmount(a.Amount, a.Currency),
		Source:          a.Source,
		Notes:           a.Notes,
		PreviousDebt:    a.PreviousDebt,
		AttachmentPaths: a.AttachmentPaths,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	if a.Creator != nil {
		resp.CreatedBy = a.Creator.FullName
	}

	return resp
}
