package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a disbursement order against the unit's funds
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OrderNumber       string          `gorm:"uniqueIndex;not null" json:"order_number"`
	OrderDate         time.Time       `gorm:"not null;index" json:"order_date"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency          string          `gorm:"default:YER;not null;index" json:"currency"`
	Beneficiary       string          `gorm:"not null" json:"beneficiary"`
	Purpose           string          `gorm:"type:text;not null" json:"purpose"`
	Status            string          `gorm:"default:pending;index" json:"status"`
	OrderType         string          `gorm:"default:written;not null" json:"order_type"`
	HasAttachment     bool            `gorm:"default:false" json:"has_attachment"`
	AttachmentPaths   *string         `gorm:"type:text" json:"attachment_paths"` // JSON string of file paths
	NeedsWrittenOrder bool            `gorm:"default:false;index" json:"needs_written_order"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	CreatorID         *uint           `gorm:"index" json:"creator_id"`
	ApprovedBy        *string         `json:"approved_by"`
	ApprovedAt        *time.Time      `gorm:"index" json:"approved_at"`
	PaidAt            *time.Time      `json:"paid_at"`
	RejectionReason   *string         `gorm:"type:text" json:"rejection_reason"`
	PreviousDebt      *decimal.Decimal `gorm:"type:decimal(18,2)" json:"previous_debt"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// Order status constants
const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
	OrderStatusPaid     = "paid"
)

// Order type constants
const (
	OrderTypeWritten = "written"
	OrderTypeVerbal  = "verbal"
	OrderTypePhone   = "phone"
)

// OrderStatuses returns all order statuses
func OrderStatuses() []string {
	return []string{OrderStatusPending, OrderStatusApproved, OrderStatusRejected, OrderStatusPaid}
}

// IsValidOrderStatus returns true if status is a known order status
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected, OrderStatusPaid:
		return true
	}
	return false
}

// IsValidOrderType returns true if t is a known order type
func IsValidOrderType(t string) bool {
	switch t {
	case OrderTypeWritten, OrderTypeVerbal, OrderTypePhone:
		return true
	}
	return false
}

// MayApprove returns true if the order can be approved
func (o *Order) MayApprove() bool {
	return o.Status == OrderStatusPending
}

// MayReject returns true if the order can be rejected
func (o *Order) MayReject() bool {
	return o.Status == OrderStatusPending
}

// MayMarkPaid returns true if the order can be marked as paid
func (o *Order) MayMarkPaid() bool {
	return o.Status == OrderStatusApproved
}

// ComputeNeedsWrittenOrder returns true when a verbal or phone order
// has no supporting attachment and still requires written confirmation
func (o *Order) ComputeNeedsWrittenOrder() bool {
	if o.OrderType != OrderTypeVerbal && o.OrderType != OrderTypePhone {
		return false
	}
	return !o.HasAttachment
}

// OrderResponse is the JSON response format for orders
type OrderResponse struct {
	ID                uint             `json:"id"`
	OrderNumber       string           `json:"order_number"`
	OrderDate         time.Time        `json:"order_date"`
	Amount            decimal.Decimal  `json:"amount"`
	Currency          string           `json:"currency"`
	FormattedAmount   string           `json:"formatted_amount"`
	Beneficiary       string           `json:"beneficiary"`
	Purpose           string           `json:"purpose"`
	Status            string           `json:"status"`
	OrderType         string           `json:"order_type"`
	HasAttachment     bool             `json:"has_attachment"`
	AttachmentPaths   *string          `json:"attachment_paths"`
	NeedsWrittenOrder bool             `json:"needs_written_order"`
	Notes             *string          `json:"notes"`
	CreatedBy         string           `json:"created_by"`
	ApprovedBy        *string          `json:"approved_by"`
	ApprovedAt        *time.Time       `json:"approved_at"`
	PaidAt            *time.Time       `json:"paid_at"`
	RejectionReason   *string          `json:"rejection_reason"`
	PreviousDebt      *decimal.Decimal `json:"previous_debt"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ToResponse converts Order to OrderResponse
func (o *Order) ToResponse() OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		OrderDate:         o.OrderDate,
		Amount:            o.Amount,
		Currency:          o.Currency,
		FormattedAmount:   FormatAmount(o.Amount, o.Currency),
		Beneficiary:       o.Beneficiary,
		Purpose:           o.Purpose,
		Status:            o.Status,
		OrderType:         o.OrderType,
		HasAttachment:     o.HasAttachment,
		AttachmentPaths:   o.AttachmentPaths,
		NeedsWrittenOrder: o.NeedsWrittenOrder,
		Notes:             o.Notes,
		ApprovedBy:        o.ApprovedBy,
		ApprovedAt:        o.ApprovedAt,
		PaidAt:            o.PaidAt,
		RejectionReason:   o.RejectionReason,
		PreviousDebt:      o.PreviousDebt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}

	if o.Creator != nil {
		resp.CreatedBy = o.Creator.FullName
	}

	return resp
}
