package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PreviousDebt represents a legacy debt carried by the unit, tracked
// separately from the allocation/order balance
type PreviousDebt struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	DebtNumber      string          `gorm:"uniqueIndex;not null" json:"debt_number"`
	Creditor        string          `gorm:"not null" json:"creditor"`
	OriginalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"original_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	Currency        string          `gorm:"default:YER;not null;index" json:"currency"`
	DebtDate        time.Time       `gorm:"not null" json:"debt_date"`
	DueDate         *time.Time      `json:"due_date"`
	Description     string          `gorm:"type:text" json:"description"`
	Status          string          `gorm:"default:active;index" json:"status"`
	Priority        *string         `json:"priority"`
	Notes           *string         `gorm:"type:text" json:"notes"`
	CreatorID       *uint           `gorm:"index" json:"creator_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Associations
	Creator *User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Plans   []RepaymentPlan `gorm:"foreignKey:DebtID" json:"plans,omitempty"`
}

// TableName specifies the table name for PreviousDebt
func (PreviousDebt) TableName() string {
	return "previous_debts"
}

// Debt status constants
const (
	DebtStatusActive    = "active"
	DebtStatusPaid      = "paid"
	DebtStatusOverdue   = "overdue"
	DebtStatusCancelled = "cancelled"
)

// Debt priority constants
const (
	DebtPriorityHigh   = "high"
	DebtPriorityMedium = "medium"
	DebtPriorityLow    = "low"
)

// IsSettled returns true if nothing remains to repay
func (d *PreviousDebt) IsSettled() bool {
	return d.RemainingAmount.LessThanOrEqual(decimal.Zero)
}

// IsOverdue returns true if the debt is unpaid past its due date
func (d *PreviousDebt) IsOverdue(now time.Time) bool {
	if d.Status != DebtStatusActive || d.DueDate == nil {
		return false
	}
	return now.After(*d.DueDate)
}

// RepaymentPlan schedules installments against one debt
type RepaymentPlan struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	DebtID            uint            `gorm:"not null;index" json:"debt_id"`
	PlanNumber        string          `gorm:"uniqueIndex;not null" json:"plan_number"`
	TotalInstallments int             `gorm:"not null" json:"total_installments"`
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"installment_amount"`
	Currency          string          `gorm:"default:YER;not null" json:"currency"`
	StartDate         time.Time       `gorm:"not null" json:"start_date"`
	Frequency         string          `gorm:"not null" json:"frequency"`
	Status            string          `gorm:"default:active;index" json:"status"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	CreatorID         *uint           `gorm:"index" json:"creator_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Debt         PreviousDebt           `gorm:"foreignKey:DebtID" json:"-"`
	Installments []RepaymentInstallment `gorm:"foreignKey:PlanID" json:"installments,omitempty"`
}

// TableName specifies the table name for RepaymentPlan
func (RepaymentPlan) TableName() string {
	return "repayment_plans"
}

// Plan frequency constants
const (
	PlanFrequencyMonthly    = "monthly"
	PlanFrequencyQuarterly  = "quarterly"
	PlanFrequencySemiAnnual = "semi_annual"
	PlanFrequencyAnnual     = "annual"
)

// Plan status constants
const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusSuspended = "suspended"
	PlanStatusCancelled = "cancelled"
)

// IsValidPlanFrequency returns true if f is a known plan frequency
func IsValidPlanFrequency(f string) bool {
	switch f {
	case PlanFrequencyMonthly, PlanFrequencyQuarterly, PlanFrequencySemiAnnual, PlanFrequencyAnnual:
		return true
	}
	return false
}

// FrequencyMonths returns the number of months between installments
func FrequencyMonths(f string) int {
	switch f {
	case PlanFrequencyQuarterly:
		return 3
	case PlanFrequencySemiAnnual:
		return 6
	case PlanFrequencyAnnual:
		return 12
	default:
		return 1
	}
}

// RepaymentInstallment is a single scheduled payment within a plan
type RepaymentInstallment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PlanID            uint            `gorm:"not null;index" json:"plan_id"`
	InstallmentNumber int             `gorm:"not null" json:"installment_number"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency          string          `gorm:"default:YER;not null" json:"currency"`
	DueDate           time.Time       `gorm:"not null;index" json:"due_date"`
	PaidDate          *time.Time      `json:"paid_date"`
	Status            string          `gorm:"default:pending;index" json:"status"`
	PaymentReference  *string         `json:"payment_reference"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Plan RepaymentPlan `gorm:"foreignKey:PlanID" json:"-"`
}

// TableName specifies the table name for RepaymentInstallment
func (RepaymentInstallment) TableName() string {
	return "repayment_installments"
}

// Installment status constants
const (
	InstallmentStatusPending   = "pending"
	InstallmentStatusPaid      = "paid"
	InstallmentStatusOverdue   = "overdue"
	InstallmentStatusCancelled = "cancelled"
)

// MayMarkPaid returns true if the installment can be settled
func (i *RepaymentInstallment) MayMarkPaid() bool {
	return i.Status == InstallmentStatusPending || i.Status == InstallmentStatusOverdue
}
