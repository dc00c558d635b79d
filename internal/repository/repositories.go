package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User          UserRepository
	Allocation    AllocationRepository
	Order         OrderRepository
	Notification  NotificationRepository
	RefreshToken  RefreshTokenRepository
	Debt          DebtRepository
	RepaymentPlan RepaymentPlanRepository
	Installment   InstallmentRepository
	Sequence      SequenceRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Allocation:    NewAllocationRepository(db),
		Order:         NewOrderRepository(db),
		Notification:  NewNotificationRepository(db),
		RefreshToken:  NewRefreshTokenRepository(db),
		Debt:          NewDebtRepository(db),
		RepaymentPlan: NewRepaymentPlanRepository(db),
		Installment:   NewInstallmentRepository(db),
		Sequence:      NewSequenceRepository(db),
	}
}
