package services

import (
	"github.com/milfin/milfin-api/internal/config"
	"github.com/milfin/milfin-api/internal/jobs"
	"github.com/milfin/milfin-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Allocation   *AllocationService
	Order        *OrderService
	Summary      *SummaryService
	Debt         *DebtService
	Notification *NotificationService
	Audit        *AuditService
	Export       *ExportService
	Report       *ReportService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db)
	notificationSvc := NewNotificationService(repos.Notification, repos.User)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, auditSvc, cfg),
		User:         NewUserService(repos.User, repos.RefreshToken, auditSvc),
		Allocation:   NewAllocationService(repos.Allocation, repos.Sequence, notificationSvc, auditSvc, worker),
		Order:        NewOrderService(repos.Order, repos.Sequence, notificationSvc, auditSvc, worker),
		Summary:      NewSummaryService(repos.Allocation, repos.Order),
		Debt:         NewDebtService(repos.Debt, repos.RepaymentPlan, repos.Installment, repos.Sequence, notificationSvc, auditSvc),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Export:       NewExportService(repos.Allocation, repos.Order, auditSvc),
		Report:       NewReportService(repos.Order, repos.Allocation),
	}
}
