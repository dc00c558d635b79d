package handlers

import (
	"github.com/milfin/milfin-api/internal/services"
	"github.com/milfin/milfin-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Allocation   *AllocationHandler
	Order        *OrderHandler
	Debt         *DebtHandler
	Summary      *SummaryHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Allocation:   NewAllocationHandler(svcs.Allocation, svcs.Export, storage),
		Order:        NewOrderHandler(svcs.Order, svcs.Export, svcs.Report, storage),
		Debt:         NewDebtHandler(svcs.Debt),
		Summary:      NewSummaryHandler(svcs.Summary, svcs.Report),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
	}
}
