package services

import (
	"context"
	"testing"
	"time"

	"github.com/milfin/milfin-api/internal/jobs"
	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderRepo struct {
	repository.OrderRepository
	orders  map[uint]*models.Order
	created *models.Order
	updated *models.Order
}

func newMockOrderRepo(orders ...*models.Order) *mockOrderRepo {
	m := &mockOrderRepo{orders: make(map[uint]*models.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Order, error) {
	return m.FindByID(ctx, id)
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = uint(len(m.orders) + 1)
	m.orders[order.ID] = order
	m.created = order
	return nil
}

func (m *mockOrderRepo) Update(ctx context.Context, order *models.Order) error {
	m.orders[order.ID] = order
	m.updated = order
	return nil
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uint) error {
	delete(m.orders, id)
	return nil
}

type mockSequenceRepo struct {
	repository.SequenceRepository
	next int
}

func (m *mockSequenceRepo) NextDocumentNumber(ctx context.Context, scope string, year int) (string, error) {
	m.next++
	return models.FormatDocumentNumber(scope, year, m.next), nil
}

type mockNotificationRepo struct {
	repository.NotificationRepository
	notifications map[uint]*models.Notification
	created       []models.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, ErrNotFound
}

func (m *mockNotificationRepo) Update(ctx context.Context, n *models.Notification) error {
	m.notifications[n.ID] = n
	return nil
}

func newTestOrderService(repo *mockOrderRepo, notifRepo *mockNotificationRepo) (*OrderService, *jobs.Worker) {
	userRepo := &mockUserRepo{
		mockFindByRole: func(ctx context.Context, role string) ([]models.User, error) {
			if role == models.RoleCommander {
				return []models.User{{ID: 99, FullName: "Unit Commander", Role: models.RoleCommander}}, nil
			}
			return nil, nil
		},
	}
	worker := jobs.NewWorker(1)
	notificationSvc := NewNotificationService(notifRepo, userRepo)
	return NewOrderService(repo, &mockSequenceRepo{}, notificationSvc, NewAuditService(nil), worker), worker
}

func financeOfficer() *models.User {
	return &models.User{ID: 1, FullName: "Finance Officer", Role: models.RoleFinanceOfficer}
}

func commander() *models.User {
	return &models.User{ID: 2, FullName: "Unit Commander", Role: models.RoleCommander}
}

func auditor() *models.User {
	return &models.User{ID: 3, FullName: "Auditor", Role: models.RoleAuditor}
}

func TestOrderService_Create_DerivesWrittenOrderFlag(t *testing.T) {
	repo := newMockOrderRepo()
	notifRepo := &mockNotificationRepo{}
	svc, worker := newTestOrderService(repo, notifRepo)

	input := &CreateOrderInput{
		OrderDate:   time.Now(),
		Amount:      decimal.NewFromInt(5000),
		Currency:    models.CurrencyYER,
		Beneficiary: "Supply vendor",
		Purpose:     "Fuel purchase",
		OrderType:   models.OrderTypeVerbal,
	}

	order, err := svc.Create(context.Background(), input, financeOfficer(), "127.0.0.1", "test")
	require.NoError(t, err)
	worker.Shutdown()

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.NeedsWrittenOrder)
	assert.False(t, order.HasAttachment)
	assert.Contains(t, order.OrderNumber, "ORD-")

	// A verbal order without attachment warns in addition to the
	// regular new-order notification
	require.NotEmpty(t, notifRepo.created)
	types := make(map[string]int)
	for _, n := range notifRepo.created {
		types[n.NotificationType]++
	}
	assert.Greater(t, types[models.NotificationTypeOrder], 0)
	assert.Greater(t, types[models.NotificationTypeSystem], 0)
}

func TestOrderService_Create_WrittenOrderNotFlagged(t *testing.T) {
	repo := newMockOrderRepo()
	notifRepo := &mockNotificationRepo{}
	svc, worker := newTestOrderService(repo, notifRepo)

	input := &CreateOrderInput{
		OrderDate:   time.Now(),
		Amount:      decimal.NewFromInt(1000),
		Currency:    models.CurrencyUSD,
		Beneficiary: "Contractor",
		Purpose:     "Repairs",
		OrderType:   models.OrderTypeWritten,
	}

	order, err := svc.Create(context.Background(), input, financeOfficer(), "127.0.0.1", "test")
	require.NoError(t, err)
	worker.Shutdown()

	assert.False(t, order.NeedsWrittenOrder)
	for _, n := range notifRepo.created {
		assert.NotEqual(t, models.NotificationTypeSystem, n.NotificationType)
	}
}

func TestOrderService_Create_Validation(t *testing.T) {
	repo := newMockOrderRepo()
	svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
	defer worker.Shutdown()

	base := CreateOrderInput{
		OrderDate:   time.Now(),
		Amount:      decimal.NewFromInt(100),
		Currency:    models.CurrencyYER,
		Beneficiary: "Vendor",
		Purpose:     "Supplies",
		OrderType:   models.OrderTypeWritten,
	}

	t.Run("auditor forbidden", func(t *testing.T) {
		input := base
		_, err := svc.Create(context.Background(), &input, auditor(), "", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("zero amount", func(t *testing.T) {
		input := base
		input.Amount = decimal.Zero
		_, err := svc.Create(context.Background(), &input, financeOfficer(), "", "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("negative amount", func(t *testing.T) {
		input := base
		input.Amount = decimal.NewFromInt(-50)
		_, err := svc.Create(context.Background(), &input, financeOfficer(), "", "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("unknown currency", func(t *testing.T) {
		input := base
		input.Currency = "GBP"
		_, err := svc.Create(context.Background(), &input, financeOfficer(), "", "")
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})

	t.Run("unknown order type", func(t *testing.T) {
		input := base
		input.OrderType = "email"
		_, err := svc.Create(context.Background(), &input, financeOfficer(), "", "")
		assert.Error(t, err)
	})
}

func TestOrderService_Approve(t *testing.T) {
	t.Run("commander approves pending order", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, OrderNumber: "ORD-2026-001", Status: models.OrderStatusPending, Amount: decimal.NewFromInt(100), Currency: models.CurrencyYER})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})

		order, err := svc.Approve(context.Background(), 1, commander(), "", "")
		require.NoError(t, err)
		worker.Shutdown()

		assert.Equal(t, models.OrderStatusApproved, order.Status)
		require.NotNil(t, order.ApprovedBy)
		assert.Equal(t, "Unit Commander", *order.ApprovedBy)
		assert.NotNil(t, order.ApprovedAt)
	})

	t.Run("finance officer cannot approve", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.Approve(context.Background(), 1, financeOfficer(), "", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("cannot approve a paid order", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPaid})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.Approve(context.Background(), 1, commander(), "", "")
		assert.Error(t, err)
	})
}

func TestOrderService_Reject(t *testing.T) {
	t.Run("reason is mandatory", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.Reject(context.Background(), 1, "", commander(), "", "")
		assert.ErrorIs(t, err, ErrRejectionReasonRequired)
	})

	t.Run("commander rejects with reason", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, OrderNumber: "ORD-2026-001", Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})

		order, err := svc.Reject(context.Background(), 1, "Insufficient justification", commander(), "", "")
		require.NoError(t, err)
		worker.Shutdown()

		assert.Equal(t, models.OrderStatusRejected, order.Status)
		require.NotNil(t, order.RejectionReason)
		assert.Equal(t, "Insufficient justification", *order.RejectionReason)
	})

	t.Run("finance officer cannot reject", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.Reject(context.Background(), 1, "reason", financeOfficer(), "", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestOrderService_MarkPaid(t *testing.T) {
	t.Run("approved order becomes paid", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusApproved, Amount: decimal.NewFromInt(100)})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		order, err := svc.MarkPaid(context.Background(), 1, financeOfficer(), "", "")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, order.Status)
		assert.NotNil(t, order.PaidAt)
	})

	t.Run("pending order cannot be paid", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.MarkPaid(context.Background(), 1, financeOfficer(), "", "")
		assert.Error(t, err)
	})

	t.Run("commander cannot settle orders", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusApproved})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.MarkPaid(context.Background(), 1, commander(), "", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestOrderService_SetStatus(t *testing.T) {
	t.Run("finance overrides status directly", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		order, err := svc.SetStatus(context.Background(), 1, models.OrderStatusPaid, financeOfficer(), "", "")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, order.Status)
		// Overrides bypass approval bookkeeping
		assert.Nil(t, order.ApprovedBy)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.SetStatus(context.Background(), 1, "archived", financeOfficer(), "", "")
		assert.Error(t, err)
	})

	t.Run("commander cannot override", func(t *testing.T) {
		repo := newMockOrderRepo(&models.Order{ID: 1, Status: models.OrderStatusPending})
		svc, worker := newTestOrderService(repo, &mockNotificationRepo{})
		defer worker.Shutdown()

		_, err := svc.SetStatus(context.Background(), 1, models.OrderStatusApproved, commander(), "", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestOrderService_AttachFile_ResolvesWrittenOrderFlag(t *testing.T) {
	repo := newMockOrderRepo(&models.Order{
		ID:                1,
		OrderNumber:       "ORD-2026-001",
		Status:            models.OrderStatusPending,
		OrderType:         models.OrderTypeVerbal,
		NeedsWrittenOrder: true,
	})
	notifRepo := &mockNotificationRepo{}
	svc, worker := newTestOrderService(repo, notifRepo)

	order, err := svc.AttachFile(context.Background(), 1, "orders/2026/08/scan.pdf", financeOfficer(), "", "")
	require.NoError(t, err)
	worker.Shutdown()

	assert.True(t, order.HasAttachment)
	assert.False(t, order.NeedsWrittenOrder)

	// The flag flip from needed to resolved notifies as an approval event
	found := false
	for _, n := range notifRepo.created {
		if n.NotificationType == models.NotificationTypeApproval {
			found = true
		}
	}
	assert.True(t, found)
}
