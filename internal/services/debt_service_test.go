package services

import (
	"context"
	"testing"
	"time"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDebtRepo struct {
	repository.DebtRepository
	debts   map[uint]*models.PreviousDebt
	created *models.PreviousDebt
	marked  []uint
	overdue []models.PreviousDebt
}

func newMockDebtRepo(debts ...*models.PreviousDebt) *mockDebtRepo {
	m := &mockDebtRepo{debts: make(map[uint]*models.PreviousDebt)}
	for _, d := range debts {
		m.debts[d.ID] = d
	}
	return m
}

func (m *mockDebtRepo) FindByID(ctx context.Context, id uint) (*models.PreviousDebt, error) {
	if d, ok := m.debts[id]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}

func (m *mockDebtRepo) FindByIDWithPlans(ctx context.Context, id uint) (*models.PreviousDebt, error) {
	return m.FindByID(ctx, id)
}

func (m *mockDebtRepo) Create(ctx context.Context, debt *models.PreviousDebt) error {
	debt.ID = uint(len(m.debts) + 1)
	m.debts[debt.ID] = debt
	m.created = debt
	return nil
}

func (m *mockDebtRepo) Update(ctx context.Context, debt *models.PreviousDebt) error {
	m.debts[debt.ID] = debt
	return nil
}

func (m *mockDebtRepo) FindOverdue(ctx context.Context) ([]models.PreviousDebt, error) {
	return m.overdue, nil
}

func (m *mockDebtRepo) MarkOverdue(ctx context.Context, ids []uint) error {
	m.marked = append(m.marked, ids...)
	return nil
}

type mockPlanRepo struct {
	repository.RepaymentPlanRepository
	plans        map[uint]*models.RepaymentPlan
	installments []models.RepaymentInstallment
	updated      *models.RepaymentPlan
}

func (m *mockPlanRepo) FindByID(ctx context.Context, id uint) (*models.RepaymentPlan, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (m *mockPlanRepo) CreateWithInstallments(ctx context.Context, plan *models.RepaymentPlan, installments []models.RepaymentInstallment) error {
	plan.ID = 1
	if m.plans == nil {
		m.plans = map[uint]*models.RepaymentPlan{}
	}
	m.plans[plan.ID] = plan
	m.installments = installments
	return nil
}

func (m *mockPlanRepo) Update(ctx context.Context, plan *models.RepaymentPlan) error {
	m.plans[plan.ID] = plan
	m.updated = plan
	return nil
}

type mockInstallmentRepo struct {
	repository.InstallmentRepository
	installments map[uint]*models.RepaymentInstallment
	pendingCount int64
	overdue      []models.RepaymentInstallment
	marked       []uint
}

func (m *mockInstallmentRepo) FindByID(ctx context.Context, id uint) (*models.RepaymentInstallment, error) {
	if i, ok := m.installments[id]; ok {
		return i, nil
	}
	return nil, ErrNotFound
}

func (m *mockInstallmentRepo) Update(ctx context.Context, installment *models.RepaymentInstallment) error {
	m.installments[installment.ID] = installment
	return nil
}

func (m *mockInstallmentRepo) CountPendingByPlan(ctx context.Context, planID uint) (int64, error) {
	return m.pendingCount, nil
}

func (m *mockInstallmentRepo) FindOverdue(ctx context.Context) ([]models.RepaymentInstallment, error) {
	return m.overdue, nil
}

func (m *mockInstallmentRepo) MarkOverdue(ctx context.Context, ids []uint) error {
	m.marked = append(m.marked, ids...)
	return nil
}

func newTestDebtService(repo *mockDebtRepo, planRepo *mockPlanRepo, instRepo *mockInstallmentRepo, notifRepo *mockNotificationRepo) *DebtService {
	userRepo := &mockUserRepo{
		mockFindByRole: func(ctx context.Context, role string) ([]models.User, error) {
			return []models.User{{ID: 1, Role: role}}, nil
		},
	}
	notificationSvc := NewNotificationService(notifRepo, userRepo)
	return NewDebtService(repo, planRepo, instRepo, &mockSequenceRepo{}, notificationSvc, NewAuditService(nil))
}

func TestDebtService_CreateDebt(t *testing.T) {
	repo := newMockDebtRepo()
	svc := newTestDebtService(repo, &mockPlanRepo{}, &mockInstallmentRepo{}, &mockNotificationRepo{})

	input := &CreateDebtInput{
		Creditor:       "Fuel supplier",
		OriginalAmount: decimal.NewFromInt(90000),
		Currency:       models.CurrencyYER,
		DebtDate:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	debt, err := svc.CreateDebt(context.Background(), input, financeOfficer(), "", "")
	require.NoError(t, err)

	assert.Contains(t, debt.DebtNumber, "DBT-")
	assert.Equal(t, models.DebtStatusActive, debt.Status)
	assert.True(t, debt.RemainingAmount.Equal(debt.OriginalAmount))
}

func TestDebtService_CreateDebt_Forbidden(t *testing.T) {
	svc := newTestDebtService(newMockDebtRepo(), &mockPlanRepo{}, &mockInstallmentRepo{}, &mockNotificationRepo{})

	input := &CreateDebtInput{
		Creditor:       "Vendor",
		OriginalAmount: decimal.NewFromInt(100),
		Currency:       models.CurrencyYER,
		DebtDate:       time.Now(),
	}

	_, err := svc.CreateDebt(context.Background(), input, commander(), "", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateDebt(context.Background(), input, auditor(), "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDebtService_CreatePlan_GeneratesSchedule(t *testing.T) {
	debt := &models.PreviousDebt{ID: 1, DebtNumber: "DBT-2026-001", Currency: models.CurrencyUSD, Status: models.DebtStatusActive}
	repo := newMockDebtRepo(debt)
	planRepo := &mockPlanRepo{}
	svc := newTestDebtService(repo, planRepo, &mockInstallmentRepo{}, &mockNotificationRepo{})

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	input := &CreatePlanInput{
		TotalInstallments: 4,
		InstallmentAmount: decimal.NewFromInt(250),
		StartDate:         start,
		Frequency:         models.PlanFrequencyQuarterly,
	}

	plan, err := svc.CreatePlan(context.Background(), 1, input, financeOfficer(), "", "")
	require.NoError(t, err)

	assert.Contains(t, plan.PlanNumber, "PLN-")
	assert.Equal(t, models.CurrencyUSD, plan.Currency)
	require.Len(t, planRepo.installments, 4)

	// Quarterly installments land three months apart
	for i, inst := range planRepo.installments {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, start.AddDate(0, 3*i, 0), inst.DueDate)
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
	}
}

func TestDebtService_CreatePlan_Validation(t *testing.T) {
	debt := &models.PreviousDebt{ID: 1, Currency: models.CurrencyYER}
	svc := newTestDebtService(newMockDebtRepo(debt), &mockPlanRepo{}, &mockInstallmentRepo{}, &mockNotificationRepo{})

	base := CreatePlanInput{
		TotalInstallments: 6,
		InstallmentAmount: decimal.NewFromInt(100),
		StartDate:         time.Now(),
		Frequency:         models.PlanFrequencyMonthly,
	}

	t.Run("zero installments", func(t *testing.T) {
		input := base
		input.TotalInstallments = 0
		_, err := svc.CreatePlan(context.Background(), 1, &input, financeOfficer(), "", "")
		assert.Error(t, err)
	})

	t.Run("unknown frequency", func(t *testing.T) {
		input := base
		input.Frequency = "weekly"
		_, err := svc.CreatePlan(context.Background(), 1, &input, financeOfficer(), "", "")
		assert.Error(t, err)
	})

	t.Run("zero amount", func(t *testing.T) {
		input := base
		input.InstallmentAmount = decimal.Zero
		_, err := svc.CreatePlan(context.Background(), 1, &input, financeOfficer(), "", "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestDebtService_MarkInstallmentPaid(t *testing.T) {
	debt := &models.PreviousDebt{ID: 1, DebtNumber: "DBT-2026-001", RemainingAmount: decimal.NewFromInt(500), Status: models.DebtStatusActive}
	plan := &models.RepaymentPlan{ID: 1, DebtID: 1, PlanNumber: "PLN-2026-001", Status: models.PlanStatusActive}
	installment := &models.RepaymentInstallment{ID: 1, PlanID: 1, InstallmentNumber: 1, Amount: decimal.NewFromInt(200), Status: models.InstallmentStatusPending}

	repo := newMockDebtRepo(debt)
	planRepo := &mockPlanRepo{plans: map[uint]*models.RepaymentPlan{1: plan}}
	instRepo := &mockInstallmentRepo{installments: map[uint]*models.RepaymentInstallment{1: installment}, pendingCount: 2}
	svc := newTestDebtService(repo, planRepo, instRepo, &mockNotificationRepo{})

	ref := "TRX-42"
	paid, err := svc.MarkInstallmentPaid(context.Background(), 1, &ref, financeOfficer(), "", "")
	require.NoError(t, err)

	assert.Equal(t, models.InstallmentStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidDate)
	assert.True(t, debt.RemainingAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, models.DebtStatusActive, debt.Status)
	assert.Equal(t, models.PlanStatusActive, plan.Status)
}

func TestDebtService_MarkInstallmentPaid_ClosesDebtAndPlan(t *testing.T) {
	debt := &models.PreviousDebt{ID: 1, RemainingAmount: decimal.NewFromInt(150), Status: models.DebtStatusActive}
	plan := &models.RepaymentPlan{ID: 1, DebtID: 1, Status: models.PlanStatusActive}
	installment := &models.RepaymentInstallment{ID: 1, PlanID: 1, Amount: decimal.NewFromInt(200), Status: models.InstallmentStatusOverdue}

	repo := newMockDebtRepo(debt)
	planRepo := &mockPlanRepo{plans: map[uint]*models.RepaymentPlan{1: plan}}
	instRepo := &mockInstallmentRepo{installments: map[uint]*models.RepaymentInstallment{1: installment}, pendingCount: 0}
	svc := newTestDebtService(repo, planRepo, instRepo, &mockNotificationRepo{})

	_, err := svc.MarkInstallmentPaid(context.Background(), 1, nil, financeOfficer(), "", "")
	require.NoError(t, err)

	// Overpayment clamps to zero and settles the debt
	assert.True(t, debt.RemainingAmount.IsZero())
	assert.Equal(t, models.DebtStatusPaid, debt.Status)
	assert.Equal(t, models.PlanStatusCompleted, plan.Status)
}

func TestDebtService_MarkInstallmentPaid_AlreadyPaid(t *testing.T) {
	installment := &models.RepaymentInstallment{ID: 1, PlanID: 1, Status: models.InstallmentStatusPaid}
	instRepo := &mockInstallmentRepo{installments: map[uint]*models.RepaymentInstallment{1: installment}}
	svc := newTestDebtService(newMockDebtRepo(), &mockPlanRepo{}, instRepo, &mockNotificationRepo{})

	_, err := svc.MarkInstallmentPaid(context.Background(), 1, nil, financeOfficer(), "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDebtService_FlagOverdue(t *testing.T) {
	repo := newMockDebtRepo()
	repo.overdue = []models.PreviousDebt{{ID: 3}}
	instRepo := &mockInstallmentRepo{overdue: []models.RepaymentInstallment{{ID: 7}, {ID: 8}}}
	notifRepo := &mockNotificationRepo{}
	svc := newTestDebtService(repo, &mockPlanRepo{}, instRepo, notifRepo)

	err := svc.FlagOverdue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []uint{7, 8}, instRepo.marked)
	assert.Equal(t, []uint{3}, repo.marked)
	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, models.NotificationTypeSystem, notifRepo.created[0].NotificationType)
}
