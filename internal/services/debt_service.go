package services

import (
	"context"
	"fmt"
	"time"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/shopspring/decimal"
)

// DebtService manages the legacy-debt ledger: debts, repayment plans
// and their installment schedules. Debt figures never feed the
// financial summary.
type DebtService struct {
	repo            repository.DebtRepository
	planRepo        repository.RepaymentPlanRepository
	installmentRepo repository.InstallmentRepository
	seqRepo         repository.SequenceRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
}

func NewDebtService(
	repo repository.DebtRepository,
	planRepo repository.RepaymentPlanRepository,
	installmentRepo repository.InstallmentRepository,
	seqRepo repository.SequenceRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
) *DebtService {
	return &DebtService{
		repo:            repo,
		planRepo:        planRepo,
		installmentRepo: installmentRepo,
		seqRepo:         seqRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
	}
}

// CreateDebtInput carries the fields of a new previous debt
type CreateDebtInput struct {
	Creditor       string
	OriginalAmount decimal.Decimal
	Currency       string
	DebtDate       time.Time
	DueDate        *time.Time
	Description    string
	Priority       *string
	Notes          *string
}

// UpdateDebtInput carries the mutable fields of a debt
type UpdateDebtInput struct {
	Creditor    *string
	DueDate     *time.Time
	Description *string
	Status      *string
	Priority    *string
	Notes       *string
}

// CreatePlanInput carries the fields of a new repayment plan
type CreatePlanInput struct {
	TotalInstallments int
	InstallmentAmount decimal.Decimal
	StartDate         time.Time
	Frequency         string
	Notes             *string
}

func (s *DebtService) FindByID(ctx context.Context, id uint) (*models.PreviousDebt, error) {
	return s.repo.FindByIDWithPlans(ctx, id)
}

func (s *DebtService) List(ctx context.Context, query *repository.ListQuery) ([]models.PreviousDebt, int64, error) {
	return s.repo.List(ctx, query)
}

// CreateDebt registers a legacy debt with an atomically reserved number
func (s *DebtService) CreateDebt(ctx context.Context, input *CreateDebtInput, actor *models.User, ip, userAgent string) (*models.PreviousDebt, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}
	if !input.OriginalAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidCurrency(input.Currency) {
		return nil, ErrInvalidCurrency
	}

	year := time.Now().UTC().Year()
	debtNumber, err := s.seqRepo.NextDocumentNumber(ctx, models.SequenceScopeDebt, year)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve debt number: %w", err)
	}

	debt := &models.PreviousDebt{
		DebtNumber:      debtNumber,
		Creditor:        input.Creditor,
		OriginalAmount:  input.OriginalAmount,
		RemainingAmount: input.OriginalAmount,
		Currency:        input.Currency,
		DebtDate:        input.DebtDate,
		DueDate:         input.DueDate,
		Description:     input.Description,
		Status:          models.DebtStatusActive,
		Priority:        input.Priority,
		Notes:           input.Notes,
		CreatorID:       &actor.ID,
	}

	if err := s.repo.Create(ctx, debt); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionCreate, models.AuditEntitySystem, debt.ID,
		fmt.Sprintf("Previous debt %s registered. Creditor: %s, amount: %s %s", debt.DebtNumber, debt.Creditor, debt.OriginalAmount.StringFixed(2), debt.Currency), ip, userAgent)

	return debt, nil
}

// UpdateDebt applies changes to a debt
func (s *DebtService) UpdateDebt(ctx context.Context, id uint, input *UpdateDebtInput, actor *models.User, ip, userAgent string) (*models.PreviousDebt, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}

	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Creditor != nil {
		debt.Creditor = *input.Creditor
	}
	if input.DueDate != nil {
		debt.DueDate = input.DueDate
	}
	if input.Description != nil {
		debt.Description = *input.Description
	}
	if input.Status != nil {
		debt.Status = *input.Status
	}
	if input.Priority != nil {
		debt.Priority = input.Priority
	}
	if input.Notes != nil {
		debt.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, debt); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntitySystem, debt.ID,
		fmt.Sprintf("Previous debt %s updated", debt.DebtNumber), ip, userAgent)

	return debt, nil
}

// DeleteDebt removes a debt and its plans permanently
func (s *DebtService) DeleteDebt(ctx context.Context, id uint, actor *models.User, ip, userAgent string) error {
	if !actor.IsFinanceOfficer() {
		return ErrForbidden
	}

	debt, err := s.repo.FindByIDWithPlans(ctx, id)
	if err != nil {
		return err
	}

	for _, plan := range debt.Plans {
		if err := s.planRepo.Delete(ctx, plan.ID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionDelete, models.AuditEntitySystem, debt.ID,
		fmt.Sprintf("Previous debt %s deleted. Creditor: %s", debt.DebtNumber, debt.Creditor), ip, userAgent)

	return nil
}

// CreatePlan schedules a repayment plan against a debt, generating the
// full installment schedule at the plan's frequency
func (s *DebtService) CreatePlan(ctx context.Context, debtID uint, input *CreatePlanInput, actor *models.User, ip, userAgent string) (*models.RepaymentPlan, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}
	if input.TotalInstallments <= 0 {
		return nil, fmt.Errorf("total installments must be greater than 0")
	}
	if !input.InstallmentAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidPlanFrequency(input.Frequency) {
		return nil, fmt.Errorf("unknown plan frequency: %s", input.Frequency)
	}

	debt, err := s.repo.FindByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	year := time.Now().UTC().Year()
	planNumber, err := s.seqRepo.NextDocumentNumber(ctx, models.SequenceScopePlan, year)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve plan number: %w", err)
	}

	plan := &models.RepaymentPlan{
		DebtID:            debt.ID,
		PlanNumber:        planNumber,
		TotalInstallments: input.TotalInstallments,
		InstallmentAmount: input.InstallmentAmount,
		Currency:          debt.Currency,
		StartDate:         input.StartDate,
		Frequency:         input.Frequency,
		Status:            models.PlanStatusActive,
		Notes:             input.Notes,
		CreatorID:         &actor.ID,
	}

	months := models.FrequencyMonths(input.Frequency)
	installments := make([]models.RepaymentInstallment, input.TotalInstallments)
	for i := 0; i < input.TotalInstallments; i++ {
		installments[i] = models.RepaymentInstallment{
			InstallmentNumber: i + 1,
			Amount:            input.InstallmentAmount,
			Currency:          debt.Currency,
			DueDate:           input.StartDate.AddDate(0, months*i, 0),
			Status:            models.InstallmentStatusPending,
		}
	}

	if err := s.planRepo.CreateWithInstallments(ctx, plan, installments); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionCreate, models.AuditEntitySystem, plan.ID,
		fmt.Sprintf("Repayment plan %s created for debt %s: %d installments of %s %s", plan.PlanNumber, debt.DebtNumber, plan.TotalInstallments, plan.InstallmentAmount.StringFixed(2), plan.Currency), ip, userAgent)

	return plan, nil
}

func (s *DebtService) FindPlan(ctx context.Context, id uint) (*models.RepaymentPlan, error) {
	return s.planRepo.FindByIDWithInstallments(ctx, id)
}

// MarkInstallmentPaid settles an installment, decrements the debt's
// remaining amount and closes out the debt and plan when done
func (s *DebtService) MarkInstallmentPaid(ctx context.Context, id uint, paymentReference *string, actor *models.User, ip, userAgent string) (*models.RepaymentInstallment, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}

	installment, err := s.installmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !installment.MayMarkPaid() {
		return nil, ErrInvalidState
	}

	now := time.Now()
	installment.Status = models.InstallmentStatusPaid
	installment.PaidDate = &now
	installment.PaymentReference = paymentReference

	if err := s.installmentRepo.Update(ctx, installment); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByID(ctx, installment.PlanID)
	if err != nil {
		return nil, err
	}

	debt, err := s.repo.FindByID(ctx, plan.DebtID)
	if err != nil {
		return nil, err
	}

	debt.RemainingAmount = debt.RemainingAmount.Sub(installment.Amount)
	if debt.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		debt.RemainingAmount = decimal.Zero
		debt.Status = models.DebtStatusPaid
	}
	if err := s.repo.Update(ctx, debt); err != nil {
		return nil, err
	}

	pending, err := s.installmentRepo.CountPendingByPlan(ctx, plan.ID)
	if err == nil && pending == 0 {
		plan.Status = models.PlanStatusCompleted
		s.planRepo.Update(ctx, plan)
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntitySystem, installment.ID,
		fmt.Sprintf("Installment %d of plan %s paid: %s %s. Debt %s remaining: %s", installment.InstallmentNumber, plan.PlanNumber, installment.Amount.StringFixed(2), installment.Currency, debt.DebtNumber, debt.RemainingAmount.StringFixed(2)), ip, userAgent)

	return installment, nil
}

// FlagOverdue marks past-due pending installments and past-due active
// debts as overdue, then notifies the finance role. Runs on a schedule.
func (s *DebtService) FlagOverdue(ctx context.Context) error {
	installments, err := s.installmentRepo.FindOverdue(ctx)
	if err != nil {
		return err
	}
	if len(installments) > 0 {
		ids := make([]uint, len(installments))
		for i, inst := range installments {
			ids[i] = inst.ID
		}
		if err := s.installmentRepo.MarkOverdue(ctx, ids); err != nil {
			return err
		}
	}

	debts, err := s.repo.FindOverdue(ctx)
	if err != nil {
		return err
	}
	if len(debts) > 0 {
		ids := make([]uint, len(debts))
		for i, d := range debts {
			ids[i] = d.ID
		}
		if err := s.repo.MarkOverdue(ctx, ids); err != nil {
			return err
		}
	}

	if len(installments) > 0 || len(debts) > 0 {
		return s.notificationSvc.NotifyRole(ctx, models.RoleFinanceOfficer,
			"Overdue repayments",
			fmt.Sprintf("%d installment(s) and %d debt(s) are past due", len(installments), len(debts)),
			models.NotificationTypeSystem, nil)
	}
	return nil
}
