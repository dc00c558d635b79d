package repository

import (
	"context"
	"errors"

	"github.com/milfin/milfin-api/internal/models"
	"gorm.io/gorm"
)

// DebtRepository defines the interface for previous debt data access
type DebtRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PreviousDebt, error)
	FindByIDWithPlans(ctx context.Context, id uint) (*models.PreviousDebt, error)
	Create(ctx context.Context, debt *models.PreviousDebt) error
	Update(ctx context.Context, debt *models.PreviousDebt) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.PreviousDebt, int64, error)
	FindOverdue(ctx context.Context) ([]models.PreviousDebt, error)
	MarkOverdue(ctx context.Context, ids []uint) error
}

type debtRepository struct {
	db *gorm.DB
}

// NewDebtRepository creates a new debt repository
func NewDebtRepository(db *gorm.DB) DebtRepository {
	return &debtRepository{db: db}
}

func (r *debtRepository) FindByID(ctx context.Context, id uint) (*models.PreviousDebt, error) {
	var debt models.PreviousDebt
	err := r.db.WithContext(ctx).
		Preload("Creator").
		First(&debt, id).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *debtRepository) FindByIDWithPlans(ctx context.Context, id uint) (*models.PreviousDebt, error) {
	var debt models.PreviousDebt
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Plans", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Plans.Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		First(&debt, id).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *debtRepository) Create(ctx context.Context, debt *models.PreviousDebt) error {
	if err := r.db.WithContext(ctx).Create(debt).Error; err != nil {
		if isDuplicateKeyError(err, "idx_previous_debts_debt_number") {
			return errors.New("a debt with this number already exists")
		}
		return err
	}
	return nil
}

func (r *debtRepository) Update(ctx context.Context, debt *models.PreviousDebt) error {
	return r.db.WithContext(ctx).Save(debt).Error
}

func (r *debtRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PreviousDebt{}, id).Error
}

func (r *debtRepository) List(ctx context.Context, query *ListQuery) ([]models.PreviousDebt, int64, error) {
	var debts []models.PreviousDebt
	var total int64

	db := r.db.WithContext(ctx).Model(&models.PreviousDebt{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("debt_number ILIKE ? OR creditor ILIKE ? OR description ILIKE ?",
			search, search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["currency"] != "" {
		db = db.Where("currency = ?", query.Filters["currency"])
	}
	if query.Filters["priority"] != "" {
		db = db.Where("priority = ?", query.Filters["priority"])
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("debt_date DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Creator").Find(&debts).Error
	return debts, total, err
}

func (r *debtRepository) FindOverdue(ctx context.Context) ([]models.PreviousDebt, error) {
	var debts []models.PreviousDebt
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date < CURRENT_DATE", models.DebtStatusActive).
		Find(&debts).Error
	return debts, err
}

func (r *debtRepository) MarkOverdue(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.PreviousDebt{}).
		Where("id IN ?", ids).
		Update("status", models.DebtStatusOverdue).Error
}

// RepaymentPlanRepository defines the interface for repayment plan data access
type RepaymentPlanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.RepaymentPlan, error)
	FindByIDWithInstallments(ctx context.Context, id uint) (*models.RepaymentPlan, error)
	FindByDebt(ctx context.Context, debtID uint) ([]models.RepaymentPlan, error)
	Create(ctx context.Context, plan *models.RepaymentPlan) error
	CreateWithInstallments(ctx context.Context, plan *models.RepaymentPlan, installments []models.RepaymentInstallment) error
	Update(ctx context.Context, plan *models.RepaymentPlan) error
	Delete(ctx context.Context, id uint) error
}

type repaymentPlanRepository struct {
	db *gorm.DB
}

// NewRepaymentPlanRepository creates a new repayment plan repository
func NewRepaymentPlanRepository(db *gorm.DB) RepaymentPlanRepository {
	return &repaymentPlanRepository{db: db}
}

func (r *repaymentPlanRepository) FindByID(ctx context.Context, id uint) (*models.RepaymentPlan, error) {
	var plan models.RepaymentPlan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repaymentPlanRepository) FindByIDWithInstallments(ctx context.Context, id uint) (*models.RepaymentPlan, error) {
	var plan models.RepaymentPlan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repaymentPlanRepository) FindByDebt(ctx context.Context, debtID uint) ([]models.RepaymentPlan, error) {
	var plans []models.RepaymentPlan
	err := r.db.WithContext(ctx).
		Where("debt_id = ?", debtID).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		Order("created_at ASC").
		Find(&plans).Error
	return plans, err
}

func (r *repaymentPlanRepository) Create(ctx context.Context, plan *models.RepaymentPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// CreateWithInstallments persists a plan and its schedule in one
// transaction so a failed insert never leaves a half-built plan
func (r *repaymentPlanRepository) CreateWithInstallments(ctx context.Context, plan *models.RepaymentPlan, installments []models.RepaymentInstallment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		for i := range installments {
			installments[i].PlanID = plan.ID
		}
		return tx.Create(&installments).Error
	})
}

func (r *repaymentPlanRepository) Update(ctx context.Context, plan *models.RepaymentPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *repaymentPlanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&models.RepaymentInstallment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.RepaymentPlan{}, id).Error
	})
}

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.RepaymentInstallment, error)
	FindByPlan(ctx context.Context, planID uint) ([]models.RepaymentInstallment, error)
	Update(ctx context.Context, installment *models.RepaymentInstallment) error
	FindOverdue(ctx context.Context) ([]models.RepaymentInstallment, error)
	MarkOverdue(ctx context.Context, ids []uint) error
	CountPendingByPlan(ctx context.Context, planID uint) (int64, error)
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.RepaymentInstallment, error) {
	var installment models.RepaymentInstallment
	err := r.db.WithContext(ctx).First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByPlan(ctx context.Context, planID uint) ([]models.RepaymentInstallment, error) {
	var installments []models.RepaymentInstallment
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("installment_number ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) Update(ctx context.Context, installment *models.RepaymentInstallment) error {
	return r.db.WithContext(ctx).Save(installment).Error
}

func (r *installmentRepository) FindOverdue(ctx context.Context) ([]models.RepaymentInstallment, error) {
	var installments []models.RepaymentInstallment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < CURRENT_DATE", models.InstallmentStatusPending).
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) MarkOverdue(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.RepaymentInstallment{}).
		Where("id IN ?", ids).
		Update("status", models.InstallmentStatusOverdue).Error
}

func (r *installmentRepository) CountPendingByPlan(ctx context.Context, planID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RepaymentInstallment{}).
		Where("plan_id = ? AND status IN ?", planID,
			[]string{models.InstallmentStatusPending, models.InstallmentStatusOverdue}).
		Count(&count).Error
	return count, err
}
