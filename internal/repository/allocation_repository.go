package repository

import (
	"context"
	"errors"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationRepository defines the interface for allocation data access
type AllocationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Allocation, error)
	Create(ctx context.Context, allocation *models.Allocation) error
	Update(ctx context.Context, allocation *models.Allocation) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Allocation, int64, error)
	FindAll(ctx context.Context) ([]models.Allocation, error)
	SumAmounts(ctx context.Context, filter *SummaryFilter) (decimal.Decimal, error)
}

type allocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) FindByID(ctx context.Context, id uint) (*models.Allocation, error) {
	var allocation models.Allocation
	err := r.db.WithContext(ctx).
		Preload("Creator").
		First(&allocation, id).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *allocationRepository) Create(ctx context.Context, allocation *models.Allocation) error {
	if err := r.db.WithContext(ctx).Create(allocation).Error; err != nil {
		if isDuplicateKeyError(err, "idx_allocations_reference_number") {
			return errors.New("an allocation with this reference number already exists")
		}
		return err
	}
	return nil
}

func (r *allocationRepository) Update(ctx context.Context, allocation *models.Allocation) error {
	return r.db.WithContext(ctx).Save(allocation).Error
}

func (r *allocationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Allocation{}, id).Error
}

func (r *allocationRepository) List(ctx context.Context, query *ListQuery) ([]models.Allocation, int64, error) {
	var allocations []models.Allocation
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Allocation{})

	// Apply search
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("reference_number ILIKE ? OR source ILIKE ? OR COALESCE(notes, '') ILIKE ?",
			search, search, search)
	}

	// Apply currency filter
	if query.Filters["currency"] != "" {
		db = db.Where("currency = ?", query.Filters["currency"])
	}

	// Apply received date range filters
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("received_date >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		if len(val) == 10 { // YYYY-MM-DD
			val += " 23:59:59"
		}
		db = db.Where("received_date <= ?", val)
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting
	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("received_date DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Creator").Find(&allocations).Error
	return allocations, total, err
}

func (r *allocationRepository) FindAll(ctx context.Context) ([]models.Allocation, error) {
	var allocations []models.Allocation
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("received_date DESC").
		Find(&allocations).Error
	return allocations, err
}

func (r *allocationRepository) SumAmounts(ctx context.Context, filter *SummaryFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	db := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Select("COALESCE(SUM(amount), 0)")
	db = filter.apply(db, "received_date")
	err := db.Scan(&total).Error
	return total, err
}

// SummaryFilter narrows summary aggregation by currency and date range
type SummaryFilter struct {
	Currency  string
	StartDate string
	EndDate   string
}

// apply adds the filter's conditions to db, matching the date range
// against dateColumn
func (f *SummaryFilter) apply(db *gorm.DB, dateColumn string) *gorm.DB {
	if f == nil {
		return db
	}
	if f.Currency != "" {
		db = db.Where("currency = ?", f.Currency)
	}
	if f.StartDate != "" {
		db = db.Where(dateColumn+" >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		end := f.EndDate
		if len(end) == 10 {
			end += " 23:59:59"
		}
		db = db.Where(dateColumn+" <= ?", end)
	}
	return db
}
