package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for disbursement order data access
type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Order, int64, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindNeedingWrittenOrder(ctx context.Context) ([]models.Order, error)
	SumAmounts(ctx context.Context, filter *SummaryFilter) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, filter *SummaryFilter) (map[string]int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Joins("Creator").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateKeyError(err, "idx_orders_order_number") {
			return errors.New("an order with this order number already exists")
		}
		return err
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func (r *orderRepository) List(ctx context.Context, query *ListQuery) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Order{})

	// Apply status filter (single or comma-separated)
	if val := query.Filters["status"]; val != "" {
		if strings.Contains(val, ",") {
			statuses := strings.Split(val, ",")
			for i, s := range statuses {
				statuses[i] = strings.TrimSpace(s)
			}
			db = db.Where("orders.status IN ?", statuses)
		} else {
			db = db.Where("orders.status = ?", val)
		}
	}

	// Apply currency filter
	if query.Filters["currency"] != "" {
		db = db.Where("orders.currency = ?", query.Filters["currency"])
	}

	// Apply order type filter
	if query.Filters["order_type"] != "" {
		db = db.Where("orders.order_type = ?", query.Filters["order_type"])
	}

	// Apply needs_written_order filter
	if val := query.Filters["needs_written_order"]; val != "" {
		db = db.Where("orders.needs_written_order = ?", val == "true")
	}

	// Apply order date range filters
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("orders.order_date >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		if len(val) == 10 { // YYYY-MM-DD
			val += " 23:59:59"
		}
		db = db.Where("orders.order_date <= ?", val)
	}

	// Apply search
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("orders.order_number ILIKE ? OR orders.beneficiary ILIKE ? OR orders.purpose ILIKE ?",
			search, search, search)
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
		db = db.Order("orders.order_date DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Creator").Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) FindNeedingWrittenOrder(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("needs_written_order = ?", true).
		Preload("Creator").
		Order("order_date ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) SumAmounts(ctx context.Context, filter *SummaryFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	db := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(amount), 0)")
	db = filter.apply(db, "order_date")
	err := db.Scan(&total).Error
	return total, err
}

func (r *orderRepository) CountByStatus(ctx context.Context, filter *SummaryFilter) (map[string]int64, error) {
	db := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, count(*) as count")
	db = filter.apply(db, "order_date")

	rows, err := db.Group("status").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
