package services

import (
	"context"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
)

// SummaryService recomputes the financial summary from the allocation
// and order ledgers on every request. Nothing here is ever stored.
type SummaryService struct {
	allocationRepo repository.AllocationRepository
	orderRepo      repository.OrderRepository
}

func NewSummaryService(allocationRepo repository.AllocationRepository, orderRepo repository.OrderRepository) *SummaryService {
	return &SummaryService{
		allocationRepo: allocationRepo,
		orderRepo:      orderRepo,
	}
}

// GetSummary aggregates totals and order status counts, optionally
// narrowed by currency and date range. All orders count toward the
// total regardless of status.
func (s *SummaryService) GetSummary(ctx context.Context, filter *repository.SummaryFilter) (*models.FinancialSummary, error) {
	totalAllocations, err := s.allocationRepo.SumAmounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalOrders, err := s.orderRepo.SumAmounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts, err := s.orderRepo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.FinancialSummary{
		TotalAllocations: totalAllocations,
		TotalOrders:      totalOrders,
		CurrentBalance:   totalAllocations.Sub(totalOrders),
		PendingOrders:    counts[models.OrderStatusPending],
		ApprovedOrders:   counts[models.OrderStatusApproved],
		PaidOrders:       counts[models.OrderStatusPaid],
	}, nil
}
