package services

import (
	"context"
	"testing"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAllocationRepo struct {
	repository.AllocationRepository
	sum decimal.Decimal
}

func (m *mockAllocationRepo) SumAmounts(ctx context.Context, filter *repository.SummaryFilter) (decimal.Decimal, error) {
	return m.sum, nil
}

type mockOrderSummaryRepo struct {
	repository.OrderRepository
	sum    decimal.Decimal
	counts map[string]int64
}

func (m *mockOrderSummaryRepo) SumAmounts(ctx context.Context, filter *repository.SummaryFilter) (decimal.Decimal, error) {
	return m.sum, nil
}

func (m *mockOrderSummaryRepo) CountByStatus(ctx context.Context, filter *repository.SummaryFilter) (map[string]int64, error) {
	return m.counts, nil
}

func TestSummaryService_GetSummary(t *testing.T) {
	allocRepo := &mockAllocationRepo{sum: decimal.NewFromInt(1000000)}
	orderRepo := &mockOrderSummaryRepo{
		sum: decimal.NewFromInt(350000),
		counts: map[string]int64{
			models.OrderStatusPending:  4,
			models.OrderStatusApproved: 2,
			models.OrderStatusPaid:     7,
		},
	}
	svc := NewSummaryService(allocRepo, orderRepo)

	summary, err := svc.GetSummary(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, summary.TotalAllocations.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, summary.TotalOrders.Equal(decimal.NewFromInt(350000)))
	assert.True(t, summary.CurrentBalance.Equal(decimal.NewFromInt(650000)))
	assert.Equal(t, int64(4), summary.PendingOrders)
	assert.Equal(t, int64(2), summary.ApprovedOrders)
	assert.Equal(t, int64(7), summary.PaidOrders)
}

func TestSummaryService_GetSummary_NegativeBalance(t *testing.T) {
	allocRepo := &mockAllocationRepo{sum: decimal.NewFromInt(100)}
	orderRepo := &mockOrderSummaryRepo{sum: decimal.NewFromInt(250), counts: map[string]int64{}}
	svc := NewSummaryService(allocRepo, orderRepo)

	summary, err := svc.GetSummary(context.Background(), nil)
	require.NoError(t, err)

	// Orders may exceed allocations; the balance goes negative rather
	// than being clamped
	assert.True(t, summary.CurrentBalance.Equal(decimal.NewFromInt(-150)))
	assert.Equal(t, int64(0), summary.PendingOrders)
}
