package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderExportRepo struct {
	mockOrderRepo
	all []models.Order
}

func (m *mockOrderExportRepo) FindAll(ctx context.Context) ([]models.Order, error) {
	return m.all, nil
}

type mockAllocationExportRepo struct {
	mockAllocationRepo
	all []models.Allocation
}

func (m *mockAllocationExportRepo) FindAll(ctx context.Context) ([]models.Allocation, error) {
	return m.all, nil
}

func TestExportService_ExportOrdersCSV(t *testing.T) {
	approver := "Unit Commander"
	paidAt := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	orderRepo := &mockOrderExportRepo{all: []models.Order{
		{
			OrderNumber: "ORD-2026-001",
			OrderDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Beneficiary: "Supply vendor",
			Purpose:     "Fuel purchase",
			Amount:      decimal.NewFromInt(5000),
			Currency:    models.CurrencyYER,
			Status:      models.OrderStatusPaid,
			OrderType:   models.OrderTypeWritten,
			ApprovedBy:  &approver,
			PaidAt:      &paidAt,
		},
		{
			OrderNumber: "ORD-2026-002",
			OrderDate:   time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
			Beneficiary: "Contractor",
			Purpose:     "Repairs",
			Amount:      decimal.NewFromFloat(1250.50),
			Currency:    models.CurrencyUSD,
			Status:      models.OrderStatusPending,
			OrderType:   models.OrderTypeVerbal,
		},
	}}
	svc := NewExportService(&mockAllocationExportRepo{}, orderRepo, NewAuditService(nil))

	data, filename, err := svc.ExportOrdersCSV(context.Background(), auditor(), "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "orders_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Order Number", records[0][0])
	assert.Equal(t, []string{"ORD-2026-001", "2026-08-01", "Supply vendor", "Fuel purchase", "5000.00", "YER", "paid", "written", "Unit Commander", "2026-08-10"}, records[1])
	assert.Equal(t, "1250.50", records[2][4])
	assert.Equal(t, "", records[2][8])
	assert.Equal(t, "", records[2][9])
}

func TestExportService_ExportAllocationsCSV(t *testing.T) {
	notes := "Q3 budget"
	allocRepo := &mockAllocationExportRepo{all: []models.Allocation{
		{
			ReferenceNumber: "ALC-2026-001",
			ReceivedDate:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			Source:          "Ministry of Defense",
			Amount:          decimal.NewFromInt(1000000),
			Currency:        models.CurrencyYER,
			Notes:           &notes,
		},
	}}
	svc := NewExportService(allocRepo, &mockOrderExportRepo{}, NewAuditService(nil))

	data, filename, err := svc.ExportAllocationsCSV(context.Background(), financeOfficer(), "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"ALC-2026-001", "2026-07-01", "Ministry of Defense", "1000000.00", "YER", "Q3 budget"}, records[1])
}

func TestExportService_ExportOrdersXLSX(t *testing.T) {
	orderRepo := &mockOrderExportRepo{all: []models.Order{
		{
			OrderNumber: "ORD-2026-001",
			OrderDate:   time.Now(),
			Beneficiary: "Vendor",
			Purpose:     "Supplies",
			Amount:      decimal.NewFromInt(100),
			Currency:    models.CurrencyYER,
			Status:      models.OrderStatusPending,
			OrderType:   models.OrderTypeWritten,
		},
	}}
	svc := NewExportService(&mockAllocationExportRepo{}, orderRepo, NewAuditService(nil))

	data, filename, err := svc.ExportOrdersXLSX(context.Background(), commander(), "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))
	// XLSX files are zip archives
	assert.Equal(t, "PK", string(data[:2]))
}
