package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
)

// ReportService renders printable documents for the finance office
type ReportService struct {
	orderRepo      repository.OrderRepository
	allocationRepo repository.AllocationRepository
}

func NewReportService(orderRepo repository.OrderRepository, allocationRepo repository.AllocationRepository) *ReportService {
	return &ReportService{
		orderRepo:      orderRepo,
		allocationRepo: allocationRepo,
	}
}

// OrderReceiptPDF renders a disbursement order receipt
func (s *ReportService) OrderReceiptPDF(ctx context.Context, id uint) ([]byte, string, error) {
	order, err := s.orderRepo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Disbursement Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, order.OrderNumber)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Date:")
	pdf.Cell(40, 8, order.OrderDate.Format("2006-01-02"))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Beneficiary:")
	pdf.Cell(40, 8, order.Beneficiary)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Purpose:")
	pdf.Cell(40, 8, order.Purpose)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Amount:")
	pdf.Cell(40, 8, fmt.Sprintf("%s %s", order.Amount.StringFixed(2), order.Currency))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Order type:")
	pdf.Cell(40, 8, order.OrderType)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Status:")
	pdf.Cell(40, 8, order.Status)
	pdf.Ln(6)

	if order.Creator != nil {
		pdf.Cell(60, 8, "Created by:")
		pdf.Cell(40, 8, order.Creator.FullName)
		pdf.Ln(6)
	}

	if order.ApprovedBy != nil {
		pdf.Cell(60, 8, "Approved by:")
		pdf.Cell(40, 8, *order.ApprovedBy)
		pdf.Ln(6)
		if order.ApprovedAt != nil {
			pdf.Cell(60, 8, "Approved at:")
			pdf.Cell(40, 8, order.ApprovedAt.Format("2006-01-02 15:04"))
			pdf.Ln(6)
		}
	}

	if order.PaidAt != nil {
		pdf.Cell(60, 8, "Paid at:")
		pdf.Cell(40, 8, order.PaidAt.Format("2006-01-02 15:04"))
		pdf.Ln(6)
	}

	pdf.Ln(16)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(40, 8, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("receipt_%s.pdf", order.OrderNumber)
	return buf.Bytes(), filename, nil
}

// SummaryReportPDF renders the financial summary as a one-page report
func (s *ReportService) SummaryReportPDF(ctx context.Context, summary *models.FinancialSummary, currency string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Financial Summary")
	pdf.Ln(12)

	if currency != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(60, 8, "Currency:")
		pdf.Cell(40, 8, currency)
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Total allocations:")
	pdf.Cell(40, 8, summary.TotalAllocations.StringFixed(2))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Total orders:")
	pdf.Cell(40, 8, summary.TotalOrders.StringFixed(2))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Current balance:")
	pdf.Cell(40, 8, summary.CurrentBalance.StringFixed(2))
	pdf.Ln(10)

	pdf.Cell(60, 8, "Pending orders:")
	pdf.Cell(40, 8, fmt.Sprintf("%d", summary.PendingOrders))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Approved orders:")
	pdf.Cell(40, 8, fmt.Sprintf("%d", summary.ApprovedOrders))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Paid orders:")
	pdf.Cell(40, 8, fmt.Sprintf("%d", summary.PaidOrders))
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("summary_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
