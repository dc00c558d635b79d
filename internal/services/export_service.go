package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the allocation and order ledgers as CSV or
// XLSX downloads
type ExportService struct {
	allocationRepo repository.AllocationRepository
	orderRepo      repository.OrderRepository
	auditSvc       *AuditService
}

func NewExportService(allocationRepo repository.AllocationRepository, orderRepo repository.OrderRepository, auditSvc *AuditService) *ExportService {
	return &ExportService{
		allocationRepo: allocationRepo,
		orderRepo:      orderRepo,
		auditSvc:       auditSvc,
	}
}

// ExportOrdersCSV writes all orders to CSV
func (s *ExportService) ExportOrdersCSV(ctx context.Context, actor *models.User, ip, userAgent string) ([]byte, string, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Order Number", "Date", "Beneficiary", "Purpose", "Amount", "Currency", "Status", "Type", "Approved By", "Paid At"})
	for _, o := range orders {
		approvedBy := ""
		if o.ApprovedBy != nil {
			approvedBy = *o.ApprovedBy
		}
		paidAt := ""
		if o.PaidAt != nil {
			paidAt = o.PaidAt.Format("2006-01-02")
		}
		_ = writer.Write([]string{
			o.OrderNumber,
			o.OrderDate.Format("2006-01-02"),
			o.Beneficiary,
			o.Purpose,
			o.Amount.StringFixed(2),
			o.Currency,
			o.Status,
			o.OrderType,
			approvedBy,
			paidAt,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	s.logExport(ctx, actor, "orders", "csv", ip, userAgent)

	filename := fmt.Sprintf("orders_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportOrdersXLSX writes all orders to an XLSX workbook
func (s *ExportService) ExportOrdersXLSX(ctx context.Context, actor *models.User, ip, userAgent string) ([]byte, string, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Orders"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Order Number", "Date", "Beneficiary", "Purpose", "Amount", "Currency", "Status", "Type", "Approved By", "Paid At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, o := range orders {
		amount, _ := o.Amount.Float64()
		values := []interface{}{
			o.OrderNumber,
			o.OrderDate.Format("2006-01-02"),
			o.Beneficiary,
			o.Purpose,
			amount,
			o.Currency,
			o.Status,
			o.OrderType,
		}
		if o.ApprovedBy != nil {
			values = append(values, *o.ApprovedBy)
		} else {
			values = append(values, "")
		}
		if o.PaidAt != nil {
			values = append(values, o.PaidAt.Format("2006-01-02"))
		} else {
			values = append(values, "")
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	s.logExport(ctx, actor, "orders", "xlsx", ip, userAgent)

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportAllocationsCSV writes all allocations to CSV
func (s *ExportService) ExportAllocationsCSV(ctx context.Context, actor *models.User, ip, userAgent string) ([]byte, string, error) {
	allocations, err := s.allocationRepo.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Reference Number", "Received Date", "Source", "Amount", "Currency", "Notes"})
	for _, a := range allocations {
		notes := ""
		if a.Notes != nil {
			notes = *a.Notes
		}
		_ = writer.Write([]string{
			a.ReferenceNumber,
			a.ReceivedDate.Format("2006-01-02"),
			a.Source,
			a.Amount.StringFixed(2),
			a.Currency,
			notes,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	s.logExport(ctx, actor, "allocations", "csv", ip, userAgent)

	filename := fmt.Sprintf("allocations_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportAllocationsXLSX writes all allocations to an XLSX workbook
func (s *ExportService) ExportAllocationsXLSX(ctx context.Context, actor *models.User, ip, userAgent string) ([]byte, string, error) {
	allocations, err := s.allocationRepo.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Allocations"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Reference Number", "Received Date", "Source", "Amount", "Currency", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, a := range allocations {
		amount, _ := a.Amount.Float64()
		notes := ""
		if a.Notes != nil {
			notes = *a.Notes
		}
		values := []interface{}{
			a.ReferenceNumber,
			a.ReceivedDate.Format("2006-01-02"),
			a.Source,
			amount,
			a.Currency,
			notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	s.logExport(ctx, actor, "allocations", "xlsx", ip, userAgent)

	filename := fmt.Sprintf("allocations_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) logExport(ctx context.Context, actor *models.User, ledger, format, ip, userAgent string) {
	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionCreate, models.AuditEntitySystem, 0,
		fmt.Sprintf("Exported %s ledger as %s", ledger, format), ip, userAgent)
}
