package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/milfin/milfin-api/internal/jobs"
	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/shopspring/decimal"
)

type AllocationService struct {
	repo            repository.AllocationRepository
	seqRepo         repository.SequenceRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewAllocationService(
	repo repository.AllocationRepository,
	seqRepo repository.SequenceRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *AllocationService {
	return &AllocationService{
		repo:            repo,
		seqRepo:         seqRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// CreateAllocationInput carries the fields of a new allocation
type CreateAllocationInput struct {
	ReceivedDate    time.Time
	Amount          decimal.Decimal
	Currency        string
	Source          string
	Notes           *string
	PreviousDebt    *decimal.Decimal
	AttachmentPaths []string
}

// UpdateAllocationInput carries the mutable fields of an allocation
type UpdateAllocationInput struct {
	ReceivedDate    *time.Time
	Amount          *decimal.Decimal
	Currency        *string
	Source          *string
	Notes           *string
	PreviousDebt    *decimal.Decimal
	AttachmentPaths []string
}

func (s *AllocationService) FindByID(ctx context.Context, id uint) (*models.Allocation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AllocationService) List(ctx context.Context, query *repository.ListQuery) ([]models.Allocation, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a funding allocation with an atomically reserved
// reference number
func (s *AllocationService) Create(ctx context.Context, input *CreateAllocationInput, actor *models.User, ip, userAgent string) (*models.Allocation, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidCurrency(input.Currency) {
		return nil, ErrInvalidCurrency
	}

	year := time.Now().UTC().Year()
	refNumber, err := s.seqRepo.NextDocumentNumber(ctx, models.SequenceScopeAllocation, year)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve reference number: %w", err)
	}

	allocation := &models.Allocation{
		ReferenceNumber: refNumber,
		ReceivedDate:    input.ReceivedDate,
		Amount:          input.Amount,
		Currency:        input.Currency,
		Source:          input.Source,
		Notes:           input.Notes,
		PreviousDebt:    input.PreviousDebt,
		CreatorID:       &actor.ID,
	}
	if len(input.AttachmentPaths) > 0 {
		data, _ := json.Marshal(input.AttachmentPaths)
		encoded := string(data)
		allocation.AttachmentPaths = &encoded
	}

	if err := s.repo.Create(ctx, allocation); err != nil {
		return nil, err
	}

	formatted := models.FormatAmount(allocation.Amount, allocation.Currency)
	link := allocationLink(allocation.ID)
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Dispatch(ctx, models.NotificationTypeAllocation, allocation.CreatorID,
			"New allocation received",
			fmt.Sprintf("Allocation %s of %s received from %s", allocation.ReferenceNumber, formatted, allocation.Source),
			link)
	})

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionCreate, models.AuditEntityAllocation, allocation.ID,
		fmt.Sprintf("Allocation %s created. Source: %s, amount: %s %s", allocation.ReferenceNumber, allocation.Source, allocation.Amount.StringFixed(2), allocation.Currency), ip, userAgent)

	return allocation, nil
}

// Update applies changes to an allocation
func (s *AllocationService) Update(ctx context.Context, id uint, input *UpdateAllocationInput, actor *models.User, ip, userAgent string) (*models.Allocation, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}

	allocation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		allocation.Amount = *input.Amount
	}
	if input.Currency != nil {
		if !models.IsValidCurrency(*input.Currency) {
			return nil, ErrInvalidCurrency
		}
		allocation.Currency = *input.Currency
	}
	if input.ReceivedDate != nil {
		allocation.ReceivedDate = *input.ReceivedDate
	}
	if input.Source != nil {
		allocation.Source = *input.Source
	}
	if input.Notes != nil {
		allocation.Notes = input.Notes
	}
	if input.PreviousDebt != nil {
		allocation.PreviousDebt = input.PreviousDebt
	}
	if input.AttachmentPaths != nil {
		if len(input.AttachmentPaths) == 0 {
			allocation.AttachmentPaths = nil
		} else {
			data, _ := json.Marshal(input.AttachmentPaths)
			encoded := string(data)
			allocation.AttachmentPaths = &encoded
		}
	}

	if err := s.repo.Update(ctx, allocation); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntityAllocation, allocation.ID,
		fmt.Sprintf("Allocation %s updated. Source: %s, amount: %s %s", allocation.ReferenceNumber, allocation.Source, allocation.Amount.StringFixed(2), allocation.Currency), ip, userAgent)

	return allocation, nil
}

// Delete removes an allocation permanently
func (s *AllocationService) Delete(ctx context.Context, id uint, actor *models.User, ip, userAgent string) error {
	if !actor.IsFinanceOfficer() {
		return ErrForbidden
	}

	allocation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionDelete, models.AuditEntityAllocation, allocation.ID,
		fmt.Sprintf("Allocation %s deleted. Source: %s, amount: %s %s", allocation.ReferenceNumber, allocation.Source, allocation.Amount.StringFixed(2), allocation.Currency), ip, userAgent)

	return nil
}

func allocationLink(id uint) *string {
	link := fmt.Sprintf("/allocations/%d", id)
	return &link
}
