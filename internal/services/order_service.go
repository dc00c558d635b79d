package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/milfin/milfin-api/internal/jobs"
	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/milfin/milfin-api/internal/statemachine"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	repo            repository.OrderRepository
	seqRepo         repository.SequenceRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewOrderService(
	repo repository.OrderRepository,
	seqRepo repository.SequenceRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *OrderService {
	return &OrderService{
		repo:            repo,
		seqRepo:         seqRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// CreateOrderInput carries the fields a caller may set on a new order
type CreateOrderInput struct {
	OrderDate       time.Time
	Amount          decimal.Decimal
	Currency        string
	Beneficiary     string
	Purpose         string
	OrderType       string
	Notes           *string
	PreviousDebt    *decimal.Decimal
	AttachmentPaths []string
}

// UpdateOrderInput carries the mutable fields of an existing order
type UpdateOrderInput struct {
	OrderDate       *time.Time
	Amount          *decimal.Decimal
	Currency        *string
	Beneficiary     *string
	Purpose         *string
	OrderType       *string
	Notes           *string
	PreviousDebt    *decimal.Decimal
	AttachmentPaths []string
}

// FindByID gets an order by ID
func (s *OrderService) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	return s.repo.FindByIDWithDetails(ctx, id)
}

func (s *OrderService) List(ctx context.Context, query *repository.ListQuery) ([]models.Order, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a new disbursement order. The order number is
// reserved atomically, the written-order flag is derived from type and
// attachments, and notifications plus an audit entry follow the write.
func (s *OrderService) Create(ctx context.Context, input *CreateOrderInput, actor *models.User, ip, userAgent string) (*models.Order, error) {
	if actor.IsAuditor() {
		return nil, ErrForbidden
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidCurrency(input.Currency) {
		return nil, ErrInvalidCurrency
	}
	if !models.IsValidOrderType(input.OrderType) {
		return nil, fmt.Errorf("unknown order type: %s", input.OrderType)
	}

	year := time.Now().UTC().Year()
	orderNumber, err := s.seqRepo.NextDocumentNumber(ctx, models.SequenceScopeOrder, year)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve order number: %w", err)
	}

	order := &models.Order{
		OrderNumber:  orderNumber,
		OrderDate:    input.OrderDate,
		Amount:       input.Amount,
		Currency:     input.Currency,
		Beneficiary:  input.Beneficiary,
		Purpose:      input.Purpose,
		Status:       models.OrderStatusPending,
		OrderType:    input.OrderType,
		Notes:        input.Notes,
		PreviousDebt: input.PreviousDebt,
		CreatorID:    &actor.ID,
	}
	setAttachments(order, input.AttachmentPaths)
	order.NeedsWrittenOrder = order.ComputeNeedsWrittenOrder()

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	// Side effects are non-fatal: the order is already persisted
	formatted := models.FormatAmount(order.Amount, order.Currency)
	link := orderLink(order.ID)
	needsWritten := order.NeedsWrittenOrder
	isFinance := actor.IsFinanceOfficer()
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		if needsWritten && isFinance {
			s.notificationSvc.Dispatch(ctx, models.NotificationTypeSystem, order.CreatorID,
				"Written order required",
				fmt.Sprintf("Order %s was entered as %s and has no attachment; a written order is still required", order.OrderNumber, order.OrderType),
				link)
		}
		return s.notificationSvc.Dispatch(ctx, models.NotificationTypeOrder, order.CreatorID,
			"New disbursement order",
			fmt.Sprintf("Order %s for %s in favor of %s", order.OrderNumber, formatted, order.Beneficiary),
			link)
	})

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionCreate, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Disbursement order %s created. Beneficiary: %s, amount: %s %s", order.OrderNumber, order.Beneficiary, order.Amount.StringFixed(2), order.Currency), ip, userAgent)

	return order, nil
}

// Update applies changes to an order and re-derives the written-order
// flag. Flag flips emit a resolution or warning notification.
func (s *OrderService) Update(ctx context.Context, id uint, input *UpdateOrderInput, actor *models.User, ip, userAgent string) (*models.Order, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}

	order, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		order.Amount = *input.Amount
	}
	if input.Currency != nil {
		if !models.IsValidCurrency(*input.Currency) {
			return nil, ErrInvalidCurrency
		}
		order.Currency = *input.Currency
	}
	if input.OrderDate != nil {
		order.OrderDate = *input.OrderDate
	}
	if input.Beneficiary != nil {
		order.Beneficiary = *input.Beneficiary
	}
	if input.Purpose != nil {
		order.Purpose = *input.Purpose
	}
	if input.OrderType != nil {
		if !models.IsValidOrderType(*input.OrderType) {
			return nil, fmt.Errorf("unknown order type: %s", *input.OrderType)
		}
		order.OrderType = *input.OrderType
	}
	if input.Notes != nil {
		order.Notes = input.Notes
	}
	if input.PreviousDebt != nil {
		order.PreviousDebt = input.PreviousDebt
	}
	if input.AttachmentPaths != nil {
		setAttachments(order, input.AttachmentPaths)
	}

	wasNeeded := order.NeedsWrittenOrder
	order.NeedsWrittenOrder = order.ComputeNeedsWrittenOrder()

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notifyFlagChange(order, wasNeeded, actor)

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Disbursement order %s updated. Beneficiary: %s, amount: %s %s", order.OrderNumber, order.Beneficiary, order.Amount.StringFixed(2), order.Currency), ip, userAgent)

	return order, nil
}

// Approve moves a pending order to approved. Commander only.
func (s *OrderService) Approve(ctx context.Context, id uint, actor *models.User, ip, userAgent string) (*models.Order, error) {
	if !actor.IsCommander() {
		return nil, ErrForbidden
	}

	order, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewOrderFSM(order)
	if err := fsm.Approve(ctx); err != nil {
		return nil, fmt.Errorf("cannot approve order: %w", err)
	}

	now := time.Now()
	order.ApprovedBy = &actor.FullName
	order.ApprovedAt = &now

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	formatted := models.FormatAmount(order.Amount, order.Currency)
	link := orderLink(order.ID)
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Dispatch(ctx, models.NotificationTypeApproval, order.CreatorID,
			"Disbursement order approved",
			fmt.Sprintf("Order %s for %s in favor of %s was approved", order.OrderNumber, formatted, order.Beneficiary),
			link)
	})

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionApprove, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Disbursement order %s approved. Beneficiary: %s, amount: %s %s", order.OrderNumber, order.Beneficiary, order.Amount.StringFixed(2), order.Currency), ip, userAgent)

	return order, nil
}

// Reject moves a pending order to rejected. Commander only; a reason
// is mandatory and stored on the order.
func (s *OrderService) Reject(ctx context.Context, id uint, reason string, actor *models.User, ip, userAgent string) (*models.Order, error) {
	if !actor.IsCommander() {
		return nil, ErrForbidden
	}
	if reason == "" {
		return nil, ErrRejectionReasonRequired
	}

	order, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewOrderFSM(order)
	if err := fsm.Reject(ctx); err != nil {
		return nil, fmt.Errorf("cannot reject order: %w", err)
	}

	now := time.Now()
	order.ApprovedBy = &actor.FullName
	order.ApprovedAt = &now
	order.RejectionReason = &reason

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	link := orderLink(order.ID)
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Dispatch(ctx, models.NotificationTypeApproval, order.CreatorID,
			"Disbursement order rejected",
			fmt.Sprintf("Order %s in favor of %s was rejected: %s", order.OrderNumber, order.Beneficiary, reason),
			link)
	})

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionReject, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Disbursement order %s rejected. Reason: %s", order.OrderNumber, reason), ip, userAgent)

	return order, nil
}

// MarkPaid settles an approved order. Finance only.
func (s *OrderService) MarkPaid(ctx context.Context, id uint, actor *models.User, ip, userAgent string) (*models.Order, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}

	order, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewOrderFSM(order)
	if err := fsm.Pay(ctx); err != nil {
		return nil, fmt.Errorf("cannot mark order paid: %w", err)
	}

	now := time.Now()
	order.PaidAt = &now

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Disbursement order %s marked as paid. Amount: %s %s", order.OrderNumber, order.Amount.StringFixed(2), order.Currency), ip, userAgent)

	return order, nil
}

// SetStatus overrides the order status directly, bypassing the
// transition table. Finance only. No approver bookkeeping is done; the
// change is recorded as a plain update in the audit trail.
func (s *OrderService) SetStatus(ctx context.Context, id uint, status string, actor *models.User, ip, userAgent string) (*models.Order, error) {
	if !actor.IsFinanceOfficer() {
		return nil, ErrForbidden
	}

	order, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewOrderFSM(order)
	if err := fsm.Override(status); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Disbursement order %s status set to %s", order.OrderNumber, status), ip, userAgent)

	return order, nil
}

// Delete removes an order permanently
func (s *OrderService) Delete(ctx context.Context, id uint, actor *models.User, ip, userAgent string) error {
	if !actor.IsFinanceOfficer() {
		return ErrForbidden
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionDelete, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Disbursement order %s deleted. Beneficiary: %s, amount: %s %s", order.OrderNumber, order.Beneficiary, order.Amount.StringFixed(2), order.Currency), ip, userAgent)

	return nil
}

// AttachFile records an uploaded attachment on the order and re-derives
// the written-order flag
func (s *OrderService) AttachFile(ctx context.Context, id uint, path string, actor *models.User, ip, userAgent string) (*models.Order, error) {
	if actor.IsAuditor() {
		return nil, ErrForbidden
	}

	order, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	paths := attachmentList(order)
	paths = append(paths, path)
	setAttachments(order, paths)

	wasNeeded := order.NeedsWrittenOrder
	order.NeedsWrittenOrder = order.ComputeNeedsWrittenOrder()

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notifyFlagChange(order, wasNeeded, actor)

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntityOrder, order.ID,
		fmt.Sprintf("Attachment added to disbursement order %s", order.OrderNumber), ip, userAgent)

	return order, nil
}

// notifyFlagChange emits the resolution or warning notification when
// the written-order flag flipped during an update
func (s *OrderService) notifyFlagChange(order *models.Order, wasNeeded bool, actor *models.User) {
	if wasNeeded == order.NeedsWrittenOrder {
		return
	}
	link := orderLink(order.ID)
	if wasNeeded {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.Dispatch(ctx, models.NotificationTypeApproval, order.CreatorID,
				"Written order received",
				fmt.Sprintf("Order %s no longer requires a written order", order.OrderNumber),
				link)
		})
		return
	}
	if actor.IsFinanceOfficer() {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.Dispatch(ctx, models.NotificationTypeSystem, order.CreatorID,
				"Written order required",
				fmt.Sprintf("Order %s was changed to %s and has no attachment; a written order is now required", order.OrderNumber, order.OrderType),
				link)
		})
	}
}

func setAttachments(order *models.Order, paths []string) {
	if len(paths) == 0 {
		order.AttachmentPaths = nil
		order.HasAttachment = false
		return
	}
	data, _ := json.Marshal(paths)
	encoded := string(data)
	order.AttachmentPaths = &encoded
	order.HasAttachment = true
}

func attachmentList(order *models.Order) []string {
	if order.AttachmentPaths == nil {
		return nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(*order.AttachmentPaths), &paths); err != nil {
		return nil
	}
	return paths
}

func orderLink(id uint) *string {
	link := fmt.Sprintf("/orders/%d", id)
	return &link
}
