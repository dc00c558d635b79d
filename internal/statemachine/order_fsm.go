package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/milfin/milfin-api/internal/models"
)

// OrderFSM wraps a disbursement order with its state machine
type OrderFSM struct {
	order *models.Order
	fsm   *fsm.FSM
}

// NewOrderFSM creates a new order state machine
func NewOrderFSM(order *models.Order) *OrderFSM {
	ofsm := &OrderFSM{
		order: order,
	}

	ofsm.fsm = fsm.NewFSM(
		order.Status,
		fsm.Events{
			// pending → approved
			{Name: "approve", Src: []string{models.OrderStatusPending}, Dst: models.OrderStatusApproved},

			// pending → rejected
			{Name: "reject", Src: []string{models.OrderStatusPending}, Dst: models.OrderStatusRejected},

			// approved → paid
			{Name: "pay", Src: []string{models.OrderStatusApproved}, Dst: models.OrderStatusPaid},
		},
		fsm.Callbacks{},
	)

	return ofsm
}

// Approve transitions the order to approved state
func (o *OrderFSM) Approve(ctx context.Context) error {
	if !o.order.MayApprove() {
		return fmt.Errorf("order cannot be approved in current state: %s", o.order.Status)
	}

	if err := o.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve order: %w", err)
	}

	o.order.Status = o.fsm.Current()
	return nil
}

// Reject transitions the order to rejected state
func (o *OrderFSM) Reject(ctx context.Context) error {
	if !o.order.MayReject() {
		return fmt.Errorf("order cannot be rejected in current state: %s", o.order.Status)
	}

	if err := o.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject order: %w", err)
	}

	o.order.Status = o.fsm.Current()
	return nil
}

// Pay transitions the order to paid state
func (o *OrderFSM) Pay(ctx context.Context) error {
	if !o.order.MayMarkPaid() {
		return fmt.Errorf("order cannot be marked paid in current state: %s", o.order.Status)
	}

	if err := o.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	o.order.Status = o.fsm.Current()
	return nil
}

// Override sets the order status directly, bypassing the transition
// table. Reserved for the finance role's manual status selector.
func (o *OrderFSM) Override(status string) error {
	if !models.IsValidOrderStatus(status) {
		return fmt.Errorf("unknown order status: %s", status)
	}
	o.order.Status = status
	o.fsm.SetState(status)
	return nil
}

// Current returns the current state
func (o *OrderFSM) Current() string {
	return o.fsm.Current()
}

// Can checks if a transition is possible
func (o *OrderFSM) Can(event string) bool {
	return o.fsm.Can(event)
}
