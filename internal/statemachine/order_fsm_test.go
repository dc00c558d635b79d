package statemachine

import (
	"context"
	"testing"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFSM_ApprovalFlow(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusPending}
	machine := NewOrderFSM(order)

	require.NoError(t, machine.Approve(context.Background()))
	assert.Equal(t, models.OrderStatusApproved, order.Status)

	require.NoError(t, machine.Pay(context.Background()))
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}

func TestOrderFSM_RejectionFlow(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusPending}
	machine := NewOrderFSM(order)

	require.NoError(t, machine.Reject(context.Background()))
	assert.Equal(t, models.OrderStatusRejected, order.Status)

	// A rejected order is terminal
	assert.Error(t, machine.Approve(context.Background()))
	assert.Error(t, machine.Pay(context.Background()))
}

func TestOrderFSM_InvalidTransitions(t *testing.T) {
	t.Run("pending order cannot be paid", func(t *testing.T) {
		order := &models.Order{Status: models.OrderStatusPending}
		err := NewOrderFSM(order).Pay(context.Background())
		assert.Error(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
	})

	t.Run("approved order cannot be approved again", func(t *testing.T) {
		order := &models.Order{Status: models.OrderStatusApproved}
		assert.Error(t, NewOrderFSM(order).Approve(context.Background()))
	})

	t.Run("approved order cannot be rejected", func(t *testing.T) {
		order := &models.Order{Status: models.OrderStatusApproved}
		assert.Error(t, NewOrderFSM(order).Reject(context.Background()))
	})

	t.Run("paid order is terminal", func(t *testing.T) {
		order := &models.Order{Status: models.OrderStatusPaid}
		machine := NewOrderFSM(order)
		assert.Error(t, machine.Approve(context.Background()))
		assert.Error(t, machine.Reject(context.Background()))
		assert.Error(t, machine.Pay(context.Background()))
	})
}

func TestOrderFSM_Override(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusPending}
	machine := NewOrderFSM(order)

	require.NoError(t, machine.Override(models.OrderStatusPaid))
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, models.OrderStatusPaid, machine.Current())

	// Overrides still reject statuses outside the known set
	assert.Error(t, machine.Override("archived"))
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}

func TestOrderFSM_Can(t *testing.T) {
	machine := NewOrderFSM(&models.Order{Status: models.OrderStatusPending})
	assert.True(t, machine.Can("approve"))
	assert.True(t, machine.Can("reject"))
	assert.False(t, machine.Can("pay"))
}
