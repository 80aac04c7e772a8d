package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	"github.com/tienda/tienda-backend/internal/order/domain"
)

func placedOrder(t *testing.T) (*fakeOrderRepository, *fakeProductRepository, *recordingPublisher, *domain.Order) {
	t.Helper()
	handler, orders, carts, products, events := orderFixture(t)
	carts.seed(7, cartdomain.CartItem{ProductID: 1, Quantity: 2, UnitPrice: 100})

	order, err := handler.Handle(context.Background(), CreateOrderCommand{
		UserID:          7,
		DeliveryAddress: testAddress,
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	return orders, products, events, order
}

func TestUpdateStatusWalksTheLifecycle(t *testing.T) {
	orders, _, events, order := placedOrder(t)
	handler := NewUpdateStatusHandler(orders, events)

	for _, status := range []string{
		domain.StatusConfirmed,
		domain.StatusProcessing,
		domain.StatusShipped,
		domain.StatusDelivered,
	} {
		updated, err := handler.Handle(context.Background(), UpdateStatusCommand{OrderID: order.ID, Status: status})
		require.NoError(t, err, status)
		assert.Equal(t, status, updated.Status)
	}

	final, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.NotNil(t, final.DeliveredAt)
	assert.Len(t, final.StatusHistory, 5)
}

func TestUpdateStatusRejectsSkippedSteps(t *testing.T) {
	orders, _, events, order := placedOrder(t)
	handler := NewUpdateStatusHandler(orders, events)

	_, err := handler.Handle(context.Background(), UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusShipped})
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.StatusPending, transitionErr.From)
	assert.Equal(t, domain.StatusShipped, transitionErr.To)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	orders, _, events, order := placedOrder(t)
	handler := NewUpdateStatusHandler(orders, events)

	_, err := handler.Handle(context.Background(), UpdateStatusCommand{OrderID: order.ID, Status: "refunded"})
	assert.Error(t, err)
}

func TestCancelRestocksExactlyOnce(t *testing.T) {
	orders, products, events, order := placedOrder(t)
	cancel := NewCancelOrderHandler(orders, events)

	keyboard, _ := products.FindByID(context.Background(), 1)
	require.Equal(t, 3, keyboard.Stock)

	cancelled, err := cancel.Handle(context.Background(), CancelOrderCommand{OrderID: order.ID, UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	keyboard, _ = products.FindByID(context.Background(), 1)
	assert.Equal(t, 5, keyboard.Stock)
	require.Len(t, events.cancelled, 1)

	// Second cancel fails and must not restock again
	_, err = cancel.Handle(context.Background(), CancelOrderCommand{OrderID: order.ID, UserID: 7})
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	keyboard, _ = products.FindByID(context.Background(), 1)
	assert.Equal(t, 5, keyboard.Stock)
	assert.Len(t, events.cancelled, 1)
}

func TestCancelForbiddenForOtherUsers(t *testing.T) {
	orders, _, events, order := placedOrder(t)
	cancel := NewCancelOrderHandler(orders, events)

	_, err := cancel.Handle(context.Background(), CancelOrderCommand{OrderID: order.ID, UserID: 99})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCancelAfterShipmentFails(t *testing.T) {
	orders, products, events, order := placedOrder(t)
	status := NewUpdateStatusHandler(orders, events)
	cancel := NewCancelOrderHandler(orders, events)

	for _, s := range []string{domain.StatusConfirmed, domain.StatusProcessing, domain.StatusShipped} {
		_, err := status.Handle(context.Background(), UpdateStatusCommand{OrderID: order.ID, Status: s})
		require.NoError(t, err)
	}

	_, err := cancel.Handle(context.Background(), CancelOrderCommand{OrderID: order.ID, UserID: 7})
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	keyboard, _ := products.FindByID(context.Background(), 1)
	assert.Equal(t, 3, keyboard.Stock)
}

func TestAdminCancelViaStatusRestocks(t *testing.T) {
	orders, products, events, order := placedOrder(t)
	handler := NewUpdateStatusHandler(orders, events)

	_, err := handler.Handle(context.Background(), UpdateStatusCommand{
		OrderID: order.ID,
		Status:  domain.StatusCancelled,
		Note:    "payment never arrived",
	})
	require.NoError(t, err)

	keyboard, _ := products.FindByID(context.Background(), 1)
	assert.Equal(t, 5, keyboard.Stock)
	assert.Len(t, events.cancelled, 1)
}

func TestDeleteOnlyPendingOrders(t *testing.T) {
	orders, products, events, order := placedOrder(t)
	del := NewDeleteOrderHandler(orders)

	require.NoError(t, del.Handle(context.Background(), DeleteOrderCommand{OrderID: order.ID}))

	// Reserved stock comes back
	keyboard, _ := products.FindByID(context.Background(), 1)
	assert.Equal(t, 5, keyboard.Stock)

	_, err := orders.FindByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	// A confirmed order cannot be deleted
	orders2, _, _, order2 := placedOrder(t)
	status := NewUpdateStatusHandler(orders2, events)
	_, err = status.Handle(context.Background(), UpdateStatusCommand{OrderID: order2.ID, Status: domain.StatusConfirmed})
	require.NoError(t, err)

	del2 := NewDeleteOrderHandler(orders2)
	err = del2.Handle(context.Background(), DeleteOrderCommand{OrderID: order2.ID})
	assert.ErrorIs(t, err, domain.ErrOrderNotPending)
}
