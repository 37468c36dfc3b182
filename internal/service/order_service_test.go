package service

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, store *fakeOrderStore, userID, status string) *models.Order {
	t.Helper()

	order := &models.Order{UserID: userID, TotalPrice: 10000, Status: status}
	items := []models.OrderItem{{ProductID: "p1", Quantity: 1, PricePerItem: 10000}}
	require.NoError(t, store.CreateOrderWithItems(context.Background(), order, items))
	return order
}

func TestCancelFromProcessing(t *testing.T) {
	orderStore := newFakeOrderStore()
	events := &capturedEvents{}
	svc := NewOrderService(orderStore, newFakeProductStore(), events)

	order := seedOrder(t, orderStore, testUser, models.OrderStatusProcessing)

	updated, err := svc.Cancel(context.Background(), testUser, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)

	require.Len(t, events.statusChanged, 1)
	assert.Equal(t, models.OrderStatusProcessing, events.statusChanged[0].FromStatus)
	assert.Equal(t, models.OrderStatusCancelled, events.statusChanged[0].ToStatus)
}

func TestMarkReceivedFromProcessing(t *testing.T) {
	orderStore := newFakeOrderStore()
	svc := NewOrderService(orderStore, newFakeProductStore(), &capturedEvents{})

	order := seedOrder(t, orderStore, testUser, models.OrderStatusProcessing)

	updated, err := svc.MarkReceived(context.Background(), testUser, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status string
		act    func(svc *OrderService, orderID string) error
	}{
		{"cancel_completed", models.OrderStatusCompleted, func(svc *OrderService, id string) error {
			_, err := svc.Cancel(context.Background(), testUser, id)
			return err
		}},
		{"receive_completed", models.OrderStatusCompleted, func(svc *OrderService, id string) error {
			_, err := svc.MarkReceived(context.Background(), testUser, id)
			return err
		}},
		{"cancel_cancelled", models.OrderStatusCancelled, func(svc *OrderService, id string) error {
			_, err := svc.Cancel(context.Background(), testUser, id)
			return err
		}},
		{"receive_cancelled", models.OrderStatusCancelled, func(svc *OrderService, id string) error {
			_, err := svc.MarkReceived(context.Background(), testUser, id)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderStore := newFakeOrderStore()
			svc := NewOrderService(orderStore, newFakeProductStore(), &capturedEvents{})
			order := seedOrder(t, orderStore, testUser, tt.status)

			err := tt.act(svc, order.ID)
			assert.True(t, errors.Is(err, ErrInvalidState))

			// Status untouched after the rejected transition.
			stored, getErr := orderStore.GetOrderByID(context.Background(), order.ID)
			require.NoError(t, getErr)
			assert.Equal(t, tt.status, stored.Status)
		})
	}
}

func TestTransitionFailureKeepsPriorStatus(t *testing.T) {
	orderStore := newFakeOrderStore()
	svc := NewOrderService(orderStore, newFakeProductStore(), &capturedEvents{})
	order := seedOrder(t, orderStore, testUser, models.OrderStatusProcessing)

	orderStore.updateStatusFunc = func(ctx context.Context, orderID, status string) error {
		return errors.New("write timeout")
	}

	_, err := svc.Cancel(context.Background(), testUser, order.ID)
	require.Error(t, err)

	stored, err := orderStore.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)
}

func TestTransitionRejectsForeignOrder(t *testing.T) {
	orderStore := newFakeOrderStore()
	svc := NewOrderService(orderStore, newFakeProductStore(), &capturedEvents{})
	order := seedOrder(t, orderStore, "someone-else", models.OrderStatusProcessing)

	_, err := svc.Cancel(context.Background(), testUser, order.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestGetOrderHistoryJoinsItemsAndProducts(t *testing.T) {
	orderStore := newFakeOrderStore()
	productStore := newFakeProductStore(models.Product{ID: "p1", Name: "bag", Price: 10000})
	svc := NewOrderService(orderStore, productStore, &capturedEvents{})

	order := seedOrder(t, orderStore, testUser, models.OrderStatusProcessing)

	history, err := svc.GetOrderHistory(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
	require.Len(t, history[0].Items, 1)
	require.NotNil(t, history[0].Items[0].Product)
	assert.Equal(t, "bag", history[0].Items[0].Product.Name)
}

func TestAllowedActions(t *testing.T) {
	svc := NewOrderService(newFakeOrderStore(), newFakeProductStore(), &capturedEvents{})

	assert.ElementsMatch(t,
		[]string{models.ActionCancel, models.ActionMarkReceived},
		svc.AllowedActions(&models.Order{Status: models.OrderStatusProcessing}))
	assert.Equal(t,
		[]string{models.ActionSubmitReview},
		svc.AllowedActions(&models.Order{Status: models.OrderStatusCompleted}))
	assert.Empty(t, svc.AllowedActions(&models.Order{Status: models.OrderStatusCancelled}))
}
