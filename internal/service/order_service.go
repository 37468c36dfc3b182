package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService reads order history and drives status transitions. A
// transition is a single-field status update followed by a refetch;
// nothing is mutated locally on failure, so the caller keeps seeing
// the server-confirmed status.
type OrderService struct {
	orders   OrderStore
	products ProductStore
	events   OrderEvents
	logger   *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, products ProductStore, events OrderEvents) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// GetOrderHistory returns the user's orders, newest first, with line
// items and product details joined in.
func (s *OrderService) GetOrderHistory(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrderHistory")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	orders, err := s.orders.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	productIDs := make([]string, 0)
	seen := make(map[string]bool)

	for i := range orders {
		items, err := s.orders.GetOrderItemsByOrderID(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch items for order %s: %w", orders[i].ID, err)
		}
		orders[i].Items = items

		for _, item := range items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	if len(productIDs) > 0 {
		products, err := s.products.GetProductsByIDs(ctx, productIDs)
		if err != nil {
			// Product details are cosmetic on history rows; the order
			// data itself is already complete.
			s.logger.Warn("Failed to join product details", zap.Error(err))
		} else {
			byID := make(map[string]*models.Product, len(products))
			for i := range products {
				byID[products[i].ID] = &products[i]
			}
			for i := range orders {
				for j := range orders[i].Items {
					orders[i].Items[j].Product = byID[orders[i].Items[j].ProductID]
				}
			}
		}
	}

	return orders, nil
}

// GetOrder returns one order with its items.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrInvalidState)
	}

	items, err := s.orders.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// Cancel moves a processing order to cancelled.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.transition(ctx, userID, orderID, models.OrderStatusCancelled)
}

// MarkReceived moves a processing order to completed.
func (s *OrderService) MarkReceived(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.transition(ctx, userID, orderID, models.OrderStatusCompleted)
}

// transition checks legality against the current server-side status,
// writes the status column, then refetches the order so the caller
// only ever sees what the store confirmed.
func (s *OrderService) transition(ctx context.Context, userID, orderID, toStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.transition")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrInvalidState)
	}

	if !models.CanTransition(order.Status, toStatus) {
		util.OrderStatusRejectedTotal.Inc()
		return nil, fmt.Errorf("%w: cannot move order from %s to %s",
			ErrInvalidState, order.Status, toStatus)
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, toStatus); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	updated, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("status written but refetch failed: %w", err)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(toStatus).Inc()
	s.logger.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", updated.Status))

	if s.events != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: now(),
			},
			OrderID:    orderID,
			UserID:     userID,
			FromStatus: order.Status,
			ToStatus:   updated.Status,
		}
		if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	return updated, nil
}

// AllowedActions returns the actions the client may offer for an order.
func (s *OrderService) AllowedActions(order *models.Order) []string {
	return models.AllowedActions(order.Status)
}
