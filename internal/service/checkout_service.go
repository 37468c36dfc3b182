package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService materializes a cart into a durable order with line
// items. The order and its items are written in one transaction, so
// the only client-visible outcomes are "order fully placed, cart
// cleared" and "nothing placed, cart untouched".
type CheckoutService struct {
	carts    *CartService
	orders   OrderStore
	products ProductStore
	events   OrderEvents
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(carts *CartService, orders OrderStore, products ProductStore, events OrderEvents) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		products: products,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// PlaceOrder converts the user's cart into an order. Prices are frozen
// per item from the live catalog at this moment; later product price
// changes do not affect placed orders. The cart is cleared only after
// the write succeeds, so a failed checkout can simply be retried.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if userID == "" {
		util.OrdersFailedTotal.WithLabelValues("no_user").Inc()
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	c := s.carts.cartFor(ctx, userID)
	snapshot := c.Snapshot()
	if len(snapshot) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidState)
	}

	ids := make([]string, len(snapshot))
	for i, line := range snapshot {
		ids[i] = line.Product.ID
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("price_lookup").Inc()
		return nil, fmt.Errorf("failed to resolve product prices: %w", err)
	}
	if len(products) != len(snapshot) {
		util.OrdersFailedTotal.WithLabelValues("missing_product").Inc()
		return nil, fmt.Errorf("%w: some cart products no longer exist", ErrInvalidState)
	}

	priceByID := make(map[string]int64, len(products))
	for _, p := range products {
		priceByID[p.ID] = p.Price
	}

	var total int64
	items := make([]models.OrderItem, 0, len(snapshot))
	for _, line := range snapshot {
		price := priceByID[line.Product.ID]
		total += price * int64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID:    line.Product.ID,
			Quantity:     line.Quantity,
			PricePerItem: price,
		})
	}

	order := &models.Order{
		UserID:     userID,
		TotalPrice: total,
		Status:     models.OrderStatusProcessing,
	}

	if err := s.orders.CreateOrderWithItems(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	order.Items = items

	// Point of no return: the order exists, so success is signalled
	// exactly once and the cart is emptied.
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		s.logger.Warn("Failed to clear persisted cart after checkout",
			zap.String("user_id", userID), zap.Error(err))
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int64("total_price", total))

	if s.events != nil {
		eventItems := make([]models.OrderItemData, len(items))
		for i, item := range items {
			eventItems[i] = models.OrderItemData{
				ProductID:    item.ProductID,
				Quantity:     item.Quantity,
				PricePerItem: item.PricePerItem,
			}
		}

		event := &models.OrderPlacedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPlaced,
				Timestamp: now(),
			},
			OrderID:    order.ID,
			UserID:     userID,
			TotalPrice: total,
			Items:      eventItems,
		}

		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	return order, nil
}
