package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
)

// RatingSource reads rating aggregates from durable storage.
// *store.Store satisfies it.
type RatingSource interface {
	GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error)
}

// RatingSink caches rating aggregates. *redisclient.Client satisfies it.
type RatingSink interface {
	SetRatingSummary(ctx context.Context, summary *models.RatingSummary) error
}

// RatingWorker keeps the cached product rating aggregates fresh by
// recomputing from the store whenever a review lands. Recomputing from
// scratch makes redelivered events harmless.
type RatingWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	source   RatingSource
	sink     RatingSink
}

// NewRatingWorker creates a new rating worker
func NewRatingWorker(consumer *broker.Consumer, source RatingSource, sink RatingSink) *RatingWorker {
	w := &RatingWorker{
		consumer: consumer,
		source:   source,
		sink:     sink,
	}

	handler := broker.NewEventHandler()
	handler.OnReviewSubmitted(w.handleReviewSubmitted)
	w.handler = handler

	return w
}

func (w *RatingWorker) handleReviewSubmitted(ctx context.Context, event *models.ReviewSubmittedEvent) error {
	summary, err := w.source.GetRatingSummary(ctx, event.ProductID)
	if err != nil {
		return err
	}

	if err := w.sink.SetRatingSummary(ctx, summary); err != nil {
		return err
	}

	log.Printf("Rating refreshed: product=%s avg=%.2f count=%d",
		event.ProductID, summary.AverageRating, summary.TotalCount)
	return nil
}

// Start starts the worker
func (w *RatingWorker) Start(ctx context.Context) error {
	log.Println("Starting rating worker...")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *RatingWorker) Stop() error {
	log.Println("Stopping rating worker...")
	return w.consumer.Close()
}

// OrderCountSource reads a user's order count from durable storage.
type OrderCountSource interface {
	CountOrdersByUserID(ctx context.Context, userID string) (int, error)
}

// OrderCountSink caches per-user order counters.
type OrderCountSink interface {
	SetOrderCount(ctx context.Context, userID string, count int) error
}

// OrderWorker maintains per-user order counters off the order
// lifecycle events.
type OrderWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	source   OrderCountSource
	sink     OrderCountSink
}

// NewOrderWorker creates a new order worker
func NewOrderWorker(consumer *broker.Consumer, source OrderCountSource, sink OrderCountSink) *OrderWorker {
	w := &OrderWorker{
		consumer: consumer,
		source:   source,
		sink:     sink,
	}

	handler := broker.NewEventHandler()
	handler.OnOrderPlaced(w.handleOrderPlaced)
	handler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.handler = handler

	return w
}

func (w *OrderWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return w.refreshCount(ctx, event.UserID)
}

// Status changes do not alter the count, but refreshing on them keeps
// the cached counter alive past its natural churn and makes redelivery
// of either event type harmless.
func (w *OrderWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return w.refreshCount(ctx, event.UserID)
}

func (w *OrderWorker) refreshCount(ctx context.Context, userID string) error {
	count, err := w.source.CountOrdersByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if err := w.sink.SetOrderCount(ctx, userID, count); err != nil {
		return err
	}

	log.Printf("Order count refreshed: user=%s count=%d", userID, count)
	return nil
}

// Start starts the worker
func (w *OrderWorker) Start(ctx context.Context) error {
	log.Println("Starting order worker...")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *OrderWorker) Stop() error {
	log.Println("Stopping order worker...")
	return w.consumer.Close()
}
