package worker

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRatingSource struct {
	summary *models.RatingSummary
	err     error
}

func (f *fakeRatingSource) GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeRatingSink struct {
	stored *models.RatingSummary
}

func (f *fakeRatingSink) SetRatingSummary(ctx context.Context, summary *models.RatingSummary) error {
	f.stored = summary
	return nil
}

func TestHandleReviewSubmittedRefreshesCache(t *testing.T) {
	source := &fakeRatingSource{summary: &models.RatingSummary{
		ProductID:     "p1",
		AverageRating: 4.5,
		TotalCount:    2,
	}}
	sink := &fakeRatingSink{}
	w := NewRatingWorker(nil, source, sink)

	event := &models.ReviewSubmittedEvent{ProductID: "p1", Rating: 5}
	err := w.handleReviewSubmitted(context.Background(), event)
	require.NoError(t, err)

	require.NotNil(t, sink.stored)
	assert.Equal(t, "p1", sink.stored.ProductID)
	assert.Equal(t, 4.5, sink.stored.AverageRating)
}

func TestHandleReviewSubmittedPropagatesSourceError(t *testing.T) {
	source := &fakeRatingSource{err: errors.New("db down")}
	sink := &fakeRatingSink{}
	w := NewRatingWorker(nil, source, sink)

	err := w.handleReviewSubmitted(context.Background(), &models.ReviewSubmittedEvent{ProductID: "p1"})
	assert.Error(t, err)
	assert.Nil(t, sink.stored)
}

type fakeCountSource struct {
	counts map[string]int
}

func (f *fakeCountSource) CountOrdersByUserID(ctx context.Context, userID string) (int, error) {
	return f.counts[userID], nil
}

type fakeCountSink struct {
	stored map[string]int
}

func (f *fakeCountSink) SetOrderCount(ctx context.Context, userID string, count int) error {
	if f.stored == nil {
		f.stored = make(map[string]int)
	}
	f.stored[userID] = count
	return nil
}

func TestHandleOrderPlacedRefreshesCounter(t *testing.T) {
	source := &fakeCountSource{counts: map[string]int{"user-1": 3}}
	sink := &fakeCountSink{}
	w := NewOrderWorker(nil, source, sink)

	event := &models.OrderPlacedEvent{OrderID: "order-1", UserID: "user-1"}
	err := w.handleOrderPlaced(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 3, sink.stored["user-1"])
}

func TestHandleOrderStatusChangedRefreshesCounter(t *testing.T) {
	source := &fakeCountSource{counts: map[string]int{"user-1": 3}}
	sink := &fakeCountSink{}
	w := NewOrderWorker(nil, source, sink)

	event := &models.OrderStatusChangedEvent{OrderID: "order-1", UserID: "user-1", ToStatus: models.OrderStatusCancelled}
	err := w.handleOrderStatusChanged(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 3, sink.stored["user-1"])
}
