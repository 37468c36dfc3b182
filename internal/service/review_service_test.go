package service

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviews(t *testing.T) (*ReviewService, *fakeOrderStore, *fakeReviewStore, *fakeUploader, *capturedEvents) {
	t.Helper()

	orderStore := newFakeOrderStore()
	reviewStore := newFakeReviewStore()
	uploader := &fakeUploader{}
	events := &capturedEvents{}

	svc := NewReviewService(reviewStore, orderStore, uploader, nil, events, "review_image")
	return svc, orderStore, reviewStore, uploader, events
}

func TestHasReviewedBeforeAndAfterSubmit(t *testing.T) {
	svc, orderStore, _, _, _ := setupReviews(t)
	order := seedOrder(t, orderStore, testUser, models.OrderStatusCompleted)

	ctx := context.Background()
	assert.False(t, svc.HasReviewed(ctx, order.ID, "p1"))

	_, err := svc.SubmitReview(ctx, testUser, order.ID, "p1", 5, "great", nil)
	require.NoError(t, err)

	assert.True(t, svc.HasReviewed(ctx, order.ID, "p1"))
	assert.False(t, svc.HasReviewed(ctx, order.ID, "p2"))
}

func TestHasReviewedFailsOpen(t *testing.T) {
	svc, _, reviewStore, _, _ := setupReviews(t)

	reviewStore.getFunc = func(ctx context.Context, orderID, productID string) (*models.Review, error) {
		return nil, errors.New("gateway unavailable")
	}

	assert.False(t, svc.HasReviewed(context.Background(), "order-1", "p1"))
}

func TestSubmitReviewRejectsBadInput(t *testing.T) {
	svc, orderStore, reviewStore, _, _ := setupReviews(t)
	order := seedOrder(t, orderStore, testUser, models.OrderStatusCompleted)

	ctx := context.Background()

	tests := []struct {
		name      string
		productID string
		rating    int
	}{
		{"rating_zero", "p1", 0},
		{"rating_six", "p1", 6},
		{"blank_product", "", 5},
		{"sentinel_product", models.NilProductID, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitReview(ctx, testUser, order.ID, tt.productID, tt.rating, "", nil)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}

	// Nothing was written by any rejected attempt.
	assert.Empty(t, reviewStore.reviews)
}

func TestSubmitReviewRequiresCompletedOrder(t *testing.T) {
	svc, orderStore, _, _, _ := setupReviews(t)

	processing := seedOrder(t, orderStore, testUser, models.OrderStatusProcessing)
	cancelled := seedOrder(t, orderStore, testUser, models.OrderStatusCancelled)

	ctx := context.Background()

	_, err := svc.SubmitReview(ctx, testUser, processing.ID, "p1", 4, "", nil)
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = svc.SubmitReview(ctx, testUser, cancelled.ID, "p1", 4, "", nil)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestSubmitReviewUploadsAllImagesBeforeInsert(t *testing.T) {
	svc, orderStore, reviewStore, uploader, events := setupReviews(t)
	order := seedOrder(t, orderStore, testUser, models.OrderStatusCompleted)

	images := []ReviewImage{
		{Data: []byte("a"), Ext: "jpg"},
		{Data: []byte("b"), Ext: "png"},
	}

	review, err := svc.SubmitReview(context.Background(), testUser, order.ID, "p1", 4, "nice", images)
	require.NoError(t, err)

	assert.Len(t, uploader.uploads, 2)
	require.Len(t, review.ImageURLs, 2)
	for _, url := range review.ImageURLs {
		assert.Contains(t, url, "https://cdn.test/review_image/"+testUser+"/")
	}

	require.Len(t, events.submitted, 1)
	assert.Equal(t, review.ID, events.submitted[0].ReviewID)

	assert.Len(t, reviewStore.reviews, 1)
}

func TestSubmitReviewAbortsWhenAnyUploadFails(t *testing.T) {
	svc, orderStore, reviewStore, uploader, events := setupReviews(t)
	order := seedOrder(t, orderStore, testUser, models.OrderStatusCompleted)

	calls := 0
	uploader.uploadFunc = func(ctx context.Context, bucket, path string, data []byte, upsert bool) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("storage unavailable")
		}
		return path, nil
	}

	images := []ReviewImage{{Data: []byte("a")}, {Data: []byte("b")}, {Data: []byte("c")}}

	_, err := svc.SubmitReview(context.Background(), testUser, order.ID, "p1", 4, "", images)
	require.Error(t, err)

	// No partial review: the insert step was never reached.
	assert.Empty(t, reviewStore.reviews)
	assert.Empty(t, events.submitted)
	assert.False(t, svc.HasReviewed(context.Background(), order.ID, "p1"))
}

func TestSubmitReviewRejectsForeignOrder(t *testing.T) {
	svc, orderStore, _, _, _ := setupReviews(t)
	order := seedOrder(t, orderStore, "someone-else", models.OrderStatusCompleted)

	_, err := svc.SubmitReview(context.Background(), testUser, order.ID, "p1", 5, "", nil)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestGetRatingSummaryFallsBackToStore(t *testing.T) {
	svc, orderStore, _, _, _ := setupReviews(t)
	order := seedOrder(t, orderStore, testUser, models.OrderStatusCompleted)

	ctx := context.Background()
	_, err := svc.SubmitReview(ctx, testUser, order.ID, "p1", 4, "", nil)
	require.NoError(t, err)

	other := seedOrder(t, orderStore, testUser, models.OrderStatusCompleted)
	_, err = svc.SubmitReview(ctx, testUser, other.ID, "p1", 2, "", nil)
	require.NoError(t, err)

	summary, err := svc.GetRatingSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalCount)
	assert.InDelta(t, 3.0, summary.AverageRating, 0.001)
}
