package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ReviewImage is one image attached to a review submission.
type ReviewImage struct {
	Data []byte
	Ext  string
}

// ReviewService decides review eligibility per (order, product) pair
// and writes reviews. Uniqueness is enforced twice: HasReviewed gates
// the UI, and the store's unique index catches the race two concurrent
// submissions would otherwise win together.
type ReviewService struct {
	reviews  ReviewStore
	orders   OrderStore
	uploader Uploader
	ratings  RatingCache
	events   ReviewEvents
	bucket   string
	logger   *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(reviews ReviewStore, orders OrderStore, uploader Uploader, ratings RatingCache, events ReviewEvents, bucket string) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		orders:   orders,
		uploader: uploader,
		ratings:  ratings,
		events:   events,
		bucket:   bucket,
		logger:   util.GetLogger(),
	}
}

// HasReviewed reports whether a review exists for the pair. A failed
// lookup counts as "not yet reviewed" so the submit affordance stays
// available; the unique index stops an actual duplicate.
func (s *ReviewService) HasReviewed(ctx context.Context, orderID, productID string) bool {
	review, err := s.reviews.GetReviewByOrderAndProduct(ctx, orderID, productID)
	if err != nil {
		s.logger.Warn("Review lookup failed, treating as not reviewed",
			zap.String("order_id", orderID),
			zap.String("product_id", productID),
			zap.Error(err))
		return false
	}
	return review != nil
}

// GetReview returns the existing review for the pair, or nil.
func (s *ReviewService) GetReview(ctx context.Context, orderID, productID string) (*models.Review, error) {
	return s.reviews.GetReviewByOrderAndProduct(ctx, orderID, productID)
}

// GetUserReviews returns all reviews written by a user.
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string) ([]models.Review, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}
	return s.reviews.GetReviewsByUserID(ctx, userID)
}

// SubmitReview validates, uploads all images, then writes the review.
// The insert is only reached after every upload has succeeded, so a
// review row never carries a partial image set.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, orderID, productID string, rating int, comment string, images []ReviewImage) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.SubmitReview")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}
	if productID == "" || productID == models.NilProductID {
		util.ReviewsRejectedTotal.WithLabelValues("invalid_product").Inc()
		return nil, fmt.Errorf("%w: invalid product id", ErrInvalidInput)
	}
	if orderID == "" {
		util.ReviewsRejectedTotal.WithLabelValues("invalid_order").Inc()
		return nil, fmt.Errorf("%w: blank order id", ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		util.ReviewsRejectedTotal.WithLabelValues("invalid_rating").Inc()
		return nil, fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidInput, rating)
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrInvalidState)
	}
	if order.Status != models.OrderStatusCompleted {
		util.ReviewsRejectedTotal.WithLabelValues("order_not_completed").Inc()
		return nil, fmt.Errorf("%w: order is %s, reviews need a completed order",
			ErrInvalidState, order.Status)
	}

	imageURLs := make([]string, 0, len(images))
	for _, img := range images {
		ext := img.Ext
		if ext == "" {
			ext = "jpg"
		}
		path := fmt.Sprintf("%s/%s.%s", userID, uuid.New().String(), ext)

		start := time.Now()
		storedPath, err := s.uploader.Upload(ctx, s.bucket, path, img.Data, true)
		util.ImageUploadLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			util.ReviewsRejectedTotal.WithLabelValues("upload_failed").Inc()
			return nil, fmt.Errorf("failed to upload review image: %w", err)
		}

		imageURLs = append(imageURLs, s.uploader.PublicURL(s.bucket, storedPath))
	}

	review := &models.Review{
		UserID:    userID,
		OrderID:   orderID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		ImageURLs: pq.StringArray(imageURLs),
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		util.ReviewsRejectedTotal.WithLabelValues("db_error").Inc()
		return nil, err
	}

	util.ReviewsSubmittedTotal.Inc()
	s.logger.Info("Review submitted",
		zap.String("review_id", review.ID),
		zap.String("order_id", orderID),
		zap.String("product_id", productID),
		zap.Int("rating", rating))

	if s.events != nil {
		event := &models.ReviewSubmittedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeReviewSubmitted,
				Timestamp: now(),
			},
			ReviewID:  review.ID,
			OrderID:   orderID,
			ProductID: productID,
			UserID:    userID,
			Rating:    rating,
		}
		if err := s.events.PublishReviewSubmitted(ctx, event); err != nil {
			s.logger.Error("Failed to publish ReviewSubmitted event", zap.Error(err))
		}
	}

	return review, nil
}

// GetRatingSummary serves the cached aggregate when present, falling
// back to the store.
func (s *ReviewService) GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error) {
	if s.ratings != nil {
		if cached, err := s.ratings.GetRatingSummary(ctx, productID); err == nil && cached != nil {
			return cached, nil
		}
	}
	return s.reviews.GetRatingSummary(ctx, productID)
}
