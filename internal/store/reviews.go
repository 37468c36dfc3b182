package store

import (
	"context"
	"database/sql"
	"errors"

	"storefront-service/internal/models"

	"github.com/lib/pq"
)

// ErrAlreadyReviewed is returned when a review for the same
// (order, product) pair already exists. The reviews table carries a
// unique index on (order_id, product_id), so a concurrent duplicate
// submission loses at the database instead of inserting twice.
var ErrAlreadyReviewed = errors.New("review already exists for this order and product")

const pqUniqueViolation = "23505"

// CreateReview inserts a review and reads back the generated fields
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (user_id, order_id, product_id, rating, comment, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := s.db.GetContext(ctx, review, query,
		review.UserID, review.OrderID, review.ProductID,
		review.Rating, review.Comment, review.ImageURLs)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrAlreadyReviewed
	}
	return err
}

// GetReviewByOrderAndProduct retrieves the review for an order-product
// pair, or nil when none exists
func (s *Store) GetReviewByOrderAndProduct(ctx context.Context, orderID, productID string) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review,
		"SELECT * FROM reviews WHERE order_id = $1 AND product_id = $2", orderID, productID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewsByUserID retrieves a user's reviews, newest first
func (s *Store) GetReviewsByUserID(ctx context.Context, userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return reviews, err
}

// GetRatingSummary aggregates rating average and count for a product
func (s *Store) GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error) {
	summary := models.RatingSummary{ProductID: productID}
	err := s.db.GetContext(ctx, &summary, `
		SELECT COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS total_count
		FROM reviews WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
