package service

import (
	"context"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"
)

// Narrow store interfaces consumed by the services. *store.Store
// satisfies all of them; tests substitute func-field fakes.

type ProductStore interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, productID string, upd models.ProductUpdate) error
}

type OrderStore interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error)
}

type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByOrderAndProduct(ctx context.Context, orderID, productID string) (*models.Review, error)
	GetReviewsByUserID(ctx context.Context, userID string) ([]models.Review, error)
	GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error)
}

type ProfileStore interface {
	GetProfileByID(ctx context.Context, userID string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) error
}

type ChatStore interface {
	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	GetChatMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error)
}

// Uploader is the object storage surface the services need.
// *objectstore.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, bucket, path string, data []byte, upsert bool) (string, error)
	PublicURL(bucket, path string) string
}

// CartCache persists carts across restarts. *redisclient.Client
// satisfies it; a nil cache disables persistence.
type CartCache interface {
	SaveCart(ctx context.Context, userID string, lines []cart.Line) error
	LoadCart(ctx context.Context, userID string) ([]cart.Line, error)
	DeleteCart(ctx context.Context, userID string) error
}

// RatingCache caches product rating aggregates.
type RatingCache interface {
	SetRatingSummary(ctx context.Context, summary *models.RatingSummary) error
	GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error)
}

// OrderEvents and ReviewEvents are the lifecycle event sinks.
// *broker.EventPublisher satisfies both.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

type ReviewEvents interface {
	PublishReviewSubmitted(ctx context.Context, event *models.ReviewSubmittedEvent) error
}

// clock indirection for tests
var now = time.Now
