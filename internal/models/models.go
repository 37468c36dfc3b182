package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a product in the catalog. Prices are integer minor
// units (e.g. cents), never floats.
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Price       int64     `db:"price" json:"price"`
	Description string    `db:"description" json:"description,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	Category    string    `db:"category" json:"category,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ProductUpdate is a typed partial update for a product. Nil fields are
// left untouched so an invalid column name cannot reach the database.
type ProductUpdate struct {
	Name        *string `json:"name,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// Order represents a customer order. Status is the only field mutated
// after creation.
type Order struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	TotalPrice int64     `db:"total_price" json:"total_price"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// Items is joined in by the service layer, not stored on the row.
	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is one line of an order. PricePerItem is frozen at checkout
// time and never re-read from the live product.
type OrderItem struct {
	ID           string `db:"id" json:"id"`
	OrderID      string `db:"order_id" json:"order_id"`
	ProductID    string `db:"product_id" json:"product_id"`
	Quantity     int    `db:"quantity" json:"quantity"`
	PricePerItem int64  `db:"price_per_item" json:"price_per_item"`

	// Product is resolved from the cached catalog for display.
	Product *Product `db:"-" json:"product,omitempty"`
}

// Review is a user's review of a product bought in a specific order.
// At most one review exists per (order_id, product_id) pair.
type Review struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	OrderID   string         `db:"order_id" json:"order_id"`
	ProductID string         `db:"product_id" json:"product_id"`
	Rating    int            `db:"rating" json:"rating"`
	Comment   string         `db:"comment" json:"comment,omitempty"`
	ImageURLs pq.StringArray `db:"image_urls" json:"image_urls,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// RatingSummary aggregates review scores for a product.
type RatingSummary struct {
	ProductID     string  `db:"product_id" json:"product_id"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	TotalCount    int     `db:"total_count" json:"total_count"`
}

// Profile is the public user profile, keyed by the auth user id.
type Profile struct {
	ID        string `db:"id" json:"id"`
	FullName  string `db:"full_name" json:"full_name,omitempty"`
	Username  string `db:"username" json:"username,omitempty"`
	AvatarURL string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// ProfileUpdate is a typed partial update for a profile.
type ProfileUpdate struct {
	FullName  *string `json:"full_name,omitempty"`
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ChatMessage is one message in a shop conversation. Exactly one of
// Message and ImageURL is set.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	ChatID    string    `db:"chat_id" json:"chat_id"`
	Sender    string    `db:"sender" json:"sender"`
	Message   string    `db:"message" json:"message,omitempty"`
	ImageURL  string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NilProductID is the all-zero UUID some clients send for a missing
// product reference. Treated the same as a blank id.
const NilProductID = "00000000-0000-0000-0000-000000000000"
