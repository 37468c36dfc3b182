package service

import (
	"context"
	"fmt"
	"sync"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CartService owns the per-user cart aggregates. All cart mutation in
// the system goes through here; the view layer only ever sees
// snapshots. Carts are written through to the cache after every
// mutation, best effort: a cache failure never fails the user action.
type CartService struct {
	registry *cart.Registry
	products ProductStore
	cache    CartCache
	logger   *zap.Logger

	mu       sync.Mutex
	hydrated map[string]bool
}

// NewCartService creates a new cart service. cache may be nil, which
// disables cart persistence.
func NewCartService(products ProductStore, cache CartCache) *CartService {
	return &CartService{
		registry: cart.NewRegistry(),
		products: products,
		cache:    cache,
		logger:   util.GetLogger(),
		hydrated: make(map[string]bool),
	}
}

// cartFor returns the user's aggregate, loading any persisted copy on
// first access.
func (s *CartService) cartFor(ctx context.Context, userID string) *cart.Cart {
	c := s.registry.Get(userID)

	s.mu.Lock()
	needsHydration := s.cache != nil && !s.hydrated[userID]
	s.hydrated[userID] = true
	s.mu.Unlock()

	if needsHydration {
		lines, err := s.cache.LoadCart(ctx, userID)
		if err != nil {
			s.logger.Warn("Failed to load persisted cart",
				zap.String("user_id", userID), zap.Error(err))
		} else if len(lines) > 0 && c.Len() == 0 {
			c.Restore(lines)
		}
	}

	return c
}

func (s *CartService) persist(ctx context.Context, userID string, c *cart.Cart) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveCart(ctx, userID, c.Snapshot()); err != nil {
		s.logger.Warn("Failed to persist cart",
			zap.String("user_id", userID), zap.Error(err))
	}
}

// AddToCart puts one unit of a product into the user's cart, merging
// with an existing line for the same product.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}
	if productID == "" {
		return fmt.Errorf("%w: blank product id", ErrInvalidInput)
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to resolve product: %w", err)
	}

	c := s.cartFor(ctx, userID)
	c.Add(*product)
	s.persist(ctx, userID, c)

	util.CartOperationsTotal.WithLabelValues("add").Inc()
	return nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if userID == "" {
		return fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}
	if productID == "" {
		return fmt.Errorf("%w: blank product id", ErrInvalidInput)
	}

	c := s.cartFor(ctx, userID)
	c.UpdateQuantity(productID, quantity)
	s.persist(ctx, userID, c)

	util.CartOperationsTotal.WithLabelValues("update_quantity").Inc()
	return nil
}

// RemoveFromCart drops a line; removing an absent product is a no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	c := s.cartFor(ctx, userID)
	c.Remove(productID)
	s.persist(ctx, userID, c)

	util.CartOperationsTotal.WithLabelValues("remove").Inc()
	return nil
}

// ClearCart empties the user's cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	c := s.cartFor(ctx, userID)
	c.Clear()
	if s.cache != nil {
		if err := s.cache.DeleteCart(ctx, userID); err != nil {
			s.logger.Warn("Failed to delete persisted cart",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	util.CartOperationsTotal.WithLabelValues("clear").Inc()
	return nil
}

// GetCart returns the cart lines repriced against the live catalog,
// plus the current total.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]cart.Line, int64, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	c := s.cartFor(ctx, userID)

	snapshot := c.Snapshot()
	if len(snapshot) > 0 {
		ids := make([]string, len(snapshot))
		for i, line := range snapshot {
			ids[i] = line.Product.ID
		}

		products, err := s.products.GetProductsByIDs(ctx, ids)
		if err != nil {
			// Display falls back to the prices captured at add time.
			s.logger.Warn("Failed to reprice cart", zap.Error(err))
		} else {
			byID := make(map[string]models.Product, len(products))
			for _, p := range products {
				byID[p.ID] = p
			}
			c.Reprice(func(id string) (models.Product, bool) {
				p, ok := byID[id]
				return p, ok
			})
		}
	}

	return c.Snapshot(), c.Total(), nil
}
