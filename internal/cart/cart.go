package cart

import (
	"sync"

	"storefront-service/internal/models"
)

// Line is one product entry in a cart. The embedded product copy is for
// display; checkout re-resolves prices against the live catalog.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (l Line) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Cart is the per-user set of lines waiting to be ordered. It holds at
// most one line per product id; adds for an existing product merge into
// the existing line. All mutation goes through methods so the quantity
// and membership invariants cannot be bypassed.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of the product into the cart, merging with an
// existing line for the same product id.
func (c *Cart) Add(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Quantity++
			c.lines[i].Product = p
			return
		}
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: 1})
}

// UpdateQuantity sets the quantity for a product. A quantity of zero or
// less removes the line, so a non-positive quantity can never persist.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Remove drops the line for a product. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Snapshot returns a point-in-time copy of the lines. Later cart
// mutation does not affect the returned slice, so a multi-step checkout
// can work from a stable view.
func (c *Cart) Snapshot() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Restore replaces the cart contents, used when loading a persisted
// cart. Lines with non-positive quantities are dropped.
func (c *Cart) Restore(lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	for _, l := range lines {
		if l.Quantity > 0 {
			c.lines = append(c.lines, l)
		}
	}
}

// Reprice refreshes each line's product copy from the live catalog so
// totals reflect current prices. Products missing from the lookup keep
// their last known copy.
func (c *Cart) Reprice(lookup func(productID string) (models.Product, bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if p, ok := lookup(c.lines[i].Product.ID); ok {
			c.lines[i].Product = p
		}
	}
}

// Total sums price times quantity over all lines.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Len returns the number of distinct product lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Registry hands out one cart per user, creating it on first access.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// Get returns the user's cart, creating an empty one if absent.
func (r *Registry) Get(userID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		c = New()
		r.carts[userID] = c
	}
	return c
}

// Peek returns the user's cart without creating one.
func (r *Registry) Peek(userID string) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	return c, ok
}
