package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
)

// Func-field fakes for the store interfaces. Unset fields fall back to
// benign defaults so each test only wires what it cares about.

type fakeProductStore struct {
	products map[string]models.Product

	getByIDsErr error
}

func newFakeProductStore(products ...models.Product) *fakeProductStore {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &fakeProductStore{products: byID}
}

func (f *fakeProductStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductStore) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	return &p, nil
}

func (f *fakeProductStore) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if f.getByIDsErr != nil {
		return nil, f.getByIDsErr
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = fmt.Sprintf("generated-%d", len(f.products)+1)
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProductStore) UpdateProduct(ctx context.Context, productID string, upd models.ProductUpdate) error {
	p, ok := f.products[productID]
	if !ok {
		return fmt.Errorf("product not found: %s", productID)
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	f.products[productID] = p
	return nil
}

type fakeOrderStore struct {
	createFunc       func(ctx context.Context, order *models.Order, items []models.OrderItem) error
	updateStatusFunc func(ctx context.Context, orderID, status string) error

	orders map[string]*models.Order
	items  map[string][]models.OrderItem
	seq    int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[string]*models.Order),
		items:  make(map[string][]models.OrderItem),
	}
}

func (f *fakeOrderStore) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, order, items)
	}
	f.seq++
	order.ID = fmt.Sprintf("order-%d", f.seq)
	stored := *order
	f.orders[order.ID] = &stored
	for i := range items {
		items[i].OrderID = order.ID
	}
	f.items[order.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	if f.updateStatusFunc != nil {
		return f.updateStatusFunc(ctx, orderID, status)
	}
	o, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order not found: %s", orderID)
	}
	o.Status = status
	return nil
}

func (f *fakeOrderStore) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

type fakeReviewStore struct {
	getFunc func(ctx context.Context, orderID, productID string) (*models.Review, error)

	reviews map[string]*models.Review
	seq     int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[string]*models.Review)}
}

func pairKey(orderID, productID string) string {
	return orderID + "|" + productID
}

func (f *fakeReviewStore) CreateReview(ctx context.Context, review *models.Review) error {
	key := pairKey(review.OrderID, review.ProductID)
	if _, exists := f.reviews[key]; exists {
		return fmt.Errorf("duplicate review")
	}
	f.seq++
	review.ID = fmt.Sprintf("review-%d", f.seq)
	stored := *review
	f.reviews[key] = &stored
	return nil
}

func (f *fakeReviewStore) GetReviewByOrderAndProduct(ctx context.Context, orderID, productID string) (*models.Review, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, orderID, productID)
	}
	r, ok := f.reviews[pairKey(orderID, productID)]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReviewStore) GetReviewsByUserID(ctx context.Context, userID string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error) {
	summary := &models.RatingSummary{ProductID: productID}
	for _, r := range f.reviews {
		if r.ProductID == productID {
			summary.TotalCount++
			summary.AverageRating += float64(r.Rating)
		}
	}
	if summary.TotalCount > 0 {
		summary.AverageRating /= float64(summary.TotalCount)
	}
	return summary, nil
}

type fakeUploader struct {
	uploadFunc func(ctx context.Context, bucket, path string, data []byte, upsert bool) (string, error)
	uploads    []string
}

func (f *fakeUploader) Upload(ctx context.Context, bucket, path string, data []byte, upsert bool) (string, error) {
	if f.uploadFunc != nil {
		return f.uploadFunc(ctx, bucket, path, data, upsert)
	}
	f.uploads = append(f.uploads, bucket+"/"+path)
	return path, nil
}

func (f *fakeUploader) PublicURL(bucket, path string) string {
	return "https://cdn.test/" + bucket + "/" + path
}

type capturedEvents struct {
	placed        []*models.OrderPlacedEvent
	statusChanged []*models.OrderStatusChangedEvent
	submitted     []*models.ReviewSubmittedEvent
}

func (c *capturedEvents) PublishOrderPlaced(ctx context.Context, e *models.OrderPlacedEvent) error {
	c.placed = append(c.placed, e)
	return nil
}

func (c *capturedEvents) PublishOrderStatusChanged(ctx context.Context, e *models.OrderStatusChangedEvent) error {
	c.statusChanged = append(c.statusChanged, e)
	return nil
}

func (c *capturedEvents) PublishReviewSubmitted(ctx context.Context, e *models.ReviewSubmittedEvent) error {
	c.submitted = append(c.submitted, e)
	return nil
}
