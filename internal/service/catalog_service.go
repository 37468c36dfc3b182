package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService manages the product catalog, including image uploads
// for product listings.
type CatalogService struct {
	products ProductStore
	uploader Uploader
	bucket   string
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products ProductStore, uploader Uploader, bucket string) *CatalogService {
	return &CatalogService{
		products: products,
		uploader: uploader,
		bucket:   bucket,
		logger:   util.GetLogger(),
	}
}

// ListProducts returns the full catalog, newest first.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.GetProducts(ctx)
}

// GetProduct returns one product by id.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: blank product id", ErrInvalidInput)
	}
	return s.products.GetProductByID(ctx, productID)
}

// CreateProduct inserts a product, uploading its image first when one
// is provided.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product, image []byte) error {
	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}

	if len(image) > 0 {
		url, err := s.uploadProductImage(ctx, image)
		if err != nil {
			return err
		}
		product.ImageURL = url
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))
	return nil
}

// UpdateProduct applies a partial update, replacing the image first
// when new bytes are provided.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, upd models.ProductUpdate, newImage []byte) (*models.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: blank product id", ErrInvalidInput)
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}

	if len(newImage) > 0 {
		url, err := s.uploadProductImage(ctx, newImage)
		if err != nil {
			return nil, err
		}
		upd.ImageURL = &url
	}

	if err := s.products.UpdateProduct(ctx, productID, upd); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.products.GetProductByID(ctx, productID)
}

func (s *CatalogService) uploadProductImage(ctx context.Context, image []byte) (string, error) {
	path := fmt.Sprintf("product_images/%s", uuid.New().String())

	storedPath, err := s.uploader.Upload(ctx, s.bucket, path, image, true)
	if err != nil {
		return "", fmt.Errorf("failed to upload product image: %w", err)
	}
	return s.uploader.PublicURL(s.bucket, storedPath), nil
}
