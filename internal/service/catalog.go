package service

import (
	"context"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService exposes catalog reads to shoppers and product
// management to admins
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ListProducts retrieves catalog products; shoppers see active
// products only, admins everything
func (s *CatalogService) ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	return s.store.GetProducts(ctx, !includeInactive)
}

// GetProduct retrieves a product with its sizes. Deactivated products
// stay hidden unless includeInactive is set.
func (s *CatalogService) GetProduct(ctx context.Context, article string, includeInactive bool) (*models.Product, error) {
	product, err := s.store.GetProductByArticle(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil || (!product.IsActive && !includeInactive) {
		return nil, E(KindNotFound, "product %s not found", article)
	}

	sizes, err := s.store.GetSizesByArticle(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("failed to load sizes: %w", err)
	}
	product.Sizes = sizes
	return product, nil
}

// ListSizes returns every distinct size label in the catalog
func (s *CatalogService) ListSizes(ctx context.Context) ([]string, error) {
	return s.store.ListDistinctSizes(ctx)
}

// CreateProduct adds a product with its initial size/stock rows
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ArticleNumber == "" || product.Name == "" {
		return E(KindInvalid, "article number and name are required")
	}
	if product.Price < 0 {
		return E(KindInvalid, "price cannot be negative")
	}

	existing, err := s.store.GetProductByArticle(ctx, product.ArticleNumber)
	if err != nil {
		return err
	}
	if existing != nil {
		return E(KindConflict, "product %s already exists", product.ArticleNumber)
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		// Two racing creates pass the existence check; the primary key
		// rejects the loser.
		return mapDBError(fmt.Errorf("failed to create product: %w", err))
	}

	for _, size := range product.Sizes {
		if size.Size == "" || size.Stock < 0 {
			continue
		}
		if err := s.store.UpsertProductSize(ctx, product.ArticleNumber, size.Size, size.Stock); err != nil {
			return fmt.Errorf("failed to set stock for size %s: %w", size.Size, err)
		}
	}

	s.logger.Info("Product created", zap.String("article", product.ArticleNumber))
	return nil
}

// UpdateProduct overwrites a product's mutable fields and replaces the
// stock counts of any listed sizes
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	ok, err := s.store.UpdateProduct(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if !ok {
		return E(KindNotFound, "product %s not found", product.ArticleNumber)
	}

	for _, size := range product.Sizes {
		if size.Size == "" || size.Stock < 0 {
			continue
		}
		if err := s.store.UpsertProductSize(ctx, product.ArticleNumber, size.Size, size.Stock); err != nil {
			return fmt.Errorf("failed to set stock for size %s: %w", size.Size, err)
		}
	}
	return nil
}

// DeleteProduct removes a product and its size rows
func (s *CatalogService) DeleteProduct(ctx context.Context, article string) error {
	ok, err := s.store.DeleteProduct(ctx, article)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !ok {
		return E(KindNotFound, "product %s not found", article)
	}
	s.logger.Info("Product deleted", zap.String("article", article))
	return nil
}
