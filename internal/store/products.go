package store

import (
	"context"
	"database/sql"
	"fmt"

	"shop-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetProducts retrieves catalog products. When activeOnly is set,
// deactivated products are filtered out.
func (s *Store) GetProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	query := "SELECT * FROM products ORDER BY article_number"
	if activeOnly {
		query = "SELECT * FROM products WHERE is_active ORDER BY article_number"
	}

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query)
	return products, err
}

// GetProductByArticle retrieves a product by its article code, nil if absent
func (s *Store) GetProductByArticle(ctx context.Context, article string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE article_number = $1", article)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetSizesByArticle retrieves all size rows for a product
func (s *Store) GetSizesByArticle(ctx context.Context, article string) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	err := s.db.SelectContext(ctx, &sizes,
		"SELECT * FROM product_sizes WHERE article_number = $1 ORDER BY size", article)
	return sizes, err
}

// GetProductSize retrieves a single (article, size) stock row, nil if absent
func (s *Store) GetProductSize(ctx context.Context, article, size string) (*models.ProductSize, error) {
	var ps models.ProductSize
	err := s.db.GetContext(ctx, &ps,
		"SELECT * FROM product_sizes WHERE article_number = $1 AND size = $2", article, size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// GetProductSizeTx reads a stock row under a row lock so concurrent
// transactions serialize on the check-then-deduct sequence
func (s *Store) GetProductSizeTx(ctx context.Context, tx *sqlx.Tx, article, size string) (*models.ProductSize, error) {
	var ps models.ProductSize
	err := tx.GetContext(ctx, &ps,
		"SELECT * FROM product_sizes WHERE article_number = $1 AND size = $2 FOR UPDATE",
		article, size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// DeductStockTx conditionally decrements stock for (article, size).
// Returns false when the remaining stock cannot cover quantity; the
// row is left untouched in that case.
func (s *Store) DeductStockTx(ctx context.Context, tx *sqlx.Tx, article, size string, quantity int) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE product_sizes SET stock = stock - $1 WHERE article_number = $2 AND size = $3 AND stock >= $1",
		quantity, article, size)
	if err != nil {
		return false, fmt.Errorf("failed to deduct stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// RestoreStockTx increments stock for (article, size), recreating the
// row with stock = quantity if it was deleted in the interim
func (s *Store) RestoreStockTx(ctx context.Context, tx *sqlx.Tx, article, size string, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE product_sizes SET stock = stock + $1 WHERE article_number = $2 AND size = $3",
		quantity, article, size)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO product_sizes (article_number, size, stock) VALUES ($1, $2, $3)",
			article, size, quantity)
		if err != nil {
			return fmt.Errorf("failed to recreate size row: %w", err)
		}
	}
	return nil
}

// CreateProduct inserts a new catalog product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (article_number, name, price, discount, description, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return s.db.GetContext(ctx, &p.CreatedAt, query,
		p.ArticleNumber, p.Name, p.Price, p.Discount, p.Description, p.ImageURL, p.IsActive)
}

// UpdateProduct updates mutable product fields
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = $1, price = $2, discount = $3, description = $4, image_url = $5, is_active = $6
		 WHERE article_number = $7`,
		p.Name, p.Price, p.Discount, p.Description, p.ImageURL, p.IsActive, p.ArticleNumber)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// UpsertProductSize sets the stock count for (article, size)
func (s *Store) UpsertProductSize(ctx context.Context, article, size string, stock int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO product_sizes (article_number, size, stock) VALUES ($1, $2, $3)
		 ON CONFLICT (article_number, size) DO UPDATE SET stock = EXCLUDED.stock`,
		article, size, stock)
	return err
}

// DeleteProduct removes a product and, via cascade, its sizes
func (s *Store) DeleteProduct(ctx context.Context, article string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM products WHERE article_number = $1", article)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// ListDistinctSizes returns every size label present in the catalog
func (s *Store) ListDistinctSizes(ctx context.Context) ([]string, error) {
	var sizes []string
	err := s.db.SelectContext(ctx, &sizes,
		"SELECT DISTINCT size FROM product_sizes ORDER BY size")
	return sizes, err
}
