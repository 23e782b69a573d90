package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shop-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetActiveCart retrieves the user's cart-status order, nil if none exists
func (s *Store) GetActiveCart(ctx context.Context, userID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE user_id = $1 AND order_status = $2",
		userID, models.StatusCart)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrCreateActiveCart returns the user's active cart, creating one if
// absent. The partial unique index on (user_id) WHERE order_status = 1
// makes concurrent creation collapse onto a single row.
func (s *Store) GetOrCreateActiveCart(ctx context.Context, userID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		INSERT INTO orders (user_id, order_status)
		VALUES ($1, $2)
		ON CONFLICT (user_id) WHERE order_status = 1
		DO UPDATE SET last_updated = NOW()
		RETURNING *`,
		userID, models.StatusCart)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return &order, nil
}

// GetOrCreateActiveCartTx is the transactional variant used during
// guest session migration
func (s *Store) GetOrCreateActiveCartTx(ctx context.Context, tx *sqlx.Tx, userID int64) (*models.Order, error) {
	var order models.Order
	err := tx.GetContext(ctx, &order, `
		INSERT INTO orders (user_id, order_status)
		VALUES ($1, $2)
		ON CONFLICT (user_id) WHERE order_status = 1
		DO UPDATE SET last_updated = NOW()
		RETURNING *`,
		userID, models.StatusCart)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return &order, nil
}

// TouchCartTx bumps the cart header's last_updated timestamp
func (s *Store) TouchCartTx(ctx context.Context, tx *sqlx.Tx, orderID int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET last_updated = NOW() WHERE order_id = $1", orderID)
	return err
}

// GetOrderItemByID retrieves a line item, nil if absent
func (s *Store) GetOrderItemByID(ctx context.Context, itemID int64) (*models.OrderItem, error) {
	var item models.OrderItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM order_items WHERE order_item_id = $1", itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetOrderItemByIDTx is the transactional variant used by line removal
func (s *Store) GetOrderItemByIDTx(ctx context.Context, tx *sqlx.Tx, itemID int64) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.GetContext(ctx, &item,
		"SELECT * FROM order_items WHERE order_item_id = $1", itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemForMergeTx finds an existing line for (order, article, size)
// so an add can merge quantities instead of duplicating the line
func (s *Store) GetItemForMergeTx(ctx context.Context, tx *sqlx.Tx, orderID int64, article, size string) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.GetContext(ctx, &item,
		"SELECT * FROM order_items WHERE order_id = $1 AND article_number = $2 AND size = $3",
		orderID, article, size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertOrderItemTx inserts a new line item
func (s *Store) InsertOrderItemTx(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, article_number, size, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING order_item_id`

	return tx.GetContext(ctx, &item.OrderItemID, query,
		item.OrderID, item.ArticleNumber, item.Size, item.Quantity)
}

// UpdateItemQuantityTx overwrites a line's quantity
func (s *Store) UpdateItemQuantityTx(ctx context.Context, tx *sqlx.Tx, itemID int64, quantity int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE order_items SET quantity = $1 WHERE order_item_id = $2",
		quantity, itemID)
	return err
}

// UpdateOrderItem overwrites size and quantity on a line
func (s *Store) UpdateOrderItem(ctx context.Context, itemID int64, size string, quantity int) (*models.OrderItem, error) {
	var item models.OrderItem
	err := s.db.GetContext(ctx, &item,
		"UPDATE order_items SET size = $1, quantity = $2 WHERE order_item_id = $3 RETURNING *",
		size, quantity, itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteOrderItemTx removes a single line item
func (s *Store) DeleteOrderItemTx(ctx context.Context, tx *sqlx.Tx, itemID int64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM order_items WHERE order_item_id = $1", itemID)
	return err
}

// CountItemsByOrderIDTx counts the remaining lines of an order
func (s *Store) CountItemsByOrderIDTx(ctx context.Context, tx *sqlx.Tx, orderID int64) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM order_items WHERE order_id = $1", orderID)
	return count, err
}

// DeleteOrderTx removes an order and, via cascade, its lines inside
// the caller's transaction
func (s *Store) DeleteOrderTx(ctx context.Context, tx *sqlx.Tx, orderID int64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM orders WHERE order_id = $1", orderID)
	return err
}

// CountCartItems counts the lines of the user's active cart
func (s *Store) CountCartItems(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM order_items oi
		JOIN orders o ON oi.order_id = o.order_id
		WHERE o.user_id = $1 AND o.order_status = $2`,
		userID, models.StatusCart)
	return count, err
}

// ListCartItems retrieves the lines of the user's active cart
func (s *Store) ListCartItems(ctx context.Context, userID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT oi.* FROM order_items oi
		JOIN orders o ON oi.order_id = o.order_id
		WHERE o.user_id = $1 AND o.order_status = $2
		ORDER BY oi.order_item_id`,
		userID, models.StatusCart)
	return items, err
}

// DeleteStaleCarts removes cart-status orders untouched since the
// cutoff. The status predicate keeps promoted orders out of reach: a
// concurrent checkout flips the status before commit, so the sweep's
// WHERE clause no longer matches the row.
func (s *Store) DeleteStaleCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM orders WHERE order_status = $1 AND last_updated < $2",
		models.StatusCart, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
