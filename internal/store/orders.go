package store

import (
	"context"
	"database/sql"
	"fmt"

	"shop-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetOrderByID retrieves an order by ID, nil if absent
func (s *Store) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIDTx reads an order under a row lock so a lifecycle
// transition cannot race another transition for the same order
func (s *Store) GetOrderByIDTx(ctx context.Context, tx *sqlx.Tx, orderID int64) (*models.Order, error) {
	var order models.Order
	err := tx.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE order_id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByUser retrieves a user's non-cart orders, newest first
func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 AND order_status <> $2 ORDER BY order_date DESC",
		userID, models.StatusCart)
	return orders, err
}

// ListAllOrders retrieves every non-cart order, for admin views
func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE order_status <> $1 ORDER BY order_date DESC",
		models.StatusCart)
	return orders, err
}

// ListItemsByOrderID retrieves all lines of an order
func (s *Store) ListItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY order_item_id", orderID)
	return items, err
}

// ListItemsByOrderIDTx is the transactional variant used by checkout
// and lifecycle transitions
func (s *Store) ListItemsByOrderIDTx(ctx context.Context, tx *sqlx.Tx, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := tx.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY order_item_id", orderID)
	return items, err
}

// PromoteCartTx promotes a cart to a placed order, attaching shipping
// fields. The status predicate makes the promotion one-way: a second
// checkout finds no cart-status row and affects nothing.
func (s *Store) PromoteCartTx(ctx context.Context, tx *sqlx.Tx, orderID int64, shipping models.ShippingInfo) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET order_status = $1, delivery_address = $2, telephone = $3, payment_method = $4,
		    order_date = NOW(), last_updated = NOW()
		WHERE order_id = $5 AND order_status = $6`,
		models.StatusPlaced, shipping.DeliveryAddress, shipping.Telephone, shipping.PaymentMethod,
		orderID, models.StatusCart)
	if err != nil {
		return false, fmt.Errorf("failed to promote cart: %w", err)
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// CreateGuestOrderTx inserts a placed order for a guest shopper. Guest
// carts have no persistent header before checkout, so the row is born
// already placed.
func (s *Store) CreateGuestOrderTx(ctx context.Context, tx *sqlx.Tx, shipping models.ShippingInfo, contact models.GuestContact) (*models.Order, error) {
	var order models.Order
	err := tx.GetContext(ctx, &order, `
		INSERT INTO orders (user_id, order_status, delivery_address, telephone, payment_method, guest_email, guest_name)
		VALUES (NULL, $1, $2, $3, $4, $5, $6)
		RETURNING *`,
		models.StatusPlaced, shipping.DeliveryAddress, shipping.Telephone, shipping.PaymentMethod,
		contact.Email, contact.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest order: %w", err)
	}
	return &order, nil
}

// UpdateOrderStatusTx conditionally moves an order from one status to
// another; returns false when the order was no longer in the expected
// source status
func (s *Store) UpdateOrderStatusTx(ctx context.Context, tx *sqlx.Tx, orderID int64, from, to models.OrderStatus) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET order_status = $1, last_updated = NOW() WHERE order_id = $2 AND order_status = $3",
		to, orderID, from)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// UpdateOrderShipping edits shipping fields on an order, for admin use
func (s *Store) UpdateOrderShipping(ctx context.Context, orderID int64, shipping models.ShippingInfo) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET delivery_address = $1, telephone = $2, payment_method = $3, last_updated = NOW()
		WHERE order_id = $4`,
		shipping.DeliveryAddress, shipping.Telephone, shipping.PaymentMethod, orderID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// DeleteOrder removes an order and, via cascade, its lines
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM orders WHERE order_id = $1", orderID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}
