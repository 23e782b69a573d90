package service

import (
	"context"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CartService owns the active cart of an authenticated shopper: one
// cart-status order per user, mutated through stock-aware line rules
type CartService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddItem adds quantity of (article, size) to the user's cart. An
// existing line for the same product and size merges by summing
// quantities; the merged quantity is checked against available stock.
func (s *CartService) AddItem(ctx context.Context, userID int64, article, size string, quantity int) (*models.OrderItem, error) {
	if quantity <= 0 {
		return nil, E(KindInvalid, "quantity must be positive")
	}

	var result *models.OrderItem
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		ps, err := s.store.GetProductSizeTx(ctx, tx, article, size)
		if err != nil {
			return fmt.Errorf("failed to read stock: %w", err)
		}
		if ps == nil {
			return E(KindNotFound, "size %q not found for product %s", size, article)
		}

		cart, err := s.store.GetOrCreateActiveCartTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		existing, err := s.store.GetItemForMergeTx(ctx, tx, cart.OrderID, article, size)
		if err != nil {
			return fmt.Errorf("failed to look up cart line: %w", err)
		}

		current := 0
		if existing != nil {
			current = existing.Quantity
		}
		merged, err := checkMergedStock(article, size, current, quantity, ps.Stock)
		if err != nil {
			return err
		}

		if existing != nil {
			if err := s.store.UpdateItemQuantityTx(ctx, tx, existing.OrderItemID, merged); err != nil {
				return fmt.Errorf("failed to merge cart line: %w", err)
			}
			existing.Quantity = merged
			result = existing
			return nil
		}

		item := &models.OrderItem{
			OrderID:       cart.OrderID,
			ArticleNumber: article,
			Size:          size,
			Quantity:      quantity,
		}
		if err := s.store.InsertOrderItemTx(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to insert cart line: %w", err)
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, mapDBError(err)
	}

	util.CartItemsAddedTotal.Inc()
	s.logger.Info("Cart item added",
		zap.Int64("user_id", userID),
		zap.String("article", article),
		zap.String("size", size),
		zap.Int("quantity", result.Quantity))
	return result, nil
}

// UpdateItem overwrites size and quantity on a line the user owns.
// Stock is authoritative only at checkout, so no availability check
// happens here.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID int64, size string, quantity int) (*models.OrderItem, error) {
	if size == "" || quantity <= 0 {
		return nil, E(KindInvalid, "size and a positive quantity are required")
	}

	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return nil, err
	}

	item, err := s.store.UpdateOrderItem(ctx, itemID, size, quantity)
	if err != nil {
		// The unique line constraint fires when the new size collides
		// with another line of the same cart.
		return nil, mapDBError(fmt.Errorf("failed to update cart line: %w", err))
	}
	if item == nil {
		return nil, E(KindNotFound, "order item %d not found", itemID)
	}
	return item, nil
}

// RemoveItem deletes a line the user owns. The line delete, the
// remaining count and any header removal commit together, so a line
// added concurrently can never vanish with the header. A cart emptied
// by the removal loses its header as well; nothing is gained by
// keeping an empty cart row around.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	var (
		emptied bool
		orderID int64
	)
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		item, err := s.store.GetOrderItemByIDTx(ctx, tx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load order item: %w", err)
		}
		if item == nil {
			return E(KindNotFound, "order item %d not found", itemID)
		}

		order, err := s.store.GetOrderByIDTx(ctx, tx, item.OrderID)
		if err != nil {
			return fmt.Errorf("failed to load parent order: %w", err)
		}
		if order == nil {
			return E(KindNotFound, "order %d not found", item.OrderID)
		}
		if order.UserID == nil || *order.UserID != userID {
			return E(KindForbidden, "order item %d does not belong to the caller", itemID)
		}
		orderID = order.OrderID

		if err := s.store.DeleteOrderItemTx(ctx, tx, itemID); err != nil {
			return fmt.Errorf("failed to delete cart line: %w", err)
		}

		remaining, err := s.store.CountItemsByOrderIDTx(ctx, tx, order.OrderID)
		if err != nil {
			return fmt.Errorf("failed to count remaining lines: %w", err)
		}
		if remaining == 0 && order.Status == models.StatusCart {
			emptied = true
			return s.store.DeleteOrderTx(ctx, tx, order.OrderID)
		}
		return s.store.TouchCartTx(ctx, tx, order.OrderID)
	})
	if err != nil {
		return mapDBError(err)
	}

	if emptied {
		s.logger.Info("Empty cart removed", zap.Int64("order_id", orderID))
	}
	return nil
}

// CountItems reports the number of lines in the user's active cart
func (s *CartService) CountItems(ctx context.Context, userID int64) (int, error) {
	return s.store.CountCartItems(ctx, userID)
}

// ListItems retrieves the lines of the user's active cart
func (s *CartService) ListItems(ctx context.Context, userID int64) ([]models.OrderItem, error) {
	return s.store.ListCartItems(ctx, userID)
}

// ownedItem loads a line and its parent order, enforcing that the
// caller owns the order
func (s *CartService) ownedItem(ctx context.Context, userID, itemID int64) (*models.Order, error) {
	item, err := s.store.GetOrderItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order item: %w", err)
	}
	if item == nil {
		return nil, E(KindNotFound, "order item %d not found", itemID)
	}

	order, err := s.store.GetOrderByID(ctx, item.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent order: %w", err)
	}
	if order == nil {
		return nil, E(KindNotFound, "order %d not found", item.OrderID)
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, E(KindForbidden, "order item %d does not belong to the caller", itemID)
	}
	return order, nil
}

// checkMergedStock folds an addition into the existing line quantity
// and validates the total against available stock
func checkMergedStock(article, size string, existing, add, stock int) (int, error) {
	merged := existing + add
	if merged > stock {
		util.CartAddsRejectedTotal.WithLabelValues("out_of_stock").Inc()
		return 0, E(KindOutOfStock, "not enough stock for %s size %s: requested %d, available %d",
			article, size, merged, stock)
	}
	return merged, nil
}
