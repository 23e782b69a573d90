package service

import (
	"context"
	"fmt"
	"time"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// LifecycleService governs status transitions on placed orders. Stock
// was deducted once at checkout, so confirm and fulfill leave the
// ledger alone; cancellation restores every line's quantity.
type LifecycleService struct {
	store  *store.Store
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(store *store.Store, events *broker.EventPublisher) *LifecycleService {
	return &LifecycleService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// Transition moves an order to a new status, validating the change
// against the lifecycle state machine. The status write and any stock
// restoration commit in one transaction.
func (s *LifecycleService) Transition(ctx context.Context, orderID int64, to models.OrderStatus) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "LifecycleService.Transition")
	defer span.End()

	if !to.IsValid() {
		return nil, E(KindInvalid, "unknown order status %d", int(to))
	}

	var (
		from     models.OrderStatus
		restored []models.CartLine
	)
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		order, err := s.store.GetOrderByIDTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order == nil {
			return E(KindNotFound, "order %d not found", orderID)
		}
		from = order.Status

		// Carts are promoted by checkout only; the lifecycle manager
		// never moves a cart.
		if from == models.StatusCart {
			return E(KindInvalidTransition, "order %d is still a cart", orderID)
		}
		if !models.CanTransition(from, to) {
			return E(KindInvalidTransition, "cannot move order %d from %s to %s",
				orderID, from, to)
		}

		if to == models.StatusCancelled {
			items, err := s.store.ListItemsByOrderIDTx(ctx, tx, orderID)
			if err != nil {
				return fmt.Errorf("failed to list order lines: %w", err)
			}
			restored = restockPlan(items)
			for _, line := range restored {
				if err := s.store.RestoreStockTx(ctx, tx, line.ArticleNumber, line.Size, line.Quantity); err != nil {
					return err
				}
			}
		}

		moved, err := s.store.UpdateOrderStatusTx(ctx, tx, orderID, from, to)
		if err != nil {
			return err
		}
		if !moved {
			return E(KindConflict, "order %d changed status concurrently", orderID)
		}
		return nil
	})
	if err != nil {
		return nil, mapDBError(err)
	}

	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", from.String()),
		zap.String("to", to.String()))

	if to == models.StatusCancelled {
		util.OrdersCancelledTotal.Inc()
		s.publishCancelled(ctx, orderID, restored)
	} else {
		s.publishStatusChanged(ctx, orderID, from, to)
	}

	return s.store.GetOrderByID(ctx, orderID)
}

// GetOrder retrieves an order with its lines
func (s *LifecycleService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, E(KindNotFound, "order %d not found", orderID)
	}

	items, err := s.store.ListItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// ListUserOrders retrieves a user's placed-order history
func (s *LifecycleService) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

// ListAllOrders retrieves every placed order, for admin views
func (s *LifecycleService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListAllOrders(ctx)
}

// UpdateShipping edits shipping fields on an order, an administrative
// exception to placed-order immutability
func (s *LifecycleService) UpdateShipping(ctx context.Context, orderID int64, shipping models.ShippingInfo) error {
	if err := validateShipping(shipping); err != nil {
		return err
	}

	ok, err := s.store.UpdateOrderShipping(ctx, orderID, shipping)
	if err != nil {
		return fmt.Errorf("failed to update shipping: %w", err)
	}
	if !ok {
		return E(KindNotFound, "order %d not found", orderID)
	}
	return nil
}

// DeleteOrder removes an order outright, for admin use. Cancelled and
// cart orders only; deleting a live order would strand deducted stock.
func (s *LifecycleService) DeleteOrder(ctx context.Context, orderID int64) error {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return E(KindNotFound, "order %d not found", orderID)
	}
	if order.Status != models.StatusCart && order.Status != models.StatusCancelled {
		return E(KindInvalidTransition, "order %d must be cancelled before deletion", orderID)
	}

	ok, err := s.store.DeleteOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !ok {
		return E(KindNotFound, "order %d not found", orderID)
	}
	return nil
}

func (s *LifecycleService) publishStatusChanged(ctx context.Context, orderID int64, from, to models.OrderStatus) {
	if s.events == nil {
		return
	}
	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		From:    from.String(),
		To:      to.String(),
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
}

func (s *LifecycleService) publishCancelled(ctx context.Context, orderID int64, restored []models.CartLine) {
	if s.events == nil {
		return
	}
	event := &models.OrderCancelledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCancelled,
			Timestamp: time.Now(),
		},
		OrderID:  orderID,
		Restored: restored,
	}
	if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}
}

// restockPlan maps every order line to the stock quantity a cancellation
// must return to its product size.
func restockPlan(items []models.OrderItem) []models.CartLine {
	plan := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		plan = append(plan, models.CartLine{
			ArticleNumber: item.ArticleNumber,
			Size:          item.Size,
			Quantity:      item.Quantity,
		})
	}
	return plan
}
