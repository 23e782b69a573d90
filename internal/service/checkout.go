package service

import (
	"context"
	"fmt"
	"time"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/session"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CheckoutService converts an active cart into a placed order in one
// transaction, deducting stock exactly once. Confirm and fulfill are
// stock-neutral; only cancellation restores stock.
type CheckoutService struct {
	store    *store.Store
	sessions *session.Store
	verifier *CaptchaVerifier
	events   *broker.EventPublisher
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	store *store.Store,
	sessions *session.Store,
	verifier *CaptchaVerifier,
	events *broker.EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		store:    store,
		sessions: sessions,
		verifier: verifier,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// Checkout promotes the user's active cart to a placed order. Every
// line's stock is re-validated and deducted inside the transaction;
// any shortfall aborts the whole operation with the cart untouched.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, shipping models.ShippingInfo) (int64, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if err := validateShipping(shipping); err != nil {
		return 0, err
	}

	cart, err := s.store.GetActiveCart(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve active cart: %w", err)
	}
	if cart == nil {
		util.CheckoutsFailedTotal.WithLabelValues("no_cart").Inc()
		return 0, E(KindNotFound, "no active cart for user %d", userID)
	}

	items, err := s.store.ListItemsByOrderID(ctx, cart.OrderID)
	if err != nil {
		return 0, fmt.Errorf("failed to list cart lines: %w", err)
	}
	if len(items) == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return 0, E(KindEmptyCart, "cart is empty")
	}

	start := time.Now()
	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		lines, err := s.store.ListItemsByOrderIDTx(ctx, tx, cart.OrderID)
		if err != nil {
			return fmt.Errorf("failed to re-read cart lines: %w", err)
		}
		if len(lines) == 0 {
			return E(KindEmptyCart, "cart is empty")
		}

		for _, line := range lines {
			if err := s.deductLine(ctx, tx, line.ArticleNumber, line.Size, line.Quantity); err != nil {
				return err
			}
		}

		promoted, err := s.store.PromoteCartTx(ctx, tx, cart.OrderID, shipping)
		if err != nil {
			return err
		}
		if !promoted {
			// Cart already promoted or swept by a concurrent request.
			return E(KindNotFound, "no active cart for user %d", userID)
		}
		return nil
	})
	if err != nil {
		err = mapDBError(err)
		if KindOf(err) == KindInternal {
			util.CheckoutsFailedTotal.WithLabelValues("db_error").Inc()
		}
		return 0, err
	}

	util.CheckoutLatency.Observe(time.Since(start).Seconds())
	util.CheckoutsTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", cart.OrderID),
		zap.Int64("user_id", userID),
		zap.Int("lines", len(items)))

	s.publishPlaced(ctx, cart.OrderID, userID, false, items)
	return cart.OrderID, nil
}

// GuestCheckout places an order from the session-held line list. The
// bot-mitigation token is verified before any database work; the order
// row and its lines come into persistent existence inside the same
// transaction that deducts stock.
func (s *CheckoutService) GuestCheckout(ctx context.Context, sessionID string, shipping models.ShippingInfo, contact models.GuestContact, captchaToken string) (int64, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.GuestCheckout")
	defer span.End()

	if err := validateShipping(shipping); err != nil {
		return 0, err
	}
	if contact.Email == "" || contact.Name == "" {
		return 0, E(KindInvalid, "guest checkout requires email and name")
	}

	if s.verifier != nil {
		ok, err := s.verifier.Verify(ctx, captchaToken)
		if err != nil {
			return 0, fmt.Errorf("captcha verification unavailable: %w", err)
		}
		if !ok {
			util.CheckoutsFailedTotal.WithLabelValues("captcha").Inc()
			return 0, E(KindVerificationFailed, "captcha verification failed")
		}
	}

	lines, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return 0, E(KindEmptyCart, "cart is empty")
	}

	var orderID int64
	start := time.Now()
	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		order, err := s.store.CreateGuestOrderTx(ctx, tx, shipping, contact)
		if err != nil {
			return err
		}
		orderID = order.OrderID

		for _, line := range lines {
			if err := s.deductLine(ctx, tx, line.ArticleNumber, line.Size, line.Quantity); err != nil {
				return err
			}
			item := &models.OrderItem{
				OrderID:       order.OrderID,
				ArticleNumber: line.ArticleNumber,
				Size:          line.Size,
				Quantity:      line.Quantity,
			}
			if err := s.store.InsertOrderItemTx(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to persist guest line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		err = mapDBError(err)
		if KindOf(err) == KindInternal {
			util.CheckoutsFailedTotal.WithLabelValues("db_error").Inc()
		}
		return 0, err
	}

	if err := s.sessions.ClearCart(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear guest session cart after checkout",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	util.CheckoutLatency.Observe(time.Since(start).Seconds())
	util.CheckoutsTotal.Inc()
	s.logger.Info("Guest order placed",
		zap.Int64("order_id", orderID),
		zap.Int("lines", len(lines)))

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ArticleNumber: l.ArticleNumber,
			Size:          l.Size,
			Quantity:      l.Quantity,
		})
	}
	s.publishPlaced(ctx, orderID, 0, true, items)
	return orderID, nil
}

// deductLine locks the stock row and applies the conditional
// decrement; both a missing row and a shortfall abort the checkout
func (s *CheckoutService) deductLine(ctx context.Context, tx *sqlx.Tx, article, size string, quantity int) error {
	ps, err := s.store.GetProductSizeTx(ctx, tx, article, size)
	if err != nil {
		return fmt.Errorf("failed to lock stock row: %w", err)
	}
	if ps == nil {
		util.CheckoutsFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return E(KindInsufficientStock, "size %s of %s is no longer available", size, article)
	}

	ok, err := s.store.DeductStockTx(ctx, tx, article, size, quantity)
	if err != nil {
		return err
	}
	if !ok {
		util.CheckoutsFailedTotal.WithLabelValues("insufficient_stock").Inc()
		util.StockConflictsTotal.Inc()
		return E(KindInsufficientStock, "not enough stock for %s size %s: requested %d, available %d",
			article, size, quantity, ps.Stock)
	}
	return nil
}

func (s *CheckoutService) publishPlaced(ctx context.Context, orderID, userID int64, guest bool, items []models.OrderItem) {
	if s.events == nil {
		return
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.CartLine{
			ArticleNumber: item.ArticleNumber,
			Size:          item.Size,
			Quantity:      item.Quantity,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		UserID:  userID,
		Guest:   guest,
		Items:   lines,
	}

	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func validateShipping(shipping models.ShippingInfo) error {
	if shipping.DeliveryAddress == "" || shipping.Telephone == "" || shipping.PaymentMethod == "" {
		return E(KindInvalid, "delivery address, telephone and payment method are required")
	}
	return nil
}
