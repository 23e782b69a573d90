package service

import (
	"context"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/session"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// GuestCartService mirrors the cart contract for unauthenticated
// shoppers: the cart lives in session storage, with the same
// stock-aware line rules, and folds into persistent rows once the
// shopper logs in or registers
type GuestCartService struct {
	store    *store.Store
	sessions *session.Store
	logger   *zap.Logger
}

// NewGuestCartService creates a new guest cart service
func NewGuestCartService(store *store.Store, sessions *session.Store) *GuestCartService {
	return &GuestCartService{
		store:    store,
		sessions: sessions,
		logger:   util.GetLogger(),
	}
}

// AddItem adds quantity of (article, size) to the session cart,
// merging with an existing line and checking the merged quantity
// against available stock
func (s *GuestCartService) AddItem(ctx context.Context, sessionID, article, size string, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, E(KindInvalid, "quantity must be positive")
	}

	ps, err := s.store.GetProductSize(ctx, article, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}
	if ps == nil {
		return nil, E(KindNotFound, "size %q not found for product %s", size, article)
	}

	lines, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := findLine(lines, article, size)
	current := 0
	if idx >= 0 {
		current = lines[idx].Quantity
	}
	merged, err := checkMergedStock(article, size, current, quantity, ps.Stock)
	if err != nil {
		return nil, err
	}

	if idx >= 0 {
		lines[idx].Quantity = merged
	} else {
		lines = append(lines, models.CartLine{
			ArticleNumber: article,
			Size:          size,
			Quantity:      quantity,
		})
		idx = len(lines) - 1
	}

	if err := s.sessions.SetCart(ctx, sessionID, lines); err != nil {
		return nil, err
	}

	util.CartItemsAddedTotal.Inc()
	line := lines[idx]
	return &line, nil
}

// UpdateItem overwrites the quantity of the session line for
// (article, size). As with the persistent cart, stock is authoritative
// only at checkout.
func (s *GuestCartService) UpdateItem(ctx context.Context, sessionID, article, size string, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, E(KindInvalid, "quantity must be positive")
	}

	lines, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := findLine(lines, article, size)
	if idx < 0 {
		return nil, E(KindNotFound, "no cart line for %s size %s", article, size)
	}

	lines[idx].Quantity = quantity
	if err := s.sessions.SetCart(ctx, sessionID, lines); err != nil {
		return nil, err
	}

	line := lines[idx]
	return &line, nil
}

// RemoveItem deletes the session line for (article, size)
func (s *GuestCartService) RemoveItem(ctx context.Context, sessionID, article, size string) error {
	lines, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return err
	}

	idx := findLine(lines, article, size)
	if idx < 0 {
		return E(KindNotFound, "no cart line for %s size %s", article, size)
	}

	lines = append(lines[:idx], lines[idx+1:]...)
	if len(lines) == 0 {
		return s.sessions.ClearCart(ctx, sessionID)
	}
	return s.sessions.SetCart(ctx, sessionID, lines)
}

// ListItems retrieves the session's cart lines
func (s *GuestCartService) ListItems(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	return s.sessions.GetCart(ctx, sessionID)
}

// CountItems reports the number of lines in the session cart
func (s *GuestCartService) CountItems(ctx context.Context, sessionID string) (int, error) {
	lines, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// AddFavorite adds an article to the session favorite set
func (s *GuestCartService) AddFavorite(ctx context.Context, sessionID, article string) error {
	product, err := s.store.GetProductByArticle(ctx, article)
	if err != nil {
		return fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return E(KindNotFound, "product %s not found", article)
	}

	added, err := s.sessions.AddFavorite(ctx, sessionID, article)
	if err != nil {
		return err
	}
	if !added {
		return E(KindConflict, "product %s is already a favorite", article)
	}
	return nil
}

// RemoveFavorite removes an article from the session favorite set
func (s *GuestCartService) RemoveFavorite(ctx context.Context, sessionID, article string) error {
	removed, err := s.sessions.RemoveFavorite(ctx, sessionID, article)
	if err != nil {
		return err
	}
	if !removed {
		return E(KindNotFound, "product %s is not a favorite", article)
	}
	return nil
}

// ListFavorites retrieves the session's favorite article numbers
func (s *GuestCartService) ListFavorites(ctx context.Context, sessionID string) ([]string, error) {
	return s.sessions.GetFavorites(ctx, sessionID)
}

// MigrateSession folds guest session state into persistent storage at
// the moment identity is established. Favorites insert where missing;
// cart lines merge by summing into any pre-existing persistent line
// for the same product and size, matching the add-to-cart merge rule.
// Session state is cleared only after the transaction commits.
func (s *GuestCartService) MigrateSession(ctx context.Context, userID int64, sessionID string) error {
	ctx, span := util.StartSpan(ctx, "GuestCartService.MigrateSession")
	defer span.End()

	lines, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return err
	}
	favorites, err := s.sessions.GetFavorites(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(lines) == 0 && len(favorites) == 0 {
		return nil
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, article := range favorites {
			if err := s.store.AddFavoriteTx(ctx, tx, userID, article); err != nil {
				return fmt.Errorf("failed to migrate favorite %s: %w", article, err)
			}
		}

		if len(lines) == 0 {
			return nil
		}

		cart, err := s.store.GetOrCreateActiveCartTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		existing, err := s.store.ListItemsByOrderIDTx(ctx, tx, cart.OrderID)
		if err != nil {
			return fmt.Errorf("failed to list cart lines: %w", err)
		}

		plan := planCartMigration(existing, lines)
		for _, item := range plan.updates {
			if err := s.store.UpdateItemQuantityTx(ctx, tx, item.OrderItemID, item.Quantity); err != nil {
				return fmt.Errorf("failed to merge migrated line: %w", err)
			}
		}
		for _, line := range plan.inserts {
			item := &models.OrderItem{
				OrderID:       cart.OrderID,
				ArticleNumber: line.ArticleNumber,
				Size:          line.Size,
				Quantity:      line.Quantity,
			}
			if err := s.store.InsertOrderItemTx(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to migrate cart line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return mapDBError(err)
	}

	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear migrated session",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	util.GuestCartsMigratedTotal.Inc()
	s.logger.Info("Guest session migrated",
		zap.Int64("user_id", userID),
		zap.Int("cart_lines", len(lines)),
		zap.Int("favorites", len(favorites)))
	return nil
}

func findLine(lines []models.CartLine, article, size string) int {
	for i, line := range lines {
		if line.ArticleNumber == article && line.Size == size {
			return i
		}
	}
	return -1
}

// cartMigration is the set of writes that folds session lines into a
// persistent cart
type cartMigration struct {
	updates []models.OrderItem
	inserts []models.CartLine
}

// planCartMigration merges incoming session lines into the existing
// cart lines: a collision on (article, size) sums quantities, every
// other line becomes an insert
func planCartMigration(existing []models.OrderItem, incoming []models.CartLine) cartMigration {
	var plan cartMigration
	for _, line := range incoming {
		merged := false
		for _, item := range existing {
			if item.ArticleNumber == line.ArticleNumber && item.Size == line.Size {
				item.Quantity += line.Quantity
				plan.updates = append(plan.updates, item)
				merged = true
				break
			}
		}
		if !merged {
			plan.inserts = append(plan.inserts, line)
		}
	}
	return plan
}
