package service

import (
	"context"
	"fmt"

	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// FavoriteService maintains the persistent favorite set of an
// authenticated user
type FavoriteService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(store *store.Store) *FavoriteService {
	return &FavoriteService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Add inserts (user, article) into the favorite set
func (s *FavoriteService) Add(ctx context.Context, userID int64, article string) error {
	product, err := s.store.GetProductByArticle(ctx, article)
	if err != nil {
		return fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return E(KindNotFound, "product %s not found", article)
	}

	added, err := s.store.AddFavorite(ctx, userID, article)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if !added {
		return E(KindConflict, "product %s is already a favorite", article)
	}
	return nil
}

// Remove deletes (user, article) from the favorite set
func (s *FavoriteService) Remove(ctx context.Context, userID int64, article string) error {
	removed, err := s.store.RemoveFavorite(ctx, userID, article)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if !removed {
		return E(KindNotFound, "product %s is not a favorite", article)
	}
	return nil
}

// List retrieves the user's favorite article numbers
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]string, error) {
	return s.store.ListFavorites(ctx, userID)
}

// Count reports the size of the user's favorite set
func (s *FavoriteService) Count(ctx context.Context, userID int64) (int, error) {
	return s.store.CountFavorites(ctx, userID)
}
