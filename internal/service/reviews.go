package service

import (
	"context"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// ReviewService manages product reviews: one per (user, product),
// editable by the author or an admin
type ReviewService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store *store.Store) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Create adds a review for a product the user has not reviewed yet
func (s *ReviewService) Create(ctx context.Context, userID int64, article string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, E(KindInvalid, "rating must be between 1 and 5")
	}

	product, err := s.store.GetProductByArticle(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return nil, E(KindNotFound, "product %s not found", article)
	}

	review := &models.Review{
		UserID:        userID,
		ArticleNumber: article,
		Rating:        rating,
		Comment:       comment,
	}
	created, err := s.store.CreateReview(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	if !created {
		return nil, E(KindConflict, "user %d already reviewed product %s", userID, article)
	}
	return review, nil
}

// ListByArticle retrieves a product's reviews
func (s *ReviewService) ListByArticle(ctx context.Context, article string) ([]models.Review, error) {
	return s.store.ListReviewsByArticle(ctx, article)
}

// Update edits a review; only the author may edit unless asAdmin is set
func (s *ReviewService) Update(ctx context.Context, userID, reviewID int64, rating int, comment string, asAdmin bool) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, E(KindInvalid, "rating must be between 1 and 5")
	}

	review, err := s.ownedReview(ctx, userID, reviewID, asAdmin)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.UpdateReview(ctx, reviewID, rating, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	if !ok {
		return nil, E(KindNotFound, "review %d not found", reviewID)
	}

	review.Rating = rating
	review.Comment = comment
	return review, nil
}

// Delete removes a review; only the author may delete unless asAdmin
// is set
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID int64, asAdmin bool) error {
	if _, err := s.ownedReview(ctx, userID, reviewID, asAdmin); err != nil {
		return err
	}

	ok, err := s.store.DeleteReview(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if !ok {
		return E(KindNotFound, "review %d not found", reviewID)
	}
	return nil
}

func (s *ReviewService) ownedReview(ctx context.Context, userID, reviewID int64, asAdmin bool) (*models.Review, error) {
	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review == nil {
		return nil, E(KindNotFound, "review %d not found", reviewID)
	}
	if !asAdmin && review.UserID != userID {
		return nil, E(KindForbidden, "review %d does not belong to the caller", reviewID)
	}
	return review, nil
}
