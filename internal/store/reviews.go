package store

import (
	"context"
	"database/sql"

	"shop-service/internal/models"

	"github.com/lib/pq"
)

// CreateReview inserts a review; returns false when the user already
// reviewed this product
func (s *Store) CreateReview(ctx context.Context, review *models.Review) (bool, error) {
	query := `
		INSERT INTO reviews (user_id, article_number, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING review_id, review_date`

	err := s.db.GetContext(ctx, review, query,
		review.UserID, review.ArticleNumber, review.Rating, review.Comment)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetReviewByID retrieves a review, nil if absent
func (s *Store) GetReviewByID(ctx context.Context, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review,
		"SELECT * FROM reviews WHERE review_id = $1", reviewID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviewsByArticle retrieves a product's reviews, newest first
func (s *Store) ListReviewsByArticle(ctx context.Context, article string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE article_number = $1 ORDER BY review_date DESC", article)
	return reviews, err
}

// UpdateReview overwrites rating and comment on a review
func (s *Store) UpdateReview(ctx context.Context, reviewID int64, rating int, comment string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reviews SET rating = $1, comment = $2 WHERE review_id = $3",
		rating, comment, reviewID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// DeleteReview removes a review
func (s *Store) DeleteReview(ctx context.Context, reviewID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM reviews WHERE review_id = $1", reviewID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}
