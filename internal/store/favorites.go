package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// AddFavorite inserts a favorite, returning false when the pair
// already exists
func (s *Store) AddFavorite(ctx context.Context, userID int64, article string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO favorites (user_id, article_number) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, article)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// AddFavoriteTx is the transactional variant used during guest
// session migration
func (s *Store) AddFavoriteTx(ctx context.Context, tx *sqlx.Tx, userID int64, article string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO favorites (user_id, article_number) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, article)
	return err
}

// RemoveFavorite deletes a favorite, returning false when it was absent
func (s *Store) RemoveFavorite(ctx context.Context, userID int64, article string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = $1 AND article_number = $2",
		userID, article)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// ListFavorites retrieves the user's favorite article numbers
func (s *Store) ListFavorites(ctx context.Context, userID int64) ([]string, error) {
	var articles []string
	err := s.db.SelectContext(ctx, &articles,
		"SELECT article_number FROM favorites WHERE user_id = $1 ORDER BY added_at", userID)
	return articles, err
}

// CountFavorites counts the user's favorites
func (s *Store) CountFavorites(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM favorites WHERE user_id = $1", userID)
	return count, err
}
