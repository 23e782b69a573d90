package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shop-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Store keeps guest cart lines and favorite article numbers in Redis,
// keyed by the client's session ID. State lives as long as the
// session; migration into persistent rows happens on login.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore connects to Redis and returns a session store
func NewStore(addr, password string, db int, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.rdb.Close()
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:cart", sessionID)
}

func favoritesKey(sessionID string) string {
	return fmt.Sprintf("session:%s:favorites", sessionID)
}

// GetCart retrieves the session's cart lines; an absent key is an
// empty cart
func (s *Store) GetCart(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	data, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode session cart: %w", err)
	}
	return lines, nil
}

// SetCart overwrites the session's cart lines and refreshes the TTL
func (s *Store) SetCart(ctx context.Context, sessionID string, lines []models.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode session cart: %w", err)
	}
	return s.rdb.Set(ctx, cartKey(sessionID), data, s.ttl).Err()
}

// ClearCart removes the session's cart
func (s *Store) ClearCart(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

// GetFavorites retrieves the session's favorite article numbers
func (s *Store) GetFavorites(ctx context.Context, sessionID string) ([]string, error) {
	articles, err := s.rdb.SMembers(ctx, favoritesKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session favorites: %w", err)
	}
	return articles, nil
}

// AddFavorite adds an article to the session's favorite set; returns
// false when it was already present
func (s *Store) AddFavorite(ctx context.Context, sessionID, article string) (bool, error) {
	key := favoritesKey(sessionID)

	pipe := s.rdb.TxPipeline()
	added := pipe.SAdd(ctx, key, article)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to add session favorite: %w", err)
	}
	return added.Val() == 1, nil
}

// RemoveFavorite removes an article from the session's favorite set;
// returns false when it was absent
func (s *Store) RemoveFavorite(ctx context.Context, sessionID, article string) (bool, error) {
	removed, err := s.rdb.SRem(ctx, favoritesKey(sessionID), article).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove session favorite: %w", err)
	}
	return removed == 1, nil
}

// Clear drops all session state in one round trip
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID), favoritesKey(sessionID)).Err()
}
