package session

import (
	"context"
	"testing"
	"time"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCartRoundTrip(t *testing.T) {
	t.Skip("Integration test - requires Redis")

	s, err := NewStore("localhost:6379", "", 0, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	sid := "test-session-1"

	// Unknown session reads as an empty cart, not an error.
	lines, err := s.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, lines)

	cart := []models.CartLine{
		{ArticleNumber: "B1000", Size: "M", Quantity: 2},
		{ArticleNumber: "C2000", Size: "L", Quantity: 1},
	}
	require.NoError(t, s.SetCart(ctx, sid, cart))

	got, err := s.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, cart, got)

	require.NoError(t, s.ClearCart(ctx, sid))
	got, err = s.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionFavorites(t *testing.T) {
	t.Skip("Integration test - requires Redis")

	s, err := NewStore("localhost:6379", "", 0, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	sid := "test-session-2"

	added, err := s.AddFavorite(ctx, sid, "B1000")
	require.NoError(t, err)
	assert.True(t, added)

	// Second add of the same article is a no-op.
	added, err = s.AddFavorite(ctx, sid, "B1000")
	require.NoError(t, err)
	assert.False(t, added)

	favs, err := s.GetFavorites(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1000"}, favs)

	removed, err := s.RemoveFavorite(ctx, sid, "B1000")
	require.NoError(t, err)
	assert.True(t, removed)
}
