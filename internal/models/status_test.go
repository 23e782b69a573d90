package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusString(t *testing.T) {
	assert.Equal(t, "cart", StatusCart.String())
	assert.Equal(t, "placed", StatusPlaced.String())
	assert.Equal(t, "confirmed", StatusConfirmed.String())
	assert.Equal(t, "fulfilled", StatusFulfilled.String())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "unknown", OrderStatus(99).String())
}

func TestOrderStatusIsValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusCart, StatusPlaced, StatusConfirmed, StatusFulfilled, StatusCancelled} {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, OrderStatus(0).IsValid())
	assert.False(t, OrderStatus(6).IsValid())
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{StatusCart, StatusPlaced},
		{StatusPlaced, StatusConfirmed},
		{StatusPlaced, StatusCancelled},
		{StatusConfirmed, StatusFulfilled},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to OrderStatus }{
		{StatusCart, StatusConfirmed},
		{StatusCart, StatusCancelled},
		{StatusPlaced, StatusFulfilled},
		{StatusPlaced, StatusCart},
		{StatusFulfilled, StatusCancelled},
		{StatusCancelled, StatusPlaced},
		{StatusCancelled, StatusCancelled},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	for _, terminal := range []OrderStatus{StatusFulfilled, StatusCancelled} {
		for s := StatusCart; s <= StatusCancelled; s++ {
			assert.False(t, CanTransition(terminal, s))
		}
	}
}
