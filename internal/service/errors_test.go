package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := E(KindOutOfStock, "not enough stock for %s", "B1000")
	assert.Equal(t, KindOutOfStock, KindOf(err))
	assert.Equal(t, "not enough stock for B1000", err.Error())
}

func TestKindOfWrappedChain(t *testing.T) {
	inner := E(KindNotFound, "order 42 not found")
	wrapped := fmt.Errorf("failed to load order: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("driver: bad connection")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := Wrap(KindConflict, cause, "checkout aborted")

	assert.Equal(t, KindConflict, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "checkout aborted")
	assert.Contains(t, err.Error(), "deadlock")
}

func TestMapDBError(t *testing.T) {
	unique := fmt.Errorf("failed to update cart line: %w", &pq.Error{Code: "23505"})
	assert.Equal(t, KindConflict, KindOf(mapDBError(unique)))

	serialization := fmt.Errorf("checkout failed: %w", &pq.Error{Code: "40001"})
	assert.Equal(t, KindConflict, KindOf(mapDBError(serialization)))

	deadlock := fmt.Errorf("checkout failed: %w", &pq.Error{Code: "40P01"})
	assert.Equal(t, KindConflict, KindOf(mapDBError(deadlock)))
}

func TestMapDBErrorPassthrough(t *testing.T) {
	// Errors without a recognized driver code stay internal.
	plain := errors.New("driver: bad connection")
	assert.Equal(t, KindInternal, KindOf(mapDBError(plain)))

	otherCode := fmt.Errorf("insert failed: %w", &pq.Error{Code: "23503"})
	assert.Equal(t, KindInternal, KindOf(mapDBError(otherCode)))

	// Already-classified errors are never rewrapped.
	classified := E(KindOutOfStock, "not enough stock")
	assert.Same(t, classified, mapDBError(classified).(*Error))

	assert.NoError(t, mapDBError(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "out_of_stock", KindOutOfStock.String())
	assert.Equal(t, "invalid_transition", KindInvalidTransition.String())
	assert.Equal(t, "internal", Kind(-1).String())
}
