package service

import (
	"context"
	"testing"

	"shop-service/internal/models"
	"shop-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestockPlan(t *testing.T) {
	items := []models.OrderItem{
		{OrderItemID: 1, ArticleNumber: "B1000", Size: "M", Quantity: 2},
		{OrderItemID: 2, ArticleNumber: "B1000", Size: "L", Quantity: 1},
		{OrderItemID: 3, ArticleNumber: "C2000", Size: "S", Quantity: 4},
	}

	plan := restockPlan(items)

	// Every line restocks its own size with the ordered quantity.
	assert.Equal(t, []models.CartLine{
		{ArticleNumber: "B1000", Size: "M", Quantity: 2},
		{ArticleNumber: "B1000", Size: "L", Quantity: 1},
		{ArticleNumber: "C2000", Size: "S", Quantity: 4},
	}, plan)

	assert.Empty(t, restockPlan(nil))
}

func TestTransitionRejectsCartOrders(t *testing.T) {
	// An order still in cart status can only leave it through checkout;
	// the admin transition path must refuse it.
	t.Skip("Integration test - requires database")

	st, err := store.NewStore(testDatabaseURL)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	seedProduct(t, st, "B2000", "M", 5)

	item, err := NewCartService(st).AddItem(ctx, 601, "B2000", "M", 1)
	require.NoError(t, err)

	_, err = NewLifecycleService(st, nil).Transition(ctx, item.OrderID, models.StatusPlaced)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestCancelRestoresStock(t *testing.T) {
	// Cancelling a placed order returns every line's quantity to its
	// size row.
	t.Skip("Integration test - requires database")

	st, err := store.NewStore(testDatabaseURL)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	seedProduct(t, st, "B2001", "L", 10)

	_, err = NewCartService(st).AddItem(ctx, 602, "B2001", "L", 4)
	require.NoError(t, err)

	checkout := NewCheckoutService(st, nil, nil, nil)
	orderID, err := checkout.Checkout(ctx, 602, models.ShippingInfo{
		DeliveryAddress: "1 Main St",
		Telephone:       "555-0100",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)

	deducted, err := st.GetProductSize(ctx, "B2001", "L")
	require.NoError(t, err)
	assert.Equal(t, 6, deducted.Stock)

	lifecycle := NewLifecycleService(st, nil)
	order, err := lifecycle.Transition(ctx, orderID, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)

	restored, err := st.GetProductSize(ctx, "B2001", "L")
	require.NoError(t, err)
	assert.Equal(t, 10, restored.Stock)
}
