package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderJSONNullableFields(t *testing.T) {
	// A guest order: no user, shipping attached at checkout.
	addr := "1 Main St"
	guest := Order{
		OrderID:         7,
		Status:          StatusPlaced,
		DeliveryAddress: &addr,
	}

	data, err := json.Marshal(guest)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"user_id":null`)
	assert.Contains(t, body, `"delivery_address":"1 Main St"`)
	assert.Contains(t, body, `"telephone":null`)
	assert.NotContains(t, body, `"Valid"`)
	assert.NotContains(t, body, `"String"`)

	uid := int64(42)
	cart := Order{OrderID: 8, UserID: &uid, Status: StatusCart}

	data, err = json.Marshal(cart)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user_id":42`)
}
