package models

// OrderStatus enumerates the semantic states of an order. The integer
// values match the order_status column.
type OrderStatus int

const (
	StatusCart      OrderStatus = 1
	StatusPlaced    OrderStatus = 2
	StatusConfirmed OrderStatus = 3
	StatusFulfilled OrderStatus = 4
	StatusCancelled OrderStatus = 5
)

var statusNames = map[OrderStatus]string{
	StatusCart:      "cart",
	StatusPlaced:    "placed",
	StatusConfirmed: "confirmed",
	StatusFulfilled: "fulfilled",
	StatusCancelled: "cancelled",
}

func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// transitions is the full set of allowed status changes. Checkout is
// the only path that performs Cart -> Placed; admin transitions move a
// placed order forward or cancel it.
var transitions = map[OrderStatus][]OrderStatus{
	StatusCart:      {StatusPlaced},
	StatusPlaced:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusFulfilled, StatusCancelled},
	StatusFulfilled: {},
	StatusCancelled: {},
}

// CanTransition reports whether moving from one status to another is
// allowed by the lifecycle state machine
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
