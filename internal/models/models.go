package models

import (
	"time"
)

// Product represents a catalog product, keyed by its article code
type Product struct {
	ArticleNumber string        `db:"article_number" json:"article_number"`
	Name          string        `db:"name" json:"name"`
	Price         int64         `db:"price" json:"price"`
	Discount      int           `db:"discount" json:"discount"`
	Description   string        `db:"description" json:"description"`
	ImageURL      string        `db:"image_url" json:"image_url"`
	IsActive      bool          `db:"is_active" json:"is_active"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	Sizes         []ProductSize `db:"-" json:"sizes,omitempty"`
}

// ProductSize is the per-(article, size) stock row. It is the single
// source of truth for availability; every quantity mutation reads and
// writes this row inside the enclosing transaction.
type ProductSize struct {
	SizeID        int64  `db:"size_id" json:"size_id"`
	ArticleNumber string `db:"article_number" json:"article_number"`
	Size          string `db:"size" json:"size"`
	Stock         int    `db:"stock" json:"stock"`
}

// Order is the dual-purpose aggregate root: a mutable cart header while
// status is Cart, an immutable-intent order once placed. Pointer fields
// are NULL in the database while the row is a cart or belongs to a
// guest, and serialize as JSON null rather than a wrapper object.
type Order struct {
	OrderID         int64       `db:"order_id" json:"order_id"`
	UserID          *int64      `db:"user_id" json:"user_id"`
	Status          OrderStatus `db:"order_status" json:"order_status"`
	DeliveryAddress *string     `db:"delivery_address" json:"delivery_address"`
	Telephone       *string     `db:"telephone" json:"telephone"`
	PaymentMethod   *string     `db:"payment_method" json:"payment_method"`
	GuestEmail      *string     `db:"guest_email" json:"guest_email"`
	GuestName       *string     `db:"guest_name" json:"guest_name"`
	OrderDate       time.Time   `db:"order_date" json:"order_date"`
	LastUpdated     time.Time   `db:"last_updated" json:"last_updated"`
}

// OrderItem is one line of an order. (order_id, article_number, size)
// is unique; adding the same product+size again merges quantities.
type OrderItem struct {
	OrderItemID   int64  `db:"order_item_id" json:"order_item_id"`
	OrderID       int64  `db:"order_id" json:"order_id"`
	ArticleNumber string `db:"article_number" json:"article_number"`
	Size          string `db:"size" json:"size"`
	Quantity      int    `db:"quantity" json:"quantity"`
}

// CartLine is the wire shape of a line item, used for guest session
// carts and downstream tooling
type CartLine struct {
	ArticleNumber string `json:"article_number"`
	Size          string `json:"size"`
	Quantity      int    `json:"quantity"`
}

// Review is a customer review, one per (user, product)
type Review struct {
	ReviewID      int64     `db:"review_id" json:"review_id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	ArticleNumber string    `db:"article_number" json:"article_number"`
	Rating        int       `db:"rating" json:"rating"`
	Comment       string    `db:"comment" json:"comment"`
	ReviewDate    time.Time `db:"review_date" json:"review_date"`
}

// ShippingInfo carries the fields attached to an order at checkout
type ShippingInfo struct {
	DeliveryAddress string `json:"delivery_address"`
	Telephone       string `json:"telephone"`
	PaymentMethod   string `json:"payment_method"`
}

// GuestContact identifies a guest shopper at checkout time
type GuestContact struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
