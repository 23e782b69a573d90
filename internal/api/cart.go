package api

import (
	"net/http"
	"strconv"

	"shop-service/internal/models"

	"github.com/gin-gonic/gin"
)

// Cart and checkout handlers. Each branches on the caller's identity:
// authenticated users hit the persistent cart, guests the
// session-backed one, with the same contract on both sides.

type cartItemRequest struct {
	ArticleNumber string `json:"article_number" binding:"required"`
	Size          string `json:"size" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
}

// listCart handles listing the caller's cart lines
func (h *Handler) listCart(c *gin.Context) {
	ctx := c.Request.Context()

	if uid, ok := userID(c); ok {
		items, err := h.carts.ListItems(ctx, uid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	lines, err := h.guests.ListItems(ctx, sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// countCart handles the cart line count
func (h *Handler) countCart(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		count int
		err   error
	)
	if uid, ok := userID(c); ok {
		count, err = h.carts.CountItems(ctx, uid)
	} else {
		count, err = h.guests.CountItems(ctx, sessionID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// addCartItem handles adding a line to the caller's cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if uid, ok := userID(c); ok {
		item, err := h.carts.AddItem(ctx, uid, req.ArticleNumber, req.Size, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
		return
	}

	line, err := h.guests.AddItem(ctx, sessionID(c), req.ArticleNumber, req.Size, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

type updateItemRequest struct {
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// updateCartItem handles overwriting a line. Authenticated carts
// address lines by ID; guest lines are addressed by article+size, with
// the article passed as the path parameter.
func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if uid, ok := userID(c); ok {
		itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
			return
		}
		item, err := h.carts.UpdateItem(ctx, uid, itemID, req.Size, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
		return
	}

	line, err := h.guests.UpdateItem(ctx, sessionID(c), c.Param("id"), req.Size, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

// removeCartItem handles deleting a line. Guests address the line by
// article (path) and size (query).
func (h *Handler) removeCartItem(c *gin.Context) {
	ctx := c.Request.Context()

	if uid, ok := userID(c); ok {
		itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
			return
		}
		if err := h.carts.RemoveItem(ctx, uid, itemID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "item removed"})
		return
	}

	if err := h.guests.RemoveItem(ctx, sessionID(c), c.Param("id"), c.Query("size")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed"})
}

type checkoutRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	Telephone       string `json:"telephone" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	CaptchaToken    string `json:"captcha_token"`
}

// doCheckout handles checkout for both authenticated and guest callers
func (h *Handler) doCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	shipping := models.ShippingInfo{
		DeliveryAddress: req.DeliveryAddress,
		Telephone:       req.Telephone,
		PaymentMethod:   req.PaymentMethod,
	}

	ctx := c.Request.Context()
	if uid, ok := userID(c); ok {
		orderID, err := h.checkout.Checkout(ctx, uid, shipping)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order placed", "order_id": orderID})
		return
	}

	contact := models.GuestContact{Email: req.Email, Name: req.Name}
	orderID, err := h.checkout.GuestCheckout(ctx, sessionID(c), shipping, contact, req.CaptchaToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order placed", "order_id": orderID})
}

// migrateSession folds the caller's guest session cart and favorites
// into their persistent state. Invoked right after login or
// registration completes upstream.
func (h *Handler) migrateSession(c *gin.Context) {
	uid, _ := userID(c)
	if err := h.guests.MigrateSession(c.Request.Context(), uid, sessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session migrated"})
}

// listOrders handles the caller's order history
func (h *Handler) listOrders(c *gin.Context) {
	uid, _ := userID(c)
	orders, err := h.lifecycle.ListUserOrders(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// getOrder handles a single order with its lines; callers see their
// own orders only
func (h *Handler) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, items, err := h.lifecycle.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	uid, _ := userID(c)
	if !c.GetBool(ctxIsAdmin) && (order.UserID == nil || *order.UserID != uid) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

type favoriteRequest struct {
	ArticleNumber string `json:"article_number" binding:"required"`
}

// addFavorite handles adding a product to the caller's favorites
func (h *Handler) addFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var err error
	if uid, ok := userID(c); ok {
		err = h.favorites.Add(ctx, uid, req.ArticleNumber)
	} else {
		err = h.guests.AddFavorite(ctx, sessionID(c), req.ArticleNumber)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "favorite added"})
}

// removeFavorite handles removing a product from the caller's favorites
func (h *Handler) removeFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	article := c.Param("article")

	var err error
	if uid, ok := userID(c); ok {
		err = h.favorites.Remove(ctx, uid, article)
	} else {
		err = h.guests.RemoveFavorite(ctx, sessionID(c), article)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "favorite removed"})
}

// listFavorites handles listing the caller's favorite article numbers
func (h *Handler) listFavorites(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		articles []string
		err      error
	)
	if uid, ok := userID(c); ok {
		articles, err = h.favorites.List(ctx, uid)
	} else {
		articles, err = h.guests.ListFavorites(ctx, sessionID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": articles})
}

// countFavorites handles the favorite count
func (h *Handler) countFavorites(c *gin.Context) {
	ctx := c.Request.Context()

	if uid, ok := userID(c); ok {
		count, err := h.favorites.Count(ctx, uid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
		return
	}

	articles, err := h.guests.ListFavorites(ctx, sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(articles)})
}
