package api

import (
	"net/http"
	"strconv"

	"shop-service/internal/models"

	"github.com/gin-gonic/gin"
)

// Administrative handlers. Status changes go through the lifecycle
// service so stock stays consistent; there is no raw status write.

// adminListOrders handles listing all placed orders
func (h *Handler) adminListOrders(c *gin.Context) {
	orders, err := h.lifecycle.ListAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// adminGetOrder handles a single order with its lines
func (h *Handler) adminGetOrder(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

type statusRequest struct {
	Status int `json:"status" binding:"required"`
}

// adminUpdateOrderStatus handles lifecycle transitions
func (h *Handler) adminUpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	order, err := h.lifecycle.Transition(c.Request.Context(), orderID, models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type shippingRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	Telephone       string `json:"telephone" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
}

// adminUpdateOrderShipping handles administrative shipping edits
func (h *Handler) adminUpdateOrderShipping(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req shippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	shipping := models.ShippingInfo{
		DeliveryAddress: req.DeliveryAddress,
		Telephone:       req.Telephone,
		PaymentMethod:   req.PaymentMethod,
	}
	if err := h.lifecycle.UpdateShipping(c.Request.Context(), orderID, shipping); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order updated"})
}

// adminDeleteOrder handles order deletion
func (h *Handler) adminDeleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	if err := h.lifecycle.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

// adminListProducts lists the catalog including deactivated products
func (h *Handler) adminListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type productRequest struct {
	ArticleNumber string `json:"article_number"`
	Name          string `json:"name" binding:"required"`
	Price         int64  `json:"price"`
	Discount      int    `json:"discount"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	IsActive      *bool  `json:"is_active"`
	Sizes         []struct {
		Size  string `json:"size"`
		Stock int    `json:"stock"`
	} `json:"sizes"`
}

func (r *productRequest) toModel(article string) *models.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	product := &models.Product{
		ArticleNumber: article,
		Name:          r.Name,
		Price:         r.Price,
		Discount:      r.Discount,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		IsActive:      active,
	}
	for _, s := range r.Sizes {
		product.Sizes = append(product.Sizes, models.ProductSize{
			ArticleNumber: article,
			Size:          s.Size,
			Stock:         s.Stock,
		})
	}
	return product
}

// adminCreateProduct handles product creation
func (h *Handler) adminCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	product := req.toModel(req.ArticleNumber)
	if err := h.catalog.CreateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// adminUpdateProduct handles product edits
func (h *Handler) adminUpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	product := req.toModel(c.Param("article"))
	if err := h.catalog.UpdateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// adminDeleteProduct handles product deletion
func (h *Handler) adminDeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("article")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// adminUpdateReview handles review moderation edits
func (h *Handler) adminUpdateReview(c *gin.Context) {
	h.editReview(c, true)
}

// adminDeleteReview handles review moderation deletion
func (h *Handler) adminDeleteReview(c *gin.Context) {
	h.dropReview(c, true)
}
