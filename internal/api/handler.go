package api

import (
	"net/http"
	"strconv"
	"time"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog   *service.CatalogService
	carts     *service.CartService
	guests    *service.GuestCartService
	checkout  *service.CheckoutService
	lifecycle *service.LifecycleService
	favorites *service.FavoriteService
	reviews   *service.ReviewService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	carts *service.CartService,
	guests *service.GuestCartService,
	checkout *service.CheckoutService,
	lifecycle *service.LifecycleService,
	favorites *service.FavoriteService,
	reviews *service.ReviewService,
) *Handler {
	return &Handler{
		catalog:   catalog,
		carts:     carts,
		guests:    guests,
		checkout:  checkout,
		lifecycle: lifecycle,
		favorites: favorites,
		reviews:   reviews,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(identityMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:article", h.getProduct)
		v1.GET("/sizes", h.listSizes)
		v1.GET("/reviews/:article", h.listReviews)

		v1.GET("/cart", h.listCart)
		v1.GET("/cart/count", h.countCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.POST("/cart/migrate", requireUser(), h.migrateSession)

		v1.POST("/checkout", h.doCheckout)

		v1.GET("/orders", requireUser(), h.listOrders)
		v1.GET("/orders/:id", requireUser(), h.getOrder)

		v1.GET("/favorites", h.listFavorites)
		v1.GET("/favorites/count", h.countFavorites)
		v1.POST("/favorites", h.addFavorite)
		v1.DELETE("/favorites/:article", h.removeFavorite)

		auth := v1.Group("", requireUser())
		{
			auth.POST("/reviews", h.createReview)
			auth.PUT("/reviews/:id", h.updateReview)
			auth.DELETE("/reviews/:id", h.deleteReview)
		}

		admin := v1.Group("/admin", requireAdmin())
		{
			admin.GET("/orders", h.adminListOrders)
			admin.GET("/orders/:id", h.adminGetOrder)
			admin.PUT("/orders/:id/status", h.adminUpdateOrderStatus)
			admin.PUT("/orders/:id", h.adminUpdateOrderShipping)
			admin.DELETE("/orders/:id", h.adminDeleteOrder)

			admin.GET("/products", h.adminListProducts)
			admin.POST("/products", h.adminCreateProduct)
			admin.PUT("/products/:article", h.adminUpdateProduct)
			admin.DELETE("/products/:article", h.adminDeleteProduct)

			admin.PUT("/reviews/:id", h.adminUpdateReview)
			admin.DELETE("/reviews/:id", h.adminDeleteReview)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts handles catalog listing
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), c.GetBool(ctxIsAdmin))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// getProduct handles a single product with its sizes
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("article"), c.GetBool(ctxIsAdmin))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// listSizes handles the distinct size label listing
func (h *Handler) listSizes(c *gin.Context) {
	sizes, err := h.catalog.ListSizes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sizes": sizes})
}

// listReviews handles a product's review listing
func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.reviews.ListByArticle(c.Request.Context(), c.Param("article"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

type reviewRequest struct {
	ArticleNumber string `json:"article_number"`
	Rating        int    `json:"rating" binding:"required"`
	Comment       string `json:"comment"`
}

// createReview handles review creation
func (h *Handler) createReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	uid, _ := userID(c)
	review, err := h.reviews.Create(c.Request.Context(), uid, req.ArticleNumber, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// updateReview handles edits to the caller's own review
func (h *Handler) updateReview(c *gin.Context) {
	h.editReview(c, false)
}

// deleteReview handles deletion of the caller's own review
func (h *Handler) deleteReview(c *gin.Context) {
	h.dropReview(c, false)
}

func (h *Handler) editReview(c *gin.Context, asAdmin bool) {
	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	uid, _ := userID(c)
	review, err := h.reviews.Update(c.Request.Context(), uid, reviewID, req.Rating, req.Comment, asAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) dropReview(c *gin.Context, asAdmin bool) {
	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	uid, _ := userID(c)
	if err := h.reviews.Delete(c.Request.Context(), uid, reviewID, asAdmin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

// respondError maps a domain error to an HTTP response. Internal
// failures come back generic; the detail stays in the logs.
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindConflict, service.KindInvalidTransition:
		status = http.StatusConflict
	case service.KindOutOfStock, service.KindInsufficientStock,
		service.KindEmptyCart, service.KindInvalid, service.KindVerificationFailed:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	c.JSON(status, gin.H{
		"error":   kind.String(),
		"message": err.Error(),
	})
}
