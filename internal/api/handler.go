package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog  *service.CatalogService
	carts    *service.CartService
	checkout *service.CheckoutService
	orders   *service.OrderService
	reviews  *service.ReviewService
	profiles *service.ProfileService
	chat     *service.ChatService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	carts *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	reviews *service.ReviewService,
	profiles *service.ProfileService,
	chat *service.ChatService,
) *Handler {
	return &Handler{
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		reviews:  reviews,
		profiles: profiles,
		chat:     chat,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.createProduct)
		v1.PATCH("/products/:id", h.updateProduct)
		v1.GET("/products/:id/rating", h.getProductRating)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addToCart)
		v1.PUT("/cart/items/:productId", h.updateCartItem)
		v1.DELETE("/cart/items/:productId", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.POST("/checkout", h.placeOrder)

		v1.GET("/orders", h.getOrderHistory)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/cancel", h.cancelOrder)
		v1.POST("/orders/:id/receive", h.markOrderReceived)

		v1.GET("/orders/:id/products/:productId/review", h.getReview)
		v1.POST("/orders/:id/products/:productId/review", h.submitReview)
		v1.GET("/reviews", h.getUserReviews)

		v1.GET("/profile", h.getProfile)
		v1.PATCH("/profile", h.updateProfile)
		v1.POST("/profile/avatar", h.uploadAvatar)

		v1.GET("/chat/messages", h.getChatMessages)
		v1.POST("/chat/messages", h.sendChatMessage)
	}
}

// userID extracts the authenticated user identity. Token validation is
// done upstream; the gateway forwards the resolved id in a header.
func userID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// respondError maps the service error taxonomy to HTTP statuses.
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, store.ErrAlreadyReviewed):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
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

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Product not found", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	image, err := decodeImage(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image encoding", "details": err.Error()})
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
	}

	if err := h.catalog.CreateProduct(c.Request.Context(), product, image); err != nil {
		respondError(c, "Failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

type productUpdateRequest struct {
	models.ProductUpdate
	ImageBase64 string `json:"image_base64,omitempty"`
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	image, err := decodeImage(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image encoding", "details": err.Error()})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), req.ProductUpdate, image)
	if err != nil {
		respondError(c, "Failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) getProductRating(c *gin.Context) {
	summary, err := h.reviews.GetRatingSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch rating", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) getCart(c *gin.Context) {
	lines, total, err := h.carts.GetCart(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, "Failed to fetch cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lines, "total": total})
}

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.carts.AddToCart(c.Request.Context(), userID(c), req.ProductID); err != nil {
		respondError(c, "Failed to add to cart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.carts.UpdateQuantity(c.Request.Context(), userID(c), c.Param("productId"), req.Quantity); err != nil {
		respondError(c, "Failed to update cart item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	if err := h.carts.RemoveFromCart(c.Request.Context(), userID(c), c.Param("productId")); err != nil {
		respondError(c, "Failed to remove cart item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context(), userID(c)); err != nil {
		respondError(c, "Failed to clear cart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) placeOrder(c *gin.Context) {
	order, err := h.checkout.PlaceOrder(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, "Failed to place order", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrderHistory(c *gin.Context) {
	orders, err := h.orders.GetOrderHistory(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, "Failed to fetch order history", err)
		return
	}

	type orderWithActions struct {
		models.Order
		AllowedActions []string `json:"allowed_actions"`
	}

	out := make([]orderWithActions, len(orders))
	for i := range orders {
		out[i] = orderWithActions{
			Order:          orders[i],
			AllowedActions: h.orders.AllowedActions(&orders[i]),
		}
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "Order not found", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to cancel order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) markOrderReceived(c *gin.Context) {
	order, err := h.orders.MarkReceived(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to mark order received", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) getReview(c *gin.Context) {
	orderID := c.Param("id")
	productID := c.Param("productId")

	review, err := h.reviews.GetReview(c.Request.Context(), orderID, productID)
	if err != nil {
		respondError(c, "Failed to fetch review", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviewed": review != nil,
		"review":   review,
	})
}

type reviewImageRequest struct {
	DataBase64 string `json:"data_base64" binding:"required"`
	Ext        string `json:"ext,omitempty"`
}

type submitReviewRequest struct {
	Rating  int                  `json:"rating"`
	Comment string               `json:"comment,omitempty"`
	Images  []reviewImageRequest `json:"images,omitempty"`
}

func (h *Handler) submitReview(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	images := make([]service.ReviewImage, 0, len(req.Images))
	for _, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.DataBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image encoding", "details": err.Error()})
			return
		}
		images = append(images, service.ReviewImage{Data: data, Ext: img.Ext})
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(),
		userID(c), c.Param("id"), c.Param("productId"), req.Rating, req.Comment, images)
	if err != nil {
		respondError(c, "Failed to submit review", err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handler) getUserReviews(c *gin.Context) {
	reviews, err := h.reviews.GetUserReviews(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, "Failed to fetch reviews", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.profiles.LoadProfile(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, "Failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// Avatar changes go through the upload endpoint.
	upd.AvatarURL = nil

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), userID(c), upd)
	if err != nil {
		respondError(c, "Failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type avatarRequest struct {
	DataBase64 string `json:"data_base64" binding:"required"`
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.DataBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image encoding", "details": err.Error()})
		return
	}

	profile, err := h.profiles.UploadAvatar(c.Request.Context(), userID(c), data)
	if err != nil {
		respondError(c, "Failed to upload avatar", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) getChatMessages(c *gin.Context) {
	messages, err := h.chat.GetMessages(c.Request.Context(), c.Query("chat_id"))
	if err != nil {
		respondError(c, "Failed to fetch messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type chatMessageRequest struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	ChatID   string `json:"chat_id,omitempty"`
}

func (h *Handler) sendChatMessage(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sender := userID(c)
	if sender == "" {
		sender = "user"
	}

	var msg *models.ChatMessage
	var err error
	if req.ImageURL != "" {
		msg, err = h.chat.SendImage(c.Request.Context(), req.ChatID, sender, req.ImageURL)
	} else {
		msg, err = h.chat.SendText(c.Request.Context(), req.ChatID, sender, req.Text)
	}
	if err != nil {
		respondError(c, "Failed to send message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func decodeImage(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
