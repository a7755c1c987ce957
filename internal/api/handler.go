package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"points-mall/internal/models"
	"points-mall/internal/objectstore"
	"points-mall/internal/service"
	"points-mall/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalogService  *service.CatalogService
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	couponService   *service.CouponService
	pointsService   *service.PointsService
	userService     *service.UserService
	objectStore     *objectstore.Client
	allowedOrigins  []string
	demoUserID      string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	couponService *service.CouponService,
	pointsService *service.PointsService,
	userService *service.UserService,
	objectStore *objectstore.Client,
	allowedOrigins []string,
	demoUserID string,
) *Handler {
	return &Handler{
		catalogService:  catalogService,
		cartService:     cartService,
		checkoutService: checkoutService,
		couponService:   couponService,
		pointsService:   pointsService,
		userService:     userService,
		objectStore:     objectStore,
		allowedOrigins:  allowedOrigins,
		demoUserID:      demoUserID,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     h.allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items", h.changeCartQuantity)
		v1.DELETE("/cart", h.clearCart)

		v1.POST("/checkout/preview", h.previewCheckout)
		v1.POST("/checkout", h.placeOrder)
		v1.GET("/orders", h.listMyOrders)
		v1.GET("/orders/:id", h.getOrder)

		v1.GET("/coupons", h.listCoupons)
		v1.GET("/coupons/mine", h.listMyCoupons)
		v1.POST("/coupons/:id/claim", h.claimCoupon)

		v1.GET("/me", h.getProfile)
		v1.PATCH("/me", h.updateProfile)

		v1.GET("/points/history", h.pointsHistory)
		v1.POST("/points/checkin", h.dailyCheckin)
		v1.GET("/points/checkin/status", h.checkinStatus)
		v1.GET("/points/verify", h.verifyLedger)

		v1.GET("/favorites", h.listFavorites)
		v1.PUT("/favorites/:productId", h.addFavorite)
		v1.DELETE("/favorites/:productId", h.removeFavorite)
		v1.POST("/favorites/:productId/toggle", h.toggleFavorite)
	}

	admin := router.Group("/api/v1/admin")
	{
		admin.POST("/images", h.uploadImage)
		admin.DELETE("/images", h.deleteImage)

		admin.PUT("/products/:id", h.saveProduct)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.GET("/users", h.listUsers)
		admin.PATCH("/users/:id/points", h.adjustUserPoints)
		admin.PATCH("/users/:id/level", h.setUserLevel)

		admin.GET("/orders", h.listAllOrders)
		admin.PATCH("/orders/:id/status", h.setOrderStatus)
	}
}

// userID resolves the caller identity. The reference product runs in a
// single-demo-user mode, so a missing header falls back to the configured
// demo user instead of failing.
func (h *Handler) userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return h.demoUserID
}

// respondError maps business errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrCouponNotFound),
		errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrInsufficientPoints),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrAlreadyCheckedIn),
		errors.Is(err, models.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
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

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.Products(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) getCart(c *gin.Context) {
	items, err := h.cartService.Get(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.cartService.Add(c.Request.Context(), h.userID(c), req.ProductID, req.Size); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

type changeQuantityRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Delta     int    `json:"delta" binding:"required"`
}

func (h *Handler) changeCartQuantity(c *gin.Context) {
	var req changeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.cartService.ChangeQuantity(c.Request.Context(), h.userID(c), req.ProductID, req.Size, req.Delta); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), h.userID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

type checkoutRequest struct {
	CouponID string `json:"coupon_id"`
}

func (h *Handler) previewCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	quote, err := h.checkoutService.Preview(c.Request.Context(), h.userID(c), req.CouponID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), h.userID(c), req.CouponID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listMyOrders(c *gin.Context) {
	orders, err := h.checkoutService.Orders(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.checkoutService.GetOrder(c.Request.Context(), h.userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listCoupons(c *gin.Context) {
	coupons, err := h.couponService.Available(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

func (h *Handler) listMyCoupons(c *gin.Context) {
	coupons, err := h.couponService.Mine(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

func (h *Handler) claimCoupon(c *gin.Context) {
	if err := h.couponService.Claim(c.Request.Context(), h.userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "claimed"})
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.userService.Profile(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Name   string `json:"name" binding:"required"`
	Avatar string `json:"avatar"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), h.userID(c), req.Name, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) pointsHistory(c *gin.Context) {
	history, err := h.pointsService.History(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

func (h *Handler) dailyCheckin(c *gin.Context) {
	award, err := h.pointsService.DailyCheckin(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"awarded": award})
}

func (h *Handler) checkinStatus(c *gin.Context) {
	checkedIn, err := h.pointsService.HasCheckedInToday(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked_in": checkedIn})
}

func (h *Handler) verifyLedger(c *gin.Context) {
	consistent, err := h.pointsService.VerifyLedger(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consistent": consistent})
}

func (h *Handler) listFavorites(c *gin.Context) {
	ids, err := h.userService.Favorites(c.Request.Context(), h.userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_ids": ids})
}

func (h *Handler) addFavorite(c *gin.Context) {
	if err := h.userService.AddFavorite(c.Request.Context(), h.userID(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "favorited"})
}

func (h *Handler) removeFavorite(c *gin.Context) {
	if err := h.userService.RemoveFavorite(c.Request.Context(), h.userID(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	fav, err := h.userService.ToggleFavorite(c.Request.Context(), h.userID(c), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": fav})
}

type saveProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       int64   `json:"price" binding:"min=0"`
	Image       string  `json:"image"`
	CategoryID  string  `json:"category_id" binding:"required"`
	Rating      float64 `json:"rating"`
	Calories    int     `json:"calories"`
	TagType     string  `json:"tag_type"`
}

func (h *Handler) saveProduct(c *gin.Context) {
	var req saveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product := &models.Product{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
		Rating:      req.Rating,
		Calories:    req.Calories,
		TagType:     req.TagType,
	}

	if err := h.catalogService.SaveProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) uploadImage(c *gin.Context) {
	if h.objectStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object store not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
		return
	}
	if fileHeader.Size > objectstore.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, objectstore.MaxImageSize+1))
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.objectStore.PutImage(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

type deleteImageRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) deleteImage(c *gin.Context) {
	if h.objectStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object store not configured"})
		return
	}

	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.objectStore.DeleteImage(c.Request.Context(), req.URL); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type adjustPointsRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

func (h *Handler) adjustUserPoints(c *gin.Context) {
	var req adjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.userService.AdjustPoints(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type setLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

func (h *Handler) setUserLevel(c *gin.Context) {
	var req setLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.userService.SetLevel(c.Request.Context(), c.Param("id"), req.Level); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.checkoutService.AllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type setOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setOrderStatus(c *gin.Context) {
	var req setOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.checkoutService.SetOrderStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
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
