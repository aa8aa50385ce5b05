package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", middleware.RequireRole("admin"), h.CreateCategory)
		categories.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteCategory)
	}

	brands := router.Group("/brands")
	{
		brands.GET("", h.ListBrands)
		brands.POST("", middleware.RequireRole("admin"), h.CreateBrand)
		brands.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteBrand)
	}

	router.GET("/products/:id/reviews", h.ListReviews)
	router.POST("/products/:id/reviews", middleware.RequireRole("customer"), h.CreateReview)
	router.DELETE("/reviews/:id", middleware.RequireRole("customer", "admin"), h.DeleteReview)

	wishlist := router.Group("/wishlist", middleware.RequireRole("customer"))
	{
		wishlist.GET("", h.ListWishlist)
		wishlist.POST("/:productId", h.AddToWishlist)
		wishlist.DELETE("/:productId", h.RemoveFromWishlist)
	}
}

// ListCategories godoc
// @Summary List all categories
// @Tags catalog
// @Produce json
// @Success 200 {object} response.Response
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory godoc
// @Summary Create a category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCategoryRequest true "Category payload"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Category deleted"}))
}

// ListBrands godoc
// @Summary List all brands
// @Tags catalog
// @Produce json
// @Success 200 {object} response.Response
// @Router /brands [get]
func (h *CatalogHandler) ListBrands(c *gin.Context) {
	brands, err := h.catalogService.ListBrands(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, brands))
}

// CreateBrand godoc
// @Summary Create a brand
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateBrandRequest true "Brand payload"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /brands [post]
func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req service.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	brand, err := h.catalogService.CreateBrand(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, brand))
}

// DeleteBrand godoc
// @Summary Delete a brand
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Brand ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /brands/{id} [delete]
func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteBrand(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Brand deleted"}))
}

// ListReviews godoc
// @Summary List reviews for a product
// @Tags reviews
// @Produce json
// @Param id path string true "Product ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /products/{id}/reviews [get]
func (h *CatalogHandler) ListReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p := pagination.Parse(c)
	reviews, total, err := h.catalogService.ListReviews(c.Request.Context(), productID, p.Page, p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": reviews,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// CreateReview godoc
// @Summary Review a product
// @Description One review per customer per product
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body service.CreateReviewRequest true "Review payload"
// @Success 201 {object} response.Response{data=service.ReviewResponse}
// @Failure 400 {object} response.Response
// @Router /products/{id}/reviews [post]
func (h *CatalogHandler) CreateReview(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	review, err := h.catalogService.CreateReview(c.Request.Context(), userID, productID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, review))
}

// DeleteReview godoc
// @Summary Delete a review
// @Description Customers may delete their own reviews; admins may delete any
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /reviews/{id} [delete]
func (h *CatalogHandler) DeleteReview(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	isAdmin := c.GetString("userRole") == "admin"
	if err := h.catalogService.DeleteReview(c.Request.Context(), userID, reviewID, isAdmin); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Review deleted"}))
}

// ListWishlist godoc
// @Summary List the customer's wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /wishlist [get]
func (h *CatalogHandler) ListWishlist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	items, err := h.catalogService.ListWishlist(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// AddToWishlist godoc
// @Summary Add a product to the wishlist
// @Description Adding a product already on the wishlist is a no-op
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /wishlist/{productId} [post]
func (h *CatalogHandler) AddToWishlist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.catalogService.AddToWishlist(c.Request.Context(), userID, productID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Added to wishlist"}))
}

// RemoveFromWishlist godoc
// @Summary Remove a product from the wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} response.Response
// @Router /wishlist/{productId} [delete]
func (h *CatalogHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.catalogService.RemoveFromWishlist(c.Request.Context(), userID, productID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Removed from wishlist"}))
}
