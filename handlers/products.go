package handlers

import (
	"net/http"
	"strconv"

	"table-order-api/models"
	"table-order-api/repository"

	"github.com/gin-gonic/gin"
)

// ListProducts returns the menu, optionally filtered by category, type or availability
func (h *Handler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Category:    c.Query("category"),
		ProductType: models.ProductType(c.Query("type")),
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "available must be true or false"})
			return
		}
		filter.IsAvailable = &available
	}

	products, err := h.Products.List(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, "Failed to fetch products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// GetProduct returns one product with its toppings and set components
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.Products.FindByID(c.Request.Context(), c.Param("id"))
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to fetch product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SetProductAvailability marks a product sold out or available again
func (h *Handler) SetProductAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	err := h.Products.SetAvailability(ctx, c.Param("id"), *req.IsAvailable)
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to update product", err)
		return
	}
	product, err := h.Products.FindByID(ctx, c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}
