package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-retail-pos/internal/models"
)

// GetProducts serves the catalog. The list is memoized in the request
// cache; concurrent cold reads share one store fetch, and ?refresh=true
// forces a bypass whose fresh result replaces the stale entry.
func (h *Handler) GetProducts(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "true"
	cached, found, err := h.cachedOrLead(c, cacheKeyProducts, forceRefresh)
	if err != nil {
		respondError(c, err)
		return
	}
	if found {
		c.JSON(http.StatusOK, cached)
		return
	}

	var products []models.Product
	err = h.readRetry.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		products, err = h.repo.ListProducts(ctx)
		return err
	})
	if err != nil {
		h.requests.Invalidate(cacheKeyProducts)
		respondError(c, err)
		return
	}
	h.requests.Set(cacheKeyProducts, products)

	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		return
	}
	product, err := h.repo.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) AddProduct(c *gin.Context) {
	var newProduct models.Product
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if newProduct.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock cannot be negative"})
		return
	}

	if err := h.repo.CreateProduct(c.Request.Context(), &newProduct); err != nil {
		respondError(c, err)
		return
	}
	h.requests.Invalidate(cacheKeyProducts)

	c.JSON(http.StatusCreated, newProduct)
}

// UpdateProduct applies a partial update. Stock is deliberately not
// updatable here; AdjustStock is the only write path for it.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	product, err := h.repo.UpdateProduct(c.Request.Context(), id, updateData)
	if err != nil {
		respondError(c, err)
		return
	}
	h.requests.Invalidate(cacheKeyProducts)

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		return
	}
	if err := h.repo.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.requests.Invalidate(cacheKeyProducts)

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

type stockAdjustRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustStock is the manual stock-correction endpoint. It shares the
// atomic clamped update with the sale flows, so concurrent corrections
// cannot lose updates or drive stock negative.
func (h *Handler) AdjustStock(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		return
	}

	var req stockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	stock, err := h.repo.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	h.requests.Invalidate(cacheKeyProducts)

	c.JSON(http.StatusOK, gin.H{"product_id": id, "stock": stock})
}

func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, err
	}
	return uint(id), nil
}
