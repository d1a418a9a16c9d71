package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-retail-pos/internal/models"
)

func (h *Handler) ListStoreCosts(c *gin.Context) {
	costs, err := h.repo.ListStoreCosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

// SaveStoreCost upserts the expense row for one (month, year) period:
// saving the same period twice updates in place.
func (h *Handler) SaveStoreCost(c *gin.Context) {
	var cost models.StoreCost
	if err := c.ShouldBindJSON(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if cost.Month < 1 || cost.Month > 12 || cost.Year < 2000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month/year period"})
		return
	}

	if err := h.repo.UpsertStoreCost(c.Request.Context(), &cost); err != nil {
		respondError(c, err)
		return
	}

	// Cost changes shift the monthly net-profit report.
	h.requests.Invalidate(cacheKeyMonthly)
	_ = h.reportCache.Invalidate(c.Request.Context(), cacheKeyMonthly)

	c.JSON(http.StatusOK, cost)
}
