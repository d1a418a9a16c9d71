package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-retail-pos/internal/sales"
)

// CreateSale finalizes a cart. Validation failures reject the request
// before anything is written; a success means the sale, its lines, its
// payments and the stock decrements all committed together.
func (h *Handler) CreateSale(c *gin.Context) {
	var input sales.FinalizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sale, err := h.sales.Finalize(c.Request.Context(), actingUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateReportCaches(c)
	h.requests.Invalidate(cacheKeyProducts)

	c.JSON(http.StatusCreated, sale)
}

func (h *Handler) ListSales(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		return
	}

	list, err := h.repo.ListSales(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetSale(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		return
	}
	sale, err := h.repo.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// RevokeSale voids a sale and returns its stock. A partial stock restore
// still answers 200: the status flip is authoritative and the response
// lists what could not be returned.
func (h *Handler) RevokeSale(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		return
	}

	result, err := h.sales.Revoke(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateReportCaches(c)
	h.requests.Invalidate(cacheKeyProducts)

	c.JSON(http.StatusOK, result)
}

func (h *Handler) invalidateReportCaches(c *gin.Context) {
	h.requests.Invalidate(cacheKeySummary)
	h.requests.Invalidate(cacheKeyMonthly)
	// Redis mirror is best-effort; a failed invalidation only shortens a TTL.
	_ = h.reportCache.Invalidate(c.Request.Context(), cacheKeySummary)
	_ = h.reportCache.Invalidate(c.Request.Context(), cacheKeyMonthly)
}

// dateRange parses optional ?start=YYYY-MM-DD&end=YYYY-MM-DD filters. The
// end date is inclusive.
func dateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		to = &t
	}
	return from, to, nil
}
