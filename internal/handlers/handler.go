package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-retail-pos/internal/cache"
	"go-retail-pos/internal/retry"
	"go-retail-pos/internal/sales"
	"go-retail-pos/internal/store"
)

// Cache keys for memoized reads. Every mutation handler that affects one
// of these invalidates it explicitly.
const (
	cacheKeyProducts = "products:list"
	cacheKeySummary  = "reports:summary"
	cacheKeyMonthly  = "reports:monthly"
)

// Handler carries the wired dependencies for the HTTP layer.
type Handler struct {
	repo        store.Repository
	sales       *sales.Service
	requests    *cache.RequestCache
	reportCache cache.ReportCache
	readRetry   retry.Policy
	geminiKey   string
}

func New(repo store.Repository, salesSvc *sales.Service, requests *cache.RequestCache, reportCache cache.ReportCache, geminiKey string) *Handler {
	return &Handler{
		repo:        repo,
		sales:       salesSvc,
		requests:    requests,
		reportCache: reportCache,
		readRetry:   retry.Default(),
		geminiKey:   geminiKey,
	}
}

// respondError maps domain errors to HTTP statuses. Everything is caught
// here; nothing propagates past the handler boundary.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyRevoked), errors.Is(err, store.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, sales.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, sales.ErrEmptyCart),
		errors.Is(err, sales.ErrInvalidItem),
		errors.Is(err, sales.ErrUnbalancedPayments):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cachedOrLead resolves key against the request cache. It returns a cached
// value when one exists; otherwise it either elects this request to perform
// the fetch (found=false) or, when another request is already fetching the
// same key, waits for that fetch and serves its result. The elected fetcher
// must call Set or Invalidate for key to release the waiters.
func (h *Handler) cachedOrLead(c *gin.Context, key string, forceRefresh bool) (interface{}, bool, error) {
	if forceRefresh {
		h.requests.SetLoading(key)
		return nil, false, nil
	}
	if cached, ok := h.requests.Get(key); ok {
		return cached, true, nil
	}
	for !h.requests.SetLoading(key) {
		if err := h.requests.Wait(c.Request.Context(), key); err != nil {
			return nil, false, err
		}
		if cached, ok := h.requests.Get(key); ok {
			return cached, true, nil
		}
		// The fetch we waited on failed or was not cacheable; contend to
		// take it over.
	}
	return nil, false, nil
}

func actingUserID(c *gin.Context) uint {
	value, exists := c.Get("userID")
	if !exists {
		return 0
	}
	id, ok := value.(uint)
	if !ok {
		return 0
	}
	return id
}
