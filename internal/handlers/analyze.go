package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-retail-pos/internal/ai"
)

// AnalyzeProduct fills a product form from a photo or a name. The endpoint
// always answers 200 with a result payload; a failed upstream analysis
// degrades to the keyword fallback and sets a warning.
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	var req ai.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result := ai.Analyze(c.Request.Context(), h.geminiKey, req)
	if result.Error != "" {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
