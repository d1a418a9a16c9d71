package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"go-retail-pos/internal/models"
	"go-retail-pos/internal/reports"
	"go-retail-pos/internal/store"
)

const reportMirrorTTL = 5 * time.Minute

// GetSalesReport serves the dashboard aggregate: revenue, profit, order
// count, top sellers and recent sales. Reads go through the retry policy;
// the rendered payload is memoized locally and mirrored in Redis.
func (h *Handler) GetSalesReport(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "true"
	if !forceRefresh {
		if cached, ok := h.requests.Get(cacheKeySummary); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
		if payload, ok, err := h.reportCache.Get(c.Request.Context(), cacheKeySummary); err == nil && ok {
			c.Data(http.StatusOK, "application/json", payload)
			return
		}
	}

	cached, found, err := h.cachedOrLead(c, cacheKeySummary, forceRefresh)
	if err != nil {
		respondError(c, err)
		return
	}
	if found {
		c.JSON(http.StatusOK, cached)
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		h.requests.Invalidate(cacheKeySummary)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		return
	}

	var summary *store.SalesSummary
	err = h.readRetry.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		summary, err = h.repo.SalesSummary(ctx, from, to)
		return err
	})
	if err != nil {
		h.requests.Invalidate(cacheKeySummary)
		respondError(c, err)
		return
	}

	// Only the unfiltered report is cacheable; date-ranged queries vary.
	if from == nil && to == nil {
		h.requests.Set(cacheKeySummary, summary)
		if payload, err := json.Marshal(summary); err == nil {
			if err := h.reportCache.Set(c.Request.Context(), cacheKeySummary, payload, reportMirrorTTL); err != nil {
				log.Warn().Err(err).Msg("failed to mirror sales report")
			}
		}
	} else {
		h.requests.Invalidate(cacheKeySummary)
	}

	c.JSON(http.StatusOK, summary)
}

// --- Stock valuation ---

// ValuationItem is one row of the valuation report.
type ValuationItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	CostPrice float64 `json:"cost_price"`
	TotalCost float64 `json:"total_cost"`
}

type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// GetStockValuation reports the monetary value of inventory on hand,
// grouped by category. Products without a recorded cost are valued at 0.
func (h *Handler) GetStockValuation(c *gin.Context) {
	var products []models.Product
	err := h.readRetry.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		products, err = h.repo.ListProducts(ctx)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var grandTotal float64
	grouped := make(map[string]*CategoryGroup)
	for _, p := range products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}
		group, exists := grouped[catName]
		if !exists {
			group = &CategoryGroup{CategoryName: catName}
			grouped[catName] = group
		}

		cost := 0.0
		if p.Cost != nil {
			cost = *p.Cost
		}
		itemTotal := float64(p.Stock) * cost
		group.Items = append(group.Items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.Stock,
			CostPrice: cost,
			TotalCost: itemTotal,
		})
		group.Subtotal += itemTotal
		grandTotal += itemTotal
	}

	response := ValuationResponse{GrandTotal: grandTotal}
	for _, group := range grouped {
		response.Categories = append(response.Categories, *group)
	}
	c.JSON(http.StatusOK, response)
}

// GetMonthlyReport joins per-month sales aggregates with the recorded
// store costs: net profit per month for the dashboard chart.
func (h *Handler) GetMonthlyReport(c *gin.Context) {
	cached, found, err := h.cachedOrLead(c, cacheKeyMonthly, c.Query("refresh") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	if found {
		c.JSON(http.StatusOK, cached)
		return
	}

	var rows []store.MonthlySalesRow
	var costs []models.StoreCost
	err = h.readRetry.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		if rows, err = h.repo.MonthlySales(ctx); err != nil {
			return err
		}
		costs, err = h.repo.ListStoreCosts(ctx)
		return err
	})
	if err != nil {
		h.requests.Invalidate(cacheKeyMonthly)
		respondError(c, err)
		return
	}

	merged := reports.MergeMonthly(rows, costs)
	h.requests.Set(cacheKeyMonthly, merged)

	c.JSON(http.StatusOK, merged)
}

// ExportSales streams the sale history as an .xlsx workbook.
func (h *Handler) ExportSales(c *gin.Context) {
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

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	f.SetSheetName(f.GetSheetName(0), sheet)
	headers := []string{"ID", "Number", "Date", "Customer", "Channel", "Payment", "Subtotal", "Discount", "Delivery Fee", "Total", "Profit", "Status"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, sale := range list {
		values := []interface{}{
			sale.ID,
			sale.SaleNumber,
			sale.SaleDate.Format("2006-01-02 15:04"),
			sale.CustomerName,
			sale.SaleChannel,
			sale.PaymentMethod,
			sale.Subtotal,
			sale.Discount,
			sale.DeliveryFee,
			sale.FinalTotal,
			sale.Profit,
			sale.Status,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("sales_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("failed to stream sales export")
	}
}
