// Package reports reshapes persisted aggregates into dashboard payloads.
package reports

import (
	"fmt"
	"sort"

	"go-retail-pos/internal/models"
	"go-retail-pos/internal/store"
)

// MonthlyEntry joins one month of sales aggregates with that month's fixed
// costs. NetProfit = GrossProfit - TotalCosts.
type MonthlyEntry struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Period      string  `json:"period"` // "MM/YYYY", display key
	Revenue     float64 `json:"revenue"`
	Orders      int64   `json:"orders"`
	GrossProfit float64 `json:"gross_profit"`
	TotalCosts  float64 `json:"total_costs"`
	NetProfit   float64 `json:"net_profit"`
}

// MergeMonthly joins sales rows and cost rows on the (month, year) key.
// A month present on either side appears in the output: sales without
// recorded costs and cost periods without sales both surface, sorted
// chronologically.
func MergeMonthly(sales []store.MonthlySalesRow, costs []models.StoreCost) []MonthlyEntry {
	type period struct{ year, month int }
	merged := make(map[period]*MonthlyEntry)

	entry := func(year, month int) *MonthlyEntry {
		key := period{year, month}
		e, ok := merged[key]
		if !ok {
			e = &MonthlyEntry{
				Month:  month,
				Year:   year,
				Period: fmt.Sprintf("%02d/%04d", month, year),
			}
			merged[key] = e
		}
		return e
	}

	for _, row := range sales {
		e := entry(row.Year, row.Month)
		e.Revenue += row.Revenue
		e.GrossProfit += row.Profit
		e.Orders += row.Orders
	}
	for _, cost := range costs {
		e := entry(cost.Year, cost.Month)
		e.TotalCosts += cost.Total()
	}

	out := make([]MonthlyEntry, 0, len(merged))
	for _, e := range merged {
		e.NetProfit = e.GrossProfit - e.TotalCosts
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
