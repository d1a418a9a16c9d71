package reports

import (
	"math"
	"testing"

	"go-retail-pos/internal/models"
	"go-retail-pos/internal/store"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestMergeMonthlyJoinsByPeriod(t *testing.T) {
	sales := []store.MonthlySalesRow{
		{Month: 1, Year: 2026, Revenue: 5000, Profit: 2000, Orders: 40},
		{Month: 2, Year: 2026, Revenue: 6000, Profit: 2500, Orders: 45},
	}
	costs := []models.StoreCost{
		{Month: 1, Year: 2026, Rent: 800, Utilities: 200, Salaries: 500},
	}

	merged := MergeMonthly(sales, costs)
	if len(merged) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(merged))
	}

	jan := merged[0]
	if jan.Month != 1 || jan.Year != 2026 {
		t.Fatalf("expected January first, got %02d/%04d", jan.Month, jan.Year)
	}
	if !approxEqual(jan.TotalCosts, 1500) {
		t.Errorf("january costs = %.2f, want 1500", jan.TotalCosts)
	}
	if !approxEqual(jan.NetProfit, 500) {
		t.Errorf("january net = %.2f, want 500 (2000 gross - 1500 costs)", jan.NetProfit)
	}

	feb := merged[1]
	if !approxEqual(feb.NetProfit, 2500) {
		t.Errorf("february net = %.2f, want 2500 (no recorded costs)", feb.NetProfit)
	}
}

func TestMergeMonthlyIncludesCostOnlyPeriods(t *testing.T) {
	costs := []models.StoreCost{
		{Month: 12, Year: 2025, Rent: 1000, Other: 50},
	}

	merged := MergeMonthly(nil, costs)
	if len(merged) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(merged))
	}
	entry := merged[0]
	if entry.Revenue != 0 || entry.Orders != 0 {
		t.Errorf("cost-only month must have zero sales, got revenue %.2f", entry.Revenue)
	}
	if !approxEqual(entry.NetProfit, -1050) {
		t.Errorf("net = %.2f, want -1050", entry.NetProfit)
	}
	if entry.Period != "12/2025" {
		t.Errorf("period = %q, want 12/2025", entry.Period)
	}
}

func TestMergeMonthlySortsChronologically(t *testing.T) {
	sales := []store.MonthlySalesRow{
		{Month: 3, Year: 2026, Revenue: 1},
		{Month: 11, Year: 2025, Revenue: 1},
		{Month: 1, Year: 2026, Revenue: 1},
	}

	merged := MergeMonthly(sales, nil)
	want := []string{"11/2025", "01/2026", "03/2026"}
	for i, period := range want {
		if merged[i].Period != period {
			t.Fatalf("position %d = %q, want %q", i, merged[i].Period, period)
		}
	}
}

func TestMergeMonthlyEmpty(t *testing.T) {
	if merged := MergeMonthly(nil, nil); len(merged) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(merged))
	}
}
