package sales

import (
	"context"
	"errors"
	"math"
	"testing"

	"go-retail-pos/internal/models"
	"go-retail-pos/internal/store"
	"go-retail-pos/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store, uint) {
	t.Helper()
	repo := memory.New()
	cost := 15.00
	product := &models.Product{
		Name:     "Cable",
		Category: "Cables & Adapters",
		Price:    29.90,
		Cost:     &cost,
		Stock:    10,
		MinStock: 2,
	}
	if err := repo.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return New(repo), repo, product.ID
}

func cableCart(productID uint, quantity int) []ItemInput {
	cost := 15.00
	return []ItemInput{{
		ProductID: &productID,
		Name:      "Cable",
		Price:     29.90,
		Cost:      &cost,
		Quantity:  quantity,
		Type:      models.ItemTypeProduct,
	}}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestFinalizeRequiresAuthenticatedUser(t *testing.T) {
	svc, _, productID := newTestService(t)

	_, err := svc.Finalize(context.Background(), 0, FinalizeInput{
		Items:    cableCart(productID, 1),
		Payments: []PaymentInput{{Method: "cash", Amount: 29.90}},
	})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestFinalizeRejectsEmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Finalize(context.Background(), 1, FinalizeInput{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestFinalizeRejectsUnbalancedPaymentsBeforeWriting(t *testing.T) {
	svc, repo, productID := newTestService(t)

	_, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Items:    cableCart(productID, 2),
		Payments: []PaymentInput{{Method: "pix", Amount: 50.00}},
	})
	if !errors.Is(err, ErrUnbalancedPayments) {
		t.Fatalf("expected ErrUnbalancedPayments, got %v", err)
	}

	// Nothing may have been written: stock untouched, no sale recorded.
	product, err := repo.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 10 {
		t.Fatalf("stock mutated on rejected sale: %d", product.Stock)
	}
	list, err := repo.ListSales(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no sales, got %d", len(list))
	}
}

func TestFinalizeRejectsInvalidItems(t *testing.T) {
	svc, _, productID := newTestService(t)

	bad := cableCart(productID, 0)
	_, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Items: bad,
	})
	if !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem for zero quantity, got %v", err)
	}

	bad = cableCart(productID, 1)
	bad[0].Type = "subscription"
	_, err = svc.Finalize(context.Background(), 1, FinalizeInput{
		Items: bad,
	})
	if !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem for unknown type, got %v", err)
	}
}

func TestFinalizeEndToEnd(t *testing.T) {
	svc, repo, productID := newTestService(t)

	sale, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Items:    cableCart(productID, 2),
		Payments: []PaymentInput{{Method: "pix", Amount: 59.80}},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !approxEqual(sale.Subtotal, 59.80) {
		t.Errorf("subtotal = %.2f, want 59.80", sale.Subtotal)
	}
	if !approxEqual(sale.FinalTotal, 59.80) {
		t.Errorf("final total = %.2f, want 59.80", sale.FinalTotal)
	}
	if !approxEqual(sale.Profit, 29.80) {
		t.Errorf("profit = %.2f, want 29.80", sale.Profit)
	}
	if sale.Status != models.SaleStatusCompleted {
		t.Errorf("status = %q, want completed", sale.Status)
	}
	if sale.PaymentMethod != "pix" {
		t.Errorf("payment method = %q, want pix", sale.PaymentMethod)
	}
	if sale.SaleNumber < 10000 || sale.SaleNumber > 99999 {
		t.Errorf("sale number %d is not 5 digits", sale.SaleNumber)
	}

	product, err := repo.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 8 {
		t.Errorf("stock = %d, want 8 after selling 2 of 10", product.Stock)
	}
}

func TestFinalizeClampsOversellAtZero(t *testing.T) {
	svc, repo, _ := newTestService(t)

	scarce := &models.Product{Name: "Last Unit", Price: 10.00, Stock: 1}
	if err := repo.CreateProduct(context.Background(), scarce); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	_, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Items: []ItemInput{{
			ProductID: &scarce.ID,
			Name:      "Last Unit",
			Price:     10.00,
			Quantity:  5,
			Type:      models.ItemTypeProduct,
		}},
		Payments: []PaymentInput{{Method: "cash", Amount: 50.00}},
	})
	if err != nil {
		t.Fatalf("oversell must succeed per policy, got %v", err)
	}

	product, err := repo.GetProduct(context.Background(), scarce.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 0 {
		t.Errorf("stock = %d, want 0 (clamped, never negative)", product.Stock)
	}
}

func TestFinalTotalClampsAtZero(t *testing.T) {
	svc, _, productID := newTestService(t)

	sale, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Discount: 100.00, // more than the subtotal
		Items:    cableCart(productID, 1),
		Payments: nil,
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if sale.FinalTotal != 0 {
		t.Errorf("final total = %.2f, want 0 (clamped)", sale.FinalTotal)
	}
}

func TestServiceItemsSkipStock(t *testing.T) {
	svc, repo, productID := newTestService(t)

	sale, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Items: []ItemInput{{
			Name:     "Setup Fee",
			Price:    25.00,
			Quantity: 1,
			Type:     models.ItemTypeService,
		}},
		Payments: []PaymentInput{{Method: "cash", Amount: 25.00}},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !approxEqual(sale.Profit, 25.00) {
		t.Errorf("profit = %.2f, want 25.00 (nil cost counts as zero)", sale.Profit)
	}

	product, err := repo.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 10 {
		t.Errorf("service sale touched stock: %d", product.Stock)
	}
}

func TestRevokeRestoresExactlyWhatWasSold(t *testing.T) {
	svc, repo, productID := newTestService(t)

	sale, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Items:    cableCart(productID, 3),
		Payments: []PaymentInput{{Method: "card", Amount: 89.70}},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	result, err := svc.Revoke(context.Background(), sale.ID)
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if result.Sale.Status != models.SaleStatusRevoked {
		t.Errorf("status = %q, want revoked", result.Sale.Status)
	}
	if len(result.FailedRestores) != 0 {
		t.Errorf("unexpected failed restores: %v", result.FailedRestores)
	}
	if len(result.Sale.Items) != 1 || len(result.Sale.Payments) != 1 {
		t.Errorf("revoke response must carry the sale's items and payments, got %d/%d",
			len(result.Sale.Items), len(result.Sale.Payments))
	}

	product, err := repo.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 10 {
		t.Errorf("stock = %d, want 10 (7 after sale + 3 restored)", product.Stock)
	}
}

func TestRevokeIsNotIdempotent(t *testing.T) {
	svc, repo, productID := newTestService(t)

	sale, err := svc.Finalize(context.Background(), 1, FinalizeInput{
		Items:    cableCart(productID, 3),
		Payments: []PaymentInput{{Method: "card", Amount: 89.70}},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if _, err := svc.Revoke(context.Background(), sale.ID); err != nil {
		t.Fatalf("first revoke failed: %v", err)
	}
	_, err = svc.Revoke(context.Background(), sale.ID)
	if !errors.Is(err, store.ErrAlreadyRevoked) {
		t.Fatalf("expected ErrAlreadyRevoked, got %v", err)
	}

	// Stock must not be double-credited by the failed second revoke.
	product, err := repo.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 10 {
		t.Errorf("stock = %d, want 10 (no double credit)", product.Stock)
	}
}

func TestRevokeUnknownSale(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Revoke(context.Background(), 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
