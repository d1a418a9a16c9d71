package store

import (
	"context"
	"errors"
	"time"

	"go-retail-pos/internal/models"
)

// Domain errors surfaced by the repository and mapped to HTTP codes at the
// handler boundary.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyRevoked = errors.New("sale already revoked")
	ErrDuplicate      = errors.New("duplicate record")
)

// TopSeller is one row of the best-sellers aggregate.
type TopSeller struct {
	ProductName string  `json:"product_name"`
	Sold        int     `json:"sold"`
	Revenue     float64 `json:"revenue"`
}

// SalesSummary is the all-up dashboard aggregate.
type SalesSummary struct {
	TotalRevenue float64       `json:"total_revenue"`
	TotalProfit  float64       `json:"total_profit"`
	TotalOrders  int64         `json:"total_orders"`
	TopSelling   []TopSeller   `json:"top_selling"`
	RecentSales  []models.Sale `json:"recent_sales"`
}

// MonthlySalesRow aggregates completed sales for one calendar month.
type MonthlySalesRow struct {
	Month   int     `json:"month"`
	Year    int     `json:"year"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
	Orders  int64   `json:"orders"`
}

// Repository is the persistence surface of the application. The GORM
// implementation talks to MySQL; the memory implementation backs the tests
// with identical semantics.
type Repository interface {
	// Products
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id uint, fields map[string]interface{}) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	// AdjustStock applies delta atomically, clamping the result at zero.
	// It returns the stock value after the mutation.
	AdjustStock(ctx context.Context, id uint, delta int) (int, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)

	// Sales. CreateSale persists the header, items and payments and applies
	// every stock decrement inside a single transaction: either the whole
	// sale commits or nothing does.
	CreateSale(ctx context.Context, sale *models.Sale) error
	GetSale(ctx context.Context, id uint) (*models.Sale, error)
	ListSales(ctx context.Context, from, to *time.Time) ([]models.Sale, error)
	// MarkSaleRevoked flips status to 'revoked' and returns the sale with
	// its items loaded. Revoking twice fails with ErrAlreadyRevoked.
	MarkSaleRevoked(ctx context.Context, id uint) (*models.Sale, error)

	// Customers
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, id uint, fields map[string]interface{}) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error

	// Store costs, upserted by (month, year).
	UpsertStoreCost(ctx context.Context, cost *models.StoreCost) error
	ListStoreCosts(ctx context.Context) ([]models.StoreCost, error)

	// Reports
	SalesSummary(ctx context.Context, from, to *time.Time) (*SalesSummary, error)
	MonthlySales(ctx context.Context) ([]MonthlySalesRow, error)
}
