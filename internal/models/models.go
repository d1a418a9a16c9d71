package models

import (
	"time"
)

// User - The person operating the terminal. A sale is never recorded
// without a resolved user (the "acting identity").
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Product - The Inventory. Stock never goes below zero after a committed
// mutation; every decrement is a single atomic, clamped UPDATE.
type Product struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Brand    string   `json:"brand"`
	Price    float64  `json:"price"`
	Cost     *float64 `json:"cost"` // Unit cost, unknown for some items
	Stock    int      `json:"stock"`
	MinStock int      `json:"min_stock"` // Reorder threshold for the low-stock sweep
	ImageURL string   `json:"image_url"`
}

// Sale status values. Status is the only field mutated after creation.
const (
	SaleStatusCompleted = "completed"
	SaleStatusRevoked   = "revoked"
	SaleStatusPending   = "pending"
)

// Sale - The Transaction Header.
// Invariant: FinalTotal = Subtotal - Discount + DeliveryFee, clamped at 0,
// and the sum of Payments equals FinalTotal within 0.01.
type Sale struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	SaleNumber      int           `json:"sale_number"` // Human-facing, random 5 digits, NOT unique. Dedupe by ID.
	UserID          uint          `json:"user_id"`     // Who processed it
	CustomerName    string        `json:"customer_name"`
	CustomerContact string        `json:"customer_contact"`
	SaleChannel     string        `json:"sale_channel"`
	PaymentMethod   string        `json:"payment_method"` // First payment method, denormalized
	Subtotal        float64       `json:"subtotal"`
	Discount        float64       `json:"discount"`
	FinalTotal      float64       `json:"final_total"`
	Profit          float64       `json:"profit"` // Precomputed at finalization from price-cost deltas
	DeliveryAddress string        `json:"delivery_address"`
	DeliveryFee     float64       `json:"delivery_fee"`
	Status          string        `json:"status"`
	SaleDate        time.Time     `json:"sale_date"`
	Items           []SaleItem    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	Payments        []SalePayment `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"payments"`
}

// SaleItem types.
const (
	ItemTypeProduct = "product"
	ItemTypeService = "service"
)

// SaleItem - One line in a sale. Immutable after creation.
type SaleItem struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	SaleID      uint     `json:"sale_id"`
	ProductID   *uint    `json:"product_id"` // nil for ad hoc / temporary items
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Cost        *float64 `json:"cost"`
	Quantity    int      `json:"quantity"`
	Type        string   `json:"type"`         // 'product' or 'service'
	CustomPrice bool     `json:"custom_price"` // Marks a manually overridden price
}

// SalePayment - How a sale was paid. A sale can split across methods.
type SalePayment struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	SaleID uint    `json:"sale_id"`
	Method string  `json:"method"` // 'cash', 'pix', 'card', ...
	Amount float64 `json:"amount"`
}

// StoreCost - Fixed monthly expenses, one row per (month, year).
// Saving again for the same period updates the existing row.
type StoreCost struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Month     int     `gorm:"uniqueIndex:idx_cost_period" json:"month"`
	Year      int     `gorm:"uniqueIndex:idx_cost_period" json:"year"`
	Rent      float64 `json:"rent"`
	Utilities float64 `json:"utilities"`
	Salaries  float64 `json:"salaries"`
	Marketing float64 `json:"marketing"`
	Other     float64 `json:"other"`
}

// Total sums every expense column for the period.
func (c StoreCost) Total() float64 {
	return c.Rent + c.Utilities + c.Salaries + c.Marketing + c.Other
}

// Customer - Address book entry for delivery sales.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
