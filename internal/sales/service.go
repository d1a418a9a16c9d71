// Package sales implements sale finalization and revocation on top of the
// repository. Finalization is all-or-nothing: validation happens before any
// write, and the repository commits the header, lines, payments and stock
// decrements as one unit.
package sales

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"go-retail-pos/internal/models"
	"go-retail-pos/internal/store"
)

// PaymentEpsilon is the tolerance when comparing the payment sum against
// the sale total (currency rounding noise, not a discount mechanism).
const PaymentEpsilon = 0.01

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrEmptyCart          = errors.New("sale has no items")
	ErrInvalidItem        = errors.New("invalid sale item")
	ErrUnbalancedPayments = errors.New("payments do not match sale total")
)

type Service struct {
	repo store.Repository
	now  func() time.Time
}

func New(repo store.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ItemInput is one cart line as submitted by the client.
type ItemInput struct {
	ProductID   *uint    `json:"product_id"`
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price"`
	Cost        *float64 `json:"cost"`
	Quantity    int      `json:"quantity" binding:"required"`
	Type        string   `json:"type"`
	CustomPrice bool     `json:"custom_price"`
}

type PaymentInput struct {
	Method string  `json:"method" binding:"required"`
	Amount float64 `json:"amount"`
}

// FinalizeInput is the validated cart plus payment allocation.
type FinalizeInput struct {
	CustomerName    string         `json:"customer_name"`
	CustomerContact string         `json:"customer_contact"`
	SaleChannel     string         `json:"sale_channel"`
	DeliveryAddress string         `json:"delivery_address"`
	Discount        float64        `json:"discount"`
	DeliveryFee     float64        `json:"delivery_fee"`
	SaleDate        *time.Time     `json:"sale_date"`
	Items           []ItemInput    `json:"items"`
	Payments        []PaymentInput `json:"payments"`
}

// Finalize records a sale. userID is the acting identity resolved by the
// auth middleware; a zero value means the precondition failed and nothing
// is written.
//
// Totals: subtotal = sum(price*qty); final = subtotal - discount + delivery
// fee, clamped at 0; profit = sum((price-cost)*qty) treating unknown cost
// as zero. Stock decrements clamp at zero rather than failing the sale —
// an oversell is accepted so a stale count never blocks checkout. That
// policy means there is no backorder signal; revisit if purchasing needs
// one.
func (s *Service) Finalize(ctx context.Context, userID uint, in FinalizeInput) (*models.Sale, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var subtotal, profit float64
	for i, item := range in.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has quantity %d", ErrInvalidItem, i, item.Quantity)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: item %d has negative price", ErrInvalidItem, i)
		}
		switch item.Type {
		case models.ItemTypeProduct, models.ItemTypeService:
		default:
			return nil, fmt.Errorf("%w: item %d has unknown type %q", ErrInvalidItem, i, item.Type)
		}
		subtotal += item.Price * float64(item.Quantity)
		cost := 0.0
		if item.Cost != nil {
			cost = *item.Cost
		}
		profit += (item.Price - cost) * float64(item.Quantity)
	}

	finalTotal := subtotal - in.Discount + in.DeliveryFee
	if finalTotal < 0 {
		finalTotal = 0
	}

	var paid float64
	for _, p := range in.Payments {
		paid += p.Amount
	}
	if math.Abs(paid-finalTotal) > PaymentEpsilon {
		return nil, fmt.Errorf("%w: paid %.2f, total %.2f", ErrUnbalancedPayments, paid, finalTotal)
	}

	paymentMethod := ""
	if len(in.Payments) > 0 {
		paymentMethod = in.Payments[0].Method
	}
	saleDate := s.now()
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}

	sale := &models.Sale{
		SaleNumber:      10000 + rand.Intn(90000),
		UserID:          userID,
		CustomerName:    in.CustomerName,
		CustomerContact: in.CustomerContact,
		SaleChannel:     in.SaleChannel,
		PaymentMethod:   paymentMethod,
		Subtotal:        subtotal,
		Discount:        in.Discount,
		FinalTotal:      finalTotal,
		Profit:          profit,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryFee:     in.DeliveryFee,
		Status:          models.SaleStatusCompleted,
		SaleDate:        saleDate,
	}
	for _, item := range in.Items {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Price:       item.Price,
			Cost:        item.Cost,
			Quantity:    item.Quantity,
			Type:        item.Type,
			CustomPrice: item.CustomPrice,
		})
	}
	for _, p := range in.Payments {
		sale.Payments = append(sale.Payments, models.SalePayment{Method: p.Method, Amount: p.Amount})
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	log.Info().
		Uint("sale_id", sale.ID).
		Int("sale_number", sale.SaleNumber).
		Float64("final_total", sale.FinalTotal).
		Int("items", len(sale.Items)).
		Msg("sale finalized")

	return sale, nil
}

// FailedRestore records one product whose stock could not be put back
// during a revoke, so an operator can reconcile manually.
type FailedRestore struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Error     string `json:"error"`
}

// RevokeResult reports the outcome of a revocation. The status flip always
// committed; FailedRestores lists any inventory that was NOT returned.
type RevokeResult struct {
	Sale           *models.Sale    `json:"sale"`
	FailedRestores []FailedRestore `json:"failed_restores,omitempty"`
}

// Revoke voids a completed sale and returns its inventory. The status flip
// is authoritative and happens first; each item's stock restore is then
// attempted independently, and failures are reported rather than aborting
// the revoke. Revoking twice fails with store.ErrAlreadyRevoked and does
// not double-credit stock.
func (s *Service) Revoke(ctx context.Context, saleID uint) (*RevokeResult, error) {
	sale, err := s.repo.MarkSaleRevoked(ctx, saleID)
	if err != nil {
		return nil, err
	}

	result := &RevokeResult{Sale: sale}
	for _, item := range sale.Items {
		if item.Type != models.ItemTypeProduct || item.ProductID == nil {
			continue
		}
		if _, err := s.repo.AdjustStock(ctx, *item.ProductID, item.Quantity); err != nil {
			log.Warn().
				Err(err).
				Uint("sale_id", saleID).
				Uint("product_id", *item.ProductID).
				Int("quantity", item.Quantity).
				Msg("stock restore failed during revoke")
			result.FailedRestores = append(result.FailedRestores, FailedRestore{
				ProductID: *item.ProductID,
				Quantity:  item.Quantity,
				Error:     err.Error(),
			})
		}
	}

	log.Info().
		Uint("sale_id", saleID).
		Int("failed_restores", len(result.FailedRestores)).
		Msg("sale revoked")

	return result, nil
}
