// Package memory implements the repository against process memory with the
// same semantics as the MySQL store. It backs the unit tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-retail-pos/internal/models"
	"go-retail-pos/internal/store"
)

type Store struct {
	mu sync.Mutex

	products  map[uint]*models.Product
	sales     map[uint]*models.Sale
	customers map[uint]*models.Customer
	costs     map[uint]*models.StoreCost

	nextProductID  uint
	nextSaleID     uint
	nextItemID     uint
	nextPaymentID  uint
	nextCustomerID uint
	nextCostID     uint
}

func New() *Store {
	return &Store{
		products:  make(map[uint]*models.Product),
		sales:     make(map[uint]*models.Sale),
		customers: make(map[uint]*models.Customer),
		costs:     make(map[uint]*models.StoreCost),
	}
}

// --- Products ---

func (s *Store) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *Store) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	product.ID = s.nextProductID
	copied := *product
	s.products[product.ID] = &copied
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, id uint, fields map[string]interface{}) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "name":
			if v, ok := value.(string); ok {
				p.Name = v
			}
		case "category":
			if v, ok := value.(string); ok {
				p.Category = v
			}
		case "brand":
			if v, ok := value.(string); ok {
				p.Brand = v
			}
		case "price":
			if v, ok := value.(float64); ok {
				p.Price = v
			}
		case "cost":
			if v, ok := value.(float64); ok {
				cost := v
				p.Cost = &cost
			}
		case "min_stock":
			if v, ok := toInt(value); ok {
				p.MinStock = v
			}
		case "image_url":
			if v, ok := value.(string); ok {
				p.ImageURL = v
			}
		}
	}
	copied := *p
	return &copied, nil
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func (s *Store) DeleteProduct(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) AdjustStock(_ context.Context, id uint, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustStockLocked(id, delta)
}

func (s *Store) adjustStockLocked(id uint, delta int) (int, error) {
	p, ok := s.products[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	return p.Stock, nil
}

func (s *Store) ListLowStock(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if p.Stock < p.MinStock {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

// --- Sales ---

func (s *Store) CreateSale(_ context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// All-or-nothing: verify every referenced product exists before any
	// state is touched, mirroring the SQL transaction.
	for _, item := range sale.Items {
		if item.Type != models.ItemTypeProduct || item.ProductID == nil {
			continue
		}
		if _, ok := s.products[*item.ProductID]; !ok {
			return store.ErrNotFound
		}
	}

	s.nextSaleID++
	sale.ID = s.nextSaleID
	for i := range sale.Items {
		s.nextItemID++
		sale.Items[i].ID = s.nextItemID
		sale.Items[i].SaleID = sale.ID
	}
	for i := range sale.Payments {
		s.nextPaymentID++
		sale.Payments[i].ID = s.nextPaymentID
		sale.Payments[i].SaleID = sale.ID
	}

	for _, item := range sale.Items {
		if item.Type != models.ItemTypeProduct || item.ProductID == nil {
			continue
		}
		if _, err := s.adjustStockLocked(*item.ProductID, -item.Quantity); err != nil {
			return err
		}
	}

	copied := copySale(sale)
	s.sales[sale.ID] = copied
	return nil
}

func (s *Store) GetSale(_ context.Context, id uint) (*models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copySale(sale), nil
}

func (s *Store) ListSales(_ context.Context, from, to *time.Time) ([]models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Sale
	for _, sale := range s.sales {
		if from != nil && sale.SaleDate.Before(*from) {
			continue
		}
		if to != nil && sale.SaleDate.After(*to) {
			continue
		}
		out = append(out, *copySale(sale))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, nil
}

func (s *Store) MarkSaleRevoked(_ context.Context, id uint) (*models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if sale.Status == models.SaleStatusRevoked {
		return nil, store.ErrAlreadyRevoked
	}
	sale.Status = models.SaleStatusRevoked
	return copySale(sale), nil
}

func copySale(sale *models.Sale) *models.Sale {
	copied := *sale
	copied.Items = append([]models.SaleItem(nil), sale.Items...)
	copied.Payments = append([]models.SalePayment(nil), sale.Payments...)
	return &copied
}

// --- Customers ---

func (s *Store) ListCustomers(_ context.Context) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	customer.CreatedAt = time.Now()
	copied := *customer
	s.customers[customer.ID] = &copied
	return nil
}

func (s *Store) UpdateCustomer(_ context.Context, id uint, fields map[string]interface{}) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for key, value := range fields {
		v, isString := value.(string)
		if !isString {
			continue
		}
		switch key {
		case "name":
			c.Name = v
		case "contact":
			c.Contact = v
		case "address":
			c.Address = v
		}
	}
	copied := *c
	return &copied, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

// --- Store costs ---

func (s *Store) UpsertStoreCost(_ context.Context, cost *models.StoreCost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.costs {
		if existing.Month == cost.Month && existing.Year == cost.Year {
			cost.ID = existing.ID
			copied := *cost
			s.costs[existing.ID] = &copied
			return nil
		}
	}
	s.nextCostID++
	cost.ID = s.nextCostID
	copied := *cost
	s.costs[cost.ID] = &copied
	return nil
}

func (s *Store) ListStoreCosts(_ context.Context) ([]models.StoreCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StoreCost, 0, len(s.costs))
	for _, c := range s.costs {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

// --- Reports ---

func (s *Store) SalesSummary(_ context.Context, from, to *time.Time) (*store.SalesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &store.SalesSummary{}
	type seller struct {
		sold    int
		revenue float64
	}
	sellers := make(map[string]*seller)
	var recent []models.Sale

	for _, sale := range s.sales {
		recent = append(recent, *copySale(sale))
		if sale.Status != models.SaleStatusCompleted {
			continue
		}
		if from != nil && sale.SaleDate.Before(*from) {
			continue
		}
		if to != nil && sale.SaleDate.After(*to) {
			continue
		}
		summary.TotalRevenue += sale.FinalTotal
		summary.TotalProfit += sale.Profit
		summary.TotalOrders++
		for _, item := range sale.Items {
			entry, ok := sellers[item.Name]
			if !ok {
				entry = &seller{}
				sellers[item.Name] = entry
			}
			entry.sold += item.Quantity
			entry.revenue += float64(item.Quantity) * item.Price
		}
	}

	for name, entry := range sellers {
		summary.TopSelling = append(summary.TopSelling, store.TopSeller{
			ProductName: name,
			Sold:        entry.sold,
			Revenue:     entry.revenue,
		})
	}
	sort.Slice(summary.TopSelling, func(i, j int) bool {
		return summary.TopSelling[i].Sold > summary.TopSelling[j].Sold
	})
	if len(summary.TopSelling) > 5 {
		summary.TopSelling = summary.TopSelling[:5]
	}

	sort.Slice(recent, func(i, j int) bool { return recent[i].SaleDate.After(recent[j].SaleDate) })
	if len(recent) > 10 {
		recent = recent[:10]
	}
	summary.RecentSales = recent

	return summary, nil
}

func (s *Store) MonthlySales(_ context.Context) ([]store.MonthlySalesRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type period struct{ year, month int }
	byPeriod := make(map[period]*store.MonthlySalesRow)
	for _, sale := range s.sales {
		if sale.Status != models.SaleStatusCompleted {
			continue
		}
		key := period{sale.SaleDate.Year(), int(sale.SaleDate.Month())}
		row, ok := byPeriod[key]
		if !ok {
			row = &store.MonthlySalesRow{Month: key.month, Year: key.year}
			byPeriod[key] = row
		}
		row.Revenue += sale.FinalTotal
		row.Profit += sale.Profit
		row.Orders++
	}

	out := make([]store.MonthlySalesRow, 0, len(byPeriod))
	for _, row := range byPeriod {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
