package gormstore

import (
	"context"
	"errors"
	"time"

	"go-retail-pos/internal/models"
	"go-retail-pos/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the MySQL-backed repository.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrDuplicate
	}
	return err
}

// --- Products ---

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Order("name").Find(&products).Error
	return products, err
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, fields map[string]interface{}) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	// Direct stock writes must go through AdjustStock so the clamped atomic
	// update is the only code path that touches the column.
	delete(fields, "stock")
	if len(fields) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AdjustStock applies delta in a single statement. GREATEST clamps the
// result at zero so concurrent adjustments can never drive stock negative.
func (s *Store) AdjustStock(ctx context.Context, id uint, delta int) (int, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			return translate(err)
		}
		return tx.Exec("UPDATE products SET stock = GREATEST(stock + ?, 0) WHERE id = ?", delta, id).Error
	})
	if err != nil {
		return 0, err
	}
	var stock int
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("stock").Where("id = ?", id).Scan(&stock).Error; err != nil {
		return 0, translate(err)
	}
	return stock, nil
}

func (s *Store) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("stock < min_stock").
		Order("stock").
		Find(&products).Error
	return products, err
}

// --- Sales ---

// CreateSale writes the header, items, payments and every stock decrement
// inside one transaction. A failure at any step rolls the whole sale back,
// so a half-written sale can never be observed.
func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// GORM inserts the items and payments with the header.
		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		for _, item := range sale.Items {
			if item.Type != models.ItemTypeProduct || item.ProductID == nil {
				continue
			}

			// Lock the row so two concurrent sales of the same product
			// serialize, then decrement with a clamped atomic UPDATE.
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, *item.ProductID).Error; err != nil {
				return translate(err)
			}
			if err := tx.Exec(
				"UPDATE products SET stock = GREATEST(stock - ?, 0) WHERE id = ?",
				item.Quantity, *item.ProductID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&sale, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, from, to *time.Time) ([]models.Sale, error) {
	query := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Order("sale_date desc")
	if from != nil {
		query = query.Where("sale_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("sale_date <= ?", *to)
	}
	var sales []models.Sale
	err := query.Find(&sales).Error
	return sales, err
}

func (s *Store) MarkSaleRevoked(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			Preload("Payments").
			First(&sale, id).Error; err != nil {
			return translate(err)
		}
		if sale.Status == models.SaleStatusRevoked {
			return store.ErrAlreadyRevoked
		}
		if err := tx.Model(&models.Sale{}).Where("id = ?", id).
			Update("status", models.SaleStatusRevoked).Error; err != nil {
			return err
		}
		sale.Status = models.SaleStatusRevoked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// --- Customers ---

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).Order("name").Find(&customers).Error
	return customers, err
}

func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Create(customer).Error
}

func (s *Store) UpdateCustomer(ctx context.Context, id uint, fields map[string]interface{}) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, translate(err)
	}
	if err := s.db.WithContext(ctx).Model(&customer).Updates(fields).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Customer{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Store costs ---

// UpsertStoreCost relies on the (month, year) unique index: inserting the
// same period again updates the existing row.
func (s *Store) UpsertStoreCost(ctx context.Context, cost *models.StoreCost) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rent", "utilities", "salaries", "marketing", "other",
		}),
	}).Create(cost).Error
}

func (s *Store) ListStoreCosts(ctx context.Context) ([]models.StoreCost, error) {
	var costs []models.StoreCost
	err := s.db.WithContext(ctx).Order("year desc, month desc").Find(&costs).Error
	return costs, err
}

// --- Reports ---

func (s *Store) SalesSummary(ctx context.Context, from, to *time.Time) (*store.SalesSummary, error) {
	var summary store.SalesSummary

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Sale{}).
			Where("status = ?", models.SaleStatusCompleted)
		if from != nil {
			q = q.Where("sale_date >= ?", *from)
		}
		if to != nil {
			q = q.Where("sale_date <= ?", *to)
		}
		return q
	}

	// COALESCE so an empty range yields 0 instead of NULL.
	if err := base().Select("COALESCE(SUM(final_total), 0)").Scan(&summary.TotalRevenue).Error; err != nil {
		return nil, err
	}
	if err := base().Select("COALESCE(SUM(profit), 0)").Scan(&summary.TotalProfit).Error; err != nil {
		return nil, err
	}
	if err := base().Count(&summary.TotalOrders).Error; err != nil {
		return nil, err
	}

	// Top sellers honor the same date range as the totals.
	tops := s.db.WithContext(ctx).Table("sale_items").
		Select("sale_items.name as product_name, SUM(sale_items.quantity) as sold, SUM(sale_items.quantity * sale_items.price) as revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status = ?", models.SaleStatusCompleted)
	if from != nil {
		tops = tops.Where("sales.sale_date >= ?", *from)
	}
	if to != nil {
		tops = tops.Where("sales.sale_date <= ?", *to)
	}
	err := tops.Group("sale_items.name").
		Order("sold desc").
		Limit(5).
		Scan(&summary.TopSelling).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Order("sale_date desc").
		Limit(10).
		Find(&summary.RecentSales).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

func (s *Store) MonthlySales(ctx context.Context) ([]store.MonthlySalesRow, error) {
	var rows []store.MonthlySalesRow
	err := s.db.WithContext(ctx).Model(&models.Sale{}).
		Select("MONTH(sale_date) as month, YEAR(sale_date) as year, COALESCE(SUM(final_total), 0) as revenue, COALESCE(SUM(profit), 0) as profit, COUNT(*) as orders").
		Where("status = ?", models.SaleStatusCompleted).
		Group("YEAR(sale_date), MONTH(sale_date)").
		Order("year, month").
		Scan(&rows).Error
	return rows, err
}
