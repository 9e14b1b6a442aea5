package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

// StockDecrement removes Quantity base units from a product.
type StockDecrement struct {
	ProductID uint
	Quantity  float64
}

// NewSaleReference returns S-YYYYMMDD-xxxxxxxx.
func NewSaleReference(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("S-%s-%s", now.Format("20060102"), strings.ToUpper(id[:8]))
}

// CommitSale records sale, applies every decrement and updates the
// aggregates of the sale's customers in one transaction. A decrement that
// would take stock below zero rolls everything back with ErrInsufficientStock.
func (s *Store) CommitSale(ctx context.Context, sale *models.Sale, decrements []StockDecrement) error {
	now := time.Now()
	if sale.Reference == "" {
		sale.Reference = NewSaleReference(now)
	}

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range decrements {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND merchant_id = ? AND current_stock_in_base_units >= ?", d.ProductID, sale.MerchantID, d.Quantity).
				Updates(map[string]any{
					"current_stock_in_base_units": gorm.Expr("current_stock_in_base_units - ?", d.Quantity),
					"version":                     gorm.Expr("version + 1"),
				})
			if res.Error != nil {
				return fmt.Errorf("decrement product %d: %w", d.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("decrement product %d by %v: %w", d.ProductID, d.Quantity, ErrInsufficientStock)
			}
		}

		for i := range sale.Items {
			sale.Items[i].Position = i
		}
		if err := tx.Omit("Customers.*").Create(sale).Error; err != nil {
			return translate(err, "create sale")
		}

		if len(sale.Customers) == 0 {
			return nil
		}
		share, _ := decimal.NewFromFloat(sale.TotalAmount).
			Div(decimal.NewFromInt(int64(len(sale.Customers)))).
			Round(2).Float64()
		for _, c := range sale.Customers {
			err := tx.Model(&models.Customer{}).
				Where("id = ? AND merchant_id = ?", c.ID, sale.MerchantID).
				Updates(map[string]any{
					"total_spent":        gorm.Expr("total_spent + ?", share),
					"last_purchase_date": now,
				}).Error
			if err != nil {
				return fmt.Errorf("update customer %d aggregates: %w", c.ID, err)
			}
		}
		return nil
	})
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalized() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}

// ListSales returns one page of sales, newest first, and the total count.
func (s *Store) ListSales(ctx context.Context, merchantID string, page Page) ([]models.Sale, int64, error) {
	page = page.Normalized()
	var total int64
	if err := s.conn(ctx).Model(&models.Sale{}).Where("merchant_id = ?", merchantID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	sales := []models.Sale{}
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Customers").
		Where("merchant_id = ?", merchantID).
		Order("created_at desc, id desc").
		Limit(page.Limit).
		Offset((page.Page - 1) * page.Limit).
		Find(&sales).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	return sales, total, nil
}

func (s *Store) FindSale(ctx context.Context, merchantID, reference string) (*models.Sale, error) {
	var sale models.Sale
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Customers").
		Where("merchant_id = ? AND reference = ?", merchantID, reference).
		First(&sale).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("sale %s", reference))
	}
	return &sale, nil
}
