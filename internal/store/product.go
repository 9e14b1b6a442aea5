package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

type ProductFilter struct {
	Category string
	IDs      []uint
}

func withUnits(db *gorm.DB) *gorm.DB {
	return db.Preload("AlternativeUnits", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, id")
	})
}

func (s *Store) FindProduct(ctx context.Context, merchantID string, id uint) (*models.Product, error) {
	var p models.Product
	err := withUnits(s.conn(ctx)).Where("id = ? AND merchant_id = ?", id, merchantID).First(&p).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("product %d", id))
	}
	return &p, nil
}

// FindProductByName matches the name case-insensitively.
func (s *Store) FindProductByName(ctx context.Context, merchantID, name string) (*models.Product, error) {
	var p models.Product
	err := withUnits(s.conn(ctx)).
		Where("merchant_id = ? AND LOWER(name) = ?", merchantID, strings.ToLower(strings.TrimSpace(name))).
		First(&p).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("product %q", name))
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, merchantID string, f ProductFilter) ([]models.Product, error) {
	q := withUnits(s.conn(ctx)).Where("merchant_id = ?", merchantID)
	if f.Category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	products := []models.Product{}
	if err := q.Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// SaveProduct inserts p when it has no ID. Otherwise it updates p only if its
// Version is unchanged in the database and replaces its alternative units.
func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	if p.ID == 0 {
		for i := range p.AlternativeUnits {
			p.AlternativeUnits[i].Position = i
		}
		return translate(s.conn(ctx).Create(p).Error, fmt.Sprintf("create product %q", p.Name))
	}

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND merchant_id = ? AND version = ?", p.ID, p.MerchantID, p.Version).
			Updates(map[string]any{
				"name":                                 p.Name,
				"category":                             p.Category,
				"base_unit_of_measure":                 p.BaseUnitOfMeasure,
				"current_stock_in_base_units":          p.CurrentStockInBaseUnits,
				"standard_selling_price_per_base_unit": p.StandardSellingPricePerBaseUnit,
				"cost_price_per_base_unit":             p.CostPricePerBaseUnit,
				"reorder_level":                        p.ReorderLevel,
				"version":                              p.Version + 1,
			})
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("update product %q", p.Name))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("update product %q: %w", p.Name, ErrConflict)
		}

		if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductUnit{}).Error; err != nil {
			return fmt.Errorf("clear units of %q: %w", p.Name, err)
		}
		for i := range p.AlternativeUnits {
			u := &p.AlternativeUnits[i]
			u.ID = 0
			u.ProductID = p.ID
			u.Position = i
		}
		if len(p.AlternativeUnits) > 0 {
			if err := tx.Create(&p.AlternativeUnits).Error; err != nil {
				return fmt.Errorf("save units of %q: %w", p.Name, err)
			}
		}
		p.Version++
		return nil
	})
}

func (s *Store) DeleteProduct(ctx context.Context, merchantID string, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND merchant_id = ?", id, merchantID).Delete(&models.Product{})
		if res.Error != nil {
			return fmt.Errorf("delete product %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete product %d: %w", id, ErrNotFound)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductUnit{}).Error; err != nil {
			return fmt.Errorf("delete units of product %d: %w", id, err)
		}
		return nil
	})
}
