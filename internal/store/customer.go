package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return translate(s.conn(ctx).Create(c).Error, fmt.Sprintf("create customer %q", c.Name))
}

func (s *Store) FindCustomer(ctx context.Context, merchantID string, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.conn(ctx).Where("id = ? AND merchant_id = ?", id, merchantID).First(&c).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("customer %d", id))
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, merchantID string, ids ...uint) ([]models.Customer, error) {
	q := s.conn(ctx).Where("merchant_id = ?", merchantID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	customers := []models.Customer{}
	if err := q.Order("name").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// DeleteCustomer removes the customer and its links to past sales. The sales
// themselves are kept.
func (s *Store) DeleteCustomer(ctx context.Context, merchantID string, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM sale_customers WHERE customer_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink customer %d: %w", id, err)
		}
		res := tx.Where("id = ? AND merchant_id = ?", id, merchantID).Delete(&models.Customer{})
		if res.Error != nil {
			return fmt.Errorf("delete customer %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete customer %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
