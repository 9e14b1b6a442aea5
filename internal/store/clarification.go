package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

// UpsertPendingClarification keeps at most one pending clarification per
// merchant, subject and type.
func (s *Store) UpsertPendingClarification(ctx context.Context, c *models.Clarification) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Clarification
		err := tx.Where("merchant_id = ? AND type = ? AND product_name = ? AND customer_name = ? AND status = ?",
			c.MerchantID, c.Type, c.ProductName, c.CustomerName, models.ClarificationPending).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status = models.ClarificationPending
			return translate(tx.Create(c).Error, "create clarification")
		}
		if err != nil {
			return fmt.Errorf("find clarification: %w", err)
		}

		existing.Prompt = c.Prompt
		existing.DataNeeded = c.DataNeeded
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("update clarification %d: %w", existing.ID, err)
		}
		*c = existing
		return nil
	})
}

func (s *Store) GetClarification(ctx context.Context, merchantID string, id uint) (*models.Clarification, error) {
	var c models.Clarification
	if err := s.conn(ctx).Where("id = ? AND merchant_id = ?", id, merchantID).First(&c).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("clarification %d", id))
	}
	return &c, nil
}

// ListClarifications returns all clarifications of the merchant when status
// is empty.
func (s *Store) ListClarifications(ctx context.Context, merchantID, status string) ([]models.Clarification, error) {
	q := s.conn(ctx).Where("merchant_id = ?", merchantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []models.Clarification{}
	if err := q.Order("created_at, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list clarifications: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateClarificationStatus(ctx context.Context, merchantID string, id uint, status string) error {
	res := s.conn(ctx).Model(&models.Clarification{}).
		Where("id = ? AND merchant_id = ?", id, merchantID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update clarification %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("clarification %d: %w", id, ErrNotFound)
	}
	return nil
}
