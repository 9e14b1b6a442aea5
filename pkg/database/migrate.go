package database

import (
	"fmt"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductUnit{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Clarification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
