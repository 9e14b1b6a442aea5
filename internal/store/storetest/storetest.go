// Package storetest opens migrated in-memory stores for tests.
package storetest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
	"github.com/isahbella007/whatsapp-first-erp/pkg/database"
)

// DB returns a private sqlite database with the ledger schema.
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func New(t testing.TB) *store.Store {
	return store.New(DB(t))
}

// Product inserts a product with a known base unit.
func Product(t testing.TB, s *store.Store, merchantID, name, baseUnit string, stock float64, price *float64) *models.Product {
	t.Helper()
	p := &models.Product{
		MerchantID:                      merchantID,
		Name:                            name,
		Category:                        "Uncategorized",
		CurrentStockInBaseUnits:         stock,
		StandardSellingPricePerBaseUnit: price,
	}
	if baseUnit != "" {
		p.SetBaseUnit(baseUnit)
	}
	if err := s.SaveProduct(t.Context(), p); err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return p
}

func Customer(t testing.TB, s *store.Store, merchantID, name string) *models.Customer {
	t.Helper()
	c := &models.Customer{MerchantID: merchantID, Name: name}
	if err := s.CreateCustomer(t.Context(), c); err != nil {
		t.Fatalf("seed customer %s: %v", name, err)
	}
	return c
}

func Price(v float64) *float64 { return &v }
