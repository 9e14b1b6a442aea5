package database

import (
	"log"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"

	"gorm.io/gorm"
)

// SeedDemoMerchant gives a merchant a small catalogue to try commands
// against. Existing rows are left alone.
func SeedDemoMerchant(db *gorm.DB, merchantID string) error {
	bottle, piece := "bottle", "piece"
	price := func(v float64) *float64 { return &v }

	products := []models.Product{
		{
			MerchantID: merchantID, Name: "Zobo Delight", Category: "Drinks",
			BaseUnitOfMeasure: &bottle, CurrentStockInBaseUnits: 48,
			StandardSellingPricePerBaseUnit: price(1000), ReorderLevel: 12,
			AlternativeUnits: []models.ProductUnit{{UnitName: "crate", ConversionFactorToBase: 12}},
		},
		{
			MerchantID: merchantID, Name: "Shoes", Category: "Fashion",
			BaseUnitOfMeasure: &piece, CurrentStockInBaseUnits: 3,
			StandardSellingPricePerBaseUnit: price(15000),
		},
	}
	for _, p := range products {
		var existing models.Product
		err := db.Where("merchant_id = ? AND name = ?", merchantID, p.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&p).Error; err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
			return err
		}
		log.Printf("Seeded product %s for merchant %s", p.Name, merchantID)
	}

	customers := []string{"Ada Obi", "Musa Bello"}
	for _, name := range customers {
		c := models.Customer{MerchantID: merchantID, Name: name}
		if err := db.Where(models.Customer{MerchantID: merchantID, Name: name}).FirstOrCreate(&c).Error; err != nil {
			log.Printf("Failed to seed customer %s: %v", name, err)
			return err
		}
	}
	return nil
}
