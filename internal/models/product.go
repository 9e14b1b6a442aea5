package models

import (
	"time"
)

type Product struct {
	ID                              uint          `gorm:"primaryKey" json:"id"`
	MerchantID                      string        `gorm:"size:32;not null;uniqueIndex:idx_products_merchant_name,priority:1" json:"merchant_id"`
	Name                            string        `gorm:"size:150;not null;uniqueIndex:idx_products_merchant_name,priority:2" json:"name"`
	Category                        string        `gorm:"size:100;default:Uncategorized" json:"category"`
	BaseUnitOfMeasure               *string       `gorm:"size:20" json:"base_unit_of_measure"`
	CurrentStockInBaseUnits         float64       `gorm:"type:decimal(14,4);not null;default:0" json:"current_stock_in_base_units"`
	StandardSellingPricePerBaseUnit *float64      `gorm:"type:decimal(14,4)" json:"standard_selling_price_per_base_unit"`
	CostPricePerBaseUnit            *float64      `gorm:"type:decimal(14,4)" json:"cost_price_per_base_unit"`
	ReorderLevel                    float64       `gorm:"type:decimal(14,4);default:0" json:"reorder_level"`
	AlternativeUnits                []ProductUnit `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"alternative_units"`
	Version                         int64         `gorm:"not null;default:0" json:"-"`
	CreatedAt                       time.Time     `json:"created_at"`
	UpdatedAt                       time.Time     `json:"updated_at"`
}

// ProductUnit is one alternative unit of a product. ConversionFactorToBase is
// the number of base units in one UnitName.
type ProductUnit struct {
	ID                     uint    `gorm:"primaryKey" json:"-"`
	ProductID              uint    `gorm:"not null;uniqueIndex:idx_product_units_name,priority:1" json:"-"`
	UnitName               string  `gorm:"size:20;not null;uniqueIndex:idx_product_units_name,priority:2" json:"unit_name"`
	ConversionFactorToBase float64 `gorm:"type:decimal(14,6);not null" json:"conversion_factor_to_base"`
	Position               int     `gorm:"not null;default:0" json:"-"`
}

// BaseUnit returns the base unit or "" while it is still unknown.
func (p *Product) BaseUnit() string {
	if p.BaseUnitOfMeasure == nil {
		return ""
	}
	return *p.BaseUnitOfMeasure
}

func (p *Product) SetBaseUnit(unit string) {
	p.BaseUnitOfMeasure = &unit
}

func (p *Product) AlternativeUnit(name string) (ProductUnit, bool) {
	for _, u := range p.AlternativeUnits {
		if u.UnitName == name {
			return u, true
		}
	}
	return ProductUnit{}, false
}

// UpsertAlternativeUnit replaces the factor of an existing unit name or
// appends a new one, keeping insertion order.
func (p *Product) UpsertAlternativeUnit(name string, factor float64) {
	for i := range p.AlternativeUnits {
		if p.AlternativeUnits[i].UnitName == name {
			p.AlternativeUnits[i].ConversionFactorToBase = factor
			return
		}
	}
	p.AlternativeUnits = append(p.AlternativeUnits, ProductUnit{
		ProductID:              p.ID,
		UnitName:               name,
		ConversionFactorToBase: factor,
		Position:               len(p.AlternativeUnits),
	})
}

func (p *Product) IsLowStock(defaultLevel float64) bool {
	level := p.ReorderLevel
	if level <= 0 {
		level = defaultLevel
	}
	return p.CurrentStockInBaseUnits <= level
}
