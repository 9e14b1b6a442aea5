package units

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

// Conversion states that Unit1Quantity of Unit1 equals Unit2Quantity of Unit2,
// e.g. 1 crate = 12 bottle.
type Conversion struct {
	Unit1         string  `mapstructure:"unit1" json:"unit1"`
	Unit1Quantity float64 `mapstructure:"unit1Quantity" json:"unit1Quantity"`
	Unit2         string  `mapstructure:"unit2" json:"unit2"`
	Unit2Quantity float64 `mapstructure:"unit2Quantity" json:"unit2Quantity"`
}

// Inference holds the unit hints of a command that creates a product.
type Inference struct {
	Explicit     string
	Conversion   *Conversion
	PriceUnit    string
	QuantityUnit string
}

// InferBaseUnit picks the base unit of a new product. The first usable hint
// wins: an explicit base unit, the second unit of a conversion, a non-bulk
// price unit, then a non-bulk quantity unit.
func InferBaseUnit(product string, in Inference) (Unit, error) {
	if in.Explicit != "" {
		u, err := Normalize(in.Explicit)
		if err != nil {
			return "", unrecognized(in.Explicit)
		}
		return u, nil
	}
	if in.Conversion != nil {
		if u, err := Normalize(in.Conversion.Unit2); err == nil && u != "" {
			log.Printf("[units] base unit of %q inferred from conversion: %s", product, u)
			return u, nil
		}
	}
	var seen string
	for _, raw := range []string{in.PriceUnit, in.QuantityUnit} {
		u, err := Normalize(raw)
		if err != nil || u == "" {
			continue
		}
		if IsBulk(u) {
			if seen == "" {
				seen = string(u)
			}
			continue
		}
		log.Printf("[units] base unit of %q inferred: %s", product, u)
		return u, nil
	}
	return "", clarify.Block(clarify.BaseUnitRequired(product, seen))
}

// ApplyConversion stores the factor of the non-base side of c on p. Applying
// the same conversion twice leaves p unchanged.
func ApplyConversion(p *models.Product, c Conversion) error {
	u1, err := Normalize(c.Unit1)
	if err != nil || u1 == "" {
		return unrecognized(c.Unit1)
	}
	u2, err := Normalize(c.Unit2)
	if err != nil || u2 == "" {
		return unrecognized(c.Unit2)
	}
	if c.Unit1Quantity <= 0 || c.Unit2Quantity <= 0 {
		return apperr.Validation("Conversion quantities must be greater than zero.")
	}
	if u1 == u2 {
		return apperr.Validation("A conversion needs two different units, got %s twice.", u1)
	}
	base := Unit(p.BaseUnit())
	if base == "" {
		return clarify.Block(clarify.BaseUnitRequired(p.Name, ""))
	}
	q1 := decimal.NewFromFloat(c.Unit1Quantity)
	q2 := decimal.NewFromFloat(c.Unit2Quantity)
	var other Unit
	var factor decimal.Decimal
	switch base {
	case u2:
		other, factor = u1, q2.Div(q1)
	case u1:
		other, factor = u2, q1.Div(q2)
	default:
		return clarify.Block(clarify.ConversionRequired(p.Name, string(u1), string(base),
			models.ClarificationData{ValueType: clarify.ValueUnit}))
	}
	f, _ := factor.Float64()
	p.UpsertAlternativeUnit(string(other), f)
	log.Printf("[units] %q: 1 %s = %v %s", p.Name, other, f, base)
	return nil
}

// QuantityToBase converts qty expressed in rawUnit into base units of p. An
// empty unit means the base unit.
func QuantityToBase(p *models.Product, qty float64, rawUnit string) (float64, error) {
	u, err := Normalize(rawUnit)
	if err != nil {
		return 0, unrecognized(rawUnit)
	}
	base := Unit(p.BaseUnit())
	if base == "" {
		return 0, clarify.Block(clarify.StockDeferred(p.Name, qty, displayUnit(u)))
	}
	if u == "" || u == base {
		return qty, nil
	}
	alt, ok := p.AlternativeUnit(string(u))
	if !ok {
		return 0, clarify.Block(clarify.ConversionRequired(p.Name, string(u), string(base), models.ClarificationData{
			ValueType:        clarify.ValueQuantity,
			OriginalQuantity: &qty,
			OriginalUnit:     string(u),
		}))
	}
	v, _ := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(alt.ConversionFactorToBase)).Float64()
	return v, nil
}

// QuantityFromBase is the inverse of QuantityToBase.
func QuantityFromBase(p *models.Product, baseQty float64, rawUnit string) (float64, error) {
	u, err := Normalize(rawUnit)
	if err != nil {
		return 0, unrecognized(rawUnit)
	}
	base := Unit(p.BaseUnit())
	if u == "" || u == base {
		return baseQty, nil
	}
	alt, ok := p.AlternativeUnit(string(u))
	if !ok {
		return 0, apperr.AmbiguousUnit(fmt.Sprintf("No conversion from %s to %s is known for %s.", base, u, p.Name))
	}
	v, _ := decimal.NewFromFloat(baseQty).Div(decimal.NewFromFloat(alt.ConversionFactorToBase)).Float64()
	return v, nil
}

// SellingPriceToBase converts a price per rawUnit into a price per base unit.
func SellingPriceToBase(p *models.Product, price float64, rawUnit string) (float64, error) {
	return priceToBase(p, price, rawUnit, clarify.SellingPriceDeferred)
}

// CostPriceToBase is SellingPriceToBase for purchase prices.
func CostPriceToBase(p *models.Product, price float64, rawUnit string) (float64, error) {
	return priceToBase(p, price, rawUnit, clarify.PurchasePriceDeferred)
}

func priceToBase(p *models.Product, price float64, rawUnit string, deferred func(string, float64, string) clarify.Request) (float64, error) {
	if price < 0 {
		return 0, apperr.Validation("The price for %s cannot be negative.", p.Name)
	}
	u, err := Normalize(rawUnit)
	if err != nil {
		return 0, unrecognized(rawUnit)
	}
	base := Unit(p.BaseUnit())
	if base == "" {
		return 0, clarify.Block(deferred(p.Name, price, displayUnit(u)))
	}
	if u == "" || u == base {
		return price, nil
	}
	alt, ok := p.AlternativeUnit(string(u))
	if !ok {
		return 0, clarify.Block(clarify.ConversionRequired(p.Name, string(u), string(base), models.ClarificationData{
			ValueType:         clarify.ValuePrice,
			OriginalPrice:     &price,
			OriginalPriceUnit: string(u),
		}))
	}
	v, _ := decimal.NewFromFloat(price).Div(decimal.NewFromFloat(alt.ConversionFactorToBase)).Float64()
	return v, nil
}

func displayUnit(u Unit) string {
	if u == "" {
		return string(Each)
	}
	return string(u)
}

func unrecognized(raw string) error {
	return apperr.Validation("I don't recognize the unit '%s'. Please use one of: %s.", raw, VocabularyList())
}
