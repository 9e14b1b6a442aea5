package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/reply"
)

type Formatter struct {
	Currency       string
	LowStockMarker string
	LowStockLevel  float64
}

// TotalValue sums stock times selling price over products that have a price.
func TotalValue(products []models.Product) float64 {
	total := decimal.Zero
	for _, p := range products {
		if p.StandardSellingPricePerBaseUnit == nil {
			continue
		}
		total = total.Add(decimal.NewFromFloat(p.CurrentStockInBaseUnits).
			Mul(decimal.NewFromFloat(*p.StandardSellingPricePerBaseUnit)))
	}
	v, _ := total.Float64()
	return v
}

func (f Formatter) Report(r *StockReport) string {
	if r.Note != "" {
		return r.Note
	}
	return f.Inventory(r.Title, r.Products)
}

func (f Formatter) Inventory(title string, products []models.Product) string {
	if len(products) == 0 {
		return "Your inventory is empty. Use 'add [product name] [qty] [price]' to add products."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *%s* 📦\n\n", title)
	fmt.Fprintf(&b, "💰 *Total Inventory Value:* %s\n", reply.Money(f.Currency, TotalValue(products)))
	for i, p := range products {
		fmt.Fprintf(&b, "\n%d. *%s*\n", i+1, p.Name)
		b.WriteString(f.details(&p, "   "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summary describes one product after it was added or updated.
func (f Formatter) Summary(p *models.Product, created bool) string {
	verb := "Updated"
	if created {
		verb = "Added"
	}
	return strings.TrimRight(fmt.Sprintf("✅ %s *%s*\n%s", verb, p.Name, f.details(p, "   ")), "\n")
}

func (f Formatter) details(p *models.Product, indent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s📊 Quantity: %s\n", indent, reply.Quantity(p.CurrentStockInBaseUnits, p.BaseUnit()))
	if p.StandardSellingPricePerBaseUnit != nil {
		fmt.Fprintf(&b, "%s💰 Price: %s per %s\n", indent, reply.Money(f.Currency, *p.StandardSellingPricePerBaseUnit), unitOrDefault(p.BaseUnit()))
	}
	for _, u := range p.AlternativeUnits {
		fmt.Fprintf(&b, "%s📐 1 %s = %s\n", indent, u.UnitName, reply.Quantity(u.ConversionFactorToBase, p.BaseUnit()))
	}
	if p.IsLowStock(f.LowStockLevel) {
		fmt.Fprintf(&b, "%s%s\n", indent, f.LowStockMarker)
	}
	return b.String()
}

// Deleted describes a DeleteResult.
func (f Formatter) Deleted(r *DeleteResult) string {
	var parts []string
	if n := len(r.Deleted); n > 0 {
		parts = append(parts, fmt.Sprintf("✅ %s deleted: %s", plural("Product", n), strings.Join(r.Deleted, ", ")))
	}
	if n := len(r.NotFound); n > 0 {
		parts = append(parts, fmt.Sprintf("❌ %s not found: %s", plural("Product", n), strings.Join(r.NotFound, ", ")))
	}
	return strings.Join(parts, "\n")
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func unitOrDefault(u string) string {
	if u == "" {
		return "unit"
	}
	return u
}
