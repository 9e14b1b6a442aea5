package sale

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/reply"
)

type Formatter struct {
	Currency string
}

// Receipt summarizes a committed sale.
func (f Formatter) Receipt(s *models.Sale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 *Sale recorded* (%s)\n", s.Reference)
	if len(s.Customers) > 0 {
		names := make([]string, len(s.Customers))
		for i, c := range s.Customers {
			names[i] = c.Name
		}
		fmt.Fprintf(&b, "👤 Customer: %s\n", strings.Join(names, ", "))
	}
	for i, it := range s.Items {
		fmt.Fprintf(&b, "%d. %s x %s @ %s = %s\n", i+1, it.ProductName, reply.Amount(it.Quantity),
			reply.Money(f.Currency, it.PricePerUnit), reply.Money(f.Currency, it.Total))
	}
	fmt.Fprintf(&b, "💰 Total: %s\n", reply.Money(f.Currency, s.TotalAmount))
	if s.Status == models.SaleStatusIncomplete {
		balance, _ := decimal.NewFromFloat(s.TotalAmount).Sub(decimal.NewFromFloat(s.AmountPaid)).Float64()
		fmt.Fprintf(&b, "💵 Paid: %s\n", reply.Money(f.Currency, s.AmountPaid))
		fmt.Fprintf(&b, "⏳ Balance: %s (incomplete)\n", reply.Money(f.Currency, balance))
	} else {
		b.WriteString("✅ Fully paid\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
