package customer

import (
	"fmt"
	"strings"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/reply"
)

type Formatter struct {
	Currency string
}

func (f Formatter) Report(r *Report) string {
	if r.Note != "" {
		return r.Note
	}
	return f.List(r.Customers)
}

func (f Formatter) List(customers []models.Customer) string {
	if len(customers) == 0 {
		return "You have no saved customers. Use 'customer add [name] [phone]' to add one."
	}
	var b strings.Builder
	if len(customers) > 1 {
		b.WriteString("👥 *Your Customers* 👥\n")
	} else {
		fmt.Fprintf(&b, "👥 *%s Details* 👥\n", customers[0].Name)
	}
	for i, c := range customers {
		fmt.Fprintf(&b, "\n%d. *%s*\n", i+1, c.Name)
		if c.Phone != "" {
			fmt.Fprintf(&b, "   📞 Phone: %s\n", c.Phone)
		}
		if c.Email != "" {
			fmt.Fprintf(&b, "   ✉️ Email: %s\n", c.Email)
		}
		if c.TotalSpent > 0 {
			fmt.Fprintf(&b, "   💵 Total Spent: %s\n", reply.Money(f.Currency, c.TotalSpent))
		}
		if c.LastPurchaseDate != nil {
			fmt.Fprintf(&b, "   📅 Last Purchase: %s\n", c.LastPurchaseDate.Format("02 Jan 2006"))
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(&b, "   🏷️ Tags: %s\n", strings.Join(c.Tags, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f Formatter) Added(c *models.Customer) string {
	msg := fmt.Sprintf("✅ Customer *%s* added", c.Name)
	if c.Phone != "" {
		msg += fmt.Sprintf(" (%s)", c.Phone)
	}
	return msg
}

func (f Formatter) Deleted(c *models.Customer) string {
	return fmt.Sprintf("🗑️ Customer *%s* deleted", c.Name)
}
