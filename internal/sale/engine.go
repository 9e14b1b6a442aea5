// Package sale validates multi-item sales and commits them atomically.
package sale

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
	"github.com/isahbella007/whatsapp-first-erp/internal/units"
)

type Store interface {
	FindProduct(ctx context.Context, merchantID string, id uint) (*models.Product, error)
	FindCustomer(ctx context.Context, merchantID string, id uint) (*models.Customer, error)
	CommitSale(ctx context.Context, sale *models.Sale, decrements []store.StockDecrement) error
}

// Item is one line of a sale as the merchant stated it. Unit and
// PricePerUnit refer to the same unit; an empty Unit is the base unit.
type Item struct {
	ProductName  string   `mapstructure:"productName"`
	Quantity     *float64 `mapstructure:"quantity"`
	Unit         string   `mapstructure:"unit"`
	PricePerUnit *float64 `mapstructure:"pricePerUnit"`
}

type Request struct {
	CustomerNames []string
	Items         []Item
	TotalAmount   *float64
	AmountPaid    *float64
	Notes         string
}

// Outcome is either a committed sale or the clarifications that stopped it.
type Outcome struct {
	Sale           *models.Sale
	Committed      bool
	Clarifications []clarify.Request
}

type Engine struct {
	store      Store
	matcher    match.Matcher
	thresholds match.Thresholds
}

func NewEngine(s Store, m match.Matcher, t match.Thresholds) *Engine {
	return &Engine{store: s, matcher: m, thresholds: t}
}

// Record validates every item and commits the sale only when nothing needs
// clarification. Stock is decremented in the same transaction as the sale is
// written.
func (e *Engine) Record(ctx context.Context, merchantID string, req Request) (*Outcome, error) {
	customers, blocking, err := e.resolveCustomers(ctx, merchantID, req.CustomerNames)
	if err != nil {
		return nil, err
	}

	var (
		items  []models.SaleItem
		order  []uint
		staged = map[uint]decimal.Decimal{}
	)
	for i, it := range req.Items {
		name := strings.TrimSpace(it.ProductName)
		if name == "" || it.Quantity == nil || *it.Quantity == 0 {
			log.Printf("[sale] merchant %s: skipping item %d with missing name or quantity", merchantID, i+1)
			continue
		}
		if *it.Quantity < 0 {
			return nil, apperr.Validation("The quantity of %s must be greater than zero.", name)
		}

		r, ok, err := e.matcher.Match(ctx, merchantID, name, match.KindProduct)
		if err != nil {
			return nil, fmt.Errorf("match product %q: %w", name, err)
		}
		if !ok || !e.thresholds.Accept(match.KindProduct, r) {
			blocking = append(blocking, clarify.ProductMissing(name))
			continue
		}
		p, err := e.store.FindProduct(ctx, merchantID, r.ID)
		if err != nil {
			return nil, err
		}

		qty, err := units.QuantityToBase(p, *it.Quantity, it.Unit)
		if err != nil {
			if reqs := clarify.Requests(err); len(reqs) > 0 {
				blocking = append(blocking, reqs...)
				continue
			}
			return nil, err
		}

		available := decimal.NewFromFloat(p.CurrentStockInBaseUnits).Sub(staged[p.ID])
		if decimal.NewFromFloat(qty).GreaterThan(available) {
			left, _ := decimal.Max(available, decimal.Zero).Float64()
			blocking = append(blocking, clarify.StockShort(p.Name, qty, left, p.BaseUnit()))
			continue
		}

		price, err := e.price(p, it)
		if err != nil {
			if reqs := clarify.Requests(err); len(reqs) > 0 {
				blocking = append(blocking, reqs...)
				continue
			}
			return nil, err
		}

		total, _ := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)).Round(2).Float64()
		if _, ok := staged[p.ID]; !ok {
			order = append(order, p.ID)
		}
		staged[p.ID] = staged[p.ID].Add(decimal.NewFromFloat(qty))
		items = append(items, models.SaleItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     qty,
			PricePerUnit: price,
			Total:        total,
		})
	}

	if len(blocking) > 0 {
		log.Printf("[sale] merchant %s: sale not recorded, %d clarification(s) needed", merchantID, len(blocking))
		return &Outcome{Clarifications: blocking}, nil
	}
	if len(items) == 0 {
		return nil, apperr.Validation("There is no item to record. Please include the product name and quantity.")
	}

	s, err := buildSale(merchantID, req, customers, items)
	if err != nil {
		return nil, err
	}
	if err := e.store.CommitSale(ctx, s, decrementsOf(order, staged)); err != nil {
		log.Printf("[sale] merchant %s: commit failed: %v", merchantID, err)
		return nil, apperr.TransactionAbort(err)
	}
	log.Printf("[sale] merchant %s: recorded sale %s (%d items, total %.2f, %s)", merchantID, s.Reference, len(s.Items), s.TotalAmount, s.Status)
	return &Outcome{Sale: s, Committed: true}, nil
}

// decrementsOf folds the staged lines into one decrement per product so the
// store compares the summed quantity against stock once.
func decrementsOf(order []uint, staged map[uint]decimal.Decimal) []store.StockDecrement {
	out := make([]store.StockDecrement, 0, len(order))
	for _, id := range order {
		qty, _ := staged[id].Float64()
		out = append(out, store.StockDecrement{ProductID: id, Quantity: qty})
	}
	return out
}

// resolveCustomers returns the matched customers and a CUSTOMER_NOT_FOUND
// request for every name that matched nothing. Those requests block the sale
// like any other, but the items are still checked so every question is asked
// at once.
func (e *Engine) resolveCustomers(ctx context.Context, merchantID string, names []string) ([]models.Customer, []clarify.Request, error) {
	var customers []models.Customer
	var missing []clarify.Request
	seen := map[uint]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r, ok, err := e.matcher.Match(ctx, merchantID, name, match.KindCustomer)
		if err != nil {
			return nil, nil, fmt.Errorf("match customer %q: %w", name, err)
		}
		if !ok || !e.thresholds.Accept(match.KindCustomer, r) {
			missing = append(missing, clarify.CustomerMissing(name))
			continue
		}
		if seen[r.ID] {
			continue
		}
		c, err := e.store.FindCustomer(ctx, merchantID, r.ID)
		if errors.Is(err, store.ErrNotFound) {
			missing = append(missing, clarify.CustomerMissing(name))
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		seen[c.ID] = true
		customers = append(customers, *c)
	}
	return customers, missing, nil
}

// price is the explicit item price converted to the base unit, or the
// product's standard price.
func (e *Engine) price(p *models.Product, it Item) (float64, error) {
	if it.PricePerUnit != nil {
		return units.SellingPriceToBase(p, *it.PricePerUnit, it.Unit)
	}
	if p.StandardSellingPricePerBaseUnit != nil {
		return *p.StandardSellingPricePerBaseUnit, nil
	}
	return 0, clarify.Block(clarify.SellingPriceMissing(p.Name))
}

func buildSale(merchantID string, req Request, customers []models.Customer, items []models.SaleItem) (*models.Sale, error) {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Total))
	}
	total, _ := sum.Round(2).Float64()
	if req.TotalAmount != nil {
		if *req.TotalAmount < 0 {
			return nil, apperr.Validation("The sale total cannot be negative.")
		}
		total = *req.TotalAmount
	}
	paid := total
	if req.AmountPaid != nil {
		if *req.AmountPaid < 0 {
			return nil, apperr.Validation("The amount paid cannot be negative.")
		}
		paid = *req.AmountPaid
	}
	return &models.Sale{
		MerchantID:  merchantID,
		Customers:   customers,
		Items:       items,
		TotalAmount: total,
		AmountPaid:  paid,
		Status:      models.SaleStatus(total, paid),
		Notes:       strings.TrimSpace(req.Notes),
	}, nil
}
