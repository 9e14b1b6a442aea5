package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
)

type StockView string

const (
	ViewAll      StockView = "all"
	ViewQuery    StockView = "query"
	ViewCategory StockView = "category"
	ViewLow      StockView = "low"
)

type StockQuery struct {
	View     StockView
	Query    string
	Category string
}

// StockReport is the result of a stock view. Note is set instead of Products
// when the view matched nothing.
type StockReport struct {
	View     StockView
	Title    string
	Products []models.Product
	Note     string
}

// Stock answers a check_stock command. An empty View is inferred from the
// other fields.
func (s *Service) Stock(ctx context.Context, merchantID string, q StockQuery) (*StockReport, error) {
	view := q.View
	if view == "" {
		switch {
		case q.Category != "":
			view = ViewCategory
		case q.Query != "":
			view = ViewQuery
		default:
			view = ViewAll
		}
	}

	all, err := s.store.ListProducts(ctx, merchantID, store.ProductFilter{})
	if err != nil {
		return nil, err
	}
	report := &StockReport{View: view, Title: "Current Inventory"}

	switch view {
	case ViewAll:
		report.Products = all
	case ViewLow:
		report.Title = "Low Stock Items"
		for _, p := range all {
			if p.IsLowStock(s.lowStock) {
				report.Products = append(report.Products, p)
			}
		}
		if len(report.Products) == 0 {
			report.Note = "✅ All products are well stocked!"
		}
	case ViewCategory:
		if q.Category == "" {
			return nil, apperr.Validation("Please specify the category to check.")
		}
		report.Title = q.Category
		for _, p := range all {
			if strings.EqualFold(p.Category, q.Category) {
				report.Products = append(report.Products, p)
			}
		}
		if len(report.Products) == 0 {
			report.Note = fmt.Sprintf("No products found in category \"%s\". Available categories: %s",
				q.Category, strings.Join(categories(all), ", "))
		}
	case ViewQuery:
		if strings.TrimSpace(q.Query) == "" {
			return nil, apperr.Validation("Please specify the product to check.")
		}
		report.Title = "Stock for " + q.Query
		report.Products = s.search(q.Query, all)
		if len(report.Products) == 0 {
			report.Note = fmt.Sprintf("No products found matching \"%s\". Try checking your inventory with 'stock' to see all products.", q.Query)
		}
	default:
		return nil, apperr.Validation("Unknown stock view '%s'. Use all, low, category or a product name.", view)
	}
	return report, nil
}

// search keeps products whose name contains the query or matches it with
// product confidence, best match first.
func (s *Service) search(query string, products []models.Product) []models.Product {
	cands := make([]match.Candidate, len(products))
	byID := make(map[uint]models.Product, len(products))
	for i, p := range products {
		cands[i] = match.Candidate{ID: p.ID, Name: p.Name}
		byID[p.ID] = p
	}

	var out []models.Product
	seen := map[uint]bool{}
	for _, r := range match.Rank(query, cands, s.thresholds.Product) {
		out = append(out, byID[r.ID])
		seen[r.ID] = true
	}
	lq := strings.ToLower(strings.TrimSpace(query))
	for _, p := range products {
		if !seen[p.ID] && strings.Contains(strings.ToLower(p.Name), lq) {
			out = append(out, p)
		}
	}
	return out
}

func categories(products []models.Product) []string {
	set := map[string]bool{}
	for _, p := range products {
		set[p.Category] = true
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
