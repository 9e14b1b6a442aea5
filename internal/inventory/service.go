// Package inventory implements the product commands: add, update, delete
// and stock views.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
	"github.com/isahbella007/whatsapp-first-erp/internal/units"
)

const DefaultCategory = "Uncategorized"

type ProductStore interface {
	FindProduct(ctx context.Context, merchantID string, id uint) (*models.Product, error)
	FindProductByName(ctx context.Context, merchantID, name string) (*models.Product, error)
	ListProducts(ctx context.Context, merchantID string, f store.ProductFilter) ([]models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, merchantID string, id uint) error
}

// StockMode says whether a quantity is added to stock or replaces it.
type StockMode string

const (
	StockAdd StockMode = "add"
	StockSet StockMode = "set"
)

// ProductInput carries the optional fields of an add or update command. Units
// are raw merchant text and are normalized here.
type ProductInput struct {
	Name          string
	Category      string
	Quantity      *float64
	QuantityUnit  string
	Price         *float64
	PriceUnit     string
	CostPrice     *float64
	CostPriceUnit string
	BaseUnit      string
	Conversion    *units.Conversion
	ReorderLevel  *float64
}

func (in ProductInput) hasChanges() bool {
	return in.Quantity != nil || in.Price != nil || in.CostPrice != nil || in.Conversion != nil ||
		in.Category != "" || in.ReorderLevel != nil || in.BaseUnit != ""
}

type Outcome struct {
	Product *models.Product
	Created bool
}

type Service struct {
	store      ProductStore
	matcher    match.Matcher
	thresholds match.Thresholds
	lowStock   float64
}

func NewService(s ProductStore, m match.Matcher, t match.Thresholds, lowStockDefault float64) *Service {
	return &Service{store: s, matcher: m, thresholds: t, lowStock: lowStockDefault}
}

// AddProduct creates the product or, when the name already exists, adds to
// it. A new product needs a base unit before anything is written.
func (s *Service) AddProduct(ctx context.Context, merchantID string, in ProductInput) (*Outcome, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("Please specify the product name.")
	}

	p, err := s.existing(ctx, merchantID, in.Name)
	if err != nil {
		return nil, err
	}
	created := p == nil
	if created {
		p = &models.Product{MerchantID: merchantID, Name: in.Name, Category: DefaultCategory}
	}
	if p.BaseUnit() == "" {
		base, err := units.InferBaseUnit(p.Name, units.Inference{
			Explicit:     in.BaseUnit,
			Conversion:   in.Conversion,
			PriceUnit:    in.PriceUnit,
			QuantityUnit: in.QuantityUnit,
		})
		if err != nil {
			return nil, err
		}
		p.SetBaseUnit(string(base))
	}

	if err := apply(p, in, StockAdd); err != nil {
		return nil, err
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[inventory] merchant %s %s product %q: stock %v %s", merchantID, verb(created), p.Name, p.CurrentStockInBaseUnits, p.BaseUnit())
	return &Outcome{Product: p, Created: created}, nil
}

// UpdateProduct changes an existing product found by fuzzy name match.
func (s *Service) UpdateProduct(ctx context.Context, merchantID string, in ProductInput, mode StockMode) (*Outcome, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("Please specify the product name to update.")
	}
	if !in.hasChanges() {
		return nil, apperr.Validation("Please specify a quantity, price, or both to update.")
	}

	r, ok, err := s.matcher.Match(ctx, merchantID, in.Name, match.KindProduct)
	if err != nil {
		return nil, fmt.Errorf("match product %q: %w", in.Name, err)
	}
	if !ok || !s.thresholds.Accept(match.KindProduct, r) {
		return nil, clarify.Block(clarify.ProductMissing(in.Name))
	}
	p, err := s.store.FindProduct(ctx, merchantID, r.ID)
	if err != nil {
		return nil, err
	}
	if p.BaseUnit() == "" && in.BaseUnit != "" {
		u, err := units.Normalize(in.BaseUnit)
		if err != nil || u == "" {
			return nil, apperr.Validation("I don't recognize the unit '%s'. Please use one of: %s.", in.BaseUnit, units.VocabularyList())
		}
		p.SetBaseUnit(string(u))
	}

	if mode == "" {
		mode = StockAdd
	}
	if err := apply(p, in, mode); err != nil {
		return nil, err
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[inventory] merchant %s updated product %q (%s): stock %v %s", merchantID, p.Name, mode, p.CurrentStockInBaseUnits, p.BaseUnit())
	return &Outcome{Product: p}, nil
}

// DeleteResult lists the stored names that were deleted and the requested
// names that matched nothing with enough confidence.
type DeleteResult struct {
	Deleted  []string
	NotFound []string
}

func (s *Service) DeleteProducts(ctx context.Context, merchantID string, names []string) (*DeleteResult, error) {
	res := &DeleteResult{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r, ok, err := s.matcher.Match(ctx, merchantID, name, match.KindProduct)
		if err != nil {
			return res, fmt.Errorf("match product %q: %w", name, err)
		}
		if !ok || r.Confidence < s.thresholds.Exact {
			res.NotFound = append(res.NotFound, name)
			continue
		}
		if err := s.store.DeleteProduct(ctx, merchantID, r.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				res.NotFound = append(res.NotFound, name)
				continue
			}
			return res, err
		}
		log.Printf("[inventory] merchant %s deleted product %q", merchantID, r.Name)
		res.Deleted = append(res.Deleted, r.Name)
	}
	if len(res.Deleted) == 0 && len(res.NotFound) == 0 {
		return nil, apperr.Validation("Please specify the product name to delete.")
	}
	return res, nil
}

// existing finds the product a new name refers to, tolerating only case and
// plural differences.
func (s *Service) existing(ctx context.Context, merchantID, name string) (*models.Product, error) {
	p, err := s.store.FindProductByName(ctx, merchantID, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	r, ok, err := s.matcher.Match(ctx, merchantID, name, match.KindProduct)
	if err != nil {
		return nil, fmt.Errorf("match product %q: %w", name, err)
	}
	if !ok || r.Confidence < s.thresholds.Exact {
		return nil, nil
	}
	return s.store.FindProduct(ctx, merchantID, r.ID)
}

func (s *Service) save(ctx context.Context, p *models.Product) error {
	err := s.store.SaveProduct(ctx, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Validation("A product named '%s' already exists.", p.Name)
	default:
		return apperr.TransactionAbort(err)
	}
}

// apply converts every field of in onto p. Validation errors return at once;
// blocking clarifications are collected so the merchant sees all of them, and
// p must then be discarded.
func apply(p *models.Product, in ProductInput, mode StockMode) error {
	for _, v := range []*float64{in.Quantity, in.Price, in.CostPrice, in.ReorderLevel} {
		if v != nil && *v < 0 {
			return apperr.Validation("Quantities and prices for %s cannot be negative.", p.Name)
		}
	}

	var blocked []error
	// keep reports whether err is nil; blocking errors are collected and any
	// other error is returned through fatal.
	var fatal error
	keep := func(err error) bool {
		switch {
		case err == nil:
			return true
		case clarify.IsBlocked(err):
			blocked = append(blocked, err)
		case fatal == nil:
			fatal = err
		}
		return false
	}

	if in.Conversion != nil {
		keep(units.ApplyConversion(p, *in.Conversion))
	}
	if in.Quantity != nil && fatal == nil {
		if q, err := units.QuantityToBase(p, *in.Quantity, in.QuantityUnit); keep(err) {
			if mode == StockSet {
				p.CurrentStockInBaseUnits = q
			} else {
				p.CurrentStockInBaseUnits += q
			}
		}
	}
	if in.Price != nil && fatal == nil {
		if price, err := units.SellingPriceToBase(p, *in.Price, in.PriceUnit); keep(err) {
			p.StandardSellingPricePerBaseUnit = &price
		}
	}
	if in.CostPrice != nil && fatal == nil {
		if cost, err := units.CostPriceToBase(p, *in.CostPrice, in.CostPriceUnit); keep(err) {
			p.CostPricePerBaseUnit = &cost
		}
	}
	if fatal != nil {
		return fatal
	}
	if len(blocked) > 0 {
		return errors.Join(blocked...)
	}

	if c := strings.TrimSpace(in.Category); c != "" {
		p.Category = c
	}
	if in.ReorderLevel != nil {
		p.ReorderLevel = *in.ReorderLevel
	}
	return nil
}

func verb(created bool) string {
	if created {
		return "added"
	}
	return "updated"
}
