// Package customer implements the customer commands.
package customer

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
)

type CustomerStore interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	FindCustomer(ctx context.Context, merchantID string, id uint) (*models.Customer, error)
	ListCustomers(ctx context.Context, merchantID string, ids ...uint) ([]models.Customer, error)
	DeleteCustomer(ctx context.Context, merchantID string, id uint) error
}

type Input struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Tags    []string
}

type Service struct {
	store      CustomerStore
	matcher    match.Matcher
	thresholds match.Thresholds
}

func NewService(s CustomerStore, m match.Matcher, t match.Thresholds) *Service {
	return &Service{store: s, matcher: m, thresholds: t}
}

func (s *Service) AddCustomer(ctx context.Context, merchantID string, in Input) (*models.Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Please specify the customer's name.")
	}
	c := &models.Customer{
		MerchantID: merchantID,
		Name:       name,
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Address:    strings.TrimSpace(in.Address),
		Tags:       cleanTags(in.Tags),
	}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("A customer named '%s' already exists.", name)
		}
		return nil, apperr.TransactionAbort(err)
	}
	log.Printf("[customer] merchant %s added customer %q", merchantID, c.Name)
	return c, nil
}

// DeleteCustomer removes the customer best matching name.
func (s *Service) DeleteCustomer(ctx context.Context, merchantID, name string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Please specify the customer name to delete.")
	}
	c, err := s.Resolve(ctx, merchantID, name)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteCustomer(ctx, merchantID, c.ID); err != nil {
		return nil, apperr.TransactionAbort(err)
	}
	log.Printf("[customer] merchant %s deleted customer %q", merchantID, c.Name)
	return c, nil
}

// Resolve finds the customer a name refers to or blocks with
// CUSTOMER_NOT_FOUND.
func (s *Service) Resolve(ctx context.Context, merchantID, name string) (*models.Customer, error) {
	r, ok, err := s.matcher.Match(ctx, merchantID, name, match.KindCustomer)
	if err != nil {
		return nil, fmt.Errorf("match customer %q: %w", name, err)
	}
	if !ok || !s.thresholds.Accept(match.KindCustomer, r) {
		return nil, clarify.Block(clarify.CustomerMissing(name))
	}
	return s.store.FindCustomer(ctx, merchantID, r.ID)
}

type View string

const (
	ViewAll    View = "all"
	ViewSingle View = "single"
	ViewSearch View = "search"
)

type Query struct {
	View  View
	Name  string
	Names []string
}

type Report struct {
	View      View
	Customers []models.Customer
	Note      string
}

// Lookup answers a get_customer command.
func (s *Service) Lookup(ctx context.Context, merchantID string, q Query) (*Report, error) {
	view := q.View
	if view == "" {
		switch {
		case len(q.Names) > 0:
			view = ViewSearch
		case q.Name != "":
			view = ViewSingle
		default:
			view = ViewAll
		}
	}
	report := &Report{View: view}

	switch view {
	case ViewAll:
		all, err := s.store.ListCustomers(ctx, merchantID)
		if err != nil {
			return nil, err
		}
		report.Customers = all
		if len(all) == 0 {
			report.Note = "📝 No customers found."
		}
	case ViewSingle:
		if strings.TrimSpace(q.Name) == "" {
			return nil, apperr.Validation("Please specify the customer name to view.")
		}
		c, err := s.Resolve(ctx, merchantID, q.Name)
		if clarify.IsBlocked(err) {
			report.Note = fmt.Sprintf("❌ Customer \"%s\" not found.", q.Name)
			return report, nil
		}
		if err != nil {
			return nil, err
		}
		report.Customers = []models.Customer{*c}
	case ViewSearch:
		names := q.Names
		if len(names) == 0 && q.Name != "" {
			names = []string{q.Name}
		}
		if len(names) == 0 {
			return nil, apperr.Validation("Please specify at least one name to search for.")
		}
		found, err := s.search(ctx, merchantID, names)
		if err != nil {
			return nil, err
		}
		report.Customers = found
		if len(found) == 0 {
			report.Note = fmt.Sprintf("❌ No customers found matching: %s", strings.Join(names, ", "))
		}
	default:
		return nil, apperr.Validation("Unknown customer view '%s'. Use all, single or search.", view)
	}
	return report, nil
}

func (s *Service) search(ctx context.Context, merchantID string, names []string) ([]models.Customer, error) {
	all, err := s.store.ListCustomers(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	cands := make([]match.Candidate, len(all))
	for i, c := range all {
		cands[i] = match.Candidate{ID: c.ID, Name: c.Name}
	}

	hit := map[uint]bool{}
	for _, name := range names {
		lname := strings.ToLower(strings.TrimSpace(name))
		if lname == "" {
			continue
		}
		for _, r := range match.Rank(name, cands, s.thresholds.Customer) {
			hit[r.ID] = true
		}
		for _, c := range all {
			lc := strings.ToLower(c.Name)
			if strings.Contains(lc, lname) || strings.Contains(lname, lc) {
				hit[c.ID] = true
			}
		}
	}

	var out []models.Customer
	for _, c := range all {
		if hit[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}
