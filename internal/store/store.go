// Package store is the gorm-backed persistence for products, customers,
// sales and clarifications. Every query is scoped to one merchant.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
)

var (
	ErrNotFound          = fmt.Errorf("record %w", apperr.ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("stock %w", apperr.ErrInsufficientStock)
	ErrConflict          = errors.New("record was modified concurrently")
	ErrDuplicate         = errors.New("record already exists")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Candidates lists the names the matcher scores a query against.
func (s *Store) Candidates(ctx context.Context, merchantID string, kind match.Kind) ([]match.Candidate, error) {
	table := "products"
	if kind == match.KindCustomer {
		table = "customers"
	}
	var out []match.Candidate
	err := s.conn(ctx).Table(table).
		Select("id, name").
		Where("merchant_id = ?", merchantID).
		Order("id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load %s candidates: %w", kind, err)
	}
	return out, nil
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}
