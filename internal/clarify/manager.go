package clarify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

var ErrNotPending = errors.New("clarification is not pending")

// Repository persists clarifications. UpsertPendingClarification must update
// the pending record with the same merchant, subject and type when it exists.
type Repository interface {
	UpsertPendingClarification(ctx context.Context, c *models.Clarification) error
	GetClarification(ctx context.Context, merchantID string, id uint) (*models.Clarification, error)
	ListClarifications(ctx context.Context, merchantID, status string) ([]models.Clarification, error)
	UpdateClarificationStatus(ctx context.Context, merchantID string, id uint, status string) error
}

type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

// Record persists every request as a pending clarification. Requests with
// the same key collapse into one record. A failure on one request is logged
// and does not stop the others.
func (m *Manager) Record(ctx context.Context, merchantID string, reqs []Request) ([]models.Clarification, error) {
	saved := make([]models.Clarification, 0, len(reqs))
	index := map[uint]int{}
	var errs []error
	for _, r := range reqs {
		c := models.Clarification{
			MerchantID:   merchantID,
			Type:         string(r.Type),
			ProductName:  r.ProductName,
			CustomerName: r.CustomerName,
			Status:       models.ClarificationPending,
			Prompt:       r.Prompt,
			DataNeeded:   r.DataNeeded,
		}
		if err := m.repo.UpsertPendingClarification(ctx, &c); err != nil {
			log.Printf("[clarify] failed to save %s for %q: %v", r.Type, r.Subject(), err)
			errs = append(errs, err)
			continue
		}
		if i, ok := index[c.ID]; ok {
			saved[i] = c
			continue
		}
		index[c.ID] = len(saved)
		saved = append(saved, c)
	}
	return saved, errors.Join(errs...)
}

func (m *Manager) Pending(ctx context.Context, merchantID string) ([]models.Clarification, error) {
	return m.repo.ListClarifications(ctx, merchantID, models.ClarificationPending)
}

// Open returns a clarification that can still be answered.
func (m *Manager) Open(ctx context.Context, merchantID string, id uint) (*models.Clarification, error) {
	c, err := m.repo.GetClarification(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ClarificationPending {
		return nil, fmt.Errorf("clarification %d is %s: %w", id, c.Status, ErrNotPending)
	}
	return c, nil
}

func (m *Manager) Resolve(ctx context.Context, merchantID string, id uint) error {
	return m.transition(ctx, merchantID, id, models.ClarificationResolved)
}

func (m *Manager) Cancel(ctx context.Context, merchantID string, id uint) error {
	return m.transition(ctx, merchantID, id, models.ClarificationCancelled)
}

func (m *Manager) transition(ctx context.Context, merchantID string, id uint, status string) error {
	if _, err := m.Open(ctx, merchantID, id); err != nil {
		return err
	}
	if err := m.repo.UpdateClarificationStatus(ctx, merchantID, id, status); err != nil {
		return fmt.Errorf("update clarification %d: %w", id, err)
	}
	log.Printf("[clarify] merchant %s clarification %d -> %s", merchantID, id, status)
	return nil
}

// RequestOf rebuilds the in-memory request of a stored clarification.
func RequestOf(c models.Clarification) Request {
	return Request{
		Type:         Type(c.Type),
		ProductName:  c.ProductName,
		CustomerName: c.CustomerName,
		Prompt:       c.Prompt,
		DataNeeded:   c.DataNeeded,
	}
}
