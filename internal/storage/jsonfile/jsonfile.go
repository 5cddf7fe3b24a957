// Package jsonfile implements storage.Store on a single JSON document.
//
// The whole ledger lives in memory behind a RWMutex and is written back to disk
// after every mutation through a temp file + rename, so a failed write leaves
// both the file and the in-memory state as they were. Payments are kept in one
// table keyed by their stable id; a transfer rewrites the owner field only.
//
// An empty path keeps the document in memory without persisting it.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// document is the on-disk layout.
type document struct {
	Companions []models.Companion        `json:"companions"`
	Trips      []models.Trip             `json:"trips"`
	Payments   map[string]models.Payment `json:"payments"`
}

func newDocument() *document {
	return &document{Payments: make(map[string]models.Payment)}
}

func (d *document) clone() *document {
	c := &document{
		Companions: append([]models.Companion(nil), d.Companions...),
		Trips:      append([]models.Trip(nil), d.Trips...),
		Payments:   make(map[string]models.Payment, len(d.Payments)),
	}
	for id, p := range d.Payments {
		c.Payments[id] = p
	}
	return c
}

func (d *document) companionIndex(id string) int {
	for i, c := range d.Companions {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Store is a JSON document backed storage.Store.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  *document
}

// New opens the document at path, creating it if it does not exist. A file in
// the per-companion layout (see decodeLegacy) is imported and rewritten in the
// document layout on the first mutation.
func New(path string) (*Store, error) {
	s := &Store{path: path, doc: newDocument()}
	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.persist(s.doc); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	case isLegacy(data):
		config, err := readLegacyConfig(path)
		if err != nil {
			return nil, err
		}
		doc, err := decodeLegacy(data, config, time.Now())
		if err != nil {
			return nil, err
		}
		s.doc = doc
	default:
		if err := json.Unmarshal(data, s.doc); err != nil {
			return nil, fmt.Errorf("failed to parse ledger file: %w", err)
		}
		if s.doc.Payments == nil {
			s.doc.Payments = make(map[string]models.Payment)
		}
	}
	return s, nil
}

// NewMemory returns a Store that is never written to disk.
func NewMemory() *Store {
	s, _ := New("")
	return s
}

// Close is a no-op; every mutation is already on disk.
func (s *Store) Close() error {
	return nil
}

// persist writes doc to a temp file in the same directory and renames it over the target.
func (s *Store) persist(doc *document) error {
	if s.path == "" {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}

// update applies fn to a copy of the document and commits it only if both fn
// and the disk write succeed.
func (s *Store) update(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// ListCompanions returns copies of every companion in creation order.
func (s *Store) ListCompanions(ctx context.Context) ([]*models.Companion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	companions := make([]*models.Companion, 0, len(s.doc.Companions))
	for _, c := range s.doc.Companions {
		c := c
		companions = append(companions, &c)
	}
	sort.SliceStable(companions, func(i, j int) bool {
		if companions[i].CreatedAt != companions[j].CreatedAt {
			return companions[i].CreatedAt < companions[j].CreatedAt
		}
		return companions[i].ID < companions[j].ID
	})
	return companions, nil
}

// GetCompanion retrieves a companion by ID.
func (s *Store) GetCompanion(ctx context.Context, companionID string) (*models.Companion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.doc.companionIndex(companionID)
	if i < 0 {
		return nil, fmt.Errorf("companion %s: %w", companionID, storage.ErrNotFound)
	}
	c := s.doc.Companions[i]
	return &c, nil
}

// InsertCompanion adds a companion, stamping CreatedAt when it is unset.
func (s *Store) InsertCompanion(ctx context.Context, companion *models.Companion) error {
	if companion.CreatedAt == 0 {
		companion.CreatedAt = time.Now().Unix()
	}
	return s.update(ctx, func(doc *document) error {
		if doc.companionIndex(companion.ID) >= 0 {
			return fmt.Errorf("companion %s: %w", companion.ID, storage.ErrAlreadyExists)
		}
		doc.Companions = append(doc.Companions, *companion)
		return nil
	})
}

// UpdateCompanionName changes a companion's display name.
func (s *Store) UpdateCompanionName(ctx context.Context, companionID, name string) error {
	return s.update(ctx, func(doc *document) error {
		i := doc.companionIndex(companionID)
		if i < 0 {
			return fmt.Errorf("companion %s: %w", companionID, storage.ErrNotFound)
		}
		doc.Companions[i].Name = name
		return nil
	})
}

// DeleteCompanion drops the companion with its trips and payments in a
// single document write.
func (s *Store) DeleteCompanion(ctx context.Context, companionID string) error {
	return s.update(ctx, func(doc *document) error {
		i := doc.companionIndex(companionID)
		if i < 0 {
			return fmt.Errorf("companion %s: %w", companionID, storage.ErrNotFound)
		}

		trips := doc.Trips[:0]
		for _, t := range doc.Trips {
			if t.CompanionID != companionID {
				trips = append(trips, t)
			}
		}
		doc.Trips = trips

		for id, p := range doc.Payments {
			if p.CompanionID == companionID {
				delete(doc.Payments, id)
			}
		}

		doc.Companions = append(doc.Companions[:i], doc.Companions[i+1:]...)
		return nil
	})
}

// ListTrips returns a companion's trips ordered by date.
func (s *Store) ListTrips(ctx context.Context, companionID string) ([]*models.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trips []*models.Trip
	for _, t := range s.doc.Trips {
		if t.CompanionID == companionID {
			t := t
			trips = append(trips, &t)
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].Date < trips[j].Date })
	return trips, nil
}

// UpsertTrip inserts the trip or replaces the leg flags of the existing one.
func (s *Store) UpsertTrip(ctx context.Context, trip *models.Trip) error {
	return s.update(ctx, func(doc *document) error {
		if doc.companionIndex(trip.CompanionID) < 0 {
			return fmt.Errorf("companion %s: %w", trip.CompanionID, storage.ErrNotFound)
		}
		for i, t := range doc.Trips {
			if t.CompanionID == trip.CompanionID && t.Date == trip.Date {
				doc.Trips[i].Outbound = trip.Outbound
				doc.Trips[i].Return = trip.Return
				return nil
			}
		}
		doc.Trips = append(doc.Trips, *trip)
		return nil
	})
}

// ListPayments returns the payments a companion owns, oldest first.
func (s *Store) ListPayments(ctx context.Context, companionID string) ([]*models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payments []*models.Payment
	for _, p := range s.doc.Payments {
		if p.CompanionID == companionID {
			p := p
			payments = append(payments, &p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	return payments, nil
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.doc.Payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	return &p, nil
}

// InsertPayment stores a new payment for an existing companion.
func (s *Store) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	return s.update(ctx, func(doc *document) error {
		if doc.companionIndex(payment.CompanionID) < 0 {
			return fmt.Errorf("companion %s: %w", payment.CompanionID, storage.ErrNotFound)
		}
		if _, ok := doc.Payments[payment.ID]; ok {
			return fmt.Errorf("payment %s: %w", payment.ID, storage.ErrAlreadyExists)
		}
		doc.Payments[payment.ID] = *payment
		return nil
	})
}

// UpdatePayment overwrites amount, date and note of an existing payment.
func (s *Store) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	return s.update(ctx, func(doc *document) error {
		p, ok := doc.Payments[payment.ID]
		if !ok {
			return fmt.Errorf("payment %s: %w", payment.ID, storage.ErrNotFound)
		}
		p.Amount = payment.Amount
		p.Date = payment.Date
		p.Note = payment.Note
		doc.Payments[payment.ID] = p
		return nil
	})
}

// DeletePayment removes a payment by ID.
func (s *Store) DeletePayment(ctx context.Context, paymentID string) error {
	return s.update(ctx, func(doc *document) error {
		if _, ok := doc.Payments[paymentID]; !ok {
			return fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
		}
		delete(doc.Payments, paymentID)
		return nil
	})
}

// ReassignPayment changes the owner of a payment in place.
func (s *Store) ReassignPayment(ctx context.Context, paymentID, newCompanionID string) error {
	return s.update(ctx, func(doc *document) error {
		p, ok := doc.Payments[paymentID]
		if !ok {
			return fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
		}
		if doc.companionIndex(newCompanionID) < 0 {
			return fmt.Errorf("companion %s: %w", newCompanionID, storage.ErrNotFound)
		}
		p.CompanionID = newCompanionID
		doc.Payments[paymentID] = p
		return nil
	})
}
