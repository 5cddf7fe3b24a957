// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/ridesplit/internal/models"
)

// Sentinel errors returned (wrapped) by every backend.
var (
	// ErrNotFound is returned when a companion or payment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when inserting a companion or payment whose id is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the persistence gateway used by the ledger engine.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, a JSON file)
// without changing the ledger code.
//
// Each method is an atomic unit. Backends must never leave a trip or payment
// pointing at a companion that no longer exists.
type Store interface {
	// ListCompanions returns every companion ordered by creation time.
	ListCompanions(ctx context.Context) ([]*models.Companion, error)

	// GetCompanion retrieves a companion by id. Returns ErrNotFound if missing.
	GetCompanion(ctx context.Context, companionID string) (*models.Companion, error)

	// InsertCompanion persists a new companion. Returns ErrAlreadyExists if the id is taken.
	InsertCompanion(ctx context.Context, companion *models.Companion) error

	// UpdateCompanionName changes the display name. Returns ErrNotFound if missing.
	UpdateCompanionName(ctx context.Context, companionID, name string) error

	// DeleteCompanion removes the companion together with all of its trips and
	// payments, dependents first. Returns ErrNotFound if missing.
	DeleteCompanion(ctx context.Context, companionID string) error

	// ListTrips returns a companion's trips ordered by date.
	ListTrips(ctx context.Context, companionID string) ([]*models.Trip, error)

	// UpsertTrip creates the trip for (CompanionID, Date) or replaces its leg flags.
	UpsertTrip(ctx context.Context, trip *models.Trip) error

	// ListPayments returns the payments a companion currently owns, ordered by date.
	ListPayments(ctx context.Context, companionID string) ([]*models.Payment, error)

	// GetPayment retrieves a payment by id. Returns ErrNotFound if missing.
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// InsertPayment persists a new payment. The id must already be set.
	InsertPayment(ctx context.Context, payment *models.Payment) error

	// UpdatePayment overwrites amount, date and note. The owner is not changed.
	UpdatePayment(ctx context.Context, payment *models.Payment) error

	// DeletePayment removes a payment permanently. Returns ErrNotFound if missing.
	DeletePayment(ctx context.Context, paymentID string) error

	// ReassignPayment changes only the owner of a payment, in a single write.
	// Returns ErrNotFound if either the payment or the new owner is missing.
	ReassignPayment(ctx context.Context, paymentID, newCompanionID string) error

	// Close releases any resources held by the store.
	Close() error
}
