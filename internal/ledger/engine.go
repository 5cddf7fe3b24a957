// Package ledger implements the ride-cost ledger: companion directory, trip
// records, payments and the balances derived from them.
//
// The Engine is the only writer of the ledger. It validates input, checks that
// referenced companions and payments exist, and applies each mutation to the
// store as one atomic unit. Balances are never stored; every read folds them
// from the payment set.
//
// Concurrency: mutations are serialized by a write lock held for the whole
// check-then-write sequence, and reads that span several store calls (the
// snapshot) hold the read lock, so no reader observes a transfer half applied.
// Between processes sharing one database the model is last-write-wins per
// field; there is no optimistic concurrency token.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/calculator"
	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

// Config carries the engine's collaborators and constants.
type Config struct {
	// LegCost is charged per traveled leg. Nil means calculator.DefaultLegCost;
	// a zero cost is kept.
	LegCost *decimal.Decimal

	// IDs mints payment ids. Defaults to UUIDGenerator.
	IDs IDGenerator

	// Now is the clock used for payments recorded without a date. Defaults to time.Now.
	Now func() time.Time
}

// Engine applies ledger operations against a storage.Store.
type Engine struct {
	mu      sync.RWMutex
	store   storage.Store
	legCost decimal.Decimal
	ids     IDGenerator
	now     func() time.Time
}

// New creates an Engine over store.
func New(store storage.Store, cfg Config) *Engine {
	e := &Engine{
		store:   store,
		legCost: calculator.DefaultLegCost,
		ids:     cfg.IDs,
		now:     cfg.Now,
	}
	if cfg.LegCost != nil {
		e.legCost = *cfg.LegCost
	}
	if e.ids == nil {
		e.ids = UUIDGenerator{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// LegCost returns the per-leg charge in use.
func (e *Engine) LegCost() decimal.Decimal {
	return e.legCost
}

// storageFailure logs and wraps an unexpected store error.
func storageFailure(op string, err error) error {
	slog.Error("Storage operation failed", "op", op, "error", err)
	return &StorageError{Op: op, Err: err}
}

// mapStoreErr turns storage.ErrNotFound into a NotFoundError for kind/id and
// anything else into a StorageError.
func mapStoreErr(op, kind, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return storageFailure(op, err)
}

func (e *Engine) requireCompanion(ctx context.Context, op, companionID string) (*models.Companion, error) {
	if companionID == "" {
		return nil, invalid("companionId", "required")
	}
	c, err := e.store.GetCompanion(ctx, companionID)
	if err != nil {
		return nil, mapStoreErr(op, "companion", companionID, err)
	}
	return c, nil
}

func (e *Engine) requirePayment(ctx context.Context, op, paymentID string) (*models.Payment, error) {
	if paymentID == "" {
		return nil, invalid("paymentId", "required")
	}
	p, err := e.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, mapStoreErr(op, "payment", paymentID, err)
	}
	return p, nil
}

// ComputeBalance sums the amounts of the payments companionID currently owns.
func (e *Engine) ComputeBalance(ctx context.Context, companionID string) (decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	section, err := e.loadSection(ctx, "compute balance", companionID)
	if err != nil {
		return decimal.Zero, err
	}
	return section.Balance, nil
}

// ComputeWeeklyCharge sums leg charges over Monday to Friday of the week
// containing weekStart. Weekend trips contribute nothing.
func (e *Engine) ComputeWeeklyCharge(ctx context.Context, companionID string, weekStart time.Time) (decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	section, err := e.loadSection(ctx, "compute weekly charge", companionID)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.WeeklyCharge(section.Trips, weekStart, e.legCost), nil
}

// ComputeDebt is the total trip charge minus the balance. Negative means the
// companion is owed money.
func (e *Engine) ComputeDebt(ctx context.Context, companionID string) (decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	section, err := e.loadSection(ctx, "compute debt", companionID)
	if err != nil {
		return decimal.Zero, err
	}
	return section.Debt, nil
}

// CompanionLedger returns one companion's trips, payments and derived totals.
func (e *Engine) CompanionLedger(ctx context.Context, companionID string) (*models.CompanionLedger, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.loadSection(ctx, "get companion ledger", companionID)
}

// Snapshot returns every companion, sorted by name, with its trips, payments
// and derived totals.
func (e *Engine) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	companions, err := e.store.ListCompanions(ctx)
	if err != nil {
		return nil, storageFailure("snapshot", err)
	}

	snap := &models.Snapshot{
		LegCost:    e.legCost,
		Companions: make([]models.CompanionLedger, 0, len(companions)),
	}
	for _, c := range companions {
		section, err := e.fillSection(ctx, "snapshot", *c)
		if err != nil {
			return nil, err
		}
		snap.Companions = append(snap.Companions, *section)
	}
	sort.SliceStable(snap.Companions, func(i, j int) bool {
		a, b := strings.ToLower(snap.Companions[i].Companion.Name), strings.ToLower(snap.Companions[j].Companion.Name)
		if a != b {
			return a < b
		}
		return snap.Companions[i].Companion.ID < snap.Companions[j].Companion.ID
	})
	return snap, nil
}

func (e *Engine) loadSection(ctx context.Context, op, companionID string) (*models.CompanionLedger, error) {
	c, err := e.requireCompanion(ctx, op, companionID)
	if err != nil {
		return nil, err
	}
	return e.fillSection(ctx, op, *c)
}

func (e *Engine) fillSection(ctx context.Context, op string, c models.Companion) (*models.CompanionLedger, error) {
	trips, err := e.store.ListTrips(ctx, c.ID)
	if err != nil {
		return nil, storageFailure(op, err)
	}
	payments, err := e.store.ListPayments(ctx, c.ID)
	if err != nil {
		return nil, storageFailure(op, err)
	}

	section := &models.CompanionLedger{
		Companion: c,
		Trips:     make([]models.Trip, 0, len(trips)),
		Payments:  make([]models.Payment, 0, len(payments)),
	}
	for _, t := range trips {
		section.Trips = append(section.Trips, *t)
	}
	for _, p := range payments {
		section.Payments = append(section.Payments, *p)
	}
	calculator.Summarize(section, e.legCost)
	return section, nil
}
