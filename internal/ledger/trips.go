package ledger

import (
	"context"
	"log/slog"

	"github.com/mmynk/ridesplit/internal/models"
)

// UpsertTrip records which legs trip.CompanionID traveled on trip.Date,
// replacing the flags of an existing record for that day.
func (e *Engine) UpsertTrip(ctx context.Context, trip models.Trip) error {
	const op = "upsert trip"

	normalized, err := normalizeTrip(trip)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireCompanion(ctx, op, normalized.CompanionID); err != nil {
		return err
	}
	if err := e.store.UpsertTrip(ctx, &normalized); err != nil {
		return mapStoreErr(op, "companion", normalized.CompanionID, err)
	}

	slog.Info("Trip recorded",
		"companion_id", normalized.CompanionID,
		"date", normalized.Date,
		"outbound", normalized.Outbound,
		"return", normalized.Return,
	)
	return nil
}

// SetTrips upserts several days for one companion. Every entry is validated
// before any is written; each write is an idempotent upsert.
func (e *Engine) SetTrips(ctx context.Context, companionID string, trips []models.Trip) error {
	const op = "set trips"

	normalized := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		t.CompanionID = companionID
		n, err := normalizeTrip(t)
		if err != nil {
			return err
		}
		normalized = append(normalized, n)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireCompanion(ctx, op, companionID); err != nil {
		return err
	}
	for i := range normalized {
		if err := e.store.UpsertTrip(ctx, &normalized[i]); err != nil {
			return mapStoreErr(op, "companion", companionID, err)
		}
	}

	slog.Info("Trips recorded", "companion_id", companionID, "count", len(normalized))
	return nil
}

// normalizeTrip validates the trip and rewrites its date in canonical form.
func normalizeTrip(t models.Trip) (models.Trip, error) {
	if t.CompanionID == "" {
		return t, invalid("companionId", "required")
	}
	day, err := ParseDay(t.Date)
	if err != nil {
		return t, err
	}
	t.Date = day.Format(models.DateLayout)
	return t, nil
}
