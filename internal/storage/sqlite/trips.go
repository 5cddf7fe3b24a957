package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/ridesplit/internal/models"
)

// ListTrips retrieves a companion's trips ordered by date.
func (s *SQLiteStore) ListTrips(ctx context.Context, companionID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT companion_id, date, outbound, return_leg
		 FROM trips WHERE companion_id = ? ORDER BY date`,
		companionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		t := &models.Trip{}
		if err := rows.Scan(&t.CompanionID, &t.Date, &t.Outbound, &t.Return); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	return trips, nil
}

// UpsertTrip inserts the trip or replaces the leg flags of the existing one.
func (s *SQLiteStore) UpsertTrip(ctx context.Context, trip *models.Trip) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (companion_id, date, outbound, return_leg) VALUES (?, ?, ?, ?)
		 ON CONFLICT (companion_id, date) DO UPDATE SET
		     outbound = excluded.outbound,
		     return_leg = excluded.return_leg`,
		trip.CompanionID, trip.Date, trip.Outbound, trip.Return,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trip: %w", err)
	}
	return nil
}
