// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on a PostgreSQL database.
type Store struct {
	db *sql.DB
}

// Open connects to dsn, verifies the connection and runs migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListCompanions retrieves all companions in creation order.
func (s *Store) ListCompanions(ctx context.Context) ([]*models.Companion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM companions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companions: %w", err)
	}
	defer rows.Close()

	var companions []*models.Companion
	for rows.Next() {
		c := &models.Companion{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan companion: %w", err)
		}
		companions = append(companions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companions: %w", err)
	}
	return companions, nil
}

// GetCompanion retrieves a companion by ID.
func (s *Store) GetCompanion(ctx context.Context, companionID string) (*models.Companion, error) {
	c := &models.Companion{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM companions WHERE id = $1`, companionID,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("companion %s: %w", companionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get companion: %w", err)
	}
	return c, nil
}

// InsertCompanion persists a new companion. An existing id yields
// storage.ErrAlreadyExists.
func (s *Store) InsertCompanion(ctx context.Context, companion *models.Companion) error {
	if companion.CreatedAt == 0 {
		companion.CreatedAt = time.Now().Unix()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO companions (id, name, created_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		companion.ID, companion.Name, companion.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert companion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("companion %s: %w", companion.ID, storage.ErrAlreadyExists)
	}
	return nil
}

// UpdateCompanionName changes a companion's display name.
func (s *Store) UpdateCompanionName(ctx context.Context, companionID, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE companions SET name = $1 WHERE id = $2`, name, companionID)
	if err != nil {
		return fmt.Errorf("failed to update companion: %w", err)
	}
	return requireAffected(res, "companion", companionID)
}

// DeleteCompanion deletes trips, then payments, then the companion, in one transaction.
func (s *Store) DeleteCompanion(ctx context.Context, companionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Row lock so a concurrent payment insert for this companion waits for us.
	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM companions WHERE id = $1 FOR UPDATE`, companionID).Scan(&id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("companion %s: %w", companionID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock companion: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE companion_id = $1`, companionID); err != nil {
		return fmt.Errorf("failed to delete trips: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE companion_id = $1`, companionID); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM companions WHERE id = $1`, companionID); err != nil {
		return fmt.Errorf("failed to delete companion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTrips retrieves a companion's trips ordered by date.
func (s *Store) ListTrips(ctx context.Context, companionID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT companion_id, date, outbound, return_leg FROM trips WHERE companion_id = $1 ORDER BY date`,
		companionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		t := &models.Trip{}
		var date time.Time
		if err := rows.Scan(&t.CompanionID, &date, &t.Outbound, &t.Return); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		t.Date = date.Format(models.DateLayout)
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// UpsertTrip inserts the trip or replaces the leg flags of the existing one.
func (s *Store) UpsertTrip(ctx context.Context, trip *models.Trip) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (companion_id, date, outbound, return_leg) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (companion_id, date) DO UPDATE SET outbound = EXCLUDED.outbound, return_leg = EXCLUDED.return_leg`,
		trip.CompanionID, trip.Date, trip.Outbound, trip.Return,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trip: %w", err)
	}
	return nil
}

// requireAffected turns a zero-row write into storage.ErrNotFound.
func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
