// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY between
	// our own transactions.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListCompanions retrieves all companions in creation order.
func (s *SQLiteStore) ListCompanions(ctx context.Context) ([]*models.Companion, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM companions ORDER BY created_at, id",
	)
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
func (s *SQLiteStore) GetCompanion(ctx context.Context, companionID string) (*models.Companion, error) {
	c := &models.Companion{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM companions WHERE id = ?",
		companionID,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("companion %s: %w", companionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get companion: %w", err)
	}
	return c, nil
}

// InsertCompanion persists a new companion.
func (s *SQLiteStore) InsertCompanion(ctx context.Context, companion *models.Companion) error {
	if companion.CreatedAt == 0 {
		companion.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ok, err := exists(ctx, tx, "SELECT 1 FROM companions WHERE id = ?", companion.ID); err != nil {
		return fmt.Errorf("failed to check companion existence: %w", err)
	} else if ok {
		return fmt.Errorf("companion %s: %w", companion.ID, storage.ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO companions (id, name, created_at) VALUES (?, ?, ?)",
		companion.ID, companion.Name, companion.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert companion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateCompanionName changes a companion's display name.
func (s *SQLiteStore) UpdateCompanionName(ctx context.Context, companionID, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE companions SET name = ? WHERE id = ?",
		name, companionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update companion: %w", err)
	}
	return requireAffected(res, "companion", companionID)
}

// DeleteCompanion removes a companion and everything it owns in one transaction.
func (s *SQLiteStore) DeleteCompanion(ctx context.Context, companionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ok, err := exists(ctx, tx, "SELECT 1 FROM companions WHERE id = ?", companionID); err != nil {
		return fmt.Errorf("failed to check companion existence: %w", err)
	} else if !ok {
		return fmt.Errorf("companion %s: %w", companionID, storage.ErrNotFound)
	}

	// Dependents before the parent.
	if _, err := tx.ExecContext(ctx, "DELETE FROM trips WHERE companion_id = ?", companionID); err != nil {
		return fmt.Errorf("failed to delete trips: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE companion_id = ?", companionID); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM companions WHERE id = ?", companionID); err != nil {
		return fmt.Errorf("failed to delete companion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// exists runs a "SELECT 1" style query inside tx.
func exists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
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
