package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

const paymentColumns = "id, companion_id, amount, date, note, created_at"

// timeLayout is fixed width so stored dates sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	var amount, date string
	var note sql.NullString

	if err := row.Scan(&p.ID, &p.CompanionID, &amount, &date, &note, &p.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if p.Date, err = time.Parse(timeLayout, date); err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	if note.Valid {
		p.Note = note.String
	}
	return p, nil
}

func nullableNote(note string) any {
	if note == "" {
		return nil
	}
	return note
}

// InsertPayment persists a new payment to the database.
func (s *SQLiteStore) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ok, err := exists(ctx, tx, "SELECT 1 FROM companions WHERE id = ?", payment.CompanionID); err != nil {
		return fmt.Errorf("failed to check companion existence: %w", err)
	} else if !ok {
		return fmt.Errorf("companion %s: %w", payment.CompanionID, storage.ErrNotFound)
	}
	if ok, err := exists(ctx, tx, "SELECT 1 FROM payments WHERE id = ?", payment.ID); err != nil {
		return fmt.Errorf("failed to check payment existence: %w", err)
	} else if ok {
		return fmt.Errorf("payment %s: %w", payment.ID, storage.ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.CompanionID, payment.Amount.String(),
		payment.Date.UTC().Format(timeLayout), nullableNote(payment.Note), payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`,
		paymentID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListPayments retrieves the payments a companion owns, oldest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, companionID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE companion_id = ? ORDER BY date, created_at, id`,
		companionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// UpdatePayment overwrites amount, date and note of an existing payment.
func (s *SQLiteStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE payments SET amount = ?, date = ?, note = ? WHERE id = ?",
		payment.Amount.String(), payment.Date.UTC().Format(timeLayout),
		nullableNote(payment.Note), payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireAffected(res, "payment", payment.ID)
}

// DeletePayment removes a payment by ID.
func (s *SQLiteStore) DeletePayment(ctx context.Context, paymentID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireAffected(res, "payment", paymentID)
}

// ReassignPayment moves a payment to another companion by updating its owner column.
// The payment keeps its id; there is no copy and no delete.
func (s *SQLiteStore) ReassignPayment(ctx context.Context, paymentID, newCompanionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ok, err := exists(ctx, tx, "SELECT 1 FROM companions WHERE id = ?", newCompanionID); err != nil {
		return fmt.Errorf("failed to check companion existence: %w", err)
	} else if !ok {
		return fmt.Errorf("companion %s: %w", newCompanionID, storage.ErrNotFound)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE payments SET companion_id = ? WHERE id = ?",
		newCompanionID, paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to reassign payment: %w", err)
	}
	if err := requireAffected(res, "payment", paymentID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
