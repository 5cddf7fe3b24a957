package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

const paymentColumns = `id, companion_id, amount::text, date, COALESCE(note, ''), created_at`

// foreignKeyViolation is the SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	var amount string
	if err := row.Scan(&p.ID, &p.CompanionID, &amount, &p.Date, &p.Note, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	p.Date = p.Date.UTC()
	return p, nil
}

// pqCode extracts the SQLSTATE of a lib/pq error.
func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// InsertPayment persists a new payment. SQLSTATE codes map onto the
// storage sentinel errors.
func (s *Store) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	var note sql.NullString
	if payment.Note != "" {
		note = sql.NullString{String: payment.Note, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, companion_id, amount, date, note, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		payment.ID, payment.CompanionID, payment.Amount.String(), payment.Date.UTC(), note, payment.CreatedAt,
	)
	if err != nil {
		switch pqCode(err) {
		case foreignKeyViolation:
			return fmt.Errorf("companion %s: %w", payment.CompanionID, storage.ErrNotFound)
		case uniqueViolation:
			return fmt.Errorf("payment %s: %w", payment.ID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, paymentID,
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
func (s *Store) ListPayments(ctx context.Context, companionID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE companion_id = $1 ORDER BY date, created_at, id`,
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
func (s *Store) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	var note sql.NullString
	if payment.Note != "" {
		note = sql.NullString{String: payment.Note, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET amount = $1, date = $2, note = $3 WHERE id = $4`,
		payment.Amount.String(), payment.Date.UTC(), note, payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireAffected(res, "payment", payment.ID)
}

// DeletePayment removes a payment by ID.
func (s *Store) DeletePayment(ctx context.Context, paymentID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireAffected(res, "payment", paymentID)
}

// ReassignPayment is a single UPDATE of the owner column. The foreign key
// rejects owners that do not exist.
func (s *Store) ReassignPayment(ctx context.Context, paymentID, newCompanionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET companion_id = $1 WHERE id = $2`,
		newCompanionID, paymentID,
	)
	if pqCode(err) == foreignKeyViolation {
		return fmt.Errorf("companion %s: %w", newCompanionID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to reassign payment: %w", err)
	}
	return requireAffected(res, "payment", paymentID)
}
