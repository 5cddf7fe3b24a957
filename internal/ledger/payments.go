package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

// AddPayment records a payment owned by companionID and returns it with its new id.
// A zero date means now.
func (e *Engine) AddPayment(ctx context.Context, companionID string, amount decimal.Decimal, date time.Time, note string) (*models.Payment, error) {
	const op = "add payment"

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireCompanion(ctx, op, companionID); err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = e.now()
	}
	p := &models.Payment{
		ID:          e.ids.NewID(),
		CompanionID: companionID,
		Amount:      amount,
		Date:        date.UTC(),
		Note:        note,
		CreatedAt:   e.now().Unix(),
	}
	if err := e.store.InsertPayment(ctx, p); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, storageFailure(op, err)
		}
		return nil, mapStoreErr(op, "companion", companionID, err)
	}

	slog.Info("Payment added", "payment_id", p.ID, "companion_id", companionID, "amount", p.Amount.String())
	return p, nil
}

// EditPayment changes the supplied fields of a payment. The owner is untouched.
func (e *Engine) EditPayment(ctx context.Context, paymentID string, update models.PaymentUpdate) (*models.Payment, error) {
	const op = "edit payment"

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.requirePayment(ctx, op, paymentID)
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return p, nil
	}
	if update.Date != nil {
		d := update.Date.UTC()
		update.Date = &d
	}

	update.Apply(p)
	if err := e.store.UpdatePayment(ctx, p); err != nil {
		return nil, mapStoreErr(op, "payment", paymentID, err)
	}

	slog.Info("Payment edited", "payment_id", p.ID, "companion_id", p.CompanionID, "amount", p.Amount.String())
	return p, nil
}

// DeletePayment removes a payment permanently.
func (e *Engine) DeletePayment(ctx context.Context, paymentID string) error {
	const op = "delete payment"

	if paymentID == "" {
		return invalid("paymentId", "required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.DeletePayment(ctx, paymentID); err != nil {
		return mapStoreErr(op, "payment", paymentID, err)
	}

	slog.Info("Payment deleted", "payment_id", paymentID)
	return nil
}

// TransferPayment hands a payment to newCompanionID. Only the owner changes:
// id, amount, date and note are kept, and no copy is ever made. Transferring a
// payment to its current owner does nothing.
func (e *Engine) TransferPayment(ctx context.Context, paymentID, newCompanionID string) error {
	const op = "transfer payment"

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.requirePayment(ctx, op, paymentID)
	if err != nil {
		return err
	}
	if _, err := e.requireCompanion(ctx, op, newCompanionID); err != nil {
		return err
	}
	if p.CompanionID == newCompanionID {
		slog.Debug("Transfer to current owner ignored", "payment_id", paymentID, "companion_id", newCompanionID)
		return nil
	}

	// Both sides were checked under the write lock, so any failure here
	// is a storage fault rather than a missing record.
	if err := e.store.ReassignPayment(ctx, paymentID, newCompanionID); err != nil {
		return storageFailure(op, err)
	}

	slog.Info("Payment transferred", "payment_id", paymentID, "from", p.CompanionID, "to", newCompanionID)
	return nil
}
