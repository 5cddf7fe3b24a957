package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a monetary record owned by exactly one companion at any time.
type Payment struct {
	// ID is the unique identifier for the payment. Stable across transfers.
	ID string `json:"id"`

	// CompanionID is the current owner. Only a transfer changes it.
	CompanionID string `json:"companionId"`

	// Amount is signed: positive credits the owner, negative is a correction or refund.
	Amount decimal.Decimal `json:"amount"`

	// Date is when the payment was made.
	Date time.Time `json:"date"`

	// Note is an optional description.
	Note string `json:"note,omitempty"`

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64 `json:"createdAt"`
}

// PaymentUpdate carries the fields of an edit. Nil fields are left untouched.
type PaymentUpdate struct {
	Amount *decimal.Decimal
	Date   *time.Time
	Note   *string
}

// Empty reports whether the update changes nothing.
func (u PaymentUpdate) Empty() bool {
	return u.Amount == nil && u.Date == nil && u.Note == nil
}

// Apply copies the supplied fields onto p.
func (u PaymentUpdate) Apply(p *Payment) {
	if u.Amount != nil {
		p.Amount = *u.Amount
	}
	if u.Date != nil {
		p.Date = *u.Date
	}
	if u.Note != nil {
		p.Note = *u.Note
	}
}
