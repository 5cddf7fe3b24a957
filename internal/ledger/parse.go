package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
)

// Bounds on accepted amounts.
const (
	maxAmountIntDigits = 12
	maxAmountScale     = 8
)

// ParseAmount parses a signed decimal amount such as "10.50" or "-3".
// Negative amounts are corrections or refunds and are accepted. Exponent
// notation is rejected, as are amounts with more than maxAmountIntDigits
// integer digits or maxAmountScale decimal places.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount", "required")
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, invalid("amount", "%q uses exponent notation", s)
	}
	if len(s) > maxAmountIntDigits+maxAmountScale+2 {
		return decimal.Zero, invalid("amount", "too many digits")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount", "%q is not a number", s)
	}
	if d.Exponent() < -maxAmountScale {
		return decimal.Zero, invalid("amount", "more than %d decimal places", maxAmountScale)
	}
	if d.Truncate(0).Abs().NumDigits() > maxAmountIntDigits {
		return decimal.Zero, invalid("amount", "more than %d integer digits", maxAmountIntDigits)
	}
	return d, nil
}

// ParseDay parses a calendar day in YYYY-MM-DD form.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, invalid("date", "required")
	}
	day, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, invalid("date", "%q is not a calendar day (YYYY-MM-DD)", s)
	}
	return day, nil
}

// ParseTimestamp parses an RFC 3339 timestamp or a bare calendar day.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, invalid("date", "required")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, invalid("date", "%q is not an RFC 3339 timestamp or YYYY-MM-DD day", s)
}
