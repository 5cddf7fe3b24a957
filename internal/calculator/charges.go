// Package calculator holds the pure arithmetic behind the ledger: per-leg trip
// charges, weekly charges, balances and debt. Nothing here touches storage.
package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
)

// DefaultLegCost is the charge for one traveled leg.
var DefaultLegCost = decimal.RequireFromString("1.50")

// businessDays is the number of charged days in a week (Monday to Friday).
const businessDays = 5

// LegsTraveled returns how many legs (0, 1 or 2) the trip covers.
func LegsTraveled(t models.Trip) int {
	legs := 0
	if t.Outbound {
		legs++
	}
	if t.Return {
		legs++
	}
	return legs
}

// TripCharge is legCost × legs traveled. Every trip record is charged; only
// WeeklyCharge restricts itself to business days.
func TripCharge(t models.Trip, legCost decimal.Decimal) decimal.Decimal {
	return legCost.Mul(decimal.NewFromInt(int64(LegsTraveled(t))))
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekBounds returns the Monday and Friday of the week containing day.
// Weeks start on Monday.
func WeekBounds(day time.Time) (monday, friday time.Time) {
	day = StartOfDay(day)
	offset := (int(day.Weekday()) + 6) % 7
	monday = day.AddDate(0, 0, -offset)
	friday = monday.AddDate(0, 0, businessDays-1)
	return monday, friday
}

// WeekDays lists the five business days of the week containing day.
func WeekDays(day time.Time) []time.Time {
	monday, _ := WeekBounds(day)
	days := make([]time.Time, businessDays)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// WeeklyCharge sums the trip charges for the Monday to Friday of the week
// containing weekStart. Weekend trips and trips in other weeks add nothing.
func WeeklyCharge(trips []models.Trip, weekStart time.Time, legCost decimal.Decimal) decimal.Decimal {
	byDate := make(map[string]decimal.Decimal, len(trips))
	for _, t := range trips {
		byDate[t.Date] = byDate[t.Date].Add(TripCharge(t, legCost))
	}

	total := decimal.Zero
	for _, d := range WeekDays(weekStart) {
		total = total.Add(byDate[d.Format(models.DateLayout)])
	}
	return total
}

// TotalCharge sums the trip charges over every trip record.
func TotalCharge(trips []models.Trip, legCost decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trips {
		total = total.Add(TripCharge(t, legCost))
	}
	return total
}
