package models

// DateLayout is the canonical calendar day format used for trip dates.
const DateLayout = "2006-01-02"

// Trip records whether a companion traveled the outbound and/or return leg
// on one calendar day. There is at most one Trip per (CompanionID, Date).
type Trip struct {
	// CompanionID is the owning companion.
	CompanionID string `json:"companionId"`

	// Date is the calendar day in DateLayout form.
	Date string `json:"date"`

	// Outbound is set when the companion traveled the outbound leg.
	Outbound bool `json:"outbound"`

	// Return is set when the companion traveled the return leg.
	Return bool `json:"return"`
}
