package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
)

// Action names accepted by Dispatch.
const (
	ActionSnapshot        = "snapshot"
	ActionAddCompanion    = "addCompanion"
	ActionRenameCompanion = "renameCompanion"
	ActionDeleteCompanion = "deleteCompanion"
	ActionUpsertTrip      = "upsertTrip"
	ActionSetTrips        = "setTrips"
	ActionAddPayment      = "addPayment"
	ActionEditPayment     = "editPayment"
	ActionDeletePayment   = "deletePayment"
	ActionTransferPayment = "transferPayment"
	ActionWeeklyCharge    = "weeklyCharge"
)

// Amount is a decimal that decodes from either a JSON string or a JSON number.
// The raw text is kept so that malformed input reaches ledger.ParseAmount and
// is reported as a validation error rather than a decode error.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(data)
	return nil
}

// Request is one action against the ledger. Only the fields the action names are read.
type Request struct {
	Action            string      `json:"action"`
	CompanionID       string      `json:"companionId,omitempty"`
	TargetCompanionID string      `json:"targetCompanionId,omitempty"`
	PaymentID         string      `json:"paymentId,omitempty"`
	Name              string      `json:"name,omitempty"`
	Date              string      `json:"date,omitempty"`
	WeekStart         string      `json:"weekStart,omitempty"`
	Outbound          bool        `json:"outbound,omitempty"`
	Return            bool        `json:"return,omitempty"`
	Trips             []TripEntry `json:"trips,omitempty"`
	Amount            *Amount     `json:"amount,omitempty"`
	Note              *string     `json:"note,omitempty"`
}

// TripEntry is one day of a setTrips request.
type TripEntry struct {
	Date     string `json:"date"`
	Outbound bool   `json:"outbound"`
	Return   bool   `json:"return"`
}

// Response carries the refreshed snapshot plus the action's own result, or an error.
type Response struct {
	Snapshot     *models.Snapshot  `json:"snapshot,omitempty"`
	Companion    *models.Companion `json:"companion,omitempty"`
	Payment      *models.Payment   `json:"payment,omitempty"`
	WeeklyCharge *decimal.Decimal  `json:"weeklyCharge,omitempty"`
	Error        *ErrorBody        `json:"error,omitempty"`
}

// ErrorBody is the structured error returned to callers.
type ErrorBody struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (b *ErrorBody) String() string {
	return fmt.Sprintf("%s: %s", b.Kind, b.Message)
}
