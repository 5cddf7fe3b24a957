package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/dispatch"
	"github.com/mmynk/ridesplit/internal/models"
)

type GetSnapshotRequest struct{}

// SnapshotResponse is returned by GetSnapshot and by every mutation that has
// no result of its own.
type SnapshotResponse struct {
	Snapshot *models.Snapshot `json:"snapshot"`
}

type AddCompanionRequest struct {
	Name string `json:"name"`
}

type RenameCompanionRequest struct {
	CompanionID string `json:"companionId"`
	Name        string `json:"name"`
}

type CompanionResponse struct {
	Companion *models.Companion `json:"companion"`
	Snapshot  *models.Snapshot  `json:"snapshot"`
}

type DeleteCompanionRequest struct {
	CompanionID string `json:"companionId"`
}

type UpsertTripRequest struct {
	CompanionID string `json:"companionId"`
	Date        string `json:"date"`
	Outbound    bool   `json:"outbound"`
	Return      bool   `json:"return"`
}

type SetTripsRequest struct {
	CompanionID string               `json:"companionId"`
	Trips       []dispatch.TripEntry `json:"trips"`
}

// AddPaymentRequest records a payment. Amount accepts a JSON string or number;
// an empty Date means now.
type AddPaymentRequest struct {
	CompanionID string          `json:"companionId"`
	Amount      dispatch.Amount `json:"amount"`
	Date        string          `json:"date,omitempty"`
	Note        string          `json:"note,omitempty"`
}

// EditPaymentRequest changes only the fields that are present.
type EditPaymentRequest struct {
	PaymentID string           `json:"paymentId"`
	Amount    *dispatch.Amount `json:"amount,omitempty"`
	Date      *string          `json:"date,omitempty"`
	Note      *string          `json:"note,omitempty"`
}

type PaymentResponse struct {
	Payment  *models.Payment  `json:"payment"`
	Snapshot *models.Snapshot `json:"snapshot"`
}

type DeletePaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

type TransferPaymentRequest struct {
	PaymentID         string `json:"paymentId"`
	TargetCompanionID string `json:"targetCompanionId"`
}

type GetBalanceRequest struct {
	CompanionID string `json:"companionId"`
}

type GetBalanceResponse struct {
	CompanionID string          `json:"companionId"`
	Balance     decimal.Decimal `json:"balance"`
	TotalCharge decimal.Decimal `json:"totalCharge"`
	Debt        decimal.Decimal `json:"debt"`
}

type GetWeeklyChargeRequest struct {
	CompanionID string `json:"companionId"`
	WeekStart   string `json:"weekStart"`
}

type GetWeeklyChargeResponse struct {
	CompanionID  string          `json:"companionId"`
	Monday       string          `json:"monday"`
	Friday       string          `json:"friday"`
	WeeklyCharge decimal.Decimal `json:"weeklyCharge"`
}
