package models

import "github.com/shopspring/decimal"

// CompanionLedger is one companion's section of a ledger snapshot.
type CompanionLedger struct {
	Companion Companion `json:"companion"`
	Trips     []Trip    `json:"trips"`
	Payments  []Payment `json:"payments"`

	// Balance is the sum of the owned payment amounts.
	Balance decimal.Decimal `json:"balance"`

	// TotalCharge is leg cost × legs traveled over every trip record.
	TotalCharge decimal.Decimal `json:"totalCharge"`

	// Debt is TotalCharge - Balance. Negative means the companion is owed money.
	Debt decimal.Decimal `json:"debt"`
}

// Snapshot is the full ledger state returned after every read and write.
type Snapshot struct {
	LegCost    decimal.Decimal   `json:"legCost"`
	Companions []CompanionLedger `json:"companions"`
}

// Find returns the section for the given companion id.
func (s *Snapshot) Find(companionID string) (*CompanionLedger, bool) {
	for i := range s.Companions {
		if s.Companions[i].Companion.ID == companionID {
			return &s.Companions[i], true
		}
	}
	return nil, false
}
