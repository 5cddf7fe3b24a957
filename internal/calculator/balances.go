package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
)

// Balance sums the amounts of the given payments.
func Balance(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Debt is charge minus balance. A negative result means the companion is owed money.
func Debt(charge, balance decimal.Decimal) decimal.Decimal {
	return charge.Sub(balance)
}

// Summarize fills the derived fields of a companion ledger section.
func Summarize(cl *models.CompanionLedger, legCost decimal.Decimal) {
	cl.Balance = Balance(cl.Payments)
	cl.TotalCharge = TotalCharge(cl.Trips, legCost)
	cl.Debt = Debt(cl.TotalCharge, cl.Balance)
}
