// Package dispatch routes named ledger actions to the engine and answers each
// one with the refreshed ledger snapshot.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/ridesplit/internal/ledger"
	"github.com/mmynk/ridesplit/internal/models"
)

// Dispatcher executes Requests against a ledger engine.
type Dispatcher struct {
	engine *ledger.Engine
}

// New creates a Dispatcher.
func New(engine *ledger.Engine) *Dispatcher {
	return &Dispatcher{engine: engine}
}

// Dispatch runs req and returns the snapshot taken after it. Any failure is
// returned as an error; use ErrorResponse to render it.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Response, error) {
	resp := &Response{}

	var err error
	switch req.Action {
	case ActionSnapshot:
	case ActionAddCompanion:
		resp.Companion, err = d.engine.AddCompanion(ctx, req.Name)
	case ActionRenameCompanion:
		resp.Companion, err = d.engine.RenameCompanion(ctx, req.CompanionID, req.Name)
	case ActionDeleteCompanion:
		err = d.engine.DeleteCompanion(ctx, req.CompanionID)
	case ActionUpsertTrip:
		err = d.engine.UpsertTrip(ctx, models.Trip{
			CompanionID: req.CompanionID,
			Date:        req.Date,
			Outbound:    req.Outbound,
			Return:      req.Return,
		})
	case ActionSetTrips:
		err = d.setTrips(ctx, req)
	case ActionAddPayment:
		resp.Payment, err = d.addPayment(ctx, req)
	case ActionEditPayment:
		resp.Payment, err = d.editPayment(ctx, req)
	case ActionDeletePayment:
		err = d.engine.DeletePayment(ctx, req.PaymentID)
	case ActionTransferPayment:
		err = d.engine.TransferPayment(ctx, req.PaymentID, req.TargetCompanionID)
	case ActionWeeklyCharge:
		err = d.weeklyCharge(ctx, req, resp)
	case "":
		err = &ledger.ValidationError{Field: "action", Message: "required"}
	default:
		err = &ledger.ValidationError{Field: "action", Message: "unknown action " + req.Action}
	}
	if err != nil {
		return nil, err
	}

	resp.Snapshot, err = d.engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *Dispatcher) setTrips(ctx context.Context, req Request) error {
	trips := make([]models.Trip, 0, len(req.Trips))
	for _, t := range req.Trips {
		trips = append(trips, models.Trip{Date: t.Date, Outbound: t.Outbound, Return: t.Return})
	}
	return d.engine.SetTrips(ctx, req.CompanionID, trips)
}

func (d *Dispatcher) addPayment(ctx context.Context, req Request) (*models.Payment, error) {
	if req.Amount == nil {
		return nil, &ledger.ValidationError{Field: "amount", Message: "required"}
	}
	amount, err := ledger.ParseAmount(string(*req.Amount))
	if err != nil {
		return nil, err
	}

	var date time.Time
	if req.Date != "" {
		if date, err = ledger.ParseTimestamp(req.Date); err != nil {
			return nil, err
		}
	}

	var note string
	if req.Note != nil {
		note = *req.Note
	}
	return d.engine.AddPayment(ctx, req.CompanionID, amount, date, note)
}

func (d *Dispatcher) editPayment(ctx context.Context, req Request) (*models.Payment, error) {
	var update models.PaymentUpdate
	if req.Amount != nil {
		amount, err := ledger.ParseAmount(string(*req.Amount))
		if err != nil {
			return nil, err
		}
		update.Amount = &amount
	}
	if req.Date != "" {
		date, err := ledger.ParseTimestamp(req.Date)
		if err != nil {
			return nil, err
		}
		update.Date = &date
	}
	update.Note = req.Note
	return d.engine.EditPayment(ctx, req.PaymentID, update)
}

func (d *Dispatcher) weeklyCharge(ctx context.Context, req Request, resp *Response) error {
	weekStart, err := ledger.ParseDay(req.WeekStart)
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			verr.Field = "weekStart"
		}
		return err
	}
	charge, err := d.engine.ComputeWeeklyCharge(ctx, req.CompanionID, weekStart)
	if err != nil {
		return err
	}
	resp.WeeklyCharge = &charge
	return nil
}
