package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ridesplit/internal/calculator"
	"github.com/mmynk/ridesplit/internal/dispatch"
	"github.com/mmynk/ridesplit/internal/ledger"
	"github.com/mmynk/ridesplit/internal/models"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	engine *ledger.Engine
}

var _ LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService over the given engine.
func NewLedgerService(engine *ledger.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

// toConnectError maps ledger errors onto Connect codes.
func toConnectError(err error) error {
	switch dispatch.Classify(err) {
	case dispatch.KindValidation:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case dispatch.KindNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case dispatch.KindConflict:
		return connect.NewError(connect.CodeAlreadyExists, err)
	case dispatch.KindUnavailable:
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// snapshot re-reads the full ledger after a write.
func (s *LedgerService) snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return snap, nil
}

func (s *LedgerService) snapshotResponse(ctx context.Context) (*connect.Response[SnapshotResponse], error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&SnapshotResponse{Snapshot: snap}), nil
}

// GetSnapshot returns every companion with trips, payments and derived totals.
func (s *LedgerService) GetSnapshot(ctx context.Context, req *connect.Request[GetSnapshotRequest]) (*connect.Response[SnapshotResponse], error) {
	return s.snapshotResponse(ctx)
}

// AddCompanion creates a companion.
func (s *LedgerService) AddCompanion(ctx context.Context, req *connect.Request[AddCompanionRequest]) (*connect.Response[CompanionResponse], error) {
	slog.Debug("AddCompanion request received", "name", req.Msg.Name)

	companion, err := s.engine.AddCompanion(ctx, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&CompanionResponse{Companion: companion, Snapshot: snap}), nil
}

// RenameCompanion changes a companion's display name.
func (s *LedgerService) RenameCompanion(ctx context.Context, req *connect.Request[RenameCompanionRequest]) (*connect.Response[CompanionResponse], error) {
	slog.Debug("RenameCompanion request received", "companion_id", req.Msg.CompanionID, "name", req.Msg.Name)

	companion, err := s.engine.RenameCompanion(ctx, req.Msg.CompanionID, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&CompanionResponse{Companion: companion, Snapshot: snap}), nil
}

// DeleteCompanion removes a companion together with its trips and payments.
func (s *LedgerService) DeleteCompanion(ctx context.Context, req *connect.Request[DeleteCompanionRequest]) (*connect.Response[SnapshotResponse], error) {
	slog.Debug("DeleteCompanion request received", "companion_id", req.Msg.CompanionID)

	if err := s.engine.DeleteCompanion(ctx, req.Msg.CompanionID); err != nil {
		return nil, toConnectError(err)
	}
	return s.snapshotResponse(ctx)
}

// UpsertTrip records the legs traveled on one day.
func (s *LedgerService) UpsertTrip(ctx context.Context, req *connect.Request[UpsertTripRequest]) (*connect.Response[SnapshotResponse], error) {
	slog.Debug("UpsertTrip request received",
		"companion_id", req.Msg.CompanionID,
		"date", req.Msg.Date,
	)

	err := s.engine.UpsertTrip(ctx, models.Trip{
		CompanionID: req.Msg.CompanionID,
		Date:        req.Msg.Date,
		Outbound:    req.Msg.Outbound,
		Return:      req.Msg.Return,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.snapshotResponse(ctx)
}

// SetTrips records several days at once.
func (s *LedgerService) SetTrips(ctx context.Context, req *connect.Request[SetTripsRequest]) (*connect.Response[SnapshotResponse], error) {
	slog.Debug("SetTrips request received",
		"companion_id", req.Msg.CompanionID,
		"trips_count", len(req.Msg.Trips),
	)

	trips := make([]models.Trip, len(req.Msg.Trips))
	for i, t := range req.Msg.Trips {
		trips[i] = models.Trip{Date: t.Date, Outbound: t.Outbound, Return: t.Return}
	}
	if err := s.engine.SetTrips(ctx, req.Msg.CompanionID, trips); err != nil {
		return nil, toConnectError(err)
	}
	return s.snapshotResponse(ctx)
}

// AddPayment records a payment.
func (s *LedgerService) AddPayment(ctx context.Context, req *connect.Request[AddPaymentRequest]) (*connect.Response[PaymentResponse], error) {
	slog.Debug("AddPayment request received",
		"companion_id", req.Msg.CompanionID,
		"amount", string(req.Msg.Amount),
	)

	amount, err := ledger.ParseAmount(string(req.Msg.Amount))
	if err != nil {
		return nil, toConnectError(err)
	}
	var date time.Time
	if req.Msg.Date != "" {
		if date, err = ledger.ParseTimestamp(req.Msg.Date); err != nil {
			return nil, toConnectError(err)
		}
	}

	payment, err := s.engine.AddPayment(ctx, req.Msg.CompanionID, amount, date, req.Msg.Note)
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&PaymentResponse{Payment: payment, Snapshot: snap}), nil
}

// EditPayment changes the supplied fields of a payment.
func (s *LedgerService) EditPayment(ctx context.Context, req *connect.Request[EditPaymentRequest]) (*connect.Response[PaymentResponse], error) {
	slog.Debug("EditPayment request received", "payment_id", req.Msg.PaymentID)

	var update models.PaymentUpdate
	if req.Msg.Amount != nil {
		amount, err := ledger.ParseAmount(string(*req.Msg.Amount))
		if err != nil {
			return nil, toConnectError(err)
		}
		update.Amount = &amount
	}
	if req.Msg.Date != nil {
		date, err := ledger.ParseTimestamp(*req.Msg.Date)
		if err != nil {
			return nil, toConnectError(err)
		}
		update.Date = &date
	}
	update.Note = req.Msg.Note

	payment, err := s.engine.EditPayment(ctx, req.Msg.PaymentID, update)
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&PaymentResponse{Payment: payment, Snapshot: snap}), nil
}

// DeletePayment removes a payment.
func (s *LedgerService) DeletePayment(ctx context.Context, req *connect.Request[DeletePaymentRequest]) (*connect.Response[SnapshotResponse], error) {
	slog.Debug("DeletePayment request received", "payment_id", req.Msg.PaymentID)

	if err := s.engine.DeletePayment(ctx, req.Msg.PaymentID); err != nil {
		return nil, toConnectError(err)
	}
	return s.snapshotResponse(ctx)
}

// TransferPayment hands a payment to another companion, keeping its id.
func (s *LedgerService) TransferPayment(ctx context.Context, req *connect.Request[TransferPaymentRequest]) (*connect.Response[SnapshotResponse], error) {
	slog.Debug("TransferPayment request received",
		"payment_id", req.Msg.PaymentID,
		"target_companion_id", req.Msg.TargetCompanionID,
	)

	if err := s.engine.TransferPayment(ctx, req.Msg.PaymentID, req.Msg.TargetCompanionID); err != nil {
		return nil, toConnectError(err)
	}
	return s.snapshotResponse(ctx)
}

// GetBalance returns a companion's balance, total charge and debt.
func (s *LedgerService) GetBalance(ctx context.Context, req *connect.Request[GetBalanceRequest]) (*connect.Response[GetBalanceResponse], error) {
	section, err := s.engine.CompanionLedger(ctx, req.Msg.CompanionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetBalanceResponse{
		CompanionID: section.Companion.ID,
		Balance:     section.Balance,
		TotalCharge: section.TotalCharge,
		Debt:        section.Debt,
	}), nil
}

// GetWeeklyCharge returns the Monday to Friday charge of the week containing WeekStart.
func (s *LedgerService) GetWeeklyCharge(ctx context.Context, req *connect.Request[GetWeeklyChargeRequest]) (*connect.Response[GetWeeklyChargeResponse], error) {
	day, err := ledger.ParseDay(req.Msg.WeekStart)
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			verr.Field = "weekStart"
		}
		return nil, toConnectError(err)
	}

	charge, err := s.engine.ComputeWeeklyCharge(ctx, req.Msg.CompanionID, day)
	if err != nil {
		return nil, toConnectError(err)
	}

	monday, friday := calculator.WeekBounds(day)
	return connect.NewResponse(&GetWeeklyChargeResponse{
		CompanionID:  req.Msg.CompanionID,
		Monday:       monday.Format(models.DateLayout),
		Friday:       friday.Format(models.DateLayout),
		WeeklyCharge: charge,
	}), nil
}
