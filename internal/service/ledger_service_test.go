package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/ridesplit/internal/dispatch"
	"github.com/mmynk/ridesplit/internal/ledger"
	"github.com/mmynk/ridesplit/internal/metrics"
	"github.com/mmynk/ridesplit/internal/middleware"
	"github.com/mmynk/ridesplit/internal/storage/sqlite"
)

// setupLedgerTestServer creates a test server backed by a temporary SQLite database
// and seeded with Moi and Josemi.
func setupLedgerTestServer(t *testing.T) *LedgerServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := ledger.New(store, ledger.Config{})
	if _, err := engine.Seed(context.Background(), []string{"Moi", "Josemi"}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	path, handler := NewLedgerServiceHandler(
		NewLedgerService(engine),
		connect.WithInterceptors(
			middleware.LoggingInterceptor(),
			middleware.MetricsInterceptor(metrics.New()),
		),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewLedgerServiceClient(http.DefaultClient, server.URL)
}

func connectCode(err error) connect.Code {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code()
	}
	return connect.CodeUnknown
}

func TestGetSnapshot(t *testing.T) {
	client := setupLedgerTestServer(t)

	resp, err := client.GetSnapshot(context.Background(), connect.NewRequest(&GetSnapshotRequest{}))
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}

	snap := resp.Msg.Snapshot
	if len(snap.Companions) != 2 {
		t.Fatalf("expected 2 companions, got %d", len(snap.Companions))
	}
	if snap.Companions[0].Companion.ID != "JOSEMI" || snap.Companions[1].Companion.ID != "MOI" {
		t.Errorf("expected companions sorted by name, got %s, %s",
			snap.Companions[0].Companion.ID, snap.Companions[1].Companion.ID)
	}
	if snap.LegCost.String() != "1.5" {
		t.Errorf("expected leg cost 1.5, got %s", snap.LegCost)
	}
}

func TestLedgerScenario(t *testing.T) {
	client := setupLedgerTestServer(t)
	ctx := context.Background()

	_, err := client.UpsertTrip(ctx, connect.NewRequest(&UpsertTripRequest{
		CompanionID: "MOI",
		Date:        "2025-01-06",
		Outbound:    true,
		Return:      true,
	}))
	if err != nil {
		t.Fatalf("UpsertTrip failed: %v", err)
	}

	weekly, err := client.GetWeeklyCharge(ctx, connect.NewRequest(&GetWeeklyChargeRequest{
		CompanionID: "MOI",
		WeekStart:   "2025-01-09",
	}))
	if err != nil {
		t.Fatalf("GetWeeklyCharge failed: %v", err)
	}
	if weekly.Msg.WeeklyCharge.String() != "3" {
		t.Errorf("expected weekly charge 3, got %s", weekly.Msg.WeeklyCharge)
	}
	if weekly.Msg.Monday != "2025-01-06" || weekly.Msg.Friday != "2025-01-10" {
		t.Errorf("unexpected week bounds %s..%s", weekly.Msg.Monday, weekly.Msg.Friday)
	}

	added, err := client.AddPayment(ctx, connect.NewRequest(&AddPaymentRequest{
		CompanionID: "MOI",
		Amount:      "10.00",
		Date:        "2025-01-06",
	}))
	if err != nil {
		t.Fatalf("AddPayment failed: %v", err)
	}
	paymentID := added.Msg.Payment.ID
	if paymentID == "" {
		t.Fatal("expected payment id")
	}

	balance, err := client.GetBalance(ctx, connect.NewRequest(&GetBalanceRequest{CompanionID: "MOI"}))
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance.Msg.Balance.String() != "10" || balance.Msg.Debt.String() != "-7" {
		t.Errorf("expected balance 10 and debt -7, got %s and %s", balance.Msg.Balance, balance.Msg.Debt)
	}

	five := dispatch.Amount("5.00")
	edited, err := client.EditPayment(ctx, connect.NewRequest(&EditPaymentRequest{
		PaymentID: paymentID,
		Amount:    &five,
	}))
	if err != nil {
		t.Fatalf("EditPayment failed: %v", err)
	}
	if edited.Msg.Payment.Amount.String() != "5" {
		t.Errorf("expected amount 5, got %s", edited.Msg.Payment.Amount)
	}

	transferred, err := client.TransferPayment(ctx, connect.NewRequest(&TransferPaymentRequest{
		PaymentID:         paymentID,
		TargetCompanionID: "JOSEMI",
	}))
	if err != nil {
		t.Fatalf("TransferPayment failed: %v", err)
	}
	josemi, _ := transferred.Msg.Snapshot.Find("JOSEMI")
	if len(josemi.Payments) != 1 || josemi.Payments[0].ID != paymentID {
		t.Fatalf("expected payment %s under JOSEMI, got %+v", paymentID, josemi.Payments)
	}
	moi, _ := transferred.Msg.Snapshot.Find("MOI")
	if !moi.Balance.IsZero() {
		t.Errorf("expected MOI balance 0, got %s", moi.Balance)
	}

	deleted, err := client.DeleteCompanion(ctx, connect.NewRequest(&DeleteCompanionRequest{CompanionID: "MOI"}))
	if err != nil {
		t.Fatalf("DeleteCompanion failed: %v", err)
	}
	if _, ok := deleted.Msg.Snapshot.Find("MOI"); ok {
		t.Error("expected MOI to be gone")
	}
	josemi, _ = deleted.Msg.Snapshot.Find("JOSEMI")
	if josemi.Balance.String() != "5" {
		t.Errorf("expected JOSEMI balance 5, got %s", josemi.Balance)
	}
}

func TestCompanionLifecycle(t *testing.T) {
	client := setupLedgerTestServer(t)
	ctx := context.Background()

	added, err := client.AddCompanion(ctx, connect.NewRequest(&AddCompanionRequest{Name: " Ana Maria "}))
	if err != nil {
		t.Fatalf("AddCompanion failed: %v", err)
	}
	if added.Msg.Companion.ID != "ANA_MARIA" {
		t.Errorf("expected id ANA_MARIA, got %s", added.Msg.Companion.ID)
	}

	renamed, err := client.RenameCompanion(ctx, connect.NewRequest(&RenameCompanionRequest{
		CompanionID: "ANA_MARIA",
		Name:        "Ana",
	}))
	if err != nil {
		t.Fatalf("RenameCompanion failed: %v", err)
	}
	if renamed.Msg.Companion.Name != "Ana" || renamed.Msg.Companion.ID != "ANA_MARIA" {
		t.Errorf("unexpected companion after rename: %+v", renamed.Msg.Companion)
	}

	_, err = client.SetTrips(ctx, connect.NewRequest(&SetTripsRequest{
		CompanionID: "ANA_MARIA",
		Trips: []dispatch.TripEntry{
			{Date: "2025-01-06", Outbound: true},
			{Date: "2025-01-12", Outbound: true, Return: true},
		},
	}))
	if err != nil {
		t.Fatalf("SetTrips failed: %v", err)
	}

	balance, err := client.GetBalance(ctx, connect.NewRequest(&GetBalanceRequest{CompanionID: "ANA_MARIA"}))
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance.Msg.TotalCharge.String() != "4.5" {
		t.Errorf("expected total charge 4.5 (Sunday included), got %s", balance.Msg.TotalCharge)
	}
}

func TestErrorCodes(t *testing.T) {
	client := setupLedgerTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{"duplicate name", func() error {
			_, err := client.AddCompanion(ctx, connect.NewRequest(&AddCompanionRequest{Name: "MOI"}))
			return err
		}, connect.CodeAlreadyExists},
		{"empty name", func() error {
			_, err := client.AddCompanion(ctx, connect.NewRequest(&AddCompanionRequest{Name: ""}))
			return err
		}, connect.CodeInvalidArgument},
		{"bad amount", func() error {
			_, err := client.AddPayment(ctx, connect.NewRequest(&AddPaymentRequest{CompanionID: "MOI", Amount: "lots"}))
			return err
		}, connect.CodeInvalidArgument},
		{"bad trip date", func() error {
			_, err := client.UpsertTrip(ctx, connect.NewRequest(&UpsertTripRequest{CompanionID: "MOI", Date: "2025-02-29"}))
			return err
		}, connect.CodeInvalidArgument},
		{"unknown companion", func() error {
			_, err := client.GetBalance(ctx, connect.NewRequest(&GetBalanceRequest{CompanionID: "NOBODY"}))
			return err
		}, connect.CodeNotFound},
		{"unknown payment", func() error {
			_, err := client.DeletePayment(ctx, connect.NewRequest(&DeletePaymentRequest{PaymentID: "missing"}))
			return err
		}, connect.CodeNotFound},
		{"transfer to unknown companion", func() error {
			_, err := client.TransferPayment(ctx, connect.NewRequest(&TransferPaymentRequest{PaymentID: "missing", TargetCompanionID: "MOI"}))
			return err
		}, connect.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := connectCode(err); got != tt.want {
				t.Errorf("expected code %v, got %v (%v)", tt.want, got, err)
			}
		})
	}
}
