package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "ridesplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func mustInsertCompanion(t *testing.T, store *SQLiteStore, id, name string) {
	t.Helper()
	if err := store.InsertCompanion(context.Background(), &models.Companion{ID: id, Name: name}); err != nil {
		t.Fatalf("InsertCompanion(%s) failed: %v", id, err)
	}
}

func mustInsertPayment(t *testing.T, store *SQLiteStore, id, companionID, amount string) *models.Payment {
	t.Helper()
	p := &models.Payment{
		ID:          id,
		CompanionID: companionID,
		Amount:      decimal.RequireFromString(amount),
		Date:        time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC),
	}
	if err := store.InsertPayment(context.Background(), p); err != nil {
		t.Fatalf("InsertPayment(%s) failed: %v", id, err)
	}
	return p
}

func TestSQLiteStore_Companions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("InsertCompanion sets CreatedAt", func(t *testing.T) {
		c := &models.Companion{ID: "MOI", Name: "Moi"}
		if err := store.InsertCompanion(ctx, c); err != nil {
			t.Fatalf("InsertCompanion failed: %v", err)
		}
		if c.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("InsertCompanion rejects duplicate id", func(t *testing.T) {
		err := store.InsertCompanion(ctx, &models.Companion{ID: "MOI", Name: "Other"})
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("GetCompanion retrieves companion", func(t *testing.T) {
		c, err := store.GetCompanion(ctx, "MOI")
		if err != nil {
			t.Fatalf("GetCompanion failed: %v", err)
		}
		if c.Name != "Moi" {
			t.Errorf("Name mismatch: got %s, want Moi", c.Name)
		}
	})

	t.Run("GetCompanion returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetCompanion(ctx, "NOBODY")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateCompanionName keeps id", func(t *testing.T) {
		if err := store.UpdateCompanionName(ctx, "MOI", "Moisés"); err != nil {
			t.Fatalf("UpdateCompanionName failed: %v", err)
		}
		c, err := store.GetCompanion(ctx, "MOI")
		if err != nil {
			t.Fatalf("GetCompanion failed: %v", err)
		}
		if c.Name != "Moisés" {
			t.Errorf("Name mismatch: got %s, want Moisés", c.Name)
		}
	})

	t.Run("UpdateCompanionName returns ErrNotFound", func(t *testing.T) {
		err := store.UpdateCompanionName(ctx, "NOBODY", "x")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListCompanions returns creation order", func(t *testing.T) {
		store.InsertCompanion(ctx, &models.Companion{ID: "JOSEMI", Name: "Josemi", CreatedAt: time.Now().Unix() + 10})

		companions, err := store.ListCompanions(ctx)
		if err != nil {
			t.Fatalf("ListCompanions failed: %v", err)
		}
		if len(companions) != 2 {
			t.Fatalf("Expected 2 companions, got %d", len(companions))
		}
		if companions[0].ID != "MOI" || companions[1].ID != "JOSEMI" {
			t.Errorf("Unexpected order: %s, %s", companions[0].ID, companions[1].ID)
		}
	})
}

func TestSQLiteStore_Trips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustInsertCompanion(t, store, "MOI", "Moi")

	t.Run("UpsertTrip is idempotent", func(t *testing.T) {
		trip := &models.Trip{CompanionID: "MOI", Date: "2025-01-06", Outbound: true, Return: true}
		for i := 0; i < 2; i++ {
			if err := store.UpsertTrip(ctx, trip); err != nil {
				t.Fatalf("UpsertTrip failed: %v", err)
			}
		}

		trips, err := store.ListTrips(ctx, "MOI")
		if err != nil {
			t.Fatalf("ListTrips failed: %v", err)
		}
		if len(trips) != 1 {
			t.Fatalf("Expected 1 trip, got %d", len(trips))
		}
		if !trips[0].Outbound || !trips[0].Return {
			t.Errorf("Expected both legs, got %+v", trips[0])
		}
	})

	t.Run("UpsertTrip replaces leg flags", func(t *testing.T) {
		err := store.UpsertTrip(ctx, &models.Trip{CompanionID: "MOI", Date: "2025-01-06", Outbound: false, Return: true})
		if err != nil {
			t.Fatalf("UpsertTrip failed: %v", err)
		}

		trips, _ := store.ListTrips(ctx, "MOI")
		if len(trips) != 1 {
			t.Fatalf("Expected 1 trip, got %d", len(trips))
		}
		if trips[0].Outbound || !trips[0].Return {
			t.Errorf("Expected return leg only, got %+v", trips[0])
		}
	})

	t.Run("ListTrips orders by date", func(t *testing.T) {
		store.UpsertTrip(ctx, &models.Trip{CompanionID: "MOI", Date: "2025-01-03", Outbound: true})

		trips, _ := store.ListTrips(ctx, "MOI")
		if len(trips) != 2 || trips[0].Date != "2025-01-03" {
			t.Errorf("Unexpected trips: %+v", trips)
		}
	})

	t.Run("UpsertTrip rejects unknown companion", func(t *testing.T) {
		err := store.UpsertTrip(ctx, &models.Trip{CompanionID: "NOBODY", Date: "2025-01-06", Outbound: true})
		if err == nil {
			t.Error("Expected foreign key error for unknown companion")
		}
	})
}

func TestSQLiteStore_Payments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustInsertCompanion(t, store, "MOI", "Moi")
	mustInsertCompanion(t, store, "JOSEMI", "Josemi")

	t.Run("InsertPayment round trips amount, date and note", func(t *testing.T) {
		p := &models.Payment{
			ID:          "p1",
			CompanionID: "MOI",
			Amount:      decimal.RequireFromString("10.05"),
			Date:        time.Date(2025, 1, 6, 9, 30, 0, 500, time.UTC),
			Note:        "gasolina",
		}
		if err := store.InsertPayment(ctx, p); err != nil {
			t.Fatalf("InsertPayment failed: %v", err)
		}

		got, err := store.GetPayment(ctx, "p1")
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if !got.Amount.Equal(p.Amount) {
			t.Errorf("Amount mismatch: got %s, want %s", got.Amount, p.Amount)
		}
		if !got.Date.Equal(p.Date) {
			t.Errorf("Date mismatch: got %s, want %s", got.Date, p.Date)
		}
		if got.Note != "gasolina" {
			t.Errorf("Note mismatch: got %q", got.Note)
		}
	})

	t.Run("InsertPayment rejects unknown owner", func(t *testing.T) {
		err := store.InsertPayment(ctx, &models.Payment{ID: "p-x", CompanionID: "NOBODY", Date: time.Now()})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("InsertPayment rejects duplicate id", func(t *testing.T) {
		err := store.InsertPayment(ctx, &models.Payment{ID: "p1", CompanionID: "MOI", Date: time.Now()})
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("UpdatePayment leaves owner untouched", func(t *testing.T) {
		p, _ := store.GetPayment(ctx, "p1")
		p.Amount = decimal.RequireFromString("5")
		p.Note = ""
		p.CompanionID = "JOSEMI" // ignored by UpdatePayment
		if err := store.UpdatePayment(ctx, p); err != nil {
			t.Fatalf("UpdatePayment failed: %v", err)
		}

		got, _ := store.GetPayment(ctx, "p1")
		if got.CompanionID != "MOI" {
			t.Errorf("Owner changed to %s", got.CompanionID)
		}
		if !got.Amount.Equal(decimal.RequireFromString("5")) {
			t.Errorf("Amount mismatch: got %s", got.Amount)
		}
		if got.Note != "" {
			t.Errorf("Expected empty note, got %q", got.Note)
		}
	})

	t.Run("ReassignPayment keeps the id", func(t *testing.T) {
		if err := store.ReassignPayment(ctx, "p1", "JOSEMI"); err != nil {
			t.Fatalf("ReassignPayment failed: %v", err)
		}

		moi, _ := store.ListPayments(ctx, "MOI")
		josemi, _ := store.ListPayments(ctx, "JOSEMI")
		if len(moi) != 0 {
			t.Errorf("Expected MOI to own no payments, got %d", len(moi))
		}
		if len(josemi) != 1 || josemi[0].ID != "p1" {
			t.Errorf("Expected JOSEMI to own p1, got %+v", josemi)
		}
	})

	t.Run("ReassignPayment to unknown companion changes nothing", func(t *testing.T) {
		err := store.ReassignPayment(ctx, "p1", "NOBODY")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		got, _ := store.GetPayment(ctx, "p1")
		if got.CompanionID != "JOSEMI" {
			t.Errorf("Owner changed to %s", got.CompanionID)
		}
	})

	t.Run("ReassignPayment of unknown payment", func(t *testing.T) {
		err := store.ReassignPayment(ctx, "nonexistent-id", "MOI")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeletePayment removes the record", func(t *testing.T) {
		if err := store.DeletePayment(ctx, "p1"); err != nil {
			t.Fatalf("DeletePayment failed: %v", err)
		}
		if _, err := store.GetPayment(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeletePayment(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStore_DeleteCompanionCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustInsertCompanion(t, store, "MOI", "Moi")
	mustInsertCompanion(t, store, "JOSEMI", "Josemi")

	store.UpsertTrip(ctx, &models.Trip{CompanionID: "MOI", Date: "2025-01-06", Outbound: true})
	mustInsertPayment(t, store, "p1", "MOI", "10")
	mustInsertPayment(t, store, "p2", "JOSEMI", "4")

	if err := store.DeleteCompanion(ctx, "MOI"); err != nil {
		t.Fatalf("DeleteCompanion failed: %v", err)
	}

	if _, err := store.GetCompanion(ctx, "MOI"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected companion to be gone, got %v", err)
	}
	if trips, _ := store.ListTrips(ctx, "MOI"); len(trips) != 0 {
		t.Errorf("Expected no orphan trips, got %d", len(trips))
	}
	if _, err := store.GetPayment(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected orphan payment to be gone, got %v", err)
	}
	if _, err := store.GetPayment(ctx, "p2"); err != nil {
		t.Errorf("Other companion's payment should remain: %v", err)
	}

	if err := store.DeleteCompanion(ctx, "MOI"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
