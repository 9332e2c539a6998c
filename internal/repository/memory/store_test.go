package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	pen := &domain.Pen{Code: "A-01", Capacity: 50}
	if err := store.Pens().Create(ctx, pen); err != nil {
		t.Fatalf("create pen: %v", err)
	}

	failure := errors.New("boom")
	err := store.WithinTx(ctx, func(r repository.Repositories) error {
		if err := r.Pens().Create(ctx, &domain.Pen{Code: "A-02", Capacity: 60}); err != nil {
			return err
		}
		if err := r.Pens().UpdateStatus(ctx, pen.ID, domain.PenMaintenance); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("WithinTx error = %v, want %v", err, failure)
	}

	pens, err := store.Pens().List(ctx)
	if err != nil {
		t.Fatalf("list pens: %v", err)
	}
	if len(pens) != 1 {
		t.Fatalf("got %d pens after rollback, want 1", len(pens))
	}
	if pens[0].Status != domain.PenAvailable {
		t.Errorf("pen status = %s, want %s", pens[0].Status, domain.PenAvailable)
	}

	// IDs burned inside the failed transaction must be reusable.
	next := &domain.Pen{Code: "A-03", Capacity: 40}
	if err := store.Pens().Create(ctx, next); err != nil {
		t.Fatalf("create after rollback: %v", err)
	}
	if next.ID != pen.ID+1 {
		t.Errorf("id after rollback = %d, want %d", next.ID, pen.ID+1)
	}
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WithinTx(ctx, func(r repository.Repositories) error {
		return r.Pens().Create(ctx, &domain.Pen{Code: "B-01", Capacity: 30})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	if _, err := store.Pens().GetByID(ctx, 1); err != nil {
		t.Fatalf("pen not visible after commit: %v", err)
	}
}

func TestDREInsertRejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	month := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cycle := int64(7)

	seed := []*domain.DREStatement{
		{ReferenceMonth: month},
		{ReferenceMonth: month, CycleID: &cycle},
	}
	for _, st := range seed {
		if err := store.DRE().Insert(ctx, st); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	var conflict *domain.ConflictError
	if err := store.DRE().Insert(ctx, &domain.DREStatement{ReferenceMonth: month}); !errors.As(err, &conflict) {
		t.Errorf("duplicate null-cycle insert error = %v, want ConflictError", err)
	}
	if err := store.DRE().Insert(ctx, &domain.DREStatement{ReferenceMonth: month, CycleID: &cycle}); !errors.As(err, &conflict) {
		t.Errorf("duplicate cycle insert error = %v, want ConflictError", err)
	}

	otherCycle := int64(8)
	if err := store.DRE().Insert(ctx, &domain.DREStatement{ReferenceMonth: month, CycleID: &otherCycle}); err != nil {
		t.Errorf("different cycle should insert, got %v", err)
	}
}

func TestHighestCodeWithPrefixOrdersBySequence(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	// Four digit suffixes sort below three digit ones lexically; the lookup
	// must compare sequences, or the month would stall at 999.
	for _, code := range []string{"LOT-2603998", "LOT-26031000", "LOT-2603999"} {
		lot := &domain.CattleLot{
			LotCode:         code,
			Status:          domain.StatusConfirmed,
			VendorID:        1,
			PayerAccountID:  1,
			InitialQuantity: 10,
			CurrentQuantity: 10,
		}
		if err := store.Lots().Create(ctx, lot); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}

	highest, err := store.Lots().HighestCodeWithPrefix(ctx, "LOT-2603")
	if err != nil {
		t.Fatalf("HighestCodeWithPrefix: %v", err)
	}
	if highest != "LOT-26031000" {
		t.Errorf("highest = %s, want LOT-26031000", highest)
	}
}

func TestReadsReturnClones(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	lot := &domain.CattleLot{
		LotCode:         "LOT-2603001",
		Status:          domain.StatusConfirmed,
		VendorID:        1,
		PayerAccountID:  1,
		InitialQuantity: 10,
		CurrentQuantity: 10,
	}
	if err := store.Lots().Create(ctx, lot); err != nil {
		t.Fatalf("create lot: %v", err)
	}

	read, err := store.Lots().GetByID(ctx, lot.ID)
	if err != nil {
		t.Fatalf("get lot: %v", err)
	}
	read.CurrentQuantity = 0
	read.Status = domain.StatusCancelled

	again, err := store.Lots().GetByID(ctx, lot.ID)
	if err != nil {
		t.Fatalf("get lot again: %v", err)
	}
	if again.CurrentQuantity != 10 || again.Status != domain.StatusConfirmed {
		t.Error("mutating a read leaked into the store")
	}
}
