package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confinapp/backend-go/internal/cache"
	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository/memory"
)

func newFinanceFixture(t *testing.T) (*FinanceService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewFinanceService(store, cache.NewNoopStatementCache()), store
}

func TestCreateEntry(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFinanceFixture(t)

	entry, err := svc.Create(ctx, domain.CreateEntryInput{
		Kind:     domain.KindExpense,
		Category: domain.CategoryFeed,
		Amount:   12000,
		DueDate:  march.AddDate(0, 0, 20),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Status != domain.EntryPending {
		t.Errorf("status = %s, want PENDING", entry.Status)
	}

	_, err = svc.Create(ctx, domain.CreateEntryInput{
		Kind:     domain.KindExpense,
		Category: domain.CategoryFeed,
		Amount:   -5,
		DueDate:  march,
	})
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("negative amount error = %v, want ValidationError", err)
	}
}

func TestMarkSettled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFinanceFixture(t)
	settledAt := march.AddDate(0, 0, 5)

	tests := []struct {
		name string
		kind domain.EntryKind
		want domain.EntryStatus
	}{
		{name: "expense becomes paid", kind: domain.KindExpense, want: domain.EntryPaid},
		{name: "revenue becomes received", kind: domain.KindRevenue, want: domain.EntryReceived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category := domain.CategoryFeed
			if tt.kind == domain.KindRevenue {
				category = domain.CategoryCattleSale
			}
			entry, err := svc.Create(ctx, domain.CreateEntryInput{
				Kind:     tt.kind,
				Category: category,
				Amount:   1000,
				DueDate:  march,
			})
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			settled, err := svc.MarkSettled(ctx, entry.ID, &settledAt)
			if err != nil {
				t.Fatalf("MarkSettled: %v", err)
			}
			if settled.Status != tt.want {
				t.Errorf("status = %s, want %s", settled.Status, tt.want)
			}
			if settled.SettledDate == nil || !settled.SettledDate.Equal(settledAt) {
				t.Errorf("settled date = %v, want %v", settled.SettledDate, settledAt)
			}
		})
	}
}

func TestSettledEntriesAreImmutable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFinanceFixture(t)

	entry, err := svc.Create(ctx, domain.CreateEntryInput{
		Kind:     domain.KindExpense,
		Category: domain.CategoryFeed,
		Amount:   1000,
		DueDate:  march,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.MarkSettled(ctx, entry.ID, nil); err != nil {
		t.Fatalf("settle: %v", err)
	}

	var state *domain.InvalidStateError
	if _, err := svc.MarkSettled(ctx, entry.ID, nil); !errors.As(err, &state) {
		t.Errorf("double settle error = %v, want InvalidStateError", err)
	}
	if _, err := svc.Cancel(ctx, entry.ID); !errors.As(err, &state) {
		t.Errorf("cancel settled error = %v, want InvalidStateError", err)
	}
}

func TestCancelVoidsPendingEntry(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFinanceFixture(t)

	entry, err := svc.Create(ctx, domain.CreateEntryInput{
		Kind:     domain.KindExpense,
		Category: domain.CategoryFeed,
		Amount:   1000,
		DueDate:  march,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.EntryCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
}

func TestCashFlow(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceFixture(t)
	now := time.Now()
	within := now.AddDate(0, 0, 3)
	overdue := now.AddDate(0, 0, -3)
	from := now.AddDate(0, 0, -10)
	to := now.AddDate(0, 0, 10)

	seed := []*domain.FinanceEntry{
		{Kind: domain.KindRevenue, Category: domain.CategoryCattleSale, Amount: 50000,
			DueDate: within, SettledDate: &within, Status: domain.EntryReceived},
		{Kind: domain.KindExpense, Category: domain.CategoryFeed, Amount: 20000,
			DueDate: within, SettledDate: &within, Status: domain.EntryPaid},
		{Kind: domain.KindExpense, Category: domain.CategoryLabor, Amount: 7000,
			DueDate: within, Status: domain.EntryPending},
		{Kind: domain.KindExpense, Category: domain.CategoryFeed, Amount: 3000,
			DueDate: overdue, Status: domain.EntryPending},
		{Kind: domain.KindExpense, Category: domain.CategoryFeed, Amount: 999,
			DueDate: within, Status: domain.EntryCancelled},
	}
	for _, e := range seed {
		if err := store.Finance().Create(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	summary, err := svc.CashFlow(ctx, from, to)
	if err != nil {
		t.Fatalf("CashFlow: %v", err)
	}
	if !almostEqual(summary.TotalInflow, 50000) {
		t.Errorf("inflow = %v", summary.TotalInflow)
	}
	if !almostEqual(summary.TotalOutflow, 20000) {
		t.Errorf("outflow = %v", summary.TotalOutflow)
	}
	if !almostEqual(summary.Balance, 30000) {
		t.Errorf("balance = %v", summary.Balance)
	}
	if !almostEqual(summary.Pending, 10000) {
		t.Errorf("pending = %v", summary.Pending)
	}
	if !almostEqual(summary.Overdue, 3000) {
		t.Errorf("overdue = %v", summary.Overdue)
	}
}
