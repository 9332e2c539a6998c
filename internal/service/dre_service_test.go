package service

import (
	"context"
	"testing"
	"time"

	"github.com/confinapp/backend-go/internal/cache"
	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository/memory"
)

var march = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newDREFixture(t *testing.T) (*DREService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewDREService(store, cache.NewNoopStatementCache()), store
}

func settledEntry(kind domain.EntryKind, category string, amount float64, settledAt time.Time) *domain.FinanceEntry {
	status := domain.EntryPaid
	if kind == domain.KindRevenue {
		status = domain.EntryReceived
	}
	return &domain.FinanceEntry{
		Kind:        kind,
		Category:    category,
		Amount:      amount,
		DueDate:     settledAt,
		SettledDate: &settledAt,
		Status:      status,
	}
}

func seedLedger(t *testing.T, store *memory.Store, entries ...*domain.FinanceEntry) {
	t.Helper()
	ctx := context.Background()
	for _, e := range entries {
		if err := store.Finance().Create(ctx, e); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}
}

func TestGenerateBuildsStatement(t *testing.T) {
	ctx := context.Background()
	svc, store := newDREFixture(t)
	mid := march.AddDate(0, 0, 14)

	seedLedger(t, store,
		settledEntry(domain.KindRevenue, domain.CategoryCattleSale, 300000, mid),
		settledEntry(domain.KindExpense, domain.CategoryAnimalPurchase, 150000, mid),
		settledEntry(domain.KindExpense, domain.CategoryFreight, 5000, mid),
		settledEntry(domain.KindExpense, domain.CategoryFeed, 30000, mid),
		settledEntry(domain.KindExpense, domain.CategoryHealth, 4000, mid),
		settledEntry(domain.KindExpense, domain.CategoryAdmin, 6000, mid),
		settledEntry(domain.KindExpense, "misc", 1000, mid),
		// Pending entries never count towards a realized statement.
		&domain.FinanceEntry{Kind: domain.KindExpense, Category: domain.CategoryFeed,
			Amount: 99999, DueDate: mid, Status: domain.EntryPending},
	)
	if err := store.Mortality().Create(ctx, &domain.MortalityRecord{
		LotID: 1, Quantity: 2, DeathDate: mid, Cause: domain.CauseDisease, EstimatedLoss: 10000,
	}); err != nil {
		t.Fatalf("seed mortality: %v", err)
	}

	st, err := svc.Generate(ctx, march, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !almostEqual(st.GrossRevenue, 300000) {
		t.Errorf("gross revenue = %v", st.GrossRevenue)
	}
	if !almostEqual(st.Deductions, 10000) {
		t.Errorf("deductions = %v", st.Deductions)
	}
	if !almostEqual(st.NetRevenue, 290000) {
		t.Errorf("net revenue = %v", st.NetRevenue)
	}
	// Freight folds into animal cost; unknown categories into other costs.
	if !almostEqual(st.AnimalCost, 155000) {
		t.Errorf("animal cost = %v", st.AnimalCost)
	}
	if !almostEqual(st.FeedCost, 30000) {
		t.Errorf("feed cost = %v", st.FeedCost)
	}
	if !almostEqual(st.HealthCost, 4000) {
		t.Errorf("health cost = %v", st.HealthCost)
	}
	if !almostEqual(st.OtherCosts, 1000) {
		t.Errorf("other costs = %v", st.OtherCosts)
	}
	if !almostEqual(st.TotalCosts, 190000) {
		t.Errorf("total costs = %v", st.TotalCosts)
	}
	if !almostEqual(st.GrossProfit, 100000) {
		t.Errorf("gross profit = %v", st.GrossProfit)
	}
	if !almostEqual(st.AdminExpenses, 6000) || !almostEqual(st.TotalExpenses, 6000) {
		t.Errorf("expenses = %v/%v", st.AdminExpenses, st.TotalExpenses)
	}
	if !almostEqual(st.OperationalProfit, 94000) || !almostEqual(st.NetProfit, 94000) {
		t.Errorf("profit = %v/%v", st.OperationalProfit, st.NetProfit)
	}
	if !almostEqual(st.GrossMargin, 100000.0/290000*100) {
		t.Errorf("gross margin = %v", st.GrossMargin)
	}
	if !almostEqual(st.NetMargin, 94000.0/290000*100) {
		t.Errorf("net margin = %v", st.NetMargin)
	}
}

func TestGenerateIsIdempotentPerMonthCycle(t *testing.T) {
	ctx := context.Background()
	svc, store := newDREFixture(t)
	mid := march.AddDate(0, 0, 9)

	seedLedger(t, store, settledEntry(domain.KindRevenue, domain.CategoryCattleSale, 100000, mid))

	first, err := svc.Generate(ctx, march, nil)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}

	// More activity lands, then the month is regenerated.
	seedLedger(t, store, settledEntry(domain.KindExpense, domain.CategoryFeed, 20000, mid))

	second, err := svc.Generate(ctx, march, nil)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("regeneration created a new row: %d vs %d", second.ID, first.ID)
	}
	if !almostEqual(second.FeedCost, 20000) {
		t.Errorf("feed cost after regeneration = %v", second.FeedCost)
	}
	if !second.GeneratedAt.After(first.GeneratedAt) && !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("generated_at went backwards")
	}

	statements, err := svc.List(ctx, march, march.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(statements) != 1 {
		t.Errorf("got %d statements, want 1", len(statements))
	}
}

func TestGenerateKeepsCycleScopesApart(t *testing.T) {
	ctx := context.Background()
	svc, store := newDREFixture(t)
	mid := march.AddDate(0, 0, 4)

	seedLedger(t, store, settledEntry(domain.KindRevenue, domain.CategoryCattleSale, 50000, mid))

	cycle := int64(7)
	whole, err := svc.Generate(ctx, march, nil)
	if err != nil {
		t.Fatalf("generate without cycle: %v", err)
	}
	scoped, err := svc.Generate(ctx, march, &cycle)
	if err != nil {
		t.Fatalf("generate with cycle: %v", err)
	}
	if whole.ID == scoped.ID {
		t.Error("cycle-scoped statement reused the month-wide row")
	}

	statements, err := svc.List(ctx, march, march.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(statements) != 2 {
		t.Errorf("got %d statements, want 2", len(statements))
	}
}

func TestGenerateZeroRevenueMonth(t *testing.T) {
	ctx := context.Background()
	svc, store := newDREFixture(t)
	mid := march.AddDate(0, 0, 4)

	seedLedger(t, store, settledEntry(domain.KindExpense, domain.CategoryFeed, 20000, mid))

	st, err := svc.Generate(ctx, march, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !almostEqual(st.GrossProfit, -20000) {
		t.Errorf("gross profit = %v, want -20000", st.GrossProfit)
	}
	// Margins stay at zero rather than dividing by zero revenue.
	if st.GrossMargin != 0 || st.NetMargin != 0 || st.OperationalMargin != 0 {
		t.Errorf("margins = %v/%v/%v, want zeros",
			st.GrossMargin, st.OperationalMargin, st.NetMargin)
	}
}

func TestGenerateIgnoresNeighboringMonths(t *testing.T) {
	ctx := context.Background()
	svc, store := newDREFixture(t)

	seedLedger(t, store,
		settledEntry(domain.KindRevenue, domain.CategoryCattleSale, 1000, march.AddDate(0, 0, -1)),
		settledEntry(domain.KindRevenue, domain.CategoryCattleSale, 2000, march.AddDate(0, 0, 10)),
		settledEntry(domain.KindRevenue, domain.CategoryCattleSale, 4000, march.AddDate(0, 1, 0)),
	)

	st, err := svc.Generate(ctx, march, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !almostEqual(st.GrossRevenue, 2000) {
		t.Errorf("gross revenue = %v, want 2000", st.GrossRevenue)
	}
}
