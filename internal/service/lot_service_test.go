package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository/memory"
)

func ptr[T any](v T) *T { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

var marchPurchase = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func standardLotInput() domain.CreateLotInput {
	return domain.CreateLotInput{
		VendorID:        1,
		PayerAccountID:  2,
		InitialQuantity: 100,
		PurchaseWeight:  45000,
		CarcassYield:    50,
		PricePerArroba:  180,
		FreightCost:     3500,
		Commission:      2700,
		PurchaseDate:    ptr(marchPurchase),
	}
}

func newLotFixture(t *testing.T) (*LotService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewLotService(store), store
}

func createPen(t *testing.T, store *memory.Store, code string, capacity int) *domain.Pen {
	t.Helper()
	pen := &domain.Pen{Code: code, Capacity: capacity}
	if err := store.Pens().Create(context.Background(), pen); err != nil {
		t.Fatalf("create pen %s: %v", code, err)
	}
	return pen
}

func TestCreateDerivesLotFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLotFixture(t)

	in := standardLotInput()
	in.ExpectedGMD = ptr(1.5)
	in.TargetWeight = ptr(550.0)

	lot, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if lot.LotCode != "LOT-2603001" {
		t.Errorf("lot code = %s, want LOT-2603001", lot.LotCode)
	}
	if lot.Status != domain.StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", lot.Status)
	}
	if !almostEqual(lot.AverageWeight, 450) {
		t.Errorf("average weight = %v, want 450", lot.AverageWeight)
	}
	if !almostEqual(lot.PurchaseValue, 270000) {
		t.Errorf("purchase value = %v, want 270000", lot.PurchaseValue)
	}
	if !almostEqual(lot.TotalCost, 276200) {
		t.Errorf("total cost = %v, want 276200", lot.TotalCost)
	}
	if lot.CurrentQuantity != 100 || lot.DeathCount != 0 {
		t.Errorf("quantities = %d/%d, want 100/0", lot.CurrentQuantity, lot.DeathCount)
	}
	if lot.EstimatedSlaughterDate == nil {
		t.Fatal("estimated slaughter date missing")
	}
	// (550-450)/1.5 = 66.7 days, rounded up.
	want := marchPurchase.AddDate(0, 0, 67)
	if !lot.EstimatedSlaughterDate.Equal(want) {
		t.Errorf("slaughter date = %v, want %v", lot.EstimatedSlaughterDate, want)
	}
}

func TestCreateSequencesCodesPerMonth(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLotFixture(t)

	first, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.LotCode != "LOT-2603001" || second.LotCode != "LOT-2603002" {
		t.Errorf("codes = %s, %s", first.LotCode, second.LotCode)
	}

	// A different month restarts the sequence.
	aprilIn := standardLotInput()
	aprilIn.PurchaseDate = ptr(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	april, err := svc.Create(ctx, aprilIn)
	if err != nil {
		t.Fatalf("april create: %v", err)
	}
	if april.LotCode != "LOT-2604001" {
		t.Errorf("april code = %s, want LOT-2604001", april.LotCode)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLotFixture(t)

	in := standardLotInput()
	in.CarcassYield = 140

	_, err := svc.Create(ctx, in)
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestRegisterReception(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)
	createPen(t, store, "A-01", 60)
	createPen(t, store, "A-02", 60)

	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	receptionDate := marchPurchase.AddDate(0, 0, 2)
	got, err := svc.RegisterReception(ctx, lot.ID, domain.ReceptionInput{
		ReceivedWeight: 43200,
		TransportLoss:  ptr(5),
		ReceptionDate:  ptr(receptionDate),
		PenIDs:         []int64{1, 2},
	})
	if err != nil {
		t.Fatalf("RegisterReception: %v", err)
	}

	if got.Status != domain.StatusReceived {
		t.Errorf("status = %s, want RECEIVED", got.Status)
	}
	if got.CurrentQuantity != 95 || got.DeathCount != 5 {
		t.Errorf("quantities = %d/%d, want 95/5", got.CurrentQuantity, got.DeathCount)
	}
	if got.TransportLossSource != domain.SourceReported {
		t.Errorf("transport loss source = %s, want reported", got.TransportLossSource)
	}
	if got.WeightBreak == nil || !almostEqual(*got.WeightBreak, 1800) {
		t.Errorf("weight break = %v, want 1800", got.WeightBreak)
	}
	if got.WeightBreakPct == nil || !almostEqual(*got.WeightBreakPct, 4) {
		t.Errorf("weight break pct = %v, want 4", got.WeightBreakPct)
	}
	if got.WeightBreakSource != domain.SourceComputed {
		t.Errorf("weight break source = %s, want computed", got.WeightBreakSource)
	}

	// Transport deaths land in the mortality register so the quantity
	// invariant holds.
	records, err := store.Mortality().List(ctx, domain.MortalityFilter{LotID: &lot.ID})
	if err != nil {
		t.Fatalf("list mortality: %v", err)
	}
	if len(records) != 1 || records[0].Cause != domain.CauseTransport || records[0].Quantity != 5 {
		t.Fatalf("mortality records = %+v", records)
	}

	// Freight, commission and purchase value become pending expenses.
	entries, err := store.Finance().List(ctx, domain.EntryFilter{LotID: &lot.ID})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d finance entries, want 3", len(entries))
	}
	byCategory := map[string]float64{}
	for _, e := range entries {
		if e.Status != domain.EntryPending {
			t.Errorf("entry %s status = %s, want PENDING", e.Category, e.Status)
		}
		byCategory[e.Category] = e.Amount
	}
	if !almostEqual(byCategory[domain.CategoryFreight], 3500) ||
		!almostEqual(byCategory[domain.CategoryCommission], 2700) ||
		!almostEqual(byCategory[domain.CategoryAnimalPurchase], 270000) {
		t.Errorf("expense amounts = %v", byCategory)
	}

	// Default health protocol covers the surviving head.
	health, err := store.Health().ListByLot(ctx, lot.ID)
	if err != nil {
		t.Fatalf("list health: %v", err)
	}
	if len(health) != 1 || health[0].Quantity != 95 || !almostEqual(health[0].TotalCost, 95*12.50) {
		t.Fatalf("health records = %+v", health)
	}
	if !almostEqual(got.HealthCost, 95*12.50) {
		t.Errorf("lot health cost = %v", got.HealthCost)
	}

	weighings, err := store.Weighings().ListByLot(ctx, lot.ID)
	if err != nil {
		t.Fatalf("list weighings: %v", err)
	}
	if len(weighings) != 1 || !almostEqual(weighings[0].TotalWeight, 43200) {
		t.Fatalf("weighings = %+v", weighings)
	}

	// 95 head across two pens: 48 and 47.
	allocations, err := store.Pens().ActiveByLot(ctx, lot.ID)
	if err != nil {
		t.Fatalf("list allocations: %v", err)
	}
	if len(allocations) != 2 || allocations[0].Quantity != 48 || allocations[1].Quantity != 47 {
		t.Fatalf("allocations = %+v", allocations)
	}
}

func TestRegisterReceptionActualQuantityImpliesLoss(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLotFixture(t)

	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.RegisterReception(ctx, lot.ID, domain.ReceptionInput{
		ReceivedWeight:      43650,
		ActualQuantity:      ptr(97),
		CreateExpenses:      ptr(false),
		ApplyHealthProtocol: ptr(false),
	})
	if err != nil {
		t.Fatalf("RegisterReception: %v", err)
	}
	if got.TransportLoss != 3 || got.CurrentQuantity != 97 {
		t.Errorf("loss = %d, current = %d", got.TransportLoss, got.CurrentQuantity)
	}
	if got.TransportLossSource != domain.SourceComputed {
		t.Errorf("transport loss source = %s, want computed", got.TransportLossSource)
	}
}

func TestRegisterReceptionRejectsGainedAnimals(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLotFixture(t)

	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name string
		in   domain.ReceptionInput
	}{
		{name: "actual quantity above initial", in: domain.ReceptionInput{
			ReceivedWeight: 43200,
			ActualQuantity: ptr(110),
		}},
		{name: "negative transport loss", in: domain.ReceptionInput{
			ReceivedWeight: 43200,
			TransportLoss:  ptr(-10),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterReception(ctx, lot.ID, tt.in)
			var validation *domain.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
		})
	}

	// The lot must be untouched by the rejected receptions.
	got, err := svc.Get(ctx, lot.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusConfirmed || got.CurrentQuantity != 100 || got.DeathCount != 0 {
		t.Errorf("lot after rejection = %s %d/%d, want CONFIRMED 100/0",
			got.Status, got.CurrentQuantity, got.DeathCount)
	}
}

func TestRegisterReceptionRequiresConfirmed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLotFixture(t)

	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.RegisterReception(ctx, lot.ID, domain.ReceptionInput{ReceivedWeight: 43200}); err != nil {
		t.Fatalf("first reception: %v", err)
	}

	_, err = svc.RegisterReception(ctx, lot.ID, domain.ReceptionInput{ReceivedWeight: 43200})
	var state *domain.InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("second reception error = %v, want InvalidStateError", err)
	}
}

func receivedLot(t *testing.T, svc *LotService) *domain.CattleLot {
	t.Helper()
	ctx := context.Background()
	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lot, err = svc.RegisterReception(ctx, lot.ID, domain.ReceptionInput{
		ReceivedWeight:      43200,
		TransportLoss:       ptr(5),
		CreateExpenses:      ptr(false),
		ApplyHealthProtocol: ptr(false),
	})
	if err != nil {
		t.Fatalf("reception: %v", err)
	}
	return lot
}

func TestMarkAsConfined(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)
	lot := receivedLot(t, svc)
	penA := createPen(t, store, "A-01", 48)
	penB := createPen(t, store, "A-02", 60)

	got, err := svc.MarkAsConfined(ctx, lot.ID, domain.ConfinementInput{
		Allocations: []domain.AllocationInput{
			{PenID: penA.ID, Quantity: 48},
			{PenID: penB.ID, Quantity: 47},
		},
	})
	if err != nil {
		t.Fatalf("MarkAsConfined: %v", err)
	}
	if got.Status != domain.StatusConfined {
		t.Errorf("status = %s, want CONFINED", got.Status)
	}

	// Pen A is at exact capacity and flips to OCCUPIED; pen B keeps room.
	a, _ := store.Pens().GetByID(ctx, penA.ID)
	b, _ := store.Pens().GetByID(ctx, penB.ID)
	if a.Status != domain.PenOccupied {
		t.Errorf("pen A status = %s, want OCCUPIED", a.Status)
	}
	if b.Status != domain.PenAvailable {
		t.Errorf("pen B status = %s, want AVAILABLE", b.Status)
	}
}

func TestMarkAsConfinedRejectsQuantityMismatch(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)
	lot := receivedLot(t, svc)
	pen := createPen(t, store, "A-01", 200)

	_, err := svc.MarkAsConfined(ctx, lot.ID, domain.ConfinementInput{
		Allocations: []domain.AllocationInput{{PenID: pen.ID, Quantity: 90}},
	})
	var mismatch *domain.QuantityMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want QuantityMismatchError", err)
	}
	if mismatch.Allocated != 90 || mismatch.Expected != 95 {
		t.Errorf("mismatch = %+v", mismatch)
	}

	// Nothing may persist from the failed attempt.
	allocations, _ := store.Pens().ActiveByLot(ctx, lot.ID)
	if len(allocations) != 0 {
		t.Errorf("got %d allocations after failure, want 0", len(allocations))
	}
}

func TestMarkAsConfinedRejectsOverCapacity(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)
	lot := receivedLot(t, svc)
	small := createPen(t, store, "S-01", 50)
	big := createPen(t, store, "B-01", 100)

	_, err := svc.MarkAsConfined(ctx, lot.ID, domain.ConfinementInput{
		Allocations: []domain.AllocationInput{
			{PenID: small.ID, Quantity: 60},
			{PenID: big.ID, Quantity: 35},
		},
	})
	var capacity *domain.CapacityExceededError
	if !errors.As(err, &capacity) {
		t.Fatalf("error = %v, want CapacityExceededError", err)
	}
	if capacity.PenCode != "S-01" || capacity.Available != 50 {
		t.Errorf("capacity error = %+v", capacity)
	}
}

func TestMarkAsConfinedSupersedesPriorAllocations(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)
	penA := createPen(t, store, "A-01", 95)
	penB := createPen(t, store, "A-02", 95)

	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lot, err = svc.RegisterReception(ctx, lot.ID, domain.ReceptionInput{
		ReceivedWeight:      43200,
		TransportLoss:       ptr(5),
		PenIDs:              []int64{penA.ID},
		CreateExpenses:      ptr(false),
		ApplyHealthProtocol: ptr(false),
	})
	if err != nil {
		t.Fatalf("reception: %v", err)
	}

	// Move the whole lot from pen A to pen B.
	if _, err := svc.MarkAsConfined(ctx, lot.ID, domain.ConfinementInput{
		Allocations: []domain.AllocationInput{{PenID: penB.ID, Quantity: 95}},
	}); err != nil {
		t.Fatalf("MarkAsConfined: %v", err)
	}

	active, _ := store.Pens().ActiveByLot(ctx, lot.ID)
	if len(active) != 1 || active[0].PenID != penB.ID {
		t.Fatalf("active allocations = %+v", active)
	}
	a, _ := store.Pens().GetByID(ctx, penA.ID)
	if a.Status != domain.PenAvailable {
		t.Errorf("released pen status = %s, want AVAILABLE", a.Status)
	}
	b, _ := store.Pens().GetByID(ctx, penB.ID)
	if b.Status != domain.PenOccupied {
		t.Errorf("full pen status = %s, want OCCUPIED", b.Status)
	}
}

func TestDeleteBlocksConfinedAndSoldLots(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)
	lot := receivedLot(t, svc)
	pen := createPen(t, store, "A-01", 200)

	if _, err := svc.MarkAsConfined(ctx, lot.ID, domain.ConfinementInput{
		Allocations: []domain.AllocationInput{{PenID: pen.ID, Quantity: 95}},
	}); err != nil {
		t.Fatalf("confine: %v", err)
	}

	var state *domain.InvalidStateError
	if err := svc.Delete(ctx, lot.ID); !errors.As(err, &state) {
		t.Fatalf("delete confined lot error = %v, want InvalidStateError", err)
	}
}

func TestDeleteBlocksLotsWithRecordedSales(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)

	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Finance().Create(ctx, &domain.FinanceEntry{
		Kind:     domain.KindRevenue,
		Category: domain.CategoryCattleSale,
		Amount:   100000,
		DueDate:  marchPurchase,
		LotID:    &lot.ID,
	}); err != nil {
		t.Fatalf("create revenue: %v", err)
	}

	var validation *domain.ValidationError
	if err := svc.Delete(ctx, lot.ID); !errors.As(err, &validation) {
		t.Fatalf("delete error = %v, want ValidationError", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, store := newLotFixture(t)
	createPen(t, store, "A-01", 200)

	lot, err := svc.Create(ctx, standardLotInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.RegisterReception(ctx, lot.ID, domain.ReceptionInput{
		ReceivedWeight: 43200,
		TransportLoss:  ptr(5),
		PenIDs:         []int64{1},
	}); err != nil {
		t.Fatalf("reception: %v", err)
	}

	if err := svc.Delete(ctx, lot.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Lots().GetByID(ctx, lot.ID); err == nil {
		t.Error("lot still present after delete")
	}
	entries, _ := store.Finance().List(ctx, domain.EntryFilter{LotID: &lot.ID})
	if len(entries) != 0 {
		t.Errorf("finance entries left behind: %d", len(entries))
	}
	health, _ := store.Health().ListByLot(ctx, lot.ID)
	if len(health) != 0 {
		t.Errorf("health records left behind: %d", len(health))
	}
	weighings, _ := store.Weighings().ListByLot(ctx, lot.ID)
	if len(weighings) != 0 {
		t.Errorf("weighings left behind: %d", len(weighings))
	}
	allocations, _ := store.Pens().ActiveByLot(ctx, lot.ID)
	if len(allocations) != 0 {
		t.Errorf("allocations left behind: %d", len(allocations))
	}
	// The transport deaths must not survive as orphans feeding statistics.
	mortality, _ := store.Mortality().List(ctx, domain.MortalityFilter{LotID: &lot.ID})
	if len(mortality) != 0 {
		t.Errorf("mortality records left behind: %d", len(mortality))
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLotFixture(t)

	_, err := svc.UpdateStatus(ctx, 1, domain.LotStatus("SHIPPED"))
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}
