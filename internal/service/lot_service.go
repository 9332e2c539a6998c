package service

import (
	"context"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Default sanitary protocol applied at reception when the caller does not
// override the per-animal cost.
const (
	receptionProtocolName   = "reception"
	receptionCostPerAnimal  = 12.50
	weighingSourceReception = "reception"
)

// LotService is the lot lifecycle controller: it owns every state
// transition of a cattle lot and runs each multi-step operation inside one
// unit-of-work transaction, re-validating preconditions after the
// transaction starts.
type LotService struct {
	uow repository.UnitOfWork
}

func NewLotService(uow repository.UnitOfWork) *LotService {
	return &LotService{uow: uow}
}

// Create confirms a lot purchase: validates the command, assigns the next
// lot code for the purchase month and derives average weight, purchase
// value, total cost and the projected slaughter date.
func (s *LotService) Create(ctx context.Context, in domain.CreateLotInput) (*domain.CattleLot, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	purchaseDate := time.Now()
	if in.PurchaseDate != nil {
		purchaseDate = *in.PurchaseDate
	}

	lot := &domain.CattleLot{
		VendorID:            in.VendorID,
		PayerAccountID:      in.PayerAccountID,
		CycleID:             in.CycleID,
		Status:              domain.StatusConfirmed,
		InitialQuantity:     in.InitialQuantity,
		CurrentQuantity:     in.InitialQuantity,
		PurchaseWeight:      in.PurchaseWeight,
		CarcassYield:        in.CarcassYield,
		PricePerArroba:      in.PricePerArroba,
		FreightCost:         in.FreightCost,
		Commission:          in.Commission,
		ExpectedGMD:         in.ExpectedGMD,
		TargetWeight:        in.TargetWeight,
		PurchaseDate:        purchaseDate,
		WeightBreakSource:   domain.SourceComputed,
		TransportLossSource: domain.SourceComputed,
	}
	lot.AverageWeight = domain.LotAverageWeight(in.PurchaseWeight, in.InitialQuantity)
	lot.PurchaseValue = domain.LotPurchaseValue(in.PricePerArroba, in.PurchaseWeight, in.CarcassYield)
	lot.RecomputeTotalCost()
	if in.ExpectedGMD != nil && in.TargetWeight != nil {
		lot.EstimatedSlaughterDate = domain.ProjectSlaughterDate(
			purchaseDate, lot.AverageWeight, *in.TargetWeight, *in.ExpectedGMD)
	}

	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		prefix := domain.LotCodePrefix(purchaseDate.Year(), int(purchaseDate.Month()))
		highest, err := r.Lots().HighestCodeWithPrefix(ctx, prefix)
		if err != nil {
			return err
		}
		lot.LotCode = domain.NextLotCode(prefix, highest)
		return r.Lots().Create(ctx, lot)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("lot_code", lot.LotCode).Int("quantity", lot.InitialQuantity).
		Float64("purchase_value", lot.PurchaseValue).Msg("lot confirmed")
	return lot, nil
}

// RegisterReception moves a CONFIRMED lot to RECEIVED: stores the reception
// weighing, derives weight break and transport mortality (caller-supplied
// values take precedence and are marked as reported), optionally spreads
// the animals across pens, emits the reception expenses and applies the
// default health protocol. All of it commits together or not at all.
func (s *LotService) RegisterReception(ctx context.Context, id int64, in domain.ReceptionInput) (*domain.CattleLot, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var lot *domain.CattleLot
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		lot, err = r.Lots().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if lot.Status != domain.StatusConfirmed {
			return &domain.InvalidStateError{
				Entity:   "lot " + lot.LotCode,
				Current:  string(lot.Status),
				Required: string(domain.StatusConfirmed),
			}
		}

		receptionDate := time.Now()
		if in.ReceptionDate != nil {
			receptionDate = *in.ReceptionDate
		}

		transportLoss, lossSource := transportLoss(lot, in)
		// A lot cannot arrive with more animals than it was purchased with.
		if transportLoss < 0 {
			return &domain.ValidationError{Field: "actual_quantity", Reason: "exceeds the lot's initial quantity"}
		}
		actualQuantity := lot.InitialQuantity - transportLoss
		if actualQuantity < 0 {
			return &domain.QuantityExceededError{Requested: transportLoss, Current: lot.InitialQuantity}
		}

		breakKg, breakPct := domain.WeightBreak(lot.PurchaseWeight, in.ReceivedWeight)
		breakSource := domain.SourceComputed
		if in.WeightBreakPct != nil {
			breakPct = *in.WeightBreakPct
			breakSource = domain.SourceReported
		}

		lot.ReceivedWeight = &in.ReceivedWeight
		lot.WeightBreak = &breakKg
		lot.WeightBreakPct = &breakPct
		lot.WeightBreakSource = breakSource
		lot.TransportLoss = transportLoss
		lot.TransportLossSource = lossSource
		lot.ReceptionDate = &receptionDate
		lot.CurrentQuantity = actualQuantity
		lot.Status = domain.StatusReceived

		if transportLoss > 0 {
			lot.DeathCount += transportLoss
			if err := r.Mortality().Create(ctx, &domain.MortalityRecord{
				LotID:         lot.ID,
				Quantity:      transportLoss,
				DeathDate:     receptionDate,
				Cause:         domain.CauseTransport,
				EstimatedLoss: float64(transportLoss) * lot.AverageWeight * lot.CostPerKg(),
				Notes:         "transport mortality recorded at reception",
			}); err != nil {
				return err
			}
		}

		if err := r.Weighings().Create(ctx, &domain.WeightReading{
			LotID:         lot.ID,
			TotalWeight:   in.ReceivedWeight,
			Quantity:      actualQuantity,
			AverageWeight: domain.LotAverageWeight(in.ReceivedWeight, actualQuantity),
			MeasuredAt:    receptionDate,
			Source:        weighingSourceReception,
		}); err != nil {
			return err
		}

		if len(in.PenIDs) > 0 {
			if err := s.distributeAcrossPens(ctx, r, lot, in.PenIDs, actualQuantity, receptionDate); err != nil {
				return err
			}
		}

		if in.CreateExpenses == nil || *in.CreateExpenses {
			dates := ReceptionExpenseDates{
				Freight:    in.FreightDueDate,
				Commission: in.CommissionDueDate,
				Purchase:   in.PurchaseDueDate,
			}
			for _, draft := range BuildReceptionExpenses(lot, dates, receptionDate) {
				if err := r.Finance().Create(ctx, draft); err != nil {
					return err
				}
			}
		}

		if in.ApplyHealthProtocol == nil || *in.ApplyHealthProtocol {
			costPerAnimal := receptionCostPerAnimal
			if in.HealthCostPerAnimal != nil {
				costPerAnimal = *in.HealthCostPerAnimal
			}
			rec := &domain.HealthRecord{
				LotID:         lot.ID,
				Protocol:      receptionProtocolName,
				CostPerAnimal: costPerAnimal,
				Quantity:      actualQuantity,
				TotalCost:     costPerAnimal * float64(actualQuantity),
				AppliedAt:     receptionDate,
			}
			if err := r.Health().Create(ctx, rec); err != nil {
				return err
			}
			lot.HealthCost += rec.TotalCost
		}

		lot.RecomputeTotalCost()
		return r.Lots().Update(ctx, lot)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("lot_code", lot.LotCode).Int("transport_loss", lot.TransportLoss).
		Int("current_quantity", lot.CurrentQuantity).Msg("lot received")
	return lot, nil
}

func transportLoss(lot *domain.CattleLot, in domain.ReceptionInput) (int, domain.ValueSource) {
	if in.TransportLoss != nil {
		return *in.TransportLoss, domain.SourceReported
	}
	if in.ActualQuantity != nil {
		return lot.InitialQuantity - *in.ActualQuantity, domain.SourceComputed
	}
	return 0, domain.SourceComputed
}

// distributeAcrossPens splits quantity across the pens as evenly as
// possible: quotient per pen, the first remainder pens taking one extra.
func (s *LotService) distributeAcrossPens(ctx context.Context, r repository.Repositories,
	lot *domain.CattleLot, penIDs []int64, quantity int, when time.Time) error {
	shares := domain.DistributeEvenly(quantity, len(penIDs))
	for i, penID := range penIDs {
		if shares[i] == 0 {
			continue
		}
		if err := s.allocate(ctx, r, lot, penID, shares[i], when); err != nil {
			return err
		}
	}
	return nil
}

// allocate creates one ACTIVE allocation after checking the pen's
// remaining capacity inside the transaction.
func (s *LotService) allocate(ctx context.Context, r repository.Repositories,
	lot *domain.CattleLot, penID int64, quantity int, when time.Time) error {
	pen, err := r.Pens().GetByID(ctx, penID)
	if err != nil {
		return err
	}
	occupied, err := occupancy(ctx, r, penID)
	if err != nil {
		return err
	}
	if occupied+quantity > pen.Capacity {
		return &domain.CapacityExceededError{
			PenID:     pen.ID,
			PenCode:   pen.Code,
			Requested: quantity,
			Available: pen.Capacity - occupied,
		}
	}

	alloc := &domain.PenAllocation{
		LotID:           lot.ID,
		PenID:           penID,
		Quantity:        quantity,
		PercentageOfLot: domain.Percentage(float64(quantity), float64(lot.CurrentQuantity)),
		PercentageOfPen: domain.Percentage(float64(occupied+quantity), float64(pen.Capacity)),
		AllocationDate:  when,
		Status:          domain.AllocationActive,
	}
	if err := r.Pens().CreateAllocation(ctx, alloc); err != nil {
		return err
	}
	// A pen at exactly full capacity is OCCUPIED, not over capacity.
	if occupied+quantity == pen.Capacity {
		return r.Pens().UpdateStatus(ctx, penID, domain.PenOccupied)
	}
	return nil
}

func occupancy(ctx context.Context, r repository.Repositories, penID int64) (int, error) {
	active, err := r.Pens().ActiveByPen(ctx, penID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, a := range active {
		total += a.Quantity
	}
	return total, nil
}

// MarkAsConfined moves a RECEIVED lot to CONFINED. The requested
// allocations must cover the lot's current quantity exactly; prior active
// allocations are superseded, never deleted.
func (s *LotService) MarkAsConfined(ctx context.Context, id int64, in domain.ConfinementInput) (*domain.CattleLot, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var lot *domain.CattleLot
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		lot, err = r.Lots().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if lot.Status != domain.StatusReceived {
			return &domain.InvalidStateError{
				Entity:   "lot " + lot.LotCode,
				Current:  string(lot.Status),
				Required: string(domain.StatusReceived),
			}
		}

		total := 0
		for _, a := range in.Allocations {
			total += a.Quantity
		}
		if total != lot.CurrentQuantity {
			return &domain.QuantityMismatchError{Allocated: total, Expected: lot.CurrentQuantity}
		}

		now := time.Now()
		prior, err := r.Pens().ActiveByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		if err := r.Pens().ReleaseByLot(ctx, lot.ID, now); err != nil {
			return err
		}
		for _, a := range prior {
			if err := refreshPenStatus(ctx, r, a.PenID); err != nil {
				return err
			}
		}

		for _, a := range in.Allocations {
			if err := s.allocate(ctx, r, lot, a.PenID, a.Quantity, now); err != nil {
				return err
			}
		}

		lot.Status = domain.StatusConfined
		return r.Lots().Update(ctx, lot)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("lot_code", lot.LotCode).Int("pens", len(in.Allocations)).Msg("lot confined")
	return lot, nil
}

// refreshPenStatus flips a pen back to AVAILABLE when releases free up
// space. Pens under maintenance are left alone.
func refreshPenStatus(ctx context.Context, r repository.Repositories, penID int64) error {
	pen, err := r.Pens().GetByID(ctx, penID)
	if err != nil {
		return err
	}
	if pen.Status == domain.PenMaintenance {
		return nil
	}
	occupied, err := occupancy(ctx, r, penID)
	if err != nil {
		return err
	}
	status := domain.PenAvailable
	if occupied >= pen.Capacity {
		status = domain.PenOccupied
	}
	if status == pen.Status {
		return nil
	}
	return r.Pens().UpdateStatus(ctx, penID, status)
}

// UpdateStatus is the administrative escape hatch: it overrides the status
// without precondition checks. Callers must guard it.
func (s *LotService) UpdateStatus(ctx context.Context, id int64, status domain.LotStatus) (*domain.CattleLot, error) {
	if _, ok := domain.ParseLotStatus(string(status)); !ok {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status"}
	}

	var lot *domain.CattleLot
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		lot, err = r.Lots().GetByID(ctx, id)
		if err != nil {
			return err
		}
		lot.Status = status
		return r.Lots().Update(ctx, lot)
	})
	if err != nil {
		return nil, err
	}

	log.Warn().Str("lot_code", lot.LotCode).Str("status", string(status)).
		Msg("lot status overridden administratively")
	return lot, nil
}

// Delete removes a lot and everything hanging off it: allocations, health
// records, weight readings, ledger entries and mortality records, one
// transaction. Lots with recorded sales, confined lots and sold lots are
// blocked.
func (s *LotService) Delete(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		lot, err := r.Lots().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if lot.Status == domain.StatusConfined || lot.Status == domain.StatusSold {
			return &domain.InvalidStateError{
				Entity:   "lot " + lot.LotCode,
				Current:  string(lot.Status),
				Required: string(domain.StatusConfirmed),
			}
		}
		sales, err := r.Finance().CountRevenuesByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		if sales > 0 {
			return &domain.ValidationError{Field: "lot", Reason: "lot has recorded sales and cannot be deleted"}
		}

		if err := r.Pens().DeleteAllocationsByLot(ctx, lot.ID); err != nil {
			return err
		}
		if err := r.Health().DeleteByLot(ctx, lot.ID); err != nil {
			return err
		}
		if err := r.Weighings().DeleteByLot(ctx, lot.ID); err != nil {
			return err
		}
		if err := r.Finance().DeleteByLot(ctx, lot.ID); err != nil {
			return err
		}
		if err := r.Mortality().DeleteByLot(ctx, lot.ID); err != nil {
			return err
		}
		return r.Lots().Delete(ctx, lot.ID)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("lot_id", id).Msg("lot deleted")
	return nil
}

func (s *LotService) Get(ctx context.Context, id int64) (*domain.CattleLot, error) {
	return s.uow.Lots().GetByID(ctx, id)
}

func (s *LotService) List(ctx context.Context, status domain.LotStatus) ([]*domain.CattleLot, error) {
	return s.uow.Lots().List(ctx, status)
}

func (s *LotService) Allocations(ctx context.Context, lotID int64) ([]*domain.PenAllocation, error) {
	return s.uow.Pens().ActiveByLot(ctx, lotID)
}

func (s *LotService) Weighings(ctx context.Context, lotID int64) ([]*domain.WeightReading, error) {
	return s.uow.Weighings().ListByLot(ctx, lotID)
}
