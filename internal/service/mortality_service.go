package service

import (
	"context"
	"time"

	"github.com/confinapp/backend-go/internal/cache"
	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// MortalityService is the mortality register: recording a death and
// adjusting the lot's quantities happen in the same transaction, and
// deleting a record reverses that adjustment.
type MortalityService struct {
	uow   repository.UnitOfWork
	stats cache.StatisticsCache
}

func NewMortalityService(uow repository.UnitOfWork, stats cache.StatisticsCache) *MortalityService {
	return &MortalityService{uow: uow, stats: stats}
}

// Record registers a death event. The estimated loss defaults to
// quantity x average weight x cost per live kilogram when not supplied.
func (s *MortalityService) Record(ctx context.Context, in domain.MortalityInput) (*domain.MortalityRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rec := &domain.MortalityRecord{
		LotID:    in.LotID,
		PenID:    in.PenID,
		Quantity: in.Quantity,
		Cause:    in.Cause,
		Notes:    in.Notes,
	}
	if rec.Cause == "" {
		rec.Cause = domain.CauseUnknown
	}
	rec.DeathDate = time.Now()
	if in.DeathDate != nil {
		rec.DeathDate = *in.DeathDate
	}

	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		lot, err := r.Lots().GetByID(ctx, in.LotID)
		if err != nil {
			return err
		}
		if in.Quantity > lot.CurrentQuantity {
			return &domain.QuantityExceededError{Requested: in.Quantity, Current: lot.CurrentQuantity}
		}

		if in.EstimatedLoss != nil {
			rec.EstimatedLoss = *in.EstimatedLoss
		} else {
			rec.EstimatedLoss = float64(in.Quantity) * lot.AverageWeight * lot.CostPerKg()
		}
		if err := r.Mortality().Create(ctx, rec); err != nil {
			return err
		}

		lot.DeathCount += in.Quantity
		lot.CurrentQuantity -= in.Quantity
		return r.Lots().Update(ctx, lot)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	log.Info().Int64("lot_id", rec.LotID).Int("quantity", rec.Quantity).
		Str("cause", string(rec.Cause)).Float64("loss", rec.EstimatedLoss).
		Msg("mortality recorded")
	return rec, nil
}

// Delete reverses the quantity adjustment the record applied at creation,
// then removes the record. A compensating transaction, not a bare delete.
func (s *MortalityService) Delete(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		rec, err := r.Mortality().GetByID(ctx, id)
		if err != nil {
			return err
		}
		lot, err := r.Lots().GetByID(ctx, rec.LotID)
		if err != nil {
			return err
		}

		lot.DeathCount -= rec.Quantity
		lot.CurrentQuantity += rec.Quantity
		if lot.DeathCount < 0 || lot.CurrentQuantity > lot.InitialQuantity {
			return &domain.ValidationError{Field: "mortality record",
				Reason: "reversal would leave the lot with inconsistent quantities"}
		}
		if err := r.Lots().Update(ctx, lot); err != nil {
			return err
		}
		return r.Mortality().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateStats(ctx)
	log.Info().Int64("record_id", id).Msg("mortality record reversed")
	return nil
}

func (s *MortalityService) List(ctx context.Context, filter domain.MortalityFilter) ([]*domain.MortalityRecord, error) {
	return s.uow.Mortality().List(ctx, filter)
}

// Statistics aggregates the register: totals, the mortality rate over the
// initial headcount, and breakdowns by cause and by pen.
func (s *MortalityService) Statistics(ctx context.Context, filter domain.MortalityFilter) (*domain.MortalityStatistics, error) {
	if cached, ok, err := s.stats.Get(ctx, filter); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("mortality statistics cache read failed")
	}

	records, err := s.uow.Mortality().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := &domain.MortalityStatistics{
		ByCause: map[domain.DeathCause]int{},
		ByPen:   map[int64]int{},
	}
	for _, rec := range records {
		stats.TotalDeaths += rec.Quantity
		stats.TotalLoss += rec.EstimatedLoss
		stats.ByCause[rec.Cause] += rec.Quantity
		if rec.PenID != nil {
			stats.ByPen[*rec.PenID] += rec.Quantity
		}
	}

	initial, err := s.initialHeadcount(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats.MortalityRate = domain.Percentage(float64(stats.TotalDeaths), float64(initial))

	if err := s.stats.Set(ctx, filter, stats); err != nil {
		log.Warn().Err(err).Msg("mortality statistics cache write failed")
	}
	return stats, nil
}

// initialHeadcount is the denominator of the mortality rate: the filtered
// lot's initial quantity, or the herd-wide total when unfiltered.
func (s *MortalityService) initialHeadcount(ctx context.Context, filter domain.MortalityFilter) (int, error) {
	if filter.LotID != nil {
		lot, err := s.uow.Lots().GetByID(ctx, *filter.LotID)
		if err != nil {
			return 0, err
		}
		return lot.InitialQuantity, nil
	}
	lots, err := s.uow.Lots().List(ctx, "")
	if err != nil {
		return 0, err
	}
	total := 0
	for _, lot := range lots {
		total += lot.InitialQuantity
	}
	return total, nil
}

func (s *MortalityService) invalidateStats(ctx context.Context) {
	if err := s.stats.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("mortality statistics cache invalidation failed")
	}
}
