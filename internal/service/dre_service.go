package service

import (
	"context"
	"errors"
	"time"

	"github.com/confinapp/backend-go/internal/cache"
	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DREService builds monthly income statements from the finance ledger and
// the mortality register. One statement per (month, cycle); regeneration
// overwrites every derived field of the existing row.
type DREService struct {
	uow        repository.UnitOfWork
	statements cache.StatementCache
}

func NewDREService(uow repository.UnitOfWork, statements cache.StatementCache) *DREService {
	return &DREService{uow: uow, statements: statements}
}

// Expense categories feeding each DRE cost bucket. Settled expenses in
// categories outside this table land in other_costs.
var costBuckets = map[string]func(*domain.DREStatement, float64){
	domain.CategoryAnimalPurchase: func(st *domain.DREStatement, v float64) { st.AnimalCost += v },
	domain.CategoryFreight:        func(st *domain.DREStatement, v float64) { st.AnimalCost += v },
	domain.CategoryCommission:     func(st *domain.DREStatement, v float64) { st.AnimalCost += v },
	domain.CategoryFeed:           func(st *domain.DREStatement, v float64) { st.FeedCost += v },
	domain.CategoryHealth:         func(st *domain.DREStatement, v float64) { st.HealthCost += v },
	domain.CategoryLabor:          func(st *domain.DREStatement, v float64) { st.LaborCost += v },
	domain.CategoryAdmin:          func(st *domain.DREStatement, v float64) { st.AdminExpenses += v },
	domain.CategorySales:          func(st *domain.DREStatement, v float64) { st.SalesExpenses += v },
	domain.CategoryFinancial:      func(st *domain.DREStatement, v float64) { st.FinancialExpenses += v },
	domain.CategoryOtherExpense:   func(st *domain.DREStatement, v float64) { st.OtherExpenses += v },
}

// Generate builds the statement for the month and upserts it by
// (reference month, cycle id). Only settled (PAID/RECEIVED) entries count;
// pending ones are excluded from realized statements.
func (s *DREService) Generate(ctx context.Context, referenceMonth time.Time, cycleID *int64) (*domain.DREStatement, error) {
	start, end := domain.MonthWindow(referenceMonth)

	var (
		entries    []*domain.FinanceEntry
		deductions float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.uow.Finance().ListSettledInWindow(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		deductions, err = s.uow.Mortality().SumLossInWindow(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := s.build(start, cycleID, entries, deductions)

	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		existing, err := r.DRE().GetByMonthCycle(ctx, start, cycleID)
		var nf *domain.NotFoundError
		switch {
		case errors.As(err, &nf):
			return r.DRE().Insert(ctx, st)
		case err != nil:
			return err
		default:
			st.ID = existing.ID
			st.CreatedAt = existing.CreatedAt
			return r.DRE().Update(ctx, st)
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.statements.Set(ctx, start, cycleID, st); err != nil {
		log.Warn().Err(err).Msg("dre cache write failed")
	}
	log.Info().Str("month", start.Format("2006-01")).
		Float64("net_profit", st.NetProfit).Msg("dre statement generated")
	return st, nil
}

func (s *DREService) build(month time.Time, cycleID *int64,
	entries []*domain.FinanceEntry, deductions float64) *domain.DREStatement {
	st := &domain.DREStatement{
		ReferenceMonth: month,
		CycleID:        cycleID,
		Deductions:     deductions,
		GeneratedAt:    time.Now(),
	}

	for _, e := range entries {
		if e.Kind == domain.KindRevenue {
			st.GrossRevenue += e.Amount
			continue
		}
		if bucket, ok := costBuckets[e.Category]; ok {
			bucket(st, e.Amount)
		} else {
			st.OtherCosts += e.Amount
		}
	}

	st.NetRevenue = st.GrossRevenue - st.Deductions
	st.TotalCosts = st.AnimalCost + st.FeedCost + st.HealthCost + st.LaborCost + st.OtherCosts
	st.GrossProfit = st.NetRevenue - st.TotalCosts
	st.GrossMargin = domain.Percentage(st.GrossProfit, st.NetRevenue)
	st.TotalExpenses = st.AdminExpenses + st.SalesExpenses + st.FinancialExpenses + st.OtherExpenses
	st.OperationalProfit = st.GrossProfit - st.TotalExpenses
	st.OperationalMargin = domain.Percentage(st.OperationalProfit, st.NetRevenue)
	st.NetProfit = st.OperationalProfit
	st.NetMargin = domain.Percentage(st.NetProfit, st.NetRevenue)
	return st
}

// Get returns the stored statement for the exact (month, cycle) pair.
func (s *DREService) Get(ctx context.Context, referenceMonth time.Time, cycleID *int64) (*domain.DREStatement, error) {
	start, _ := domain.MonthWindow(referenceMonth)
	if cached, ok, err := s.statements.Get(ctx, start, cycleID); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dre cache read failed")
	}
	return s.uow.DRE().GetByMonthCycle(ctx, start, cycleID)
}

func (s *DREService) List(ctx context.Context, from, to time.Time) ([]*domain.DREStatement, error) {
	return s.uow.DRE().List(ctx, from, to)
}
