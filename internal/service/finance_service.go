package service

import (
	"context"
	"time"

	"github.com/confinapp/backend-go/internal/cache"
	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// FinanceService manages the cash-flow ledger. Entries only move
// PENDING -> PAID/RECEIVED/CANCELLED; anything settled or cancelled is
// immutable. Settling an entry invalidates cached DRE statements since
// realized months may change.
type FinanceService struct {
	uow        repository.UnitOfWork
	statements cache.StatementCache
}

func NewFinanceService(uow repository.UnitOfWork, statements cache.StatementCache) *FinanceService {
	return &FinanceService{uow: uow, statements: statements}
}

func (s *FinanceService) Create(ctx context.Context, in domain.CreateEntryInput) (*domain.FinanceEntry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	entry := &domain.FinanceEntry{
		Kind:           in.Kind,
		Category:       in.Category,
		Description:    in.Description,
		Amount:         in.Amount,
		DueDate:        in.DueDate,
		Status:         domain.EntryPending,
		LotID:          in.LotID,
		PayerAccountID: in.PayerAccountID,
	}
	if err := s.uow.Finance().Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkSettled settles a pending entry: expenses become PAID, revenues
// RECEIVED.
func (s *FinanceService) MarkSettled(ctx context.Context, id int64, when *time.Time) (*domain.FinanceEntry, error) {
	settledAt := time.Now()
	if when != nil {
		settledAt = *when
	}

	var entry *domain.FinanceEntry
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		entry, err = r.Finance().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if entry.Status != domain.EntryPending {
			return &domain.InvalidStateError{
				Entity:   "finance entry",
				Current:  string(entry.Status),
				Required: string(domain.EntryPending),
			}
		}
		status := domain.EntryPaid
		if entry.Kind == domain.KindRevenue {
			status = domain.EntryReceived
		}
		entry.Status = status
		entry.SettledDate = &settledAt
		return r.Finance().UpdateStatus(ctx, id, status, &settledAt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStatements(ctx, settledAt)
	return entry, nil
}

// Cancel voids a pending entry.
func (s *FinanceService) Cancel(ctx context.Context, id int64) (*domain.FinanceEntry, error) {
	var entry *domain.FinanceEntry
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		entry, err = r.Finance().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if entry.Status != domain.EntryPending {
			return &domain.InvalidStateError{
				Entity:   "finance entry",
				Current:  string(entry.Status),
				Required: string(domain.EntryPending),
			}
		}
		entry.Status = domain.EntryCancelled
		return r.Finance().UpdateStatus(ctx, id, domain.EntryCancelled, nil)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *FinanceService) Get(ctx context.Context, id int64) (*domain.FinanceEntry, error) {
	return s.uow.Finance().GetByID(ctx, id)
}

func (s *FinanceService) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.FinanceEntry, error) {
	return s.uow.Finance().List(ctx, filter)
}

// CashFlow aggregates the ledger over a due-date window: settled inflow
// and outflow, the pending backlog and its overdue share.
func (s *FinanceService) CashFlow(ctx context.Context, from, to time.Time) (*domain.CashFlowSummary, error) {
	entries, err := s.uow.Finance().List(ctx, domain.EntryFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := &domain.CashFlowSummary{}
	for _, e := range entries {
		switch {
		case e.Status == domain.EntryReceived:
			summary.TotalInflow += e.Amount
		case e.Status == domain.EntryPaid:
			summary.TotalOutflow += e.Amount
		case e.Status == domain.EntryPending:
			summary.Pending += e.Amount
			if e.Overdue(now) {
				summary.Overdue += e.Amount
			}
		}
	}
	summary.Balance = summary.TotalInflow - summary.TotalOutflow
	return summary, nil
}

func (s *FinanceService) invalidateStatements(ctx context.Context, settledAt time.Time) {
	if err := s.statements.InvalidateMonth(ctx, settledAt); err != nil {
		log.Warn().Err(err).Msg("dre cache invalidation failed")
	}
}
