package repository

import (
	"context"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
)

// Repositories is the full set of stores the engine operates on.
type Repositories interface {
	Lots() LotRepository
	Pens() PenRepository
	Mortality() MortalityRepository
	Finance() FinanceRepository
	Health() HealthRepository
	Weighings() WeighingRepository
	DRE() DRERepository
}

// UnitOfWork scopes a group of repository calls to one transaction: fn
// either commits as a whole or rolls back on the first error. The
// repositories passed to fn see uncommitted writes; preconditions must be
// re-checked through them, not through values read before WithinTx.
type UnitOfWork interface {
	Repositories
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}

type LotRepository interface {
	Create(ctx context.Context, lot *domain.CattleLot) error
	GetByID(ctx context.Context, id int64) (*domain.CattleLot, error)
	GetByCode(ctx context.Context, code string) (*domain.CattleLot, error)
	List(ctx context.Context, status domain.LotStatus) ([]*domain.CattleLot, error)
	Update(ctx context.Context, lot *domain.CattleLot) error
	Delete(ctx context.Context, id int64) error
	// HighestCodeWithPrefix returns the lot code with the greatest numeric
	// sequence sharing the month prefix, or "" when the month has none yet.
	HighestCodeWithPrefix(ctx context.Context, prefix string) (string, error)
}

type PenRepository interface {
	Create(ctx context.Context, pen *domain.Pen) error
	GetByID(ctx context.Context, id int64) (*domain.Pen, error)
	List(ctx context.Context) ([]*domain.Pen, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PenStatus) error

	CreateAllocation(ctx context.Context, alloc *domain.PenAllocation) error
	ActiveByPen(ctx context.Context, penID int64) ([]*domain.PenAllocation, error)
	ActiveByLot(ctx context.Context, lotID int64) ([]*domain.PenAllocation, error)
	// ReleaseByLot marks the lot's ACTIVE allocations REMOVED, stamping the
	// removal date. History rows are never deleted.
	ReleaseByLot(ctx context.Context, lotID int64, removedAt time.Time) error
	DeleteAllocationsByLot(ctx context.Context, lotID int64) error
}

type MortalityRepository interface {
	Create(ctx context.Context, rec *domain.MortalityRecord) error
	GetByID(ctx context.Context, id int64) (*domain.MortalityRecord, error)
	Delete(ctx context.Context, id int64) error
	DeleteByLot(ctx context.Context, lotID int64) error
	List(ctx context.Context, filter domain.MortalityFilter) ([]*domain.MortalityRecord, error)
	// SumLossInWindow totals estimated losses with death dates in [from, to).
	SumLossInWindow(ctx context.Context, from, to time.Time) (float64, error)
}

type FinanceRepository interface {
	Create(ctx context.Context, entry *domain.FinanceEntry) error
	GetByID(ctx context.Context, id int64) (*domain.FinanceEntry, error)
	List(ctx context.Context, filter domain.EntryFilter) ([]*domain.FinanceEntry, error)
	UpdateStatus(ctx context.Context, id int64, status domain.EntryStatus, settledAt *time.Time) error
	DeleteByLot(ctx context.Context, lotID int64) error
	// ListSettledInWindow returns PAID/RECEIVED entries settled in [from, to).
	ListSettledInWindow(ctx context.Context, from, to time.Time) ([]*domain.FinanceEntry, error)
	CountRevenuesByLot(ctx context.Context, lotID int64) (int, error)
}

type HealthRepository interface {
	Create(ctx context.Context, rec *domain.HealthRecord) error
	ListByLot(ctx context.Context, lotID int64) ([]*domain.HealthRecord, error)
	DeleteByLot(ctx context.Context, lotID int64) error
}

type WeighingRepository interface {
	Create(ctx context.Context, reading *domain.WeightReading) error
	ListByLot(ctx context.Context, lotID int64) ([]*domain.WeightReading, error)
	DeleteByLot(ctx context.Context, lotID int64) error
}

type DRERepository interface {
	// GetByMonthCycle matches cycleID exactly: nil only matches rows with a
	// NULL cycle. Returns a NotFoundError when no row exists.
	GetByMonthCycle(ctx context.Context, month time.Time, cycleID *int64) (*domain.DREStatement, error)
	// Insert fails with a ConflictError when the (month, cycle) pair exists.
	Insert(ctx context.Context, st *domain.DREStatement) error
	Update(ctx context.Context, st *domain.DREStatement) error
	List(ctx context.Context, from, to time.Time) ([]*domain.DREStatement, error)
}
