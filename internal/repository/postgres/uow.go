package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// UnitOfWork exposes the repository set over a database pool and scopes
// multi-step engine operations to a single SQL transaction.
type UnitOfWork struct {
	db *DB
}

func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Lots() repository.LotRepository            { return &lotRepo{q: u.db} }
func (u *UnitOfWork) Pens() repository.PenRepository            { return &penRepo{q: u.db} }
func (u *UnitOfWork) Mortality() repository.MortalityRepository { return &mortalityRepo{q: u.db} }
func (u *UnitOfWork) Finance() repository.FinanceRepository     { return &financeRepo{q: u.db} }
func (u *UnitOfWork) Health() repository.HealthRepository       { return &healthRepo{q: u.db} }
func (u *UnitOfWork) Weighings() repository.WeighingRepository  { return &weighingRepo{q: u.db} }
func (u *UnitOfWork) DRE() repository.DRERepository             { return &dreRepo{q: u.db} }

// WithinTx hands fn a repository set bound to one transaction; any error
// rolls the whole operation back.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	return u.db.withTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&txRepos{q: tx})
	})
}

type txRepos struct {
	q sqlx.ExtContext
}

func (t *txRepos) Lots() repository.LotRepository            { return &lotRepo{q: t.q} }
func (t *txRepos) Pens() repository.PenRepository            { return &penRepo{q: t.q} }
func (t *txRepos) Mortality() repository.MortalityRepository { return &mortalityRepo{q: t.q} }
func (t *txRepos) Finance() repository.FinanceRepository     { return &financeRepo{q: t.q} }
func (t *txRepos) Health() repository.HealthRepository       { return &healthRepo{q: t.q} }
func (t *txRepos) Weighings() repository.WeighingRepository  { return &weighingRepo{q: t.q} }
func (t *txRepos) DRE() repository.DRERepository             { return &dreRepo{q: t.q} }

// notFound maps sql.ErrNoRows onto the domain taxonomy.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

// conflict maps a unique violation onto the domain taxonomy.
func conflict(err error, resource, key string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return &domain.ConflictError{Resource: resource, Key: key}
	}
	return err
}
