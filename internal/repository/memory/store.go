// Package memory implements the repository set over plain maps. It backs
// the service tests and doubles as a reference implementation of the
// unit-of-work contract: WithinTx snapshots the dataset and restores it
// when the callback fails, and the store mutex serializes transactions.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
)

type dataset struct {
	lots        map[int64]domain.CattleLot
	pens        map[int64]domain.Pen
	allocations map[int64]domain.PenAllocation
	mortality   map[int64]domain.MortalityRecord
	finance     map[int64]domain.FinanceEntry
	health      map[int64]domain.HealthRecord
	weighings   map[int64]domain.WeightReading
	statements  map[int64]domain.DREStatement
}

func newDataset() *dataset {
	return &dataset{
		lots:        map[int64]domain.CattleLot{},
		pens:        map[int64]domain.Pen{},
		allocations: map[int64]domain.PenAllocation{},
		mortality:   map[int64]domain.MortalityRecord{},
		finance:     map[int64]domain.FinanceEntry{},
		health:      map[int64]domain.HealthRecord{},
		weighings:   map[int64]domain.WeightReading{},
		statements:  map[int64]domain.DREStatement{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.lots {
		c.lots[k] = cloneLot(v)
	}
	for k, v := range d.pens {
		c.pens[k] = v
	}
	for k, v := range d.allocations {
		c.allocations[k] = cloneAllocation(v)
	}
	for k, v := range d.mortality {
		c.mortality[k] = cloneMortality(v)
	}
	for k, v := range d.finance {
		c.finance[k] = cloneEntry(v)
	}
	for k, v := range d.health {
		c.health[k] = v
	}
	for k, v := range d.weighings {
		c.weighings[k] = v
	}
	for k, v := range d.statements {
		c.statements[k] = cloneStatement(v)
	}
	return c
}

// Store is an in-memory repository.UnitOfWork.
type Store struct {
	mu   sync.Mutex
	data *dataset
	seq  int64
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// view is one access path into the store. Outside a transaction every
// method takes the store lock; inside one, WithinTx already holds it.
type view struct {
	s    *Store
	inTx bool
}

func (v *view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v *view) repos() repository.Repositories { return reposOf(v) }

func reposOf(v *view) repository.Repositories { return &repoSet{v: v} }

type repoSet struct{ v *view }

func (r *repoSet) Lots() repository.LotRepository             { return &lotRepo{r.v} }
func (r *repoSet) Pens() repository.PenRepository             { return &penRepo{r.v} }
func (r *repoSet) Mortality() repository.MortalityRepository  { return &mortalityRepo{r.v} }
func (r *repoSet) Finance() repository.FinanceRepository      { return &financeRepo{r.v} }
func (r *repoSet) Health() repository.HealthRepository        { return &healthRepo{r.v} }
func (r *repoSet) Weighings() repository.WeighingRepository   { return &weighingRepo{r.v} }
func (r *repoSet) DRE() repository.DRERepository              { return &dreRepo{r.v} }

func (s *Store) Lots() repository.LotRepository            { return &lotRepo{&view{s: s}} }
func (s *Store) Pens() repository.PenRepository            { return &penRepo{&view{s: s}} }
func (s *Store) Mortality() repository.MortalityRepository { return &mortalityRepo{&view{s: s}} }
func (s *Store) Finance() repository.FinanceRepository     { return &financeRepo{&view{s: s}} }
func (s *Store) Health() repository.HealthRepository       { return &healthRepo{&view{s: s}} }
func (s *Store) Weighings() repository.WeighingRepository  { return &weighingRepo{&view{s: s}} }
func (s *Store) DRE() repository.DRERepository             { return &dreRepo{&view{s: s}} }

// WithinTx runs fn against the live dataset under the store lock and
// restores a pre-transaction snapshot if fn fails, so a failed multi-step
// operation leaves no partial writes behind.
func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	seq := s.seq
	if err := fn(reposOf(&view{s: s, inTx: true})); err != nil {
		s.data = snapshot
		s.seq = seq
		return err
	}
	return nil
}

func cloneLot(l domain.CattleLot) domain.CattleLot {
	l.CycleID = clonePtr(l.CycleID)
	l.ReceivedWeight = clonePtr(l.ReceivedWeight)
	l.ExpectedGMD = clonePtr(l.ExpectedGMD)
	l.TargetWeight = clonePtr(l.TargetWeight)
	l.EstimatedSlaughterDate = clonePtr(l.EstimatedSlaughterDate)
	l.WeightBreak = clonePtr(l.WeightBreak)
	l.WeightBreakPct = clonePtr(l.WeightBreakPct)
	l.ReceptionDate = clonePtr(l.ReceptionDate)
	return l
}

func cloneAllocation(a domain.PenAllocation) domain.PenAllocation {
	a.RemovalDate = clonePtr(a.RemovalDate)
	return a
}

func cloneMortality(m domain.MortalityRecord) domain.MortalityRecord {
	m.PenID = clonePtr(m.PenID)
	return m
}

func cloneEntry(e domain.FinanceEntry) domain.FinanceEntry {
	e.SettledDate = clonePtr(e.SettledDate)
	e.LotID = clonePtr(e.LotID)
	e.PayerAccountID = clonePtr(e.PayerAccountID)
	return e
}

func cloneStatement(st domain.DREStatement) domain.DREStatement {
	st.CycleID = clonePtr(st.CycleID)
	return st
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func sameCycle(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
