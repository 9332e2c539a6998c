package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
)

type lotRepo struct{ v *view }

func (r *lotRepo) Create(ctx context.Context, lot *domain.CattleLot) error {
	defer r.v.lock()()
	for _, existing := range r.v.s.data.lots {
		if existing.LotCode == lot.LotCode {
			return &domain.ConflictError{Resource: "lot", Key: lot.LotCode}
		}
	}
	lot.ID = r.v.s.nextID()
	now := time.Now()
	lot.CreatedAt, lot.UpdatedAt = now, now
	r.v.s.data.lots[lot.ID] = cloneLot(*lot)
	return nil
}

func (r *lotRepo) GetByID(ctx context.Context, id int64) (*domain.CattleLot, error) {
	defer r.v.lock()()
	lot, ok := r.v.s.data.lots[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "lot", ID: id}
	}
	lot = cloneLot(lot)
	return &lot, nil
}

func (r *lotRepo) GetByCode(ctx context.Context, code string) (*domain.CattleLot, error) {
	defer r.v.lock()()
	for _, lot := range r.v.s.data.lots {
		if lot.LotCode == code {
			lot = cloneLot(lot)
			return &lot, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "lot"}
}

func (r *lotRepo) List(ctx context.Context, status domain.LotStatus) ([]*domain.CattleLot, error) {
	defer r.v.lock()()
	var out []*domain.CattleLot
	for _, lot := range r.v.s.data.lots {
		if status != "" && lot.Status != status {
			continue
		}
		lot := cloneLot(lot)
		out = append(out, &lot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *lotRepo) Update(ctx context.Context, lot *domain.CattleLot) error {
	defer r.v.lock()()
	if _, ok := r.v.s.data.lots[lot.ID]; !ok {
		return &domain.NotFoundError{Entity: "lot", ID: lot.ID}
	}
	lot.UpdatedAt = time.Now()
	r.v.s.data.lots[lot.ID] = cloneLot(*lot)
	return nil
}

func (r *lotRepo) Delete(ctx context.Context, id int64) error {
	defer r.v.lock()()
	if _, ok := r.v.s.data.lots[id]; !ok {
		return &domain.NotFoundError{Entity: "lot", ID: id}
	}
	delete(r.v.s.data.lots, id)
	return nil
}

func (r *lotRepo) HighestCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	defer r.v.lock()()
	highest, highestSeq := "", -1
	for _, lot := range r.v.s.data.lots {
		if !strings.HasPrefix(lot.LotCode, prefix) {
			continue
		}
		if seq := domain.LotCodeSequence(prefix, lot.LotCode); seq > highestSeq {
			highest, highestSeq = lot.LotCode, seq
		}
	}
	return highest, nil
}

type penRepo struct{ v *view }

func (r *penRepo) Create(ctx context.Context, pen *domain.Pen) error {
	defer r.v.lock()()
	for _, existing := range r.v.s.data.pens {
		if existing.Code == pen.Code {
			return &domain.ConflictError{Resource: "pen", Key: pen.Code}
		}
	}
	pen.ID = r.v.s.nextID()
	now := time.Now()
	pen.CreatedAt, pen.UpdatedAt = now, now
	if pen.Status == "" {
		pen.Status = domain.PenAvailable
	}
	r.v.s.data.pens[pen.ID] = *pen
	return nil
}

func (r *penRepo) GetByID(ctx context.Context, id int64) (*domain.Pen, error) {
	defer r.v.lock()()
	pen, ok := r.v.s.data.pens[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "pen", ID: id}
	}
	return &pen, nil
}

func (r *penRepo) List(ctx context.Context) ([]*domain.Pen, error) {
	defer r.v.lock()()
	var out []*domain.Pen
	for _, pen := range r.v.s.data.pens {
		pen := pen
		out = append(out, &pen)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *penRepo) UpdateStatus(ctx context.Context, id int64, status domain.PenStatus) error {
	defer r.v.lock()()
	pen, ok := r.v.s.data.pens[id]
	if !ok {
		return &domain.NotFoundError{Entity: "pen", ID: id}
	}
	pen.Status = status
	pen.UpdatedAt = time.Now()
	r.v.s.data.pens[id] = pen
	return nil
}

func (r *penRepo) CreateAllocation(ctx context.Context, alloc *domain.PenAllocation) error {
	defer r.v.lock()()
	alloc.ID = r.v.s.nextID()
	if alloc.Status == "" {
		alloc.Status = domain.AllocationActive
	}
	r.v.s.data.allocations[alloc.ID] = cloneAllocation(*alloc)
	return nil
}

func (r *penRepo) ActiveByPen(ctx context.Context, penID int64) ([]*domain.PenAllocation, error) {
	defer r.v.lock()()
	return r.active(func(a domain.PenAllocation) bool { return a.PenID == penID }), nil
}

func (r *penRepo) ActiveByLot(ctx context.Context, lotID int64) ([]*domain.PenAllocation, error) {
	defer r.v.lock()()
	return r.active(func(a domain.PenAllocation) bool { return a.LotID == lotID }), nil
}

func (r *penRepo) active(match func(domain.PenAllocation) bool) []*domain.PenAllocation {
	var out []*domain.PenAllocation
	for _, a := range r.v.s.data.allocations {
		if a.Status == domain.AllocationActive && match(a) {
			a := cloneAllocation(a)
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *penRepo) ReleaseByLot(ctx context.Context, lotID int64, removedAt time.Time) error {
	defer r.v.lock()()
	for id, a := range r.v.s.data.allocations {
		if a.LotID == lotID && a.Status == domain.AllocationActive {
			a.Status = domain.AllocationRemoved
			a.RemovalDate = &removedAt
			r.v.s.data.allocations[id] = a
		}
	}
	return nil
}

func (r *penRepo) DeleteAllocationsByLot(ctx context.Context, lotID int64) error {
	defer r.v.lock()()
	for id, a := range r.v.s.data.allocations {
		if a.LotID == lotID {
			delete(r.v.s.data.allocations, id)
		}
	}
	return nil
}

type mortalityRepo struct{ v *view }

func (r *mortalityRepo) Create(ctx context.Context, rec *domain.MortalityRecord) error {
	defer r.v.lock()()
	rec.ID = r.v.s.nextID()
	rec.CreatedAt = time.Now()
	r.v.s.data.mortality[rec.ID] = cloneMortality(*rec)
	return nil
}

func (r *mortalityRepo) GetByID(ctx context.Context, id int64) (*domain.MortalityRecord, error) {
	defer r.v.lock()()
	rec, ok := r.v.s.data.mortality[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "mortality record", ID: id}
	}
	rec = cloneMortality(rec)
	return &rec, nil
}

func (r *mortalityRepo) Delete(ctx context.Context, id int64) error {
	defer r.v.lock()()
	if _, ok := r.v.s.data.mortality[id]; !ok {
		return &domain.NotFoundError{Entity: "mortality record", ID: id}
	}
	delete(r.v.s.data.mortality, id)
	return nil
}

func (r *mortalityRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	defer r.v.lock()()
	for id, rec := range r.v.s.data.mortality {
		if rec.LotID == lotID {
			delete(r.v.s.data.mortality, id)
		}
	}
	return nil
}

func (r *mortalityRepo) List(ctx context.Context, filter domain.MortalityFilter) ([]*domain.MortalityRecord, error) {
	defer r.v.lock()()
	var out []*domain.MortalityRecord
	for _, rec := range r.v.s.data.mortality {
		if filter.LotID != nil && rec.LotID != *filter.LotID {
			continue
		}
		if filter.PenID != nil && (rec.PenID == nil || *rec.PenID != *filter.PenID) {
			continue
		}
		if filter.Cause != "" && rec.Cause != filter.Cause {
			continue
		}
		if filter.From != nil && rec.DeathDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !rec.DeathDate.Before(*filter.To) {
			continue
		}
		rec := cloneMortality(rec)
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mortalityRepo) SumLossInWindow(ctx context.Context, from, to time.Time) (float64, error) {
	defer r.v.lock()()
	var total float64
	for _, rec := range r.v.s.data.mortality {
		if !rec.DeathDate.Before(from) && rec.DeathDate.Before(to) {
			total += rec.EstimatedLoss
		}
	}
	return total, nil
}

type financeRepo struct{ v *view }

func (r *financeRepo) Create(ctx context.Context, entry *domain.FinanceEntry) error {
	defer r.v.lock()()
	entry.ID = r.v.s.nextID()
	now := time.Now()
	entry.CreatedAt, entry.UpdatedAt = now, now
	if entry.Status == "" {
		entry.Status = domain.EntryPending
	}
	r.v.s.data.finance[entry.ID] = cloneEntry(*entry)
	return nil
}

func (r *financeRepo) GetByID(ctx context.Context, id int64) (*domain.FinanceEntry, error) {
	defer r.v.lock()()
	entry, ok := r.v.s.data.finance[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "finance entry", ID: id}
	}
	entry = cloneEntry(entry)
	return &entry, nil
}

func (r *financeRepo) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.FinanceEntry, error) {
	defer r.v.lock()()
	var out []*domain.FinanceEntry
	for _, entry := range r.v.s.data.finance {
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if filter.LotID != nil && (entry.LotID == nil || *entry.LotID != *filter.LotID) {
			continue
		}
		if filter.From != nil && entry.DueDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !entry.DueDate.Before(*filter.To) {
			continue
		}
		entry := cloneEntry(entry)
		out = append(out, &entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *financeRepo) UpdateStatus(ctx context.Context, id int64, status domain.EntryStatus, settledAt *time.Time) error {
	defer r.v.lock()()
	entry, ok := r.v.s.data.finance[id]
	if !ok {
		return &domain.NotFoundError{Entity: "finance entry", ID: id}
	}
	entry.Status = status
	entry.SettledDate = settledAt
	entry.UpdatedAt = time.Now()
	r.v.s.data.finance[id] = cloneEntry(entry)
	return nil
}

func (r *financeRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	defer r.v.lock()()
	for id, entry := range r.v.s.data.finance {
		if entry.LotID != nil && *entry.LotID == lotID {
			delete(r.v.s.data.finance, id)
		}
	}
	return nil
}

func (r *financeRepo) ListSettledInWindow(ctx context.Context, from, to time.Time) ([]*domain.FinanceEntry, error) {
	defer r.v.lock()()
	var out []*domain.FinanceEntry
	for _, entry := range r.v.s.data.finance {
		if !entry.Settled() || entry.SettledDate == nil {
			continue
		}
		if entry.SettledDate.Before(from) || !entry.SettledDate.Before(to) {
			continue
		}
		entry := cloneEntry(entry)
		out = append(out, &entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *financeRepo) CountRevenuesByLot(ctx context.Context, lotID int64) (int, error) {
	defer r.v.lock()()
	count := 0
	for _, entry := range r.v.s.data.finance {
		if entry.Kind == domain.KindRevenue && entry.LotID != nil && *entry.LotID == lotID {
			count++
		}
	}
	return count, nil
}

type healthRepo struct{ v *view }

func (r *healthRepo) Create(ctx context.Context, rec *domain.HealthRecord) error {
	defer r.v.lock()()
	rec.ID = r.v.s.nextID()
	r.v.s.data.health[rec.ID] = *rec
	return nil
}

func (r *healthRepo) ListByLot(ctx context.Context, lotID int64) ([]*domain.HealthRecord, error) {
	defer r.v.lock()()
	var out []*domain.HealthRecord
	for _, rec := range r.v.s.data.health {
		if rec.LotID == lotID {
			rec := rec
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *healthRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	defer r.v.lock()()
	for id, rec := range r.v.s.data.health {
		if rec.LotID == lotID {
			delete(r.v.s.data.health, id)
		}
	}
	return nil
}

type weighingRepo struct{ v *view }

func (r *weighingRepo) Create(ctx context.Context, reading *domain.WeightReading) error {
	defer r.v.lock()()
	reading.ID = r.v.s.nextID()
	r.v.s.data.weighings[reading.ID] = *reading
	return nil
}

func (r *weighingRepo) ListByLot(ctx context.Context, lotID int64) ([]*domain.WeightReading, error) {
	defer r.v.lock()()
	var out []*domain.WeightReading
	for _, reading := range r.v.s.data.weighings {
		if reading.LotID == lotID {
			reading := reading
			out = append(out, &reading)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *weighingRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	defer r.v.lock()()
	for id, reading := range r.v.s.data.weighings {
		if reading.LotID == lotID {
			delete(r.v.s.data.weighings, id)
		}
	}
	return nil
}

type dreRepo struct{ v *view }

func (r *dreRepo) GetByMonthCycle(ctx context.Context, month time.Time, cycleID *int64) (*domain.DREStatement, error) {
	defer r.v.lock()()
	for _, st := range r.v.s.data.statements {
		if sameMonth(st.ReferenceMonth, month) && sameCycle(st.CycleID, cycleID) {
			st = cloneStatement(st)
			return &st, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "dre statement"}
}

func (r *dreRepo) Insert(ctx context.Context, st *domain.DREStatement) error {
	defer r.v.lock()()
	for _, existing := range r.v.s.data.statements {
		if sameMonth(existing.ReferenceMonth, st.ReferenceMonth) && sameCycle(existing.CycleID, st.CycleID) {
			return &domain.ConflictError{Resource: "dre statement", Key: dreKey(st.ReferenceMonth, st.CycleID)}
		}
	}
	st.ID = r.v.s.nextID()
	now := time.Now()
	st.CreatedAt, st.UpdatedAt = now, now
	r.v.s.data.statements[st.ID] = cloneStatement(*st)
	return nil
}

func (r *dreRepo) Update(ctx context.Context, st *domain.DREStatement) error {
	defer r.v.lock()()
	if _, ok := r.v.s.data.statements[st.ID]; !ok {
		return &domain.NotFoundError{Entity: "dre statement", ID: st.ID}
	}
	st.UpdatedAt = time.Now()
	r.v.s.data.statements[st.ID] = cloneStatement(*st)
	return nil
}

func (r *dreRepo) List(ctx context.Context, from, to time.Time) ([]*domain.DREStatement, error) {
	defer r.v.lock()()
	var out []*domain.DREStatement
	for _, st := range r.v.s.data.statements {
		if st.ReferenceMonth.Before(from) || !st.ReferenceMonth.Before(to) {
			continue
		}
		st := cloneStatement(st)
		out = append(out, &st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func dreKey(month time.Time, cycleID *int64) string {
	if cycleID == nil {
		return month.Format("2006-01")
	}
	return fmt.Sprintf("%s/cycle-%d", month.Format("2006-01"), *cycleID)
}
