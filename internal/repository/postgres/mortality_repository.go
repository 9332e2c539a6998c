package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type mortalityRepo struct {
	q sqlx.ExtContext
}

const mortalityColumns = `
	id, lot_id, pen_id, quantity, death_date, cause, estimated_loss, notes, created_at`

func (r *mortalityRepo) Create(ctx context.Context, rec *domain.MortalityRecord) error {
	query := `
		INSERT INTO mortality_records (
			lot_id, pen_id, quantity, death_date, cause, estimated_loss, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`
	row := r.q.QueryRowxContext(ctx, query,
		rec.LotID, rec.PenID, rec.Quantity, rec.DeathDate,
		rec.Cause, rec.EstimatedLoss, rec.Notes,
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert mortality record: %w", err)
	}
	return nil
}

func (r *mortalityRepo) GetByID(ctx context.Context, id int64) (*domain.MortalityRecord, error) {
	var rec domain.MortalityRecord
	query := `SELECT` + mortalityColumns + ` FROM mortality_records WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.q, &rec, query, id); err != nil {
		return nil, notFound(fmt.Errorf("failed to get mortality record: %w", err), "mortality record", id)
	}
	return &rec, nil
}

func (r *mortalityRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM mortality_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mortality record: %w", err)
	}
	return ensureAffected(res, "mortality record", id)
}

func (r *mortalityRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM mortality_records WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("failed to delete mortality records for lot: %w", err)
	}
	return nil
}

func (r *mortalityRepo) List(ctx context.Context, filter domain.MortalityFilter) ([]*domain.MortalityRecord, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}
	if filter.LotID != nil {
		add("lot_id =", *filter.LotID)
	}
	if filter.PenID != nil {
		add("pen_id =", *filter.PenID)
	}
	if filter.Cause != "" {
		add("cause =", filter.Cause)
	}
	if filter.From != nil {
		add("death_date >=", *filter.From)
	}
	if filter.To != nil {
		add("death_date <", *filter.To)
	}

	query := `SELECT` + mortalityColumns + ` FROM mortality_records`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY death_date, id`

	var out []*domain.MortalityRecord
	if err := sqlx.SelectContext(ctx, r.q, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list mortality records: %w", err)
	}
	return out, nil
}

func (r *mortalityRepo) SumLossInWindow(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(estimated_loss), 0)
		FROM mortality_records
		WHERE death_date >= $1 AND death_date < $2
	`
	if err := sqlx.GetContext(ctx, r.q, &total, query, from, to); err != nil {
		return 0, fmt.Errorf("failed to sum mortality losses: %w", err)
	}
	return total, nil
}
