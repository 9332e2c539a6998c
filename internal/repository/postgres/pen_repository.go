package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type penRepo struct {
	q sqlx.ExtContext
}

func (r *penRepo) Create(ctx context.Context, pen *domain.Pen) error {
	if pen.Status == "" {
		pen.Status = domain.PenAvailable
	}
	query := `
		INSERT INTO pens (code, capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	row := r.q.QueryRowxContext(ctx, query, pen.Code, pen.Capacity, pen.Status)
	if err := row.Scan(&pen.ID, &pen.CreatedAt, &pen.UpdatedAt); err != nil {
		return conflict(fmt.Errorf("failed to insert pen: %w", err), "pen", pen.Code)
	}
	return nil
}

func (r *penRepo) GetByID(ctx context.Context, id int64) (*domain.Pen, error) {
	var pen domain.Pen
	query := `SELECT id, code, capacity, status, created_at, updated_at FROM pens WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.q, &pen, query, id); err != nil {
		return nil, notFound(fmt.Errorf("failed to get pen: %w", err), "pen", id)
	}
	return &pen, nil
}

func (r *penRepo) List(ctx context.Context) ([]*domain.Pen, error) {
	var pens []*domain.Pen
	query := `SELECT id, code, capacity, status, created_at, updated_at FROM pens ORDER BY code`
	if err := sqlx.SelectContext(ctx, r.q, &pens, query); err != nil {
		return nil, fmt.Errorf("failed to list pens: %w", err)
	}
	return pens, nil
}

func (r *penRepo) UpdateStatus(ctx context.Context, id int64, status domain.PenStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE pens SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update pen status: %w", err)
	}
	return ensureAffected(res, "pen", id)
}

const allocationColumns = `
	id, lot_id, pen_id, quantity, percentage_of_lot, percentage_of_pen,
	allocation_date, removal_date, status`

func (r *penRepo) CreateAllocation(ctx context.Context, alloc *domain.PenAllocation) error {
	if alloc.Status == "" {
		alloc.Status = domain.AllocationActive
	}
	query := `
		INSERT INTO pen_allocations (
			lot_id, pen_id, quantity, percentage_of_lot, percentage_of_pen,
			allocation_date, removal_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	row := r.q.QueryRowxContext(ctx, query,
		alloc.LotID, alloc.PenID, alloc.Quantity,
		alloc.PercentageOfLot, alloc.PercentageOfPen,
		alloc.AllocationDate, alloc.RemovalDate, alloc.Status,
	)
	if err := row.Scan(&alloc.ID); err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	return nil
}

func (r *penRepo) ActiveByPen(ctx context.Context, penID int64) ([]*domain.PenAllocation, error) {
	query := `SELECT` + allocationColumns + `
		FROM pen_allocations WHERE pen_id = $1 AND status = $2 ORDER BY id`
	var out []*domain.PenAllocation
	if err := sqlx.SelectContext(ctx, r.q, &out, query, penID, domain.AllocationActive); err != nil {
		return nil, fmt.Errorf("failed to list pen allocations: %w", err)
	}
	return out, nil
}

func (r *penRepo) ActiveByLot(ctx context.Context, lotID int64) ([]*domain.PenAllocation, error) {
	query := `SELECT` + allocationColumns + `
		FROM pen_allocations WHERE lot_id = $1 AND status = $2 ORDER BY id`
	var out []*domain.PenAllocation
	if err := sqlx.SelectContext(ctx, r.q, &out, query, lotID, domain.AllocationActive); err != nil {
		return nil, fmt.Errorf("failed to list lot allocations: %w", err)
	}
	return out, nil
}

func (r *penRepo) ReleaseByLot(ctx context.Context, lotID int64, removedAt time.Time) error {
	query := `
		UPDATE pen_allocations
		SET status = $3, removal_date = $2
		WHERE lot_id = $1 AND status = $4
	`
	if _, err := r.q.ExecContext(ctx, query, lotID, removedAt,
		domain.AllocationRemoved, domain.AllocationActive); err != nil {
		return fmt.Errorf("failed to release allocations: %w", err)
	}
	return nil
}

func (r *penRepo) DeleteAllocationsByLot(ctx context.Context, lotID int64) error {
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM pen_allocations WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	return nil
}
