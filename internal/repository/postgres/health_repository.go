package postgres

import (
	"context"
	"fmt"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type healthRepo struct {
	q sqlx.ExtContext
}

func (r *healthRepo) Create(ctx context.Context, rec *domain.HealthRecord) error {
	query := `
		INSERT INTO health_records (
			lot_id, protocol, cost_per_animal, quantity, total_cost, applied_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	row := r.q.QueryRowxContext(ctx, query,
		rec.LotID, rec.Protocol, rec.CostPerAnimal, rec.Quantity, rec.TotalCost, rec.AppliedAt)
	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("failed to insert health record: %w", err)
	}
	return nil
}

func (r *healthRepo) ListByLot(ctx context.Context, lotID int64) ([]*domain.HealthRecord, error) {
	query := `
		SELECT id, lot_id, protocol, cost_per_animal, quantity, total_cost, applied_at
		FROM health_records WHERE lot_id = $1 ORDER BY applied_at, id
	`
	var out []*domain.HealthRecord
	if err := sqlx.SelectContext(ctx, r.q, &out, query, lotID); err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}
	return out, nil
}

func (r *healthRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM health_records WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("failed to delete health records: %w", err)
	}
	return nil
}

type weighingRepo struct {
	q sqlx.ExtContext
}

func (r *weighingRepo) Create(ctx context.Context, reading *domain.WeightReading) error {
	query := `
		INSERT INTO weight_readings (
			lot_id, total_weight, quantity, average_weight, measured_at, source
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	row := r.q.QueryRowxContext(ctx, query,
		reading.LotID, reading.TotalWeight, reading.Quantity,
		reading.AverageWeight, reading.MeasuredAt, reading.Source)
	if err := row.Scan(&reading.ID); err != nil {
		return fmt.Errorf("failed to insert weight reading: %w", err)
	}
	return nil
}

func (r *weighingRepo) ListByLot(ctx context.Context, lotID int64) ([]*domain.WeightReading, error) {
	query := `
		SELECT id, lot_id, total_weight, quantity, average_weight, measured_at, source
		FROM weight_readings WHERE lot_id = $1 ORDER BY measured_at, id
	`
	var out []*domain.WeightReading
	if err := sqlx.SelectContext(ctx, r.q, &out, query, lotID); err != nil {
		return nil, fmt.Errorf("failed to list weight readings: %w", err)
	}
	return out, nil
}

func (r *weighingRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM weight_readings WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("failed to delete weight readings: %w", err)
	}
	return nil
}
