package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type lotRepo struct {
	q sqlx.ExtContext
}

const lotColumns = `
	id, lot_code, vendor_id, payer_account_id, cycle_id, status,
	initial_quantity, current_quantity, death_count,
	purchase_weight, received_weight, average_weight,
	carcass_yield, price_per_arroba, purchase_value, freight_cost, commission,
	health_cost, feed_cost, operational_cost, total_cost,
	expected_gmd, target_weight, estimated_slaughter_date,
	weight_break, weight_break_pct, weight_break_source,
	transport_loss, transport_loss_source,
	purchase_date, reception_date, created_at, updated_at`

func (r *lotRepo) Create(ctx context.Context, lot *domain.CattleLot) error {
	query := `
		INSERT INTO lots (
			lot_code, vendor_id, payer_account_id, cycle_id, status,
			initial_quantity, current_quantity, death_count,
			purchase_weight, received_weight, average_weight,
			carcass_yield, price_per_arroba, purchase_value, freight_cost, commission,
			health_cost, feed_cost, operational_cost, total_cost,
			expected_gmd, target_weight, estimated_slaughter_date,
			weight_break, weight_break_pct, weight_break_source,
			transport_loss, transport_loss_source,
			purchase_date, reception_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, NOW(), NOW()
		)
		RETURNING id, created_at, updated_at
	`
	row := r.q.QueryRowxContext(ctx, query,
		lot.LotCode, lot.VendorID, lot.PayerAccountID, lot.CycleID, lot.Status,
		lot.InitialQuantity, lot.CurrentQuantity, lot.DeathCount,
		lot.PurchaseWeight, lot.ReceivedWeight, lot.AverageWeight,
		lot.CarcassYield, lot.PricePerArroba, lot.PurchaseValue, lot.FreightCost, lot.Commission,
		lot.HealthCost, lot.FeedCost, lot.OperationalCost, lot.TotalCost,
		lot.ExpectedGMD, lot.TargetWeight, lot.EstimatedSlaughterDate,
		lot.WeightBreak, lot.WeightBreakPct, lot.WeightBreakSource,
		lot.TransportLoss, lot.TransportLossSource,
		lot.PurchaseDate, lot.ReceptionDate,
	)
	if err := row.Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt); err != nil {
		return conflict(fmt.Errorf("failed to insert lot: %w", err), "lot", lot.LotCode)
	}
	return nil
}

func (r *lotRepo) GetByID(ctx context.Context, id int64) (*domain.CattleLot, error) {
	var lot domain.CattleLot
	query := `SELECT` + lotColumns + ` FROM lots WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.q, &lot, query, id); err != nil {
		return nil, notFound(fmt.Errorf("failed to get lot: %w", err), "lot", id)
	}
	return &lot, nil
}

func (r *lotRepo) GetByCode(ctx context.Context, code string) (*domain.CattleLot, error) {
	var lot domain.CattleLot
	query := `SELECT` + lotColumns + ` FROM lots WHERE lot_code = $1`
	if err := sqlx.GetContext(ctx, r.q, &lot, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "lot"}
		}
		return nil, fmt.Errorf("failed to get lot by code: %w", err)
	}
	return &lot, nil
}

func (r *lotRepo) List(ctx context.Context, status domain.LotStatus) ([]*domain.CattleLot, error) {
	query := `SELECT` + lotColumns + ` FROM lots`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	var lots []*domain.CattleLot
	if err := sqlx.SelectContext(ctx, r.q, &lots, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	return lots, nil
}

func (r *lotRepo) Update(ctx context.Context, lot *domain.CattleLot) error {
	query := `
		UPDATE lots SET
			status = $2, current_quantity = $3, death_count = $4,
			received_weight = $5, average_weight = $6,
			purchase_value = $7, freight_cost = $8, commission = $9,
			health_cost = $10, feed_cost = $11, operational_cost = $12, total_cost = $13,
			expected_gmd = $14, target_weight = $15, estimated_slaughter_date = $16,
			weight_break = $17, weight_break_pct = $18, weight_break_source = $19,
			transport_loss = $20, transport_loss_source = $21,
			reception_date = $22, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		lot.ID, lot.Status, lot.CurrentQuantity, lot.DeathCount,
		lot.ReceivedWeight, lot.AverageWeight,
		lot.PurchaseValue, lot.FreightCost, lot.Commission,
		lot.HealthCost, lot.FeedCost, lot.OperationalCost, lot.TotalCost,
		lot.ExpectedGMD, lot.TargetWeight, lot.EstimatedSlaughterDate,
		lot.WeightBreak, lot.WeightBreakPct, lot.WeightBreakSource,
		lot.TransportLoss, lot.TransportLossSource,
		lot.ReceptionDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}
	return ensureAffected(res, "lot", lot.ID)
}

func (r *lotRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lot: %w", err)
	}
	return ensureAffected(res, "lot", id)
}

func (r *lotRepo) HighestCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	// Suffixes are zero padded to three digits but grow past 999, so a plain
	// lexical sort would rank 999 above 1000. Longer suffix wins first.
	var code string
	query := `
		SELECT lot_code FROM lots
		WHERE lot_code LIKE $1 || '%'
		ORDER BY length(lot_code) DESC, lot_code DESC
		LIMIT 1
	`
	err := sqlx.GetContext(ctx, r.q, &code, query, prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find highest lot code: %w", err)
	}
	return code, nil
}

func ensureAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
