package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type dreRepo struct {
	q sqlx.ExtContext
}

const dreColumns = `
	id, reference_month, cycle_id,
	gross_revenue, deductions, net_revenue,
	animal_cost, feed_cost, health_cost, labor_cost, other_costs, total_costs,
	gross_profit, gross_margin,
	admin_expenses, sales_expenses, financial_expenses, other_expenses, total_expenses,
	operational_profit, operational_margin, net_profit, net_margin,
	generated_at, created_at, updated_at`

// Uniqueness on (reference_month, cycle_id) is enforced by two partial
// unique indexes, one for NULL cycles and one for concrete ones, so a
// cycle-less statement and a cycle-scoped one coexist for the same month.
func (r *dreRepo) GetByMonthCycle(ctx context.Context, month time.Time, cycleID *int64) (*domain.DREStatement, error) {
	query := `SELECT` + dreColumns + `
		FROM dre_statements
		WHERE reference_month = $1 AND cycle_id IS NOT DISTINCT FROM $2`
	var st domain.DREStatement
	if err := sqlx.GetContext(ctx, r.q, &st, query, monthStart(month), cycleID); err != nil {
		return nil, notFound(fmt.Errorf("failed to get dre statement: %w", err), "dre statement", 0)
	}
	return &st, nil
}

func (r *dreRepo) Insert(ctx context.Context, st *domain.DREStatement) error {
	st.ReferenceMonth = monthStart(st.ReferenceMonth)
	query := `
		INSERT INTO dre_statements (
			reference_month, cycle_id,
			gross_revenue, deductions, net_revenue,
			animal_cost, feed_cost, health_cost, labor_cost, other_costs, total_costs,
			gross_profit, gross_margin,
			admin_expenses, sales_expenses, financial_expenses, other_expenses, total_expenses,
			operational_profit, operational_margin, net_profit, net_margin,
			generated_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, NOW(), NOW()
		)
		RETURNING id, created_at, updated_at
	`
	row := r.q.QueryRowxContext(ctx, query,
		st.ReferenceMonth, st.CycleID,
		st.GrossRevenue, st.Deductions, st.NetRevenue,
		st.AnimalCost, st.FeedCost, st.HealthCost, st.LaborCost, st.OtherCosts, st.TotalCosts,
		st.GrossProfit, st.GrossMargin,
		st.AdminExpenses, st.SalesExpenses, st.FinancialExpenses, st.OtherExpenses, st.TotalExpenses,
		st.OperationalProfit, st.OperationalMargin, st.NetProfit, st.NetMargin,
		st.GeneratedAt,
	)
	if err := row.Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt); err != nil {
		key := st.ReferenceMonth.Format("2006-01")
		if st.CycleID != nil {
			key = fmt.Sprintf("%s/cycle-%d", key, *st.CycleID)
		}
		return conflict(fmt.Errorf("failed to insert dre statement: %w", err), "dre statement", key)
	}
	return nil
}

func (r *dreRepo) Update(ctx context.Context, st *domain.DREStatement) error {
	query := `
		UPDATE dre_statements SET
			gross_revenue = $2, deductions = $3, net_revenue = $4,
			animal_cost = $5, feed_cost = $6, health_cost = $7, labor_cost = $8,
			other_costs = $9, total_costs = $10,
			gross_profit = $11, gross_margin = $12,
			admin_expenses = $13, sales_expenses = $14, financial_expenses = $15,
			other_expenses = $16, total_expenses = $17,
			operational_profit = $18, operational_margin = $19,
			net_profit = $20, net_margin = $21,
			generated_at = $22, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		st.ID,
		st.GrossRevenue, st.Deductions, st.NetRevenue,
		st.AnimalCost, st.FeedCost, st.HealthCost, st.LaborCost,
		st.OtherCosts, st.TotalCosts,
		st.GrossProfit, st.GrossMargin,
		st.AdminExpenses, st.SalesExpenses, st.FinancialExpenses,
		st.OtherExpenses, st.TotalExpenses,
		st.OperationalProfit, st.OperationalMargin,
		st.NetProfit, st.NetMargin,
		st.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update dre statement: %w", err)
	}
	return ensureAffected(res, "dre statement", st.ID)
}

func (r *dreRepo) List(ctx context.Context, from, to time.Time) ([]*domain.DREStatement, error) {
	query := `SELECT` + dreColumns + `
		FROM dre_statements
		WHERE reference_month >= $1 AND reference_month < $2
		ORDER BY reference_month, cycle_id NULLS FIRST`
	var out []*domain.DREStatement
	if err := sqlx.SelectContext(ctx, r.q, &out, query, monthStart(from), monthStart(to)); err != nil {
		return nil, fmt.Errorf("failed to list dre statements: %w", err)
	}
	return out, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
