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

type financeRepo struct {
	q sqlx.ExtContext
}

const entryColumns = `
	id, kind, category, description, amount, due_date, settled_date, status,
	lot_id, payer_account_id, created_at, updated_at`

func (r *financeRepo) Create(ctx context.Context, entry *domain.FinanceEntry) error {
	if entry.Status == "" {
		entry.Status = domain.EntryPending
	}
	query := `
		INSERT INTO finance_entries (
			kind, category, description, amount, due_date, settled_date, status,
			lot_id, payer_account_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	row := r.q.QueryRowxContext(ctx, query,
		entry.Kind, entry.Category, entry.Description, entry.Amount,
		entry.DueDate, entry.SettledDate, entry.Status,
		entry.LotID, entry.PayerAccountID,
	)
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert finance entry: %w", err)
	}
	return nil
}

func (r *financeRepo) GetByID(ctx context.Context, id int64) (*domain.FinanceEntry, error) {
	var entry domain.FinanceEntry
	query := `SELECT` + entryColumns + ` FROM finance_entries WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.q, &entry, query, id); err != nil {
		return nil, notFound(fmt.Errorf("failed to get finance entry: %w", err), "finance entry", id)
	}
	return &entry, nil
}

func (r *financeRepo) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.FinanceEntry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}
	if filter.Kind != "" {
		add("kind =", filter.Kind)
	}
	if filter.Status != "" {
		add("status =", filter.Status)
	}
	if filter.LotID != nil {
		add("lot_id =", *filter.LotID)
	}
	if filter.From != nil {
		add("due_date >=", *filter.From)
	}
	if filter.To != nil {
		add("due_date <", *filter.To)
	}

	query := `SELECT` + entryColumns + ` FROM finance_entries`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY due_date, id`

	var out []*domain.FinanceEntry
	if err := sqlx.SelectContext(ctx, r.q, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list finance entries: %w", err)
	}
	return out, nil
}

func (r *financeRepo) UpdateStatus(ctx context.Context, id int64, status domain.EntryStatus, settledAt *time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE finance_entries
		SET status = $2, settled_date = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, settledAt)
	if err != nil {
		return fmt.Errorf("failed to update finance entry status: %w", err)
	}
	return ensureAffected(res, "finance entry", id)
}

func (r *financeRepo) DeleteByLot(ctx context.Context, lotID int64) error {
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM finance_entries WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("failed to delete finance entries: %w", err)
	}
	return nil
}

func (r *financeRepo) ListSettledInWindow(ctx context.Context, from, to time.Time) ([]*domain.FinanceEntry, error) {
	query := `SELECT` + entryColumns + `
		FROM finance_entries
		WHERE status IN ($1, $2) AND settled_date >= $3 AND settled_date < $4
		ORDER BY settled_date, id`
	var out []*domain.FinanceEntry
	if err := sqlx.SelectContext(ctx, r.q, &out, query,
		domain.EntryPaid, domain.EntryReceived, from, to); err != nil {
		return nil, fmt.Errorf("failed to list settled entries: %w", err)
	}
	return out, nil
}

func (r *financeRepo) CountRevenuesByLot(ctx context.Context, lotID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM finance_entries WHERE lot_id = $1 AND kind = $2`
	if err := sqlx.GetContext(ctx, r.q, &count, query, lotID, domain.KindRevenue); err != nil {
		return 0, fmt.Errorf("failed to count lot revenues: %w", err)
	}
	return count, nil
}
