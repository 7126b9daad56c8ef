package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository"
)

// adminRepository holds the tables maintained by hand through the admin API:
// channel cost structures and monthly payroll.
type adminRepository struct {
	db *DB
}

var (
	_ repository.ChannelCostRepository = (*adminRepository)(nil)
	_ repository.LaborRecordRepository = (*adminRepository)(nil)
)

func NewAdminRepository(db *DB) *adminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) ListChannelCosts(ctx context.Context) ([]domain.ChannelCostSummary, error) {
	query := fmt.Sprintf("SELECT %s FROM channel_costs ORDER BY channel_name", strings.Join(channelCostColumns, ", "))
	var rows []domain.ChannelCostSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list channel costs: %w", err)
	}
	return rows, nil
}

func (r *adminRepository) GetChannelCost(ctx context.Context, channel string) (*domain.ChannelCostSummary, error) {
	query := fmt.Sprintf("SELECT %s FROM channel_costs WHERE LOWER(channel_name) = LOWER($1)", strings.Join(channelCostColumns, ", "))
	var row domain.ChannelCostSummary
	err := r.db.GetContext(ctx, &row, query, strings.TrimSpace(channel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel cost %s: %w", channel, err)
	}
	return &row, nil
}

func (r *adminRepository) UpsertChannelCosts(ctx context.Context, costs []domain.ChannelCostSummary) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return upsertChannelCosts(ctx, tx, costs)
	})
}

func (r *adminRepository) ListLaborRecords(ctx context.Context, fromMonth, toMonth string) ([]domain.LaborRecord, error) {
	where, args := buildMonthRangeClause("month", fromMonth, toMonth)
	query := fmt.Sprintf("SELECT %s FROM labor_records%s ORDER BY month, department", strings.Join(laborColumns, ", "), where)
	var rows []domain.LaborRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list labor records: %w", err)
	}
	return rows, nil
}

func (r *adminRepository) UpsertLaborRecords(ctx context.Context, records []domain.LaborRecord) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return upsertLaborRecords(ctx, tx, records)
	})
}

func upsertChannelCosts(ctx context.Context, tx *sqlx.Tx, costs []domain.ChannelCostSummary) error {
	query := insertQuery("channel_costs", channelCostColumns, `ON CONFLICT (channel_name) DO UPDATE SET
		total_variable_rate_pct = EXCLUDED.total_variable_rate_pct,
		total_variable_per_order = EXCLUDED.total_variable_per_order,
		total_fixed_monthly = EXCLUDED.total_fixed_monthly,
		discount_rate = EXCLUDED.discount_rate,
		commission_rate = EXCLUDED.commission_rate,
		updated_at = NOW()`)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range costs {
		_, err := stmt.ExecContext(ctx,
			strings.TrimSpace(c.ChannelName),
			c.TotalVariableRatePct,
			c.TotalVariablePerOrder,
			c.TotalFixedMonthly,
			c.DiscountRate,
			c.CommissionRate,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert channel cost %s: %w", c.ChannelName, err)
		}
	}
	return nil
}

func upsertLaborRecords(ctx context.Context, tx *sqlx.Tx, records []domain.LaborRecord) error {
	query := insertQuery("labor_records", laborColumns, `ON CONFLICT (month, department) DO UPDATE SET
		headcount = EXCLUDED.headcount,
		total_cost = EXCLUDED.total_cost,
		updated_at = NOW()`)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range records {
		if _, err := stmt.ExecContext(ctx, strings.TrimSpace(l.Month), l.Department, l.Headcount, l.TotalCost); err != nil {
			return fmt.Errorf("failed to upsert labor record %s/%s: %w", l.Month, l.Department, err)
		}
	}
	return nil
}
