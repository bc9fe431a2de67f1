package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/shopreport/internal/models"
)

const (
	upsertDailySummaryQuery = `
						INSERT INTO daily_summary (report_date, revenue, refunds, net_revenue, order_count, run_id, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, now())
						ON CONFLICT (report_date) DO UPDATE
						SET revenue = EXCLUDED.revenue,
						    refunds = EXCLUDED.refunds,
						    net_revenue = EXCLUDED.net_revenue,
						    order_count = EXCLUDED.order_count,
						    run_id = EXCLUDED.run_id,
						    updated_at = now()
`
)

// TxBeginner starts database transactions
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MetricsRepository persists report snapshots
type MetricsRepository struct {
	db TxBeginner
}

// NewMetricsRepository creates new MetricsRepository instance
func NewMetricsRepository(db TxBeginner) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// SaveSnapshot upserts every row of a finished run into daily_summary.
// Rows commit atomically, a failed run leaves the prior snapshot intact.
func (mr *MetricsRepository) SaveSnapshot(ctx context.Context, report *models.DailyReport) error {
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, row := range report.Rows {
		_, err := tx.Exec(ctx, upsertDailySummaryQuery,
			row.Date, row.Revenue, row.Refunds, row.NetRevenue, row.OrderCount, report.RunID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
