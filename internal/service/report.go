package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/shopreport/internal/aggregate"
	"github.com/rookgm/shopreport/internal/bucket"
	"github.com/rookgm/shopreport/internal/filter"
	"github.com/rookgm/shopreport/internal/logger"
	"github.com/rookgm/shopreport/internal/models"
	"github.com/rookgm/shopreport/internal/shopify"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// refund attribution modes
const (
	// RefundModeOrderDay adds every refund transaction to its parent
	// order's day
	RefundModeOrderDay = "order_day"
	// RefundModeRefundDay buckets each refund transaction by its own
	// created_at
	RefundModeRefundDay = "refund_day"
)

// OrdersFetcher is interface for fetching order data from the store
type OrdersFetcher interface {
	// FetchOrders returns the full order sequence for the query
	FetchOrders(ctx context.Context, q shopify.OrderQuery) ([]models.Order, error)
	// FetchOrderRefunds returns refunds of an order when they are not
	// embedded in the order payload
	FetchOrderRefunds(ctx context.Context, orderID uint64) ([]models.Refund, error)
}

// ReportPolicy carries the business policy of one deployment
type ReportPolicy struct {
	Filter       filter.Policy
	Location     *time.Location
	Window       bucket.Window
	RefundMode   string
	PreFill      bool
	FetchRefunds bool
	AdSpend      decimal.Decimal
	Status       string
	PageSize     int
	Cap          int
}

// ReportService runs the fetch, filter, bucket and aggregate pipeline
type ReportService struct {
	fetcher OrdersFetcher
	policy  ReportPolicy

	mu   sync.RWMutex
	last *models.ReportResult
}

// NewReportService creates new ReportService instance
func NewReportService(fetcher OrdersFetcher, policy ReportPolicy) *ReportService {
	return &ReportService{
		fetcher: fetcher,
		policy:  policy,
	}
}

// BuildReport runs the pipeline once and keeps the result as the latest
// successful run. Records are processed strictly sequentially.
func (rs *ReportService) BuildReport(ctx context.Context) (*models.ReportResult, error) {
	runID := uuid.NewString()

	logger.Log.Info("building report",
		zap.String("run_id", runID),
		zap.String("window", rs.policy.Window.StartKey()+".."+rs.policy.Window.EndKey()))

	// orders arrive newest first so pagination can stop at the window
	// start. Records exactly at local midnight of the first day must stay,
	// the cutoff sits just before it.
	cutoff := rs.policy.Window.StartTime().Add(-time.Nanosecond)
	q := shopify.OrderQuery{
		Status:    rs.policy.Status,
		PageSize:  rs.policy.PageSize,
		SortField: rs.policy.Filter.AnchorField,
		SortDesc:  true,
		Cap:       rs.policy.Cap,
		Cutoff:    &cutoff,
	}

	orders, err := rs.fetcher.FetchOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("orders fetched", zap.String("run_id", runID), zap.Int("count", len(orders)))

	agg := aggregate.New()
	if rs.policy.PreFill {
		agg.PreFill(rs.policy.Window)
	}

	exclusions := []models.ExclusionRecord{}
	for i := range orders {
		o := &orders[i]

		res := filter.Classify(o, rs.policy.Filter)
		if !res.Include {
			exclusions = append(exclusions, exclusionFor(o, res.Reason))
			continue
		}

		anchor := filter.Anchor(o, rs.policy.Filter.AnchorField)
		key, ok := bucket.Bucket(*anchor, rs.policy.Location, rs.policy.Window)
		if !ok {
			// outside the reporting window, not an exclusion
			continue
		}

		price, err := decimal.NewFromString(o.TotalPrice)
		if err != nil {
			// guarded by the filter, but never trust upstream money
			exclusions = append(exclusions, exclusionFor(o, filter.ReasonMalformedPrice))
			continue
		}
		agg.AddOrder(key, price)

		refunds := o.Refunds
		if refunds == nil && rs.policy.FetchRefunds {
			refunds, err = rs.fetcher.FetchOrderRefunds(ctx, o.ID)
			if err != nil {
				return nil, err
			}
		}
		rs.addRefunds(agg, key, refunds)
	}

	rows := agg.Snapshot()
	dailyReport := models.DailyReport{
		RunID:       runID,
		GeneratedAt: time.Now(),
		StartDate:   rs.policy.Window.StartKey(),
		EndDate:     rs.policy.Window.EndKey(),
		Rows:        rows,
	}

	result := &models.ReportResult{
		Report:     dailyReport,
		Summary:    summarize(dailyReport, rs.policy.AdSpend),
		Exclusions: exclusions,
	}

	rs.mu.Lock()
	rs.last = result
	rs.mu.Unlock()

	logger.Log.Info("report is ready",
		zap.String("run_id", runID),
		zap.Int("days", len(rows)),
		zap.Int("excluded", len(exclusions)))

	return result, nil
}

// addRefunds applies the refund attribution policy to the order's refund
// transactions. orderKey is the parent order's day key.
func (rs *ReportService) addRefunds(agg *aggregate.Aggregator, orderKey string, refunds []models.Refund) {
	for _, r := range refunds {
		for _, tx := range r.Transactions {
			if tx.Kind != models.TransactionKindRefund {
				continue
			}
			amount, err := decimal.NewFromString(tx.Amount)
			if err != nil {
				logger.Log.Warn("skipping refund transaction with malformed amount",
					zap.Uint64("transaction_id", tx.ID))
				continue
			}

			if rs.policy.RefundMode == RefundModeRefundDay {
				if tx.CreatedAt == nil {
					continue
				}
				key, ok := bucket.Bucket(*tx.CreatedAt, rs.policy.Location, rs.policy.Window)
				if !ok {
					continue
				}
				agg.AddRefund(key, amount)
				continue
			}

			agg.AddRefund(orderKey, amount)
		}
	}
}

// Latest returns the most recent successful run
func (rs *ReportService) Latest(ctx context.Context) (*models.ReportResult, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	if rs.last == nil {
		return nil, models.ErrReportNotReady
	}
	return rs.last, nil
}

func exclusionFor(o *models.Order, reason string) models.ExclusionRecord {
	return models.ExclusionRecord{
		OrderID:         o.ID,
		OrderName:       o.Name,
		CreatedAt:       o.CreatedAt,
		ProcessedAt:     o.ProcessedAt,
		FinancialStatus: o.FinancialStatus,
		TotalPrice:      o.TotalPrice,
		Reason:          reason,
	}
}

func summarize(r models.DailyReport, adSpend decimal.Decimal) models.ReportSummary {
	revenue := decimal.Zero
	refunds := decimal.Zero
	for _, row := range r.Rows {
		revenue = revenue.Add(row.Revenue)
		refunds = refunds.Add(row.Refunds)
	}

	roas := decimal.Zero
	if adSpend.IsPositive() {
		roas = revenue.Div(adSpend).Round(2)
	}

	return models.ReportSummary{
		Revenue:     revenue,
		Refunds:     refunds,
		AdSpend:     adSpend,
		NetProfit:   revenue.Sub(refunds).Sub(adSpend),
		ROAS:        roas,
		LastUpdated: r.GeneratedAt,
		DataRange:   r.StartDate + " - " + r.EndDate,
	}
}
