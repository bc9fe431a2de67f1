package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyMetrics is one aggregated calendar-day row.
// Values are rounded to two digits at snapshot time.
type DailyMetrics struct {
	Date       string
	Revenue    decimal.Decimal
	Refunds    decimal.Decimal
	NetRevenue decimal.Decimal
	OrderCount int
}

// DailyReport is the outcome of one pipeline run
type DailyReport struct {
	RunID       string
	GeneratedAt time.Time
	StartDate   string
	EndDate     string
	Rows        []DailyMetrics
}

// ReportSummary is single-window totals for the aggregate report artifact
type ReportSummary struct {
	Revenue     decimal.Decimal
	Refunds     decimal.Decimal
	AdSpend     decimal.Decimal
	NetProfit   decimal.Decimal
	ROAS        decimal.Decimal
	LastUpdated time.Time
	DataRange   string
}

// ExclusionRecord describes an order dropped by the filter, kept for audit
type ExclusionRecord struct {
	OrderID         uint64
	OrderName       string
	CreatedAt       *time.Time
	ProcessedAt     *time.Time
	FinancialStatus string
	TotalPrice      string
	Reason          string
}

// ReportResult bundles everything a single run produces
type ReportResult struct {
	Report     DailyReport
	Summary    ReportSummary
	Exclusions []ExclusionRecord
}
