package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rookgm/shopreport/internal/models"
)

// ReportService is interface for accessing report results
type ReportService interface {
	// Latest returns the most recent successful report run
	Latest(ctx context.Context) (*models.ReportResult, error)
}

// ReportHandler represents HTTP handler for report-related requests
type ReportHandler struct {
	svc ReportService
}

// NewReportHandler creates new ReportHandler instance
func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type dailyRowResponse struct {
	Date       string `json:"date"`
	Revenue    string `json:"revenue"`
	Refunds    string `json:"refunds"`
	NetRevenue string `json:"net_revenue"`
	OrderCount int    `json:"order_count"`
}

type dailyReportResponse struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	Rows        []dailyRowResponse `json:"rows"`
}

type summaryResponse struct {
	Revenue     string    `json:"revenue"`
	Refunds     string    `json:"refunds"`
	AdSpend     string    `json:"ad_spend"`
	NetProfit   string    `json:"net_profit"`
	ROAS        string    `json:"roas"`
	LastUpdated time.Time `json:"last_updated"`
	DataRange   string    `json:"data_range"`
}

type exclusionResponse struct {
	OrderID         uint64     `json:"order_id"`
	OrderName       string     `json:"order_name"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	FinancialStatus string     `json:"financial_status"`
	TotalPrice      string     `json:"total_price"`
	ExcludedReason  string     `json:"excluded_reason"`
}

// GetDailyReport returns per-day metric rows of the latest run
// 200 — report is ready.
// 503 — no run has completed yet.
// 500 — internal error.
func (rh *ReportHandler) GetDailyReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, ok := rh.latest(w, r)
		if !ok {
			return
		}

		rows := make([]dailyRowResponse, 0, len(result.Report.Rows))
		for _, row := range result.Report.Rows {
			rows = append(rows, dailyRowResponse{
				Date:       row.Date,
				Revenue:    row.Revenue.StringFixed(2),
				Refunds:    row.Refunds.StringFixed(2),
				NetRevenue: row.NetRevenue.StringFixed(2),
				OrderCount: row.OrderCount,
			})
		}

		writeJSON(w, dailyReportResponse{
			RunID:       result.Report.RunID,
			GeneratedAt: result.Report.GeneratedAt,
			StartDate:   result.Report.StartDate,
			EndDate:     result.Report.EndDate,
			Rows:        rows,
		})
	}
}

// GetSummary returns single-window totals of the latest run
// 200 — report is ready.
// 503 — no run has completed yet.
// 500 — internal error.
func (rh *ReportHandler) GetSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, ok := rh.latest(w, r)
		if !ok {
			return
		}

		s := result.Summary
		writeJSON(w, summaryResponse{
			Revenue:     s.Revenue.StringFixed(2),
			Refunds:     s.Refunds.StringFixed(2),
			AdSpend:     s.AdSpend.StringFixed(2),
			NetProfit:   s.NetProfit.StringFixed(2),
			ROAS:        s.ROAS.StringFixed(2),
			LastUpdated: s.LastUpdated,
			DataRange:   s.DataRange,
		})
	}
}

// GetExclusions returns the exclusion audit of the latest run
// 200 — report is ready.
// 503 — no run has completed yet.
// 500 — internal error.
func (rh *ReportHandler) GetExclusions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, ok := rh.latest(w, r)
		if !ok {
			return
		}

		recs := make([]exclusionResponse, 0, len(result.Exclusions))
		for _, rec := range result.Exclusions {
			recs = append(recs, exclusionResponse{
				OrderID:         rec.OrderID,
				OrderName:       rec.OrderName,
				CreatedAt:       rec.CreatedAt,
				ProcessedAt:     rec.ProcessedAt,
				FinancialStatus: rec.FinancialStatus,
				TotalPrice:      rec.TotalPrice,
				ExcludedReason:  rec.Reason,
			})
		}

		writeJSON(w, recs)
	}
}

func (rh *ReportHandler) latest(w http.ResponseWriter, r *http.Request) (*models.ReportResult, bool) {
	result, err := rh.svc.Latest(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrReportNotReady) {
			http.Error(w, "report is not ready", http.StatusServiceUnavailable)
			return nil, false
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return result, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}
