package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rookgm/shopreport/internal/models"
)

// WriteDaily writes the per-day report artifact
func WriteDaily(path string, rows []models.DailyMetrics) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"date", "revenue", "refunds", "net_revenue", "order_count"}); err != nil {
			return err
		}
		for _, row := range rows {
			rec := []string{
				row.Date,
				row.Revenue.StringFixed(2),
				row.Refunds.StringFixed(2),
				row.NetRevenue.StringFixed(2),
				strconv.Itoa(row.OrderCount),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummary writes the single-window aggregate artifact
func WriteSummary(path string, s models.ReportSummary) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		records := [][]string{
			{"metric", "value"},
			{"revenue", s.Revenue.StringFixed(2)},
			{"refunds", s.Refunds.StringFixed(2)},
			{"ad_spend", s.AdSpend.StringFixed(2)},
			{"net_profit", s.NetProfit.StringFixed(2)},
			{"roas", s.ROAS.StringFixed(2)},
			{"last_updated", s.LastUpdated.Format(time.RFC3339)},
			{"data_range", s.DataRange},
		}
		return w.WriteAll(records)
	})
}

// WriteExclusions writes the exclusion audit artifact
func WriteExclusions(path string, recs []models.ExclusionRecord) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		header := []string{"order_id", "order_name", "created_at", "processed_at", "financial_status", "total_price", "excluded_reason"}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, rec := range recs {
			row := []string{
				strconv.FormatUint(rec.OrderID, 10),
				rec.OrderName,
				formatTime(rec.CreatedAt),
				formatTime(rec.ProcessedAt),
				rec.FinancialStatus,
				rec.TotalPrice,
				rec.Reason,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// writeAtomic writes the artifact to a temp file and renames it into place,
// so a failed run never leaves a partial file behind
func writeAtomic(path string, write func(w *csv.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
