package worker

import (
	"context"
	"time"

	"github.com/rookgm/shopreport/internal/logger"
	"github.com/rookgm/shopreport/internal/models"
	"go.uber.org/zap"
)

// ReportBuilder rebuilds the report
type ReportBuilder interface {
	BuildReport(ctx context.Context) (*models.ReportResult, error)
}

// ReportScheduler periodically refreshes the report while serving
type ReportScheduler struct {
	svc      ReportBuilder
	interval time.Duration
}

// NewReportScheduler creates new report scheduler
func NewReportScheduler(svc ReportBuilder, interval time.Duration) *ReportScheduler {
	return &ReportScheduler{svc: svc, interval: interval}
}

// Run refreshes the report on every tick until ctx is cancelled
func (rs *ReportScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("report scheduler is done")
			return
		case <-ticker.C:
			if _, err := rs.svc.BuildReport(ctx); err != nil {
				logger.Log.Error("report refresh failed", zap.Error(err))
			}
		}
	}
}
