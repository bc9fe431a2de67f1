package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rookgm/shopreport/internal/handler/http/mocks"
	"github.com/rookgm/shopreport/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyResult() *models.ReportResult {
	return &models.ReportResult{
		Report: models.DailyReport{
			RunID:       "run-1",
			GeneratedAt: time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC),
			StartDate:   "2026-08-01",
			EndDate:     "2026-08-30",
			Rows: []models.DailyMetrics{
				{
					Date:       "2026-08-01",
					Revenue:    decimal.RequireFromString("100.00"),
					Refunds:    decimal.RequireFromString("10.00"),
					NetRevenue: decimal.RequireFromString("90.00"),
					OrderCount: 4,
				},
			},
		},
		Summary: models.ReportSummary{
			Revenue:     decimal.RequireFromString("100.00"),
			Refunds:     decimal.RequireFromString("10.00"),
			AdSpend:     decimal.RequireFromString("25.00"),
			NetProfit:   decimal.RequireFromString("65.00"),
			ROAS:        decimal.RequireFromString("4.00"),
			LastUpdated: time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC),
			DataRange:   "2026-08-01 - 2026-08-30",
		},
		Exclusions: []models.ExclusionRecord{
			{OrderID: 7, OrderName: "#7", FinancialStatus: "pending", TotalPrice: "5.00", Reason: "financial_status=pending"},
		},
	}
}

func TestReportHandler_GetDailyReport(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(t *testing.T) *mocks.MockReportService
		wantStatusCode int
	}{
		{
			name: "ready_returns_200",
			setup: func(t *testing.T) *mocks.MockReportService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockReportService(ctrl)
				svcMock.EXPECT().Latest(gomock.Any()).Return(readyResult(), nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_ready_returns_503",
			setup: func(t *testing.T) *mocks.MockReportService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockReportService(ctrl)
				svcMock.EXPECT().Latest(gomock.Any()).Return(nil, models.ErrReportNotReady).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusServiceUnavailable,
		},
		{
			name: "internal_error_returns_500",
			setup: func(t *testing.T) *mocks.MockReportService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockReportService(ctrl)
				svcMock.EXPECT().Latest(gomock.Any()).Return(nil, errors.New("boom")).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rh := NewReportHandler(tt.setup(t))

			req := httptest.NewRequest(http.MethodGet, "/api/report/daily", nil)
			w := httptest.NewRecorder()

			rh.GetDailyReport()(w, req)

			res := w.Result()
			defer res.Body.Close()

			require.Equal(t, tt.wantStatusCode, res.StatusCode)

			if res.StatusCode != http.StatusOK {
				return
			}

			var body dailyReportResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))

			assert.Equal(t, "run-1", body.RunID)
			require.Len(t, body.Rows, 1)
			assert.Equal(t, dailyRowResponse{
				Date:       "2026-08-01",
				Revenue:    "100.00",
				Refunds:    "10.00",
				NetRevenue: "90.00",
				OrderCount: 4,
			}, body.Rows[0])
		})
	}
}

func TestReportHandler_GetSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svcMock := mocks.NewMockReportService(ctrl)
	svcMock.EXPECT().Latest(gomock.Any()).Return(readyResult(), nil)

	rh := NewReportHandler(svcMock)

	req := httptest.NewRequest(http.MethodGet, "/api/report/summary", nil)
	w := httptest.NewRecorder()

	rh.GetSummary()(w, req)

	res := w.Result()
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var body summaryResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))

	assert.Equal(t, "100.00", body.Revenue)
	assert.Equal(t, "4.00", body.ROAS)
	assert.Equal(t, "2026-08-01 - 2026-08-30", body.DataRange)
}

func TestReportHandler_GetExclusions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svcMock := mocks.NewMockReportService(ctrl)
	svcMock.EXPECT().Latest(gomock.Any()).Return(readyResult(), nil)

	rh := NewReportHandler(svcMock)

	req := httptest.NewRequest(http.MethodGet, "/api/report/exclusions", nil)
	w := httptest.NewRecorder()

	rh.GetExclusions()(w, req)

	res := w.Result()
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var body []exclusionResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))

	require.Len(t, body, 1)
	assert.Equal(t, uint64(7), body[0].OrderID)
	assert.Equal(t, "financial_status=pending", body[0].ExcludedReason)
}
