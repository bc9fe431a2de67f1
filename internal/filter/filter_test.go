package filter

import (
	"testing"
	"time"

	"github.com/rookgm/shopreport/internal/models"
	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func defaultPolicy() Policy {
	return Policy{
		AcceptedStatuses: map[string]bool{
			models.FinancialStatusPaid:          true,
			models.FinancialStatusPartiallyPaid: true,
		},
		AnchorField: AnchorProcessedAt,
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		order      models.Order
		policy     Policy
		wantReason string
	}{
		{
			name: "paid_order_included",
			order: models.Order{
				FinancialStatus: models.FinancialStatusPaid,
				ProcessedAt:     timePtr(now),
				TotalPrice:      "10.00",
			},
			policy: defaultPolicy(),
		},
		{
			name: "test_order_excluded",
			order: models.Order{
				Test:            true,
				FinancialStatus: models.FinancialStatusPaid,
				ProcessedAt:     timePtr(now),
				TotalPrice:      "10.00",
			},
			policy:     defaultPolicy(),
			wantReason: ReasonTestOrder,
		},
		{
			// the test rule outranks every later rule, exactly one reason
			name: "test_order_with_missing_anchor_reports_test_order",
			order: models.Order{
				Test:            true,
				FinancialStatus: models.FinancialStatusPaid,
				TotalPrice:      "10.00",
			},
			policy:     defaultPolicy(),
			wantReason: ReasonTestOrder,
		},
		{
			name: "cancelled_order_excluded",
			order: models.Order{
				CancelledAt:     timePtr(now),
				FinancialStatus: models.FinancialStatusPaid,
				ProcessedAt:     timePtr(now),
				TotalPrice:      "10.00",
			},
			policy:     defaultPolicy(),
			wantReason: ReasonCancelledOrder,
		},
		{
			name: "pending_status_excluded_with_value",
			order: models.Order{
				FinancialStatus: models.FinancialStatusPending,
				ProcessedAt:     timePtr(now),
				TotalPrice:      "10.00",
			},
			policy:     defaultPolicy(),
			wantReason: "financial_status=pending",
		},
		{
			name: "partially_paid_rejected_by_stricter_policy",
			order: models.Order{
				FinancialStatus: models.FinancialStatusPartiallyPaid,
				ProcessedAt:     timePtr(now),
				TotalPrice:      "10.00",
			},
			policy: Policy{
				AcceptedStatuses: map[string]bool{models.FinancialStatusPaid: true},
				AnchorField:      AnchorProcessedAt,
			},
			wantReason: "financial_status=partially_paid",
		},
		{
			name: "missing_processed_at_excluded",
			order: models.Order{
				FinancialStatus: models.FinancialStatusPaid,
				CreatedAt:       timePtr(now),
				TotalPrice:      "10.00",
			},
			policy:     defaultPolicy(),
			wantReason: ReasonMissingAnchor,
		},
		{
			// under the created_at policy the same order is fine
			name: "created_at_anchor_accepts_missing_processed_at",
			order: models.Order{
				FinancialStatus: models.FinancialStatusPaid,
				CreatedAt:       timePtr(now),
				TotalPrice:      "10.00",
			},
			policy: Policy{
				AcceptedStatuses: map[string]bool{models.FinancialStatusPaid: true},
				AnchorField:      AnchorCreatedAt,
			},
		},
		{
			name: "malformed_total_price_excluded",
			order: models.Order{
				FinancialStatus: models.FinancialStatusPaid,
				ProcessedAt:     timePtr(now),
				TotalPrice:      "not-a-number",
			},
			policy:     defaultPolicy(),
			wantReason: ReasonMalformedPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(&tt.order, tt.policy)
			if tt.wantReason == "" {
				assert.True(t, res.Include)
				assert.Empty(t, res.Reason)
				return
			}
			assert.False(t, res.Include)
			assert.Equal(t, tt.wantReason, res.Reason)
		})
	}
}

func TestAnchor(t *testing.T) {
	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	processed := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	o := models.Order{CreatedAt: &created, ProcessedAt: &processed}

	assert.Equal(t, &created, Anchor(&o, AnchorCreatedAt))
	assert.Equal(t, &processed, Anchor(&o, AnchorProcessedAt))
}
