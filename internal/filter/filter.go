package filter

import (
	"time"

	"github.com/rookgm/shopreport/internal/models"
	"github.com/shopspring/decimal"
)

// exclusion reason codes reported in the audit artifact
const (
	ReasonTestOrder      = "test_order"
	ReasonCancelledOrder = "cancelled_order"
	ReasonMissingAnchor  = "missing_anchor_timestamp"
	ReasonMalformedPrice = "malformed_total_price"
)

// anchor field choices
const (
	AnchorCreatedAt   = "created_at"
	AnchorProcessedAt = "processed_at"
)

// Policy is the caller-supplied inclusion policy. Accepted statuses and the
// anchor field differ between deployments and are never hardcoded here.
type Policy struct {
	AcceptedStatuses map[string]bool
	AnchorField      string
}

// Result is the classification outcome for a single order
type Result struct {
	Include bool
	Reason  string
}

// rule reports a non-empty reason when the order must be excluded
type rule func(o *models.Order, p Policy) string

// rules are evaluated in priority order, first match wins.
// New rules append at the end.
var rules = []rule{
	func(o *models.Order, _ Policy) string {
		if o.Test {
			return ReasonTestOrder
		}
		return ""
	},
	func(o *models.Order, _ Policy) string {
		if o.CancelledAt != nil {
			return ReasonCancelledOrder
		}
		return ""
	},
	func(o *models.Order, p Policy) string {
		if !p.AcceptedStatuses[o.FinancialStatus] {
			return "financial_status=" + o.FinancialStatus
		}
		return ""
	},
	func(o *models.Order, p Policy) string {
		if Anchor(o, p.AnchorField) == nil {
			return ReasonMissingAnchor
		}
		return ""
	},
	func(o *models.Order, _ Policy) string {
		if _, err := decimal.NewFromString(o.TotalPrice); err != nil {
			return ReasonMalformedPrice
		}
		return ""
	},
}

// Classify applies the rules to the order and reports exactly one
// exclusion reason, or inclusion
func Classify(o *models.Order, p Policy) Result {
	for _, r := range rules {
		if reason := r(o, p); reason != "" {
			return Result{Reason: reason}
		}
	}
	return Result{Include: true}
}

// Anchor returns the order timestamp selected by the anchor-field policy
func Anchor(o *models.Order, field string) *time.Time {
	if field == AnchorCreatedAt {
		return o.CreatedAt
	}
	return o.ProcessedAt
}
