package aggregate

import (
	"sort"

	"github.com/rookgm/shopreport/internal/bucket"
	"github.com/rookgm/shopreport/internal/models"
	"github.com/shopspring/decimal"
)

// presentation precision for monetary values
const moneyPlaces = 2

type totals struct {
	revenue decimal.Decimal
	refunds decimal.Decimal
	orders  int
}

// Aggregator accumulates per-day revenue, refund and order-count metrics.
// Accumulators keep full precision; rounding happens only in Snapshot.
type Aggregator struct {
	buckets map[string]*totals
}

// New creates new Aggregator instance
func New() *Aggregator {
	return &Aggregator{buckets: map[string]*totals{}}
}

func (a *Aggregator) bucketFor(key string) *totals {
	t, ok := a.buckets[key]
	if !ok {
		t = &totals{}
		a.buckets[key] = t
	}
	return t
}

// AddOrder counts one order and adds its total price to the day's revenue
func (a *Aggregator) AddOrder(key string, totalPrice decimal.Decimal) {
	t := a.bucketFor(key)
	t.orders++
	t.revenue = t.revenue.Add(totalPrice)
}

// AddRefund adds a refund amount to the day's refund total
func (a *Aggregator) AddRefund(key string, amount decimal.Decimal) {
	t := a.bucketFor(key)
	t.refunds = t.refunds.Add(amount)
}

// PreFill initializes every day of the window with zero metrics so empty
// days still appear in the snapshot
func (a *Aggregator) PreFill(w bucket.Window) {
	for _, key := range w.Days() {
		a.bucketFor(key)
	}
}

// Snapshot returns per-day rows sorted ascending by date. Net revenue is
// computed here as revenue minus refunds, rounded to two digits.
func (a *Aggregator) Snapshot() []models.DailyMetrics {
	keys := make([]string, 0, len(a.buckets))
	for key := range a.buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]models.DailyMetrics, 0, len(keys))
	for _, key := range keys {
		t := a.buckets[key]
		rows = append(rows, models.DailyMetrics{
			Date:       key,
			Revenue:    t.revenue.Round(moneyPlaces),
			Refunds:    t.refunds.Round(moneyPlaces),
			NetRevenue: t.revenue.Sub(t.refunds).Round(moneyPlaces),
			OrderCount: t.orders,
		})
	}
	return rows
}
