package models

import "time"

// financial status values reported by the store API
const (
	FinancialStatusPending       = "pending"
	FinancialStatusPaid          = "paid"
	FinancialStatusPartiallyPaid = "partially_paid"
	FinancialStatusRefunded      = "refunded"
	FinancialStatusVoided        = "voided"
)

// TransactionKindRefund is the only transaction kind counted toward refund totals
const TransactionKindRefund = "refund"

// Order is order entity fetched from the store API.
// Monetary fields arrive as decimal strings and are parsed on use.
type Order struct {
	ID              uint64     `json:"id"`
	Name            string     `json:"name"`
	CreatedAt       *time.Time `json:"created_at"`
	ProcessedAt     *time.Time `json:"processed_at"`
	FinancialStatus string     `json:"financial_status"`
	Test            bool       `json:"test"`
	CancelledAt     *time.Time `json:"cancelled_at"`
	TotalPrice      string     `json:"total_price"`
	Refunds         []Refund   `json:"refunds"`
}

// Refund groups refund transactions of an order
type Refund struct {
	ID           uint64        `json:"id"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is a single payment-level event inside a refund
type Transaction struct {
	ID        uint64     `json:"id"`
	Kind      string     `json:"kind"`
	Amount    string     `json:"amount"`
	CreatedAt *time.Time `json:"created_at"`
}
