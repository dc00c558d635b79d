package models

import "github.com/shopspring/decimal"

// FinancialSummary is a derived view over the allocation and order
// ledgers. It is recomputed on demand and never persisted.
type FinancialSummary struct {
	TotalAllocations decimal.Decimal `json:"total_allocations"`
	TotalOrders      decimal.Decimal `json:"total_orders"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	PendingOrders    int64           `json:"pending_orders"`
	ApprovedOrders   int64           `json:"approved_orders"`
	PaidOrders       int64           `json:"paid_orders"`
}
