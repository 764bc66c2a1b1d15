package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ClosureRangeFilter bounds summary / history queries. Dates are YYYY-MM-DD;
// for the summary both are required, for history both are optional.
type ClosureRangeFilter struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// MarkClosedRequest carries the explicit sale ids selected by the caller from
// a prior summary. The server never re-derives the set, so sales registered
// between summary and closure are not silently swept in.
type MarkClosedRequest struct {
	SaleIDs []string `json:"sale_ids" validate:"required,min=1,dive,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// MethodTotal is one payment-method bucket in a summary or history record.
type MethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
}

type ClosureSummaryResponse struct {
	Start      string          `json:"start"`
	End        string          `json:"end"`
	TotalCount int             `json:"total_count"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	ByMethod   []MethodTotal   `json:"by_method"`
	SaleIDs    []string        `json:"sale_ids"`
}

type MarkClosedResponse struct {
	ClosedCount int      `json:"closed_count"`
	SkippedIDs  []string `json:"skipped_ids,omitempty"` // already closed — per-id no-op
	ClosureDate string   `json:"closure_date"`
}

// ClosureRecord is one calendar day of closed sales in the history view.
type ClosureRecord struct {
	Date        string          `json:"date"` // YYYY-MM-DD (UTC)
	TotalSales  int             `json:"total_sales"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ByMethod    []MethodTotal   `json:"by_method"`
}
