package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`                 // YYYY-MM-DD; empty = today
	Status string `form:"status,default=paid"`  // paid | cancelled | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// UnitPrice overrides the catalog price when present (supervisor discounts
	// at the line level); nil = snapshot the current sale price.
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty"`
}

type CreateSaleRequest struct {
	DocumentType  string            `json:"document_type"  validate:"required,oneof=boleta factura"`
	CustomerID    *string           `json:"customer_id"    validate:"omitempty,uuid"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer yape"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"    validate:"required"`
	Discount      decimal.Decimal   `json:"discount"       validate:"min=0"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	// ClientReference is an optional idempotency key: a retried request with
	// the same reference returns the originally persisted sale.
	ClientReference *string `json:"client_reference" validate:"omitempty,uuid"`
	// CustomerEmail: optional — when present, the receipt worker mails the PDF.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID              string             `json:"id"`
	DocumentType    string             `json:"document_type"`
	DocumentNumber  string             `json:"document_number"`
	SaleDate        string             `json:"sale_date"`
	CustomerID      *string            `json:"customer_id,omitempty"`
	Items           []SaleItemResponse `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Tax             decimal.Decimal    `json:"tax"`
	Discount        decimal.Decimal    `json:"discount"`
	Total           decimal.Decimal    `json:"total"`
	PaymentMethod   string             `json:"payment_method"`
	AmountPaid      decimal.Decimal    `json:"amount_paid"`
	Change          decimal.Decimal    `json:"change"`
	Status          string             `json:"status"`
	CancelReason    *string            `json:"cancel_reason,omitempty"`
	IsClosed        bool               `json:"is_closed"`
	CashClosureDate *string            `json:"cash_closure_date,omitempty"`
	CreatedAt       string             `json:"created_at"`
}
