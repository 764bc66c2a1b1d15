package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Typed domain errors. Callers branch on these with errors.Is / errors.As;
// nothing in the service layer panics or hides a failure behind a generic
// string. The HTTP layer maps each class to a status code.

// Sentinels — terminal, non-retryable.
var (
	ErrSaleNotFound     = fmt.Errorf("sale not found")
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrCustomerNotFound = fmt.Errorf("customer not found")
	ErrAlreadyCancelled = fmt.Errorf("sale is already cancelled")
	// ErrSaleClosed: a sale stamped by a cash closure is immutable.
	ErrSaleClosed = fmt.Errorf("sale belongs to a cash closure and cannot be cancelled")
)

// ValidationError rejects malformed input before any transaction opens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// InsufficientStockError aborts the whole sale — no partial application.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InsufficientPaymentError is returned when amount paid does not cover the total.
type InsufficientPaymentError struct {
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %s, paid %s",
		e.Total.StringFixed(2), e.AmountPaid.StringFixed(2))
}

// PartialClosureError reports the sale ids a cash closure could not stamp.
// The successfully stamped ids are committed regardless.
type PartialClosureError struct {
	FailedIDs []uuid.UUID
}

func (e *PartialClosureError) Error() string {
	ids := make([]string, 0, len(e.FailedIDs))
	for _, id := range e.FailedIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("cash closure skipped %d ineligible sale(s): %s",
		len(e.FailedIDs), strings.Join(ids, ", "))
}
