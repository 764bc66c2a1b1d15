package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document types — each carries an independent legal numbering series.
const (
	DocumentBoleta  = "boleta"
	DocumentFactura = "factura"
)

// SaleStatus is a closed enumeration. Persisted values are the lowercase
// strings below; anything else read back from storage maps to StatusUnknown
// via ParseSaleStatus rather than being guessed at.
type SaleStatus string

const (
	StatusPaid      SaleStatus = "paid"
	StatusCancelled SaleStatus = "cancelled"
	StatusUnknown   SaleStatus = "unknown"
)

// ParseSaleStatus is a total mapping from any stored or legacy status string
// to a known status. Legacy Spanish values from the previous system are
// mapped explicitly; unrecognized input falls back to StatusUnknown.
func ParseSaleStatus(s string) SaleStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid", "pagado", "pagada", "completed", "completada":
		return StatusPaid
	case "cancelled", "canceled", "anulado", "anulada":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// Sale is the unit of atomicity of the POS: header, items, payment and
// closure stamp live and die together. DocumentNumber is immutable once
// assigned; a cancelled sale keeps its number.
type Sale struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentType   string    `gorm:"type:varchar(20);not null"`
	DocumentNumber string    `gorm:"uniqueIndex;not null"`
	SaleDate       time.Time `gorm:"index;not null"`
	CustomerID     *uuid.UUID `gorm:"type:uuid;index"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod  string          `gorm:"type:varchar(20);not null"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Change         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;default:'paid'"`
	// CancelReason is set iff Status = cancelled.
	CancelReason *string
	// IsClosed / CashClosureDate are stamped exactly once by a cash closure.
	IsClosed        bool       `gorm:"not null;default:false;index"`
	CashClosureDate *time.Time `gorm:"index"`
	// ClientReference deduplicates retried creates (idempotency key).
	ClientReference *string `gorm:"uniqueIndex"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items    []SaleItem `gorm:"foreignKey:SaleID"`
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
	User     *User      `gorm:"foreignKey:UserID"`
}

// SaleItem is one line of a sale. UnitPrice is a snapshot taken at sale time
// and is independent of later catalog price changes.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
