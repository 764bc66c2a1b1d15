package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types.
const (
	MovementSale         = "sale"
	MovementCancellation = "cancellation"
	MovementManual       = "manual"
)

// InventoryMovement is an immutable entry in the stock ledger. One is created
// for every stock-affecting event; the current stock of a product equals the
// sum of its deltas. Movements are NEVER updated or deleted — cancellations
// create compensating entries.
type InventoryMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(20);not null"` // sale | cancellation | manual
	// Quantity is the signed delta: negative = stock out, positive = stock in.
	Quantity    int `gorm:"not null"`
	StockBefore int `gorm:"not null"`
	StockAfter  int `gorm:"not null"`
	Reason      string
	SaleID      *uuid.UUID `gorm:"type:uuid;index"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }
