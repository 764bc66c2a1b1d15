package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an optional association on a sale. No business rule in the POS
// core depends on customer fields; facturas simply record who they were
// issued to.
type Customer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Document string    `gorm:"uniqueIndex;not null"` // DNI or RUC
	Name     string    `gorm:"not null"`
	Email    *string
	Active   bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
