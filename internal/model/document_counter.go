package model

import "time"

// DocumentCounter holds the last issued sequence for one document type.
// It is incremented with an atomic UPDATE … RETURNING inside the sale
// transaction, so concurrent cashiers can never observe the same sequence.
// A rolled-back sale leaves a gap in the series — gaps are tolerated,
// duplicates are not.
type DocumentCounter struct {
	DocumentType string `gorm:"primaryKey;type:varchar(20)"`
	Prefix       string `gorm:"type:varchar(4);not null"`
	Series       int    `gorm:"not null;default:1"`
	LastSequence int64  `gorm:"not null;default:0"`
	UpdatedAt    time.Time
}
