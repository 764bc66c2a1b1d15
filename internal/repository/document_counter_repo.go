package repository

import (
	"context"

	"minimarket/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IssuedNumber is the result of one atomic counter increment.
type IssuedNumber struct {
	Prefix   string
	Series   int
	Sequence int64
}

// DocumentCounterRepository issues strictly increasing sequences per document
// type. NextTx must run inside the caller's transaction: a rollback discards
// the increment together with the sale, leaving at worst a gap in the series
// (tolerated), never a duplicate.
type DocumentCounterRepository interface {
	NextTx(tx *gorm.DB, documentType string) (*IssuedNumber, error)
	// Seed inserts the default counter rows if they do not exist yet.
	Seed(ctx context.Context) error
	Find(ctx context.Context, documentType string) (*model.DocumentCounter, error)
}

type documentCounterRepo struct{ db *gorm.DB }

func NewDocumentCounterRepository(db *gorm.DB) DocumentCounterRepository {
	return &documentCounterRepo{db: db}
}

// NextTx performs an atomic increment-and-read. The single UPDATE … RETURNING
// statement takes the row lock and bumps the sequence in one step, so two
// concurrent transactions serialize on the counter row instead of both
// reading the same value (the classic read-then-write bug).
func (r *documentCounterRepo) NextTx(tx *gorm.DB, documentType string) (*IssuedNumber, error) {
	var issued IssuedNumber
	err := tx.Raw(`
		UPDATE document_counters
		SET last_sequence = last_sequence + 1, updated_at = NOW()
		WHERE document_type = ?
		RETURNING prefix, series, last_sequence AS sequence`,
		documentType,
	).Scan(&issued).Error
	if err != nil {
		return nil, err
	}
	if issued.Prefix == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &issued, nil
}

func (r *documentCounterRepo) Seed(ctx context.Context) error {
	defaults := []model.DocumentCounter{
		{DocumentType: model.DocumentBoleta, Prefix: "B", Series: 1},
		{DocumentType: model.DocumentFactura, Prefix: "F", Series: 1},
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults).Error
}

func (r *documentCounterRepo) Find(ctx context.Context, documentType string) (*model.DocumentCounter, error) {
	var c model.DocumentCounter
	err := r.db.WithContext(ctx).Where("document_type = ?", documentType).First(&c).Error
	return &c, err
}
