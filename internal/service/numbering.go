package service

import (
	"fmt"

	"minimarket/internal/model"
	"minimarket/internal/repository"

	"gorm.io/gorm"
)

// DocumentNumberIssuer allocates the next legal document number for a type.
// NextTx must be called inside the sale's transaction: the counter increment
// commits or rolls back together with the sale, so duplicates are impossible
// and a rollback costs at most a gap in the series.
type DocumentNumberIssuer interface {
	NextTx(tx *gorm.DB, documentType string) (string, error)
}

type documentNumberIssuer struct {
	counters repository.DocumentCounterRepository
}

func NewDocumentNumberIssuer(counters repository.DocumentCounterRepository) DocumentNumberIssuer {
	return &documentNumberIssuer{counters: counters}
}

func (i *documentNumberIssuer) NextTx(tx *gorm.DB, documentType string) (string, error) {
	switch documentType {
	case model.DocumentBoleta, model.DocumentFactura:
	default:
		return "", &ValidationError{Msg: fmt.Sprintf("unknown document type %q", documentType)}
	}

	issued, err := i.counters.NextTx(tx, documentType)
	if err != nil {
		return "", fmt.Errorf("issue %s number: %w", documentType, err)
	}
	return FormatDocumentNumber(issued.Prefix, issued.Series, issued.Sequence), nil
}

// FormatDocumentNumber renders the printed form, e.g. B001-00000123.
func FormatDocumentNumber(prefix string, series int, sequence int64) string {
	return fmt.Sprintf("%s%03d-%08d", prefix, series, sequence)
}
