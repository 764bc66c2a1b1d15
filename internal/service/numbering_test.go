package service

// numbering_test.go
// Tests for the document number issuer: printed format, independent series
// per document type, and uniqueness under concurrent issuance.

import (
	"regexp"
	"sync"
	"testing"

	"minimarket/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "B001-00000123", FormatDocumentNumber("B", 1, 123))
	assert.Equal(t, "F001-00000001", FormatDocumentNumber("F", 1, 1))
	assert.Equal(t, "B002-00001000", FormatDocumentNumber("B", 2, 1000))
	assert.Equal(t, "B001-99999999", FormatDocumentNumber("B", 1, 99999999))
}

func TestIssuer_RejectsUnknownDocumentType(t *testing.T) {
	issuer := NewDocumentNumberIssuer(newStubCounterRepo())

	_, err := issuer.NextTx(nil, "nota_credito")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestIssuer_IndependentSeriesPerType(t *testing.T) {
	issuer := NewDocumentNumberIssuer(newStubCounterRepo())

	b1, err := issuer.NextTx(nil, model.DocumentBoleta)
	require.NoError(t, err)
	f1, err := issuer.NextTx(nil, model.DocumentFactura)
	require.NoError(t, err)
	b2, err := issuer.NextTx(nil, model.DocumentBoleta)
	require.NoError(t, err)

	assert.Equal(t, "B001-00000001", b1)
	assert.Equal(t, "F001-00000001", f1)
	assert.Equal(t, "B001-00000002", b2)
}

func TestIssuer_ConcurrentIssuanceYieldsDistinctNumbers(t *testing.T) {
	issuer := NewDocumentNumberIssuer(newStubCounterRepo())
	re := regexp.MustCompile(`^B\d{3}-\d{8}$`)

	const n = 100
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := issuer.NextTx(nil, model.DocumentBoleta)
			assert.NoError(t, err)
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for num := range results {
		assert.Regexp(t, re, num)
		assert.False(t, seen[num], "duplicate document number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}
