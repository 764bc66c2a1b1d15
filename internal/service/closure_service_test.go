package service

// closure_service_test.go
// Unit tests for the cash closure aggregate: range summaries per payment
// method, the one-shot closure stamp with a shared timestamp, and the
// per-day history view.

import (
	"context"
	"testing"
	"time"

	"minimarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSale(t *testing.T, repo *stubSaleRepo, method, total string, at time.Time, status model.SaleStatus, closed bool) uuid.UUID {
	t.Helper()
	s := &model.Sale{
		DocumentType:   model.DocumentBoleta,
		DocumentNumber: "B001-" + uuid.NewString()[:8],
		SaleDate:       at,
		UserID:         uuid.New(),
		Subtotal:       decimal.RequireFromString(total),
		Tax:            decimal.Zero,
		Total:          decimal.RequireFromString(total),
		PaymentMethod:  method,
		AmountPaid:     decimal.RequireFromString(total),
		Status:         string(status),
	}
	require.NoError(t, repo.Create(context.Background(), nil, s))
	if closed {
		require.NoError(t, repo.MarkClosedTx(nil, s.ID, at))
	}
	return s.ID
}

func TestGetSummary_GroupsByPaymentMethod(t *testing.T) {
	repo := newStubSaleRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	seedSale(t, repo, "cash", "10.00", day.Add(9*time.Hour), model.StatusPaid, false)
	seedSale(t, repo, "cash", "15.00", day.Add(10*time.Hour), model.StatusPaid, false)
	seedSale(t, repo, "yape", "7.50", day.Add(11*time.Hour), model.StatusPaid, false)
	// Excluded: cancelled, already closed, outside the range
	seedSale(t, repo, "cash", "99.00", day.Add(12*time.Hour), model.StatusCancelled, false)
	seedSale(t, repo, "card", "20.00", day.Add(13*time.Hour), model.StatusPaid, true)
	seedSale(t, repo, "cash", "30.00", day.AddDate(0, 0, 1), model.StatusPaid, false)

	svc := NewClosureService(repo)
	resp, err := svc.GetSummary(context.Background(), day, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, "32.50", resp.TotalPaid.StringFixed(2))
	assert.Len(t, resp.SaleIDs, 3)

	require.Len(t, resp.ByMethod, 2)
	assert.Equal(t, "cash", resp.ByMethod[0].PaymentMethod)
	assert.Equal(t, 2, resp.ByMethod[0].Count)
	assert.Equal(t, "25.00", resp.ByMethod[0].Total.StringFixed(2))
	assert.Equal(t, "yape", resp.ByMethod[1].PaymentMethod)
	assert.Equal(t, "7.50", resp.ByMethod[1].Total.StringFixed(2))
}

func TestGetSummary_RejectsInvertedRange(t *testing.T) {
	svc := NewClosureService(newStubSaleRepo())
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetSummary(context.Background(), day, day.AddDate(0, 0, -1))
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestMarkSalesAsClosed_SharedTimestamp(t *testing.T) {
	repo := newStubSaleRepo()
	now := time.Date(2026, 3, 10, 22, 15, 0, 0, time.UTC)
	svc := &closureService{sales: repo, now: func() time.Time { return now }}

	day := now.Truncate(24 * time.Hour)
	a := seedSale(t, repo, "cash", "10.00", day.Add(9*time.Hour), model.StatusPaid, false)
	b := seedSale(t, repo, "card", "20.00", day.Add(10*time.Hour), model.StatusPaid, false)

	resp, err := svc.MarkSalesAsClosed(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.ClosedCount)
	assert.Empty(t, resp.SkippedIDs)
	assert.Equal(t, "2026-03-10T22:15:00Z", resp.ClosureDate)

	for _, id := range []uuid.UUID{a, b} {
		sale, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, sale.IsClosed)
		require.NotNil(t, sale.CashClosureDate)
		assert.True(t, sale.CashClosureDate.Equal(now), "every sale gets the same stamp")
	}
}

func TestMarkSalesAsClosed_AlreadyClosedIsSkipped(t *testing.T) {
	repo := newStubSaleRepo()
	now := time.Now().UTC()
	svc := NewClosureService(repo)

	id := seedSale(t, repo, "cash", "10.00", now, model.StatusPaid, false)

	first, err := svc.MarkSalesAsClosed(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ClosedCount)

	stamped, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	originalStamp := *stamped.CashClosureDate

	// Second run: per-id no-op, original stamp untouched
	second, err := svc.MarkSalesAsClosed(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	assert.Zero(t, second.ClosedCount)
	assert.Equal(t, []string{id.String()}, second.SkippedIDs)

	after, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, after.CashClosureDate.Equal(originalStamp))
}

func TestMarkSalesAsClosed_PartialFailureStillCommits(t *testing.T) {
	repo := newStubSaleRepo()
	now := time.Now().UTC()
	svc := NewClosureService(repo)

	good := seedSale(t, repo, "cash", "10.00", now, model.StatusPaid, false)
	cancelled := seedSale(t, repo, "cash", "5.00", now, model.StatusCancelled, false)
	missing := uuid.New()

	resp, err := svc.MarkSalesAsClosed(context.Background(), []uuid.UUID{good, cancelled, missing})

	var partial *PartialClosureError
	require.ErrorAs(t, err, &partial)
	assert.ElementsMatch(t, []uuid.UUID{cancelled, missing}, partial.FailedIDs)

	// The eligible sale was stamped despite the failures
	require.NotNil(t, resp)
	assert.Equal(t, 1, resp.ClosedCount)
	sale, findErr := repo.FindByID(context.Background(), good)
	require.NoError(t, findErr)
	assert.True(t, sale.IsClosed)

	// The cancelled one stays untouched
	sale, findErr = repo.FindByID(context.Background(), cancelled)
	require.NoError(t, findErr)
	assert.False(t, sale.IsClosed)
}

func TestMarkSalesAsClosed_EmptyInput(t *testing.T) {
	svc := NewClosureService(newStubSaleRepo())
	_, err := svc.MarkSalesAsClosed(context.Background(), nil)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGetHistory_GroupsByClosureDay(t *testing.T) {
	repo := newStubSaleRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := day.Add(22 * time.Hour)
	svc := &closureService{sales: repo, now: func() time.Time { return now }}

	// Three 50.00 sales closed the same evening → one history record
	ids := []uuid.UUID{
		seedSale(t, repo, "cash", "50.00", day.Add(9*time.Hour), model.StatusPaid, false),
		seedSale(t, repo, "card", "50.00", day.Add(10*time.Hour), model.StatusPaid, false),
		seedSale(t, repo, "cash", "50.00", day.Add(11*time.Hour), model.StatusPaid, false),
	}
	_, err := svc.MarkSalesAsClosed(context.Background(), ids)
	require.NoError(t, err)

	records, err := svc.GetHistory(context.Background(), day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-03-10", records[0].Date)
	assert.Equal(t, 3, records[0].TotalSales)
	assert.Equal(t, "150.00", records[0].TotalAmount.StringFixed(2))

	require.Len(t, records[0].ByMethod, 2)
	assert.Equal(t, "card", records[0].ByMethod[0].PaymentMethod)
	assert.Equal(t, 1, records[0].ByMethod[0].Count)
	assert.Equal(t, "cash", records[0].ByMethod[1].PaymentMethod)
	assert.Equal(t, 2, records[0].ByMethod[1].Count)
}
