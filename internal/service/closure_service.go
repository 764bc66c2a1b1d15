package service

import (
	"context"
	"sort"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClosureService is the end-of-shift reconciliation aggregate. GetSummary and
// GetHistory are pure snapshot reads; MarkSalesAsClosed is the only mutation
// and stamps each sale at most once.
type ClosureService interface {
	GetSummary(ctx context.Context, start, end time.Time) (*dto.ClosureSummaryResponse, error)
	MarkSalesAsClosed(ctx context.Context, ids []uuid.UUID) (*dto.MarkClosedResponse, error)
	GetHistory(ctx context.Context, start, end time.Time) ([]dto.ClosureRecord, error)
}

type closureService struct {
	sales repository.SaleRepository
	now   func() time.Time
}

func NewClosureService(sales repository.SaleRepository) ClosureService {
	return &closureService{sales: sales, now: time.Now}
}

// ── GetSummary ────────────────────────────────────────────────────────────────
// Paid, uncancelled, unclosed sales in [start, end), summed per payment
// method. The response carries the matching sale ids so the caller can hand
// exactly that set back to MarkSalesAsClosed — the server never re-derives it.

func (s *closureService) GetSummary(ctx context.Context, start, end time.Time) (*dto.ClosureSummaryResponse, error) {
	if end.Before(start) {
		return nil, &ValidationError{Msg: "end date must not precede start date"}
	}

	sales, err := s.sales.FindUnclosedPaid(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byMethod := sumByMethod(sales)
	totalPaid := decimal.Zero
	for _, m := range byMethod {
		totalPaid = totalPaid.Add(m.Total)
	}
	ids := make([]string, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID.String())
	}

	return &dto.ClosureSummaryResponse{
		Start:      start.Format("2006-01-02"),
		End:        end.Format("2006-01-02"),
		TotalCount: len(sales),
		TotalPaid:  totalPaid,
		ByMethod:   byMethod,
		SaleIDs:    ids,
	}, nil
}

// ── MarkSalesAsClosed ─────────────────────────────────────────────────────────
// One shared timestamp for the whole batch. Per id:
//   - already closed     → per-id no-op (recorded as skipped)
//   - missing / not paid → collected as failed; does NOT abort the batch
//   - eligible           → stamped is_closed + cash_closure_date
// Eligible sales commit even when others fail; a non-empty failed set is
// reported as PartialClosureError after the commit.

func (s *closureService) MarkSalesAsClosed(ctx context.Context, ids []uuid.UUID) (*dto.MarkClosedResponse, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Msg: "sale_ids must not be empty"}
	}

	closedAt := s.now().UTC()
	var (
		closed  int
		skipped []string
		failed  []uuid.UUID
	)

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		for _, id := range ids {
			sale, err := s.sales.FindByIDForUpdateTx(tx, id)
			if err != nil {
				failed = append(failed, id)
				continue
			}
			if sale.IsClosed {
				skipped = append(skipped, id.String())
				continue
			}
			if model.ParseSaleStatus(sale.Status) != model.StatusPaid {
				failed = append(failed, id)
				continue
			}
			if err := s.sales.MarkClosedTx(tx, id, closedAt); err != nil {
				return err
			}
			closed++
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := &dto.MarkClosedResponse{
		ClosedCount: closed,
		SkippedIDs:  skipped,
		ClosureDate: closedAt.Format("2006-01-02T15:04:05Z"),
	}
	if len(failed) > 0 {
		return resp, &PartialClosureError{FailedIDs: failed}
	}
	return resp, nil
}

// ── GetHistory ────────────────────────────────────────────────────────────────
// Closed sales grouped by closure calendar day (UTC), newest first.

func (s *closureService) GetHistory(ctx context.Context, start, end time.Time) ([]dto.ClosureRecord, error) {
	sales, err := s.sales.FindClosedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]model.Sale)
	for _, sale := range sales {
		if sale.CashClosureDate == nil {
			continue
		}
		day := sale.CashClosureDate.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], sale)
	}

	records := make([]dto.ClosureRecord, 0, len(byDay))
	for day, daySales := range byDay {
		total := decimal.Zero
		for _, sale := range daySales {
			total = total.Add(sale.Total)
		}
		records = append(records, dto.ClosureRecord{
			Date:        day,
			TotalSales:  len(daySales),
			TotalAmount: total,
			ByMethod:    sumByMethod(daySales),
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	return records, nil
}

// sumByMethod buckets sales by payment method with a deterministic order.
func sumByMethod(sales []model.Sale) []dto.MethodTotal {
	totals := make(map[string]*dto.MethodTotal)
	order := make([]string, 0, 4)
	for _, sale := range sales {
		t, ok := totals[sale.PaymentMethod]
		if !ok {
			t = &dto.MethodTotal{PaymentMethod: sale.PaymentMethod, Total: decimal.Zero}
			totals[sale.PaymentMethod] = t
			order = append(order, sale.PaymentMethod)
		}
		t.Count++
		t.Total = t.Total.Add(sale.Total)
	}
	sort.Strings(order)
	result := make([]dto.MethodTotal, 0, len(order))
	for _, method := range order {
		result = append(result, *totals[method])
	}
	return result
}
