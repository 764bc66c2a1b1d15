package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"
	"minimarket/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CreateSale(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	CancelSale(ctx context.Context, id uuid.UUID, reason string) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	sales      repository.SaleRepository
	products   repository.ProductRepository
	customers  repository.CustomerRepository
	inventory  InventoryService
	numbers    DocumentNumberIssuer
	dispatcher *worker.Dispatcher
	taxRate    decimal.Decimal // fraction, e.g. 0.18
}

func NewSaleService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	inventory InventoryService,
	numbers DocumentNumberIssuer,
	dispatcher *worker.Dispatcher,
	taxRatePct float64,
) SaleService {
	return &saleService{
		sales:      sales,
		products:   products,
		customers:  customers,
		inventory:  inventory,
		numbers:    numbers,
		dispatcher: dispatcher,
		taxRate:    decimal.NewFromFloat(taxRatePct).Div(decimal.NewFromInt(100)),
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// One ACID transaction:
//  1. Validate input and resolve products (pre-flight, outside the tx)
//  2. BEGIN: re-check stock under row locks, issue the document number,
//     persist sale + items, append one ledger entry per line
//  3. COMMIT — any failure after BEGIN rolls everything back: no stock
//     mutation, no ledger entry, no consumed number survives
//  4. (async) dispatch the receipt job

func (s *saleService) CreateSale(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, &ValidationError{Msg: "sale must contain at least one item"}
	}
	if req.Discount.IsNegative() {
		return nil, &ValidationError{Msg: "discount must not be negative"}
	}

	// Retried create? Return the already persisted sale — same document
	// number, no second stock deduction.
	if req.ClientReference != nil {
		if existing, err := s.sales.FindByClientReference(ctx, *req.ClientReference); err == nil {
			return saleToResponse(existing), nil
		}
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, &ValidationError{Msg: "invalid customer_id"}
		}
		if _, err := s.customers.FindByID(ctx, cid); err != nil {
			return nil, ErrCustomerNotFound
		}
		customerID = &cid
	}

	// Resolve products and compute totals (pre-flight, outside the tx).
	// Stock is re-checked under lock inside the tx; this pass only rejects
	// obviously doomed requests cheaply.
	type resolvedItem struct {
		productID uuid.UUID
		name      string
		price     decimal.Decimal
		quantity  int
		subtotal  decimal.Decimal
	}

	resolved := make([]resolvedItem, 0, len(req.Items))
	subtotal := decimal.Zero

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Msg: "item quantity must be positive"}
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, &ValidationError{Msg: fmt.Sprintf("invalid product_id %q", item.ProductID)}
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, ErrProductNotFound
		}
		if !p.Active {
			return nil, &ValidationError{Msg: fmt.Sprintf("product %s is inactive", p.Name)}
		}
		if p.Stock < item.Quantity {
			return nil, &InsufficientStockError{ProductID: pid, Requested: item.Quantity, Available: p.Stock}
		}

		price := p.SalePrice
		if item.UnitPrice != nil {
			if item.UnitPrice.IsNegative() {
				return nil, &ValidationError{Msg: "unit price override must not be negative"}
			}
			price = *item.UnitPrice
		}
		lineSubtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			price:     price,
			quantity:  item.Quantity,
			subtotal:  lineSubtotal,
		})
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	if req.Discount.GreaterThan(subtotal.Add(tax)) {
		return nil, &ValidationError{Msg: "discount must not exceed subtotal plus tax"}
	}
	total := subtotal.Add(tax).Sub(req.Discount)

	if req.AmountPaid.LessThan(total) {
		return nil, &InsufficientPaymentError{Total: total, AmountPaid: req.AmountPaid}
	}
	change := req.AmountPaid.Sub(total)

	var sale model.Sale
	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		number, err := s.numbers.NextTx(tx, req.DocumentType)
		if err != nil {
			return err
		}

		sale = model.Sale{
			DocumentType:    req.DocumentType,
			DocumentNumber:  number,
			SaleDate:        time.Now().UTC(),
			CustomerID:      customerID,
			UserID:          userID,
			Subtotal:        subtotal,
			Tax:             tax,
			Discount:        req.Discount,
			Total:           total,
			PaymentMethod:   req.PaymentMethod,
			AmountPaid:      req.AmountPaid,
			Change:          change,
			Status:          string(model.StatusPaid),
			ClientReference: req.ClientReference,
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.price,
				Subtotal:  r.subtotal,
			})
		}

		if err := s.sales.Create(ctx, tx, &sale); err != nil {
			return fmt.Errorf("persist sale: %w", err)
		}

		// Deduct stock and append ledger entries. The inventory service
		// re-checks each line under a row lock; an InsufficientStockError
		// here aborts the whole transaction.
		for _, r := range resolved {
			if err := s.inventory.DeductForSaleTx(tx, r.productID, r.quantity, sale.ID, number, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Receipt rendering / email is best-effort and never part of the tx.
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{SaleID: sale.ID.String()}
		if req.CustomerEmail != nil && *req.CustomerEmail != "" {
			payload.CustomerEmail = *req.CustomerEmail
		}
		_ = s.dispatcher.EnqueueReceipt(ctx, payload)
	}

	resp := saleToResponse(&sale)
	for i, r := range resolved {
		resp.Items[i].Product = r.name
	}
	return resp, nil
}

// ── CancelSale ────────────────────────────────────────────────────────────────
// Reverses the ledger with compensating entries; the document number is kept.
// A sale already stamped by a cash closure is immutable and cannot be
// cancelled. Cancelling an already-cancelled sale is rejected, not a no-op:
// it surfaces caller bugs.

func (s *saleService) CancelSale(ctx context.Context, id uuid.UUID, reason string) (*dto.SaleResponse, error) {
	if reason == "" {
		return nil, &ValidationError{Msg: "cancellation reason is required"}
	}

	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSaleNotFound
	}
	if model.ParseSaleStatus(sale.Status) == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if sale.IsClosed {
		return nil, ErrSaleClosed
	}

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		// The read above was unlocked; re-check under the row lock so two
		// concurrent cancellations cannot both restore stock.
		locked, err := s.sales.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return ErrSaleNotFound
		}
		if model.ParseSaleStatus(locked.Status) == model.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if locked.IsClosed {
			return ErrSaleClosed
		}

		ledgerReason := fmt.Sprintf("Cancellation of %s: %s", sale.DocumentNumber, reason)
		for _, item := range sale.Items {
			if err := s.inventory.RestoreForCancellationTx(tx, item.ProductID, item.Quantity, sale.ID, ledgerReason, sale.UserID); err != nil {
				return err
			}
		}
		if err := s.sales.UpdateCancelledTx(tx, id, reason); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadyCancelled
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	sale.Status = string(model.StatusCancelled)
	sale.CancelReason = &reason
	return saleToResponse(sale), nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSaleNotFound
	}
	return saleToResponse(sale), nil
}

// ListSales returns a paginated list of sales, filtered by date and status.
// Default filter: today's paid sales. Snapshot read, no locking.
func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = string(model.StatusPaid)
	}
	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}

	var customerID *string
	if s.CustomerID != nil {
		c := s.CustomerID.String()
		customerID = &c
	}
	var closureDate *string
	if s.CashClosureDate != nil {
		d := s.CashClosureDate.Format("2006-01-02T15:04:05Z")
		closureDate = &d
	}

	return &dto.SaleResponse{
		ID:              s.ID.String(),
		DocumentType:    s.DocumentType,
		DocumentNumber:  s.DocumentNumber,
		SaleDate:        s.SaleDate.Format("2006-01-02T15:04:05Z"),
		CustomerID:      customerID,
		Items:           items,
		Subtotal:        s.Subtotal,
		Tax:             s.Tax,
		Discount:        s.Discount,
		Total:           s.Total,
		PaymentMethod:   s.PaymentMethod,
		AmountPaid:      s.AmountPaid,
		Change:          s.Change,
		Status:          string(model.ParseSaleStatus(s.Status)),
		CancelReason:    s.CancelReason,
		IsClosed:        s.IsClosed,
		CashClosureDate: closureDate,
		CreatedAt:       s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
