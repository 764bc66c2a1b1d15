package service

import (
	"context"
	"fmt"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService owns the stock ledger invariant: every stock change locks
// the product row, appends exactly one movement, and keeps the cached stock
// counter equal to the sum of all movement deltas. Stock never goes negative.
type InventoryService interface {
	// DeductForSaleTx removes qty units inside the sale's transaction.
	DeductForSaleTx(tx *gorm.DB, productID uuid.UUID, qty int, saleID uuid.UUID, docNumber string, userID uuid.UUID) error
	// RestoreForCancellationTx appends the compensating entry for one line.
	RestoreForCancellationTx(tx *gorm.DB, productID uuid.UUID, qty int, saleID uuid.UUID, reason string, userID uuid.UUID) error
	// Adjust records a manual correction in its own transaction.
	Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string, userID uuid.UUID) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	LowStockAlerts(ctx context.Context) ([]dto.StockAlertResponse, error)
}

type inventoryService struct {
	products  repository.ProductRepository
	movements repository.InventoryMovementRepository
}

func NewInventoryService(products repository.ProductRepository, movements repository.InventoryMovementRepository) InventoryService {
	return &inventoryService{products: products, movements: movements}
}

func (s *inventoryService) DeductForSaleTx(tx *gorm.DB, productID uuid.UUID, qty int, saleID uuid.UUID, docNumber string, userID uuid.UUID) error {
	if qty <= 0 {
		return &ValidationError{Msg: "quantity must be positive"}
	}

	// Re-read under lock: the pre-flight check outside the tx may be stale.
	p, err := s.products.FindByIDForUpdateTx(tx, productID)
	if err != nil {
		return ErrProductNotFound
	}
	if p.Stock < qty {
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: p.Stock}
	}

	if err := s.products.UpdateStockTx(tx, productID, -qty); err != nil {
		return fmt.Errorf("deduct stock: %w", err)
	}

	saleRef := saleID
	return s.movements.CreateTx(tx, &model.InventoryMovement{
		ProductID:   productID,
		Type:        model.MovementSale,
		Quantity:    -qty,
		StockBefore: p.Stock,
		StockAfter:  p.Stock - qty,
		Reason:      fmt.Sprintf("Sale %s", docNumber),
		SaleID:      &saleRef,
		UserID:      userID,
	})
}

func (s *inventoryService) RestoreForCancellationTx(tx *gorm.DB, productID uuid.UUID, qty int, saleID uuid.UUID, reason string, userID uuid.UUID) error {
	p, err := s.products.FindByIDForUpdateTx(tx, productID)
	if err != nil {
		return ErrProductNotFound
	}

	if err := s.products.UpdateStockTx(tx, productID, qty); err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	saleRef := saleID
	return s.movements.CreateTx(tx, &model.InventoryMovement{
		ProductID:   productID,
		Type:        model.MovementCancellation,
		Quantity:    qty,
		StockBefore: p.Stock,
		StockAfter:  p.Stock + qty,
		Reason:      reason,
		SaleID:      &saleRef,
		UserID:      userID,
	})
}

func (s *inventoryService) Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string, userID uuid.UUID) (*dto.MovementResponse, error) {
	if delta == 0 {
		return nil, &ValidationError{Msg: "delta must be non-zero"}
	}

	var mov model.InventoryMovement
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		p, err := s.products.FindByIDForUpdateTx(tx, productID)
		if err != nil {
			return ErrProductNotFound
		}
		if p.Stock+delta < 0 {
			return &InsufficientStockError{ProductID: productID, Requested: -delta, Available: p.Stock}
		}

		if err := s.products.UpdateStockTx(tx, productID, delta); err != nil {
			return err
		}

		mov = model.InventoryMovement{
			ProductID:   productID,
			Type:        model.MovementManual,
			Quantity:    delta,
			StockBefore: p.Stock,
			StockAfter:  p.Stock + delta,
			Reason:      reason,
			UserID:      userID,
		}
		return s.movements.CreateTx(tx, &mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := movementToResponse(&mov)
	return &resp, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, movementToResponse(&movements[i]))
	}
	return &dto.MovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *inventoryService) LowStockAlerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	products, err := s.products.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.StockAlertResponse, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, dto.StockAlertResponse{
			ProductID: p.ID.String(),
			Code:      p.Code,
			Name:      p.Name,
			Stock:     p.Stock,
			MinStock:  p.MinStock,
		})
	}
	return alerts, nil
}

func movementToResponse(m *model.InventoryMovement) dto.MovementResponse {
	name := ""
	if m.Product != nil {
		name = m.Product.Name
	}
	var saleID *string
	if m.SaleID != nil {
		s := m.SaleID.String()
		saleID = &s
	}
	return dto.MovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Product:     name,
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		SaleID:      saleID,
		CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
