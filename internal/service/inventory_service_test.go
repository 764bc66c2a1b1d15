package service

// inventory_service_test.go
// Tests for the stock ledger: manual adjustments, the no-negative-stock
// invariant, movement listing, and low stock alerts.

import (
	"context"
	"testing"

	"minimarket/internal/dto"
	"minimarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryFixture() (*stubProductRepo, *stubMovementRepo, InventoryService) {
	products := newStubProductRepo()
	movements := newStubMovementRepo()
	return products, movements, NewInventoryService(products, movements)
}

func TestAdjust_PositiveDelta(t *testing.T) {
	products, movements, svc := newInventoryFixture()
	userID := uuid.New()
	id := products.add(model.Product{
		Code: "SKU-1", Name: "Arroz", Category: "abarrotes",
		SalePrice: decimal.RequireFromString("4.50"), Stock: 10, Active: true,
	})

	resp, err := svc.Adjust(context.Background(), id, 5, "restock from supplier", userID)
	require.NoError(t, err)
	assert.Equal(t, model.MovementManual, resp.Type)
	assert.Equal(t, 5, resp.Quantity)
	assert.Equal(t, 10, resp.StockBefore)
	assert.Equal(t, 15, resp.StockAfter)
	assert.Equal(t, 15, products.stockOf(id))
	assert.Equal(t, 1, movements.count())
}

func TestAdjust_NegativeDeltaWithinStock(t *testing.T) {
	products, _, svc := newInventoryFixture()
	id := products.add(model.Product{
		Code: "SKU-2", Name: "Leche", Category: "lacteos",
		SalePrice: decimal.RequireFromString("5.50"), Stock: 8, Active: true,
	})

	resp, err := svc.Adjust(context.Background(), id, -3, "breakage during handling", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, -3, resp.Quantity)
	assert.Equal(t, 5, products.stockOf(id))
}

func TestAdjust_RejectsNegativeResult(t *testing.T) {
	products, movements, svc := newInventoryFixture()
	id := products.add(model.Product{
		Code: "SKU-3", Name: "Aceite", Category: "abarrotes",
		SalePrice: decimal.RequireFromString("9.00"), Stock: 2, Active: true,
	})

	_, err := svc.Adjust(context.Background(), id, -5, "impossible shrinkage", uuid.New())
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	// Nothing recorded
	assert.Equal(t, 2, products.stockOf(id))
	assert.Zero(t, movements.count())
}

func TestAdjust_RejectsZeroDelta(t *testing.T) {
	products, _, svc := newInventoryFixture()
	id := products.add(model.Product{
		Code: "SKU-4", Name: "Pan", Category: "panaderia",
		SalePrice: decimal.RequireFromString("1.00"), Stock: 10, Active: true,
	})

	_, err := svc.Adjust(context.Background(), id, 0, "noop", uuid.New())
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAdjust_UnknownProduct(t *testing.T) {
	_, _, svc := newInventoryFixture()
	_, err := svc.Adjust(context.Background(), uuid.New(), 1, "ghost product", uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListMovements_FiltersByProductAndType(t *testing.T) {
	products, _, svc := newInventoryFixture()
	userID := uuid.New()
	a := products.add(model.Product{
		Code: "SKU-5", Name: "Atún", Category: "conservas",
		SalePrice: decimal.RequireFromString("6.00"), Stock: 10, Active: true,
	})
	b := products.add(model.Product{
		Code: "SKU-6", Name: "Galletas", Category: "snacks",
		SalePrice: decimal.RequireFromString("2.50"), Stock: 10, Active: true,
	})

	_, err := svc.Adjust(context.Background(), a, 2, "inventory count correction", userID)
	require.NoError(t, err)
	_, err = svc.Adjust(context.Background(), b, 4, "inventory count correction", userID)
	require.NoError(t, err)

	resp, err := svc.ListMovements(context.Background(), dto.MovementFilter{ProductID: a.String()})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, a.String(), resp.Data[0].ProductID)

	all, err := svc.ListMovements(context.Background(), dto.MovementFilter{Type: model.MovementManual})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
}

func TestLowStockAlerts(t *testing.T) {
	products, _, svc := newInventoryFixture()
	products.add(model.Product{
		Code: "LOW-1", Name: "Azúcar", Category: "abarrotes",
		SalePrice: decimal.RequireFromString("3.50"), Stock: 2, MinStock: 5, Active: true,
	})
	products.add(model.Product{
		Code: "OK-1", Name: "Fideos", Category: "abarrotes",
		SalePrice: decimal.RequireFromString("1.80"), Stock: 50, MinStock: 5, Active: true,
	})
	products.add(model.Product{
		Code: "LOW-2", Name: "Descontinuado", Category: "otros",
		SalePrice: decimal.RequireFromString("1.00"), Stock: 0, MinStock: 5, Active: false,
	})

	alerts, err := svc.LowStockAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "LOW-1", alerts[0].Code)
	assert.Equal(t, 2, alerts[0].Stock)
	assert.Equal(t, 5, alerts[0].MinStock)
}
