package service

// stubs_test.go
// In-memory repository stubs shared by the service unit tests. They run fully
// in memory, without Postgres: runTx sees a nil *gorm.DB (DB() returns nil)
// and calls the transaction body directly. There is no rollback here, so the
// services order their work guards-before-mutations and the tests assert that
// failure paths leave no partial state behind; atomicity of the commit itself
// is Postgres's job and is not simulated. Stale unlocked reads are modelled
// by wrapper stubs in the individual test files.

import (
	"context"
	"errors"
	"sync"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── SaleRepository stub ──────────────────────────────────────────────────────

type stubSaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]*model.Sale
	byRef map[string]uuid.UUID
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{
		sales: make(map[uuid.UUID]*model.Sale),
		byRef: make(map[string]uuid.UUID),
	}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	s.CreatedAt = time.Now()
	cloned := *s
	r.sales[s.ID] = &cloned
	if s.ClientReference != nil {
		r.byRef[*s.ClientReference] = s.ID
	}
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *s
	return &cloned, nil
}

func (r *stubSaleRepo) FindByClientReference(_ context.Context, ref string) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *r.sales[id]
	return &cloned, nil
}

func (r *stubSaleRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) UpdateCancelledTx(_ *gorm.DB, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return errors.New("record not found")
	}
	if s.Status == string(model.StatusCancelled) {
		return gorm.ErrRecordNotFound // mirrors WHERE status <> 'cancelled': zero rows
	}
	s.Status = string(model.StatusCancelled)
	s.CancelReason = &reason
	return nil
}

func (r *stubSaleRepo) MarkClosedTx(_ *gorm.DB, id uuid.UUID, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return errors.New("record not found")
	}
	if s.IsClosed {
		return nil // mirrors WHERE is_closed = false: zero rows affected
	}
	s.IsClosed = true
	t := closedAt
	s.CashClosureDate = &t
	return nil
}

func (r *stubSaleRepo) FindUnclosedPaid(_ context.Context, start, end time.Time) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Sale
	for _, s := range r.sales {
		if s.Status == string(model.StatusPaid) && !s.IsClosed &&
			!s.SaleDate.Before(start) && s.SaleDate.Before(end) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *stubSaleRepo) FindClosedBetween(_ context.Context, start, end time.Time) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Sale
	for _, s := range r.sales {
		if !s.IsClosed || s.CashClosureDate == nil {
			continue
		}
		if !start.IsZero() && s.CashClosureDate.Before(start) {
			continue
		}
		if !end.IsZero() && !s.CashClosureDate.Before(end) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (r *stubSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Sale
	for _, s := range r.sales {
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p model.Product) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = &p
	return p.ID
}

func (r *stubProductRepo) stockOf(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code && p.Active {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Product
	for _, p := range r.products {
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *stubProductRepo) FindLowStock(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errors.New("record not found")
	}
	p.Stock += delta
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── InventoryMovementRepository stub ─────────────────────────────────────────

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.InventoryMovement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.InventoryMovement
	for _, m := range r.movements {
		if filter.ProductID != "" && m.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		result = append(result, m)
	}
	return result, int64(len(result)), nil
}

func (r *stubMovementRepo) FindBySaleID(_ context.Context, saleID uuid.UUID) ([]model.InventoryMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.InventoryMovement
	for _, m := range r.movements {
		if m.SaleID != nil && *m.SaleID == saleID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *stubMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

var _ repository.InventoryMovementRepository = (*stubMovementRepo)(nil)

// ── DocumentCounterRepository stub ───────────────────────────────────────────

type stubCounterRepo struct {
	mu       sync.Mutex
	counters map[string]*model.DocumentCounter
}

func newStubCounterRepo() *stubCounterRepo {
	return &stubCounterRepo{counters: map[string]*model.DocumentCounter{
		model.DocumentBoleta:  {DocumentType: model.DocumentBoleta, Prefix: "B", Series: 1},
		model.DocumentFactura: {DocumentType: model.DocumentFactura, Prefix: "F", Series: 1},
	}}
}

func (r *stubCounterRepo) NextTx(_ *gorm.DB, documentType string) (*repository.IssuedNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[documentType]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.LastSequence++
	return &repository.IssuedNumber{Prefix: c.Prefix, Series: c.Series, Sequence: c.LastSequence}, nil
}

func (r *stubCounterRepo) Seed(_ context.Context) error { return nil }

func (r *stubCounterRepo) Find(_ context.Context, documentType string) (*model.DocumentCounter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[documentType]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *c
	return &cloned, nil
}

var _ repository.DocumentCounterRepository = (*stubCounterRepo)(nil)

// ── CustomerRepository stub ──────────────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return c, nil
}

func (r *stubCustomerRepo) FindByDocument(_ context.Context, document string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Document == document {
			return c, nil
		}
	}
	return nil, errors.New("record not found")
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)
