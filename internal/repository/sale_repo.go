package repository

import (
	"context"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleRepository is the persistence gateway for sales. Methods suffixed Tx
// run against a live transaction handle supplied by the service layer, which
// owns the transaction boundary.
type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByClientReference(ctx context.Context, ref string) (*model.Sale, error)
	// FindByIDForUpdateTx locks the sale row for the remainder of the tx.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	// UpdateCancelledTx flips the sale to cancelled. It is guarded against
	// double cancellation: gorm.ErrRecordNotFound when no row was updated.
	UpdateCancelledTx(tx *gorm.DB, id uuid.UUID, reason string) error
	MarkClosedTx(tx *gorm.DB, id uuid.UUID, closedAt time.Time) error
	// FindUnclosedPaid returns paid, uncancelled, unclosed sales whose
	// sale_date falls in [start, end).
	FindUnclosedPaid(ctx context.Context, start, end time.Time) ([]model.Sale, error)
	// FindClosedBetween returns closed sales; zero-valued bounds are open.
	FindClosedBetween(ctx context.Context, start, end time.Time) ([]model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	// DB exposes the underlying handle so services can open transactions.
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) FindByClientReference(ctx context.Context, ref string) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").
		Where("client_reference = ?", ref).First(&s).Error
	return &s, err
}

func (r *saleRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *saleRepo) UpdateCancelledTx(tx *gorm.DB, id uuid.UUID, reason string) error {
	res := tx.Model(&model.Sale{}).
		Where("id = ? AND status <> ?", id, string(model.StatusCancelled)).
		Updates(map[string]interface{}{
			"status":        string(model.StatusCancelled),
			"cancel_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	// Zero rows means another transaction cancelled the sale first.
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) MarkClosedTx(tx *gorm.DB, id uuid.UUID, closedAt time.Time) error {
	return tx.Model(&model.Sale{}).Where("id = ? AND is_closed = false", id).
		Updates(map[string]interface{}{
			"is_closed":         true,
			"cash_closure_date": closedAt,
		}).Error
}

func (r *saleRepo) FindUnclosedPaid(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_closed = false AND sale_date >= ? AND sale_date < ?",
			string(model.StatusPaid), start, end).
		Order("sale_date ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindClosedBetween(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	q := r.db.WithContext(ctx).Where("is_closed = true")
	if !start.IsZero() {
		q = q.Where("cash_closure_date >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("cash_closure_date < ?", end)
	}
	var sales []model.Sale
	err := q.Order("cash_closure_date ASC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(sale_date) = ?", filter.Date)
	} else {
		// Default: today
		q = q.Where("DATE(sale_date) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Product").
		Order("sale_date DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error

	return sales, total, err
}
