package repository

import (
	"context"

	"opticpos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository persists the flattened invoice/refund projections used for
// reporting. Upserts are keyed on the primary id so re-syncing the same
// entity is idempotent.
type RecordRepository interface {
	UpsertInvoiceRecords(ctx context.Context, records []model.InvoiceRecord) error
	UpsertRefundRecords(ctx context.Context, records []model.RefundRecord) error
	InvoiceRecordsByDate(ctx context.Context, date, locationID string) ([]model.InvoiceRecord, error)
	RefundRecordsByDate(ctx context.Context, date, locationID string) ([]model.RefundRecord, error)
}

type recordRepo struct{ db *gorm.DB }

func NewRecordRepository(db *gorm.DB) RecordRepository { return &recordRepo{db: db} }

func (r *recordRepo) UpsertInvoiceRecords(ctx context.Context, records []model.InvoiceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&records).Error
}

func (r *recordRepo) UpsertRefundRecords(ctx context.Context, records []model.RefundRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&records).Error
}

func (r *recordRepo) InvoiceRecordsByDate(ctx context.Context, date, locationID string) ([]model.InvoiceRecord, error) {
	var records []model.InvoiceRecord
	err := r.db.WithContext(ctx).
		Where("date = ? AND location_id = ?", date, locationID).
		Find(&records).Error
	return records, err
}

func (r *recordRepo) RefundRecordsByDate(ctx context.Context, date, locationID string) ([]model.RefundRecord, error) {
	var records []model.RefundRecord
	err := r.db.WithContext(ctx).
		Where("date = ? AND location_id = ?", date, locationID).
		Find(&records).Error
	return records, err
}
