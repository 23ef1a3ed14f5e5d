package repository

import (
	"context"

	"opticpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryRepository persists the derived daily/monthly aggregation rows.
// Daily rows upsert by (date, location_id); monthly rows by
// (year, month, location_id).
type SummaryRepository interface {
	FindDaily(ctx context.Context, date, locationID string) (*model.DailySalesSummary, error)
	FindDailyWithChildren(ctx context.Context, date, locationID string) (*model.DailySalesSummary, error)
	SaveDaily(ctx context.Context, s *model.DailySalesSummary) error
	// ReplaceDailyChildren deletes and fully regenerates the day's breakdown
	// rows — delete-then-reinsert, not merge, so stale groupings cannot persist.
	ReplaceDailyChildren(ctx context.Context, dailyID uuid.UUID, methods []model.PaymentMethodSummary, types []model.InvoiceTypeSummary) error
	DailyRange(ctx context.Context, from, to, locationID string) ([]model.DailySalesSummary, error)
	FindMonthly(ctx context.Context, year, month int, locationID string) (*model.MonthlySalesSummary, error)
	SaveMonthly(ctx context.Context, s *model.MonthlySalesSummary) error
}

type summaryRepo struct{ db *gorm.DB }

func NewSummaryRepository(db *gorm.DB) SummaryRepository { return &summaryRepo{db: db} }

func (r *summaryRepo) FindDaily(ctx context.Context, date, locationID string) (*model.DailySalesSummary, error) {
	var s model.DailySalesSummary
	err := r.db.WithContext(ctx).
		Where("date = ? AND location_id = ?", date, locationID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *summaryRepo) FindDailyWithChildren(ctx context.Context, date, locationID string) (*model.DailySalesSummary, error) {
	var s model.DailySalesSummary
	err := r.db.WithContext(ctx).
		Preload("PaymentMethods").Preload("InvoiceTypes").
		Where("date = ? AND location_id = ?", date, locationID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *summaryRepo) SaveDaily(ctx context.Context, s *model.DailySalesSummary) error {
	return r.db.WithContext(ctx).
		Omit("PaymentMethods", "InvoiceTypes").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "location_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_sales", "total_refunds", "net_sales",
				"glasses_count", "contacts_count", "exam_count", "updated_at",
			}),
		}).
		Create(s).Error
}

func (r *summaryRepo) ReplaceDailyChildren(ctx context.Context, dailyID uuid.UUID, methods []model.PaymentMethodSummary, types []model.InvoiceTypeSummary) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("daily_summary_id = ?", dailyID).Delete(&model.PaymentMethodSummary{}).Error; err != nil {
			return err
		}
		if err := tx.Where("daily_summary_id = ?", dailyID).Delete(&model.InvoiceTypeSummary{}).Error; err != nil {
			return err
		}
		if len(methods) > 0 {
			if err := tx.Create(&methods).Error; err != nil {
				return err
			}
		}
		if len(types) > 0 {
			if err := tx.Create(&types).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *summaryRepo) DailyRange(ctx context.Context, from, to, locationID string) ([]model.DailySalesSummary, error) {
	var rows []model.DailySalesSummary
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ? AND location_id = ?", from, to, locationID).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *summaryRepo) FindMonthly(ctx context.Context, year, month int, locationID string) (*model.MonthlySalesSummary, error) {
	var s model.MonthlySalesSummary
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ? AND location_id = ?", year, month, locationID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *summaryRepo) SaveMonthly(ctx context.Context, s *model.MonthlySalesSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "year"}, {Name: "month"}, {Name: "location_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_sales", "total_refunds", "net_sales",
				"glasses_count", "contacts_count", "exam_count", "updated_at",
			}),
		}).
		Create(s).Error
}
