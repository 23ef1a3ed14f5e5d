package repository

import (
	"context"

	"opticpos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository upserts the pricing/inventory catalog rows pushed by the
// batched sync pipeline. All upserts are keyed on the client-assigned id.
type CatalogRepository interface {
	UpsertFrames(ctx context.Context, rows []model.Frame) error
	UpsertLensTypes(ctx context.Context, rows []model.LensType) error
	UpsertLensCoatings(ctx context.Context, rows []model.LensCoating) error
	UpsertLensThicknesses(ctx context.Context, rows []model.LensThickness) error
	UpsertLensCombinations(ctx context.Context, rows []model.LensCombination) error
	UpsertContactLenses(ctx context.Context, rows []model.ContactLens) error
	UpsertServiceItems(ctx context.Context, rows []model.ServiceItem) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

// upsertByID inserts rows, replacing existing ones that share a primary id.
func upsertByID[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rows).Error
}

func (r *catalogRepo) UpsertFrames(ctx context.Context, rows []model.Frame) error {
	return upsertByID(ctx, r.db, rows)
}

func (r *catalogRepo) UpsertLensTypes(ctx context.Context, rows []model.LensType) error {
	return upsertByID(ctx, r.db, rows)
}

func (r *catalogRepo) UpsertLensCoatings(ctx context.Context, rows []model.LensCoating) error {
	return upsertByID(ctx, r.db, rows)
}

func (r *catalogRepo) UpsertLensThicknesses(ctx context.Context, rows []model.LensThickness) error {
	return upsertByID(ctx, r.db, rows)
}

func (r *catalogRepo) UpsertLensCombinations(ctx context.Context, rows []model.LensCombination) error {
	return upsertByID(ctx, r.db, rows)
}

func (r *catalogRepo) UpsertContactLenses(ctx context.Context, rows []model.ContactLens) error {
	return upsertByID(ctx, r.db, rows)
}

func (r *catalogRepo) UpsertServiceItems(ctx context.Context, rows []model.ServiceItem) error {
	return upsertByID(ctx, r.db, rows)
}
