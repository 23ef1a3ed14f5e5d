package service

import (
	"context"
	"fmt"
	"sort"

	"opticpos/internal/dto"
	"opticpos/internal/infra"
	"opticpos/internal/ledger"
	"opticpos/internal/model"
	"opticpos/internal/repository"
	"opticpos/internal/syncer"

	"github.com/rs/zerolog/log"
)

// SyncService exposes the bulk reconciliation surfaces: a full ledger
// snapshot push and the per-entity catalog upserts. All of them run through
// the one generic batch pipeline.
type SyncService interface {
	// SyncAllInvoicesAndRefunds pushes the full local ledger snapshot to the
	// remote projection, then recomputes the daily/monthly summaries for every
	// affected date.
	SyncAllInvoicesAndRefunds(ctx context.Context, onProgress syncer.Progress) (*dto.LedgerSyncResponse, error)
	SyncCatalog(ctx context.Context, entity string, req dto.CatalogSyncRequest) (syncer.Result, error)
}

type syncService struct {
	store      *ledger.Store
	records    repository.RecordRepository
	catalog    repository.CatalogRepository
	reports    ReportService
	cb         *infra.CircuitBreaker
	locationID string
	opts       syncer.Options
}

func NewSyncService(
	store *ledger.Store,
	records repository.RecordRepository,
	catalog repository.CatalogRepository,
	reports ReportService,
	cb *infra.CircuitBreaker,
	locationID string,
	opts syncer.Options,
) SyncService {
	return &syncService{
		store:      store,
		records:    records,
		catalog:    catalog,
		reports:    reports,
		cb:         cb,
		locationID: locationID,
		opts:       opts,
	}
}

// guarded wraps an upsert in the circuit breaker when one is configured.
func guarded[T any](cb *infra.CircuitBreaker, upsert func(context.Context, []T) error) func(context.Context, []T) error {
	if cb == nil {
		return upsert
	}
	return func(ctx context.Context, batch []T) error {
		return cb.Execute(func() error { return upsert(ctx, batch) })
	}
}

func (s *syncService) SyncAllInvoicesAndRefunds(ctx context.Context, onProgress syncer.Progress) (*dto.LedgerSyncResponse, error) {
	invoices := s.store.AllInvoices()
	refunds := s.store.AllRefunds()

	invoiceRecords := make([]model.InvoiceRecord, 0, len(invoices))
	dates := make(map[string]struct{})
	for _, inv := range invoices {
		rec := model.NewInvoiceRecord(inv, s.locationID)
		invoiceRecords = append(invoiceRecords, rec)
		dates[rec.Date] = struct{}{}
	}
	refundRecords := make([]model.RefundRecord, 0, len(refunds))
	for i := range refunds {
		rec := model.NewRefundRecord(&refunds[i], s.locationID)
		refundRecords = append(refundRecords, rec)
		dates[rec.Date] = struct{}{}
	}

	opts := s.opts
	opts.OnProgress = onProgress

	invRes := syncer.BatchUpsert(ctx, invoiceRecords,
		func(r model.InvoiceRecord) string { return r.ID },
		guarded(s.cb, s.records.UpsertInvoiceRecords), opts)
	refRes := syncer.BatchUpsert(ctx, refundRecords,
		func(r model.RefundRecord) string { return r.ID },
		guarded(s.cb, s.records.UpsertRefundRecords), opts)

	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	aggregated := make([]string, 0, len(sorted))
	for _, d := range sorted {
		if err := s.reports.UpdateDailySummary(ctx, d, s.locationID); err != nil {
			log.Error().Err(err).Str("date", d).Msg("ledger sync: daily rollup failed")
			continue
		}
		aggregated = append(aggregated, d)
	}

	return &dto.LedgerSyncResponse{
		Invoices:        invRes,
		Refunds:         refRes,
		DatesAggregated: aggregated,
	}, nil
}

func (s *syncService) SyncCatalog(ctx context.Context, entity string, req dto.CatalogSyncRequest) (syncer.Result, error) {
	switch entity {
	case "frames":
		return syncer.BatchUpsert(ctx, req.Frames,
			func(r model.Frame) string { return r.ID },
			guarded(s.cb, s.catalog.UpsertFrames), s.opts), nil
	case "lens-types":
		return syncer.BatchUpsert(ctx, req.LensTypes,
			func(r model.LensType) string { return r.ID },
			guarded(s.cb, s.catalog.UpsertLensTypes), s.opts), nil
	case "lens-coatings":
		return syncer.BatchUpsert(ctx, req.LensCoatings,
			func(r model.LensCoating) string { return r.ID },
			guarded(s.cb, s.catalog.UpsertLensCoatings), s.opts), nil
	case "lens-thicknesses":
		return syncer.BatchUpsert(ctx, req.LensThicknesses,
			func(r model.LensThickness) string { return r.ID },
			guarded(s.cb, s.catalog.UpsertLensThicknesses), s.opts), nil
	case "lens-combinations":
		return syncer.BatchUpsert(ctx, req.LensCombinations,
			func(r model.LensCombination) string { return r.ID },
			guarded(s.cb, s.catalog.UpsertLensCombinations), s.opts), nil
	case "contact-lenses":
		return syncer.BatchUpsert(ctx, req.ContactLenses,
			func(r model.ContactLens) string { return r.ID },
			guarded(s.cb, s.catalog.UpsertContactLenses), s.opts), nil
	case "service-items":
		return syncer.BatchUpsert(ctx, req.ServiceItems,
			func(r model.ServiceItem) string { return r.ID },
			guarded(s.cb, s.catalog.UpsertServiceItems), s.opts), nil
	default:
		return syncer.Result{}, fmt.Errorf("unknown catalog entity %q", entity)
	}
}
