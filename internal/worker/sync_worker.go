package worker

// sync_worker.go
// Processes ledger sync jobs from QueueLedgerSync: flattens the referenced
// in-memory ledger entities into reporting records, upserts them through the
// circuit breaker, then recomputes the daily (and cascaded monthly) summaries
// for the affected dates. Exhausted jobs land in the DLQ.

import (
	"context"
	"encoding/json"

	"opticpos/internal/infra"
	"opticpos/internal/ledger"
	"opticpos/internal/model"
	"opticpos/internal/repository"
	"opticpos/internal/syncer"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Aggregator triggers the daily→monthly rollup for one date. Satisfied by
// service.ReportService; declared here to keep the worker package below the
// service layer.
type Aggregator interface {
	UpdateDailySummary(ctx context.Context, date, locationID string) error
}

// LedgerSyncWorker pushes single ledger mutations to the remote store.
type LedgerSyncWorker struct {
	store      *ledger.Store
	records    repository.RecordRepository
	aggregator Aggregator
	cb         *infra.CircuitBreaker
	rdb        *redis.Client
	locationID string
}

func NewLedgerSyncWorker(
	store *ledger.Store,
	records repository.RecordRepository,
	aggregator Aggregator,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
	locationID string,
) *LedgerSyncWorker {
	return &LedgerSyncWorker{
		store:      store,
		records:    records,
		aggregator: aggregator,
		cb:         cb,
		rdb:        rdb,
		locationID: locationID,
	}
}

// Process handles one ledger sync job. Record upserts reuse the batch
// pipeline with a single-element batch so retry/backoff behavior is uniform
// with the bulk sync path.
func (w *LedgerSyncWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload LedgerSyncPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("sync_worker: invalid payload")
		return
	}

	failed := false

	if payload.InvoiceID != "" {
		inv, err := w.store.InvoiceByID(payload.InvoiceID)
		if err != nil {
			log.Error().Str("invoice_id", payload.InvoiceID).Msg("sync_worker: invoice vanished from ledger")
		} else {
			rec := model.NewInvoiceRecord(inv, w.locationID)
			res := syncer.BatchUpsert(ctx, []model.InvoiceRecord{rec},
				func(r model.InvoiceRecord) string { return r.ID },
				func(ctx context.Context, batch []model.InvoiceRecord) error {
					return w.cb.Execute(func() error {
						return w.records.UpsertInvoiceRecords(ctx, batch)
					})
				}, syncer.Options{})
			if res.Failed > 0 {
				failed = true
			}
		}
	}

	if payload.RefundID != "" {
		refund := w.findRefund(payload.RefundID)
		if refund == nil {
			log.Error().Str("refund_id", payload.RefundID).Msg("sync_worker: refund vanished from ledger")
		} else {
			rec := model.NewRefundRecord(refund, w.locationID)
			res := syncer.BatchUpsert(ctx, []model.RefundRecord{rec},
				func(r model.RefundRecord) string { return r.ID },
				func(ctx context.Context, batch []model.RefundRecord) error {
					return w.cb.Execute(func() error {
						return w.records.UpsertRefundRecords(ctx, batch)
					})
				}, syncer.Options{})
			if res.Failed > 0 {
				failed = true
			}
		}
	}

	if failed {
		SendToDLQ(ctx, w.rdb, QueueLedgerSync, "ledger_sync", raw,
			"remote upsert failed after all retries", syncer.MaxRetries+1)
		return
	}

	for _, date := range payload.Dates {
		if err := w.aggregator.UpdateDailySummary(ctx, date, w.locationID); err != nil {
			log.Error().Err(err).Str("date", date).Msg("sync_worker: daily rollup failed")
		}
	}
}

func (w *LedgerSyncWorker) findRefund(refundID string) *model.Refund {
	for _, r := range w.store.AllRefunds() {
		if r.ID == refundID {
			return &r
		}
	}
	return nil
}
