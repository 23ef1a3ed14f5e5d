package service

import (
	"context"
	"testing"
	"time"

	"opticpos/internal/dto"
	"opticpos/internal/ledger"
	"opticpos/internal/model"
	"opticpos/internal/syncer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory CatalogRepository stub ─────────────────────────────────────────

type stubCatalogRepo struct {
	frames       []model.Frame
	serviceItems []model.ServiceItem
}

func (r *stubCatalogRepo) UpsertFrames(_ context.Context, rows []model.Frame) error {
	r.frames = append(r.frames, rows...)
	return nil
}
func (r *stubCatalogRepo) UpsertLensTypes(_ context.Context, _ []model.LensType) error { return nil }
func (r *stubCatalogRepo) UpsertLensCoatings(_ context.Context, _ []model.LensCoating) error {
	return nil
}
func (r *stubCatalogRepo) UpsertLensThicknesses(_ context.Context, _ []model.LensThickness) error {
	return nil
}
func (r *stubCatalogRepo) UpsertLensCombinations(_ context.Context, _ []model.LensCombination) error {
	return nil
}
func (r *stubCatalogRepo) UpsertContactLenses(_ context.Context, _ []model.ContactLens) error {
	return nil
}
func (r *stubCatalogRepo) UpsertServiceItems(_ context.Context, rows []model.ServiceItem) error {
	r.serviceItems = append(r.serviceItems, rows...)
	return nil
}

func fastSyncOpts() syncer.Options {
	return syncer.Options{BatchSize: 20, MaxRetries: 1, RetryDelay: time.Millisecond, BatchDelay: time.Millisecond}
}

func buildSyncSvc(t *testing.T) (SyncService, *ledger.Store, *stubRecordRepo, *stubSummaryRepo, *stubCatalogRepo) {
	t.Helper()
	store := ledger.NewStore()
	records := newStubRecordRepo()
	summaries := newStubSummaryRepo()
	catalog := &stubCatalogRepo{}
	reports := NewReportService(records, summaries)
	svc := NewSyncService(store, records, catalog, reports, nil, loc, fastSyncOpts())
	return svc, store, records, summaries, catalog
}

func TestSyncAllInvoicesAndRefunds_PushesAndAggregates(t *testing.T) {
	svc, store, records, summaries, _ := buildSyncSvc(t)

	_, err := store.CreateInvoice(&model.Invoice{
		PatientName: "Amira", Category: model.CategoryGlasses, Total: d("120.000"),
	}, d("40.000"), model.MethodCash, nil)
	require.NoError(t, err)
	paidID, err := store.CreateInvoice(&model.Invoice{
		PatientName: "Karim", Category: model.CategoryExam, Total: d("25.000"),
	}, d("25.000"), model.MethodCard, nil)
	require.NoError(t, err)
	_, err = store.ProcessRefund(paidID, d("25.000"), model.MethodCard, "rebooked", nil)
	require.NoError(t, err)

	resp, err := svc.SyncAllInvoicesAndRefunds(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Invoices.Success)
	assert.Equal(t, 0, resp.Invoices.Failed)
	assert.Equal(t, 1, resp.Refunds.Success)

	today := time.Now().Format("2006-01-02")
	assert.Equal(t, []string{today}, resp.DatesAggregated)
	require.Len(t, records.invoices[today], 2)
	require.Len(t, records.refunds[today], 1)

	daily := summaries.dailies[today]
	require.NotNil(t, daily)
	assert.True(t, daily.TotalSales.Equal(d("145.000")))
	assert.True(t, daily.TotalRefunds.Equal(d("25.000")))
	assert.True(t, daily.NetSales.Equal(d("120.000")))

	monthly := summaries.monthlies[[2]int{time.Now().Year(), int(time.Now().Month())}]
	require.NotNil(t, monthly)
	assert.True(t, monthly.NetSales.Equal(d("120.000")))
}

func TestSyncAllInvoicesAndRefunds_EmptyLedger(t *testing.T) {
	svc, _, _, _, _ := buildSyncSvc(t)

	resp, err := svc.SyncAllInvoicesAndRefunds(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, resp.Invoices.Success)
	assert.Zero(t, resp.Refunds.Success)
	assert.Empty(t, resp.DatesAggregated)
}

func TestSyncCatalog_KnownEntities(t *testing.T) {
	svc, _, _, _, catalog := buildSyncSvc(t)

	res, err := svc.SyncCatalog(context.Background(), "frames", dto.CatalogSyncRequest{
		Frames: []model.Frame{
			{ID: "fr-1", Brand: "RayBan", Model: "RB2132", Price: d("210.000")},
			{ID: "fr-2", Brand: "Persol", Model: "PO3019", Price: d("330.000")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	assert.Len(t, catalog.frames, 2)

	res, err = svc.SyncCatalog(context.Background(), "service-items", dto.CatalogSyncRequest{
		ServiceItems: []model.ServiceItem{{ID: "sv-1", Name: "Eye exam", Price: d("25.000")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Len(t, catalog.serviceItems, 1)
}

func TestSyncCatalog_UnknownEntity(t *testing.T) {
	svc, _, _, _, _ := buildSyncSvc(t)

	_, err := svc.SyncCatalog(context.Background(), "prescriptions", dto.CatalogSyncRequest{})
	assert.ErrorContains(t, err, "unknown catalog entity")
}
