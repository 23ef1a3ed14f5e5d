package dto

import (
	"opticpos/internal/model"
	"opticpos/internal/syncer"
)

// CatalogSyncRequest carries one entity type's rows for a batched upsert.
// Exactly one slice is populated, matching the :entity path segment.
type CatalogSyncRequest struct {
	Frames           []model.Frame           `json:"frames,omitempty"`
	LensTypes        []model.LensType        `json:"lens_types,omitempty"`
	LensCoatings     []model.LensCoating     `json:"lens_coatings,omitempty"`
	LensThicknesses  []model.LensThickness   `json:"lens_thicknesses,omitempty"`
	LensCombinations []model.LensCombination `json:"lens_combinations,omitempty"`
	ContactLenses    []model.ContactLens     `json:"contact_lenses,omitempty"`
	ServiceItems     []model.ServiceItem     `json:"service_items,omitempty"`
}

// LedgerSyncResponse reports the outcome of a full-snapshot reconciliation.
type LedgerSyncResponse struct {
	Invoices syncer.Result `json:"invoices"`
	Refunds  syncer.Result `json:"refunds"`
	// DatesAggregated lists the calendar days whose daily/monthly summaries
	// were recomputed after the record push.
	DatesAggregated []string `json:"dates_aggregated"`
}
