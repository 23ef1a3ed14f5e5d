package handler

import (
	"net/http"

	"opticpos/internal/apierror"
	"opticpos/internal/dto"
	"opticpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SyncHandler struct{ svc service.SyncService }

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// Ledger godoc
// @Summary      Push the full ledger to the remote store
// @Description  Uploads every invoice and refund in batches with retry, then recomputes the summaries for all touched dates.
// @Tags         sync
// @Produce      json
// @Success      200 {object} dto.LedgerSyncResponse
// @Failure      502 {object} apierror.APIError
// @Router       /v1/sync/ledger [post]
func (h *SyncHandler) Ledger(c *gin.Context) {
	resp, err := h.svc.SyncAllInvoicesAndRefunds(c.Request.Context(), func(processed, total, success, failed int) {
		log.Debug().Int("processed", processed).Int("total", total).
			Int("success", success).Int("failed", failed).Msg("ledger sync progress")
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Catalog godoc
// @Summary      Upsert catalog entities
// @Description  Batch-upserts one catalog entity type. Entity is one of: frames, lens-types, lens-coatings, lens-thicknesses, lens-combinations, contact-lenses, service-items.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        entity path string                 true "Catalog entity"
// @Param        body   body dto.CatalogSyncRequest true "Items"
// @Success      200    {object} syncer.Result
// @Failure      400    {object} apierror.APIError
// @Router       /v1/sync/catalog/{entity} [post]
func (h *SyncHandler) Catalog(c *gin.Context) {
	var req dto.CatalogSyncRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := h.svc.SyncCatalog(c.Request.Context(), c.Param("entity"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}
