package handler

import (
	"net/http"

	"opticpos/internal/apierror"
	"opticpos/internal/dto"
	"opticpos/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkOrdersHandler struct{ svc service.InvoiceService }

func NewWorkOrdersHandler(svc service.InvoiceService) *WorkOrdersHandler {
	return &WorkOrdersHandler{svc: svc}
}

// Cancel godoc
// @Summary      Cancel a work order
// @Description  Refunds any collected deposit, then archives the work order and its invoice with the balance written off.
// @Tags         workorders
// @Accept       json
// @Produce      json
// @Param        id   path string                     true "Work order id"
// @Param        body body dto.CancelWorkOrderRequest true "Cancellation reason"
// @Success      200  {object} dto.CancelWorkOrderResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/workorders/{id} [delete]
func (h *WorkOrdersHandler) Cancel(c *gin.Context) {
	var req dto.CancelWorkOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CancelWorkOrder(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Archived godoc
// @Summary      List archived work orders
// @Tags         workorders
// @Produce      json
// @Success      200 {array} model.WorkOrder
// @Router       /v1/workorders/archived [get]
func (h *WorkOrdersHandler) Archived(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ArchivedWorkOrders(c.Request.Context()))
}

// ByPatient godoc
// @Summary      List a patient's active work orders
// @Tags         patients
// @Produce      json
// @Param        id path string true "Patient id"
// @Success      200 {array} model.WorkOrder
// @Router       /v1/patients/{id}/workorders [get]
func (h *WorkOrdersHandler) ByPatient(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.WorkOrdersByPatient(c.Request.Context(), c.Param("id")))
}
