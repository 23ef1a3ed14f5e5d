package handler

import (
	"errors"
	"net/http"

	"opticpos/internal/apierror"
	"opticpos/internal/dto"
	"opticpos/internal/ledger"
	"opticpos/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// ledgerErrStatus maps ledger errors onto HTTP statuses.
func ledgerErrStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvoiceNotFound), errors.Is(err, ledger.ErrWorkOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvoiceClosed), errors.Is(err, ledger.ErrAlreadyRefunded):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Create godoc
// @Summary      Create an invoice
// @Description  Registers a sale with an optional initial deposit; glasses/contacts sales get a linked work order.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateInvoiceRequest true "Invoice details"
// @Success      201  {object} dto.InvoiceResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Fetch one invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice id"
// @Success      200 {object} model.Invoice
// @Failure      404 {object} apierror.APIError
// @Router       /v1/invoices/{id} [get]
func (h *InvoicesHandler) Get(c *gin.Context) {
	inv, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, inv)
}

// AddPayment godoc
// @Summary      Apply a partial payment
// @Description  Appends a dated payment; overpayment clamps the remaining balance to zero. Refunded/archived invoices reject payments.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id   path string             true "Invoice id"
// @Param        body body dto.PaymentRequest true "Payment"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/invoices/{id}/payments [post]
func (h *InvoicesHandler) AddPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkPaid godoc
// @Summary      Settle an invoice
// @Description  Adds one payment for exactly the outstanding balance.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id   path string              true "Invoice id"
// @Param        body body dto.MarkPaidRequest true "Settlement"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/invoices/{id}/pay [post]
func (h *InvoicesHandler) MarkPaid(c *gin.Context) {
	var req dto.MarkPaidRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pickup godoc
// @Summary      Mark picked up
// @Description  Flags the invoice (or its work order) picked up; the flag propagates to the linked counterpart.
// @Tags         invoices
// @Accept       json
// @Param        id   path string            true "Invoice or work order id"
// @Param        body body dto.PickupRequest true "Target side"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/invoices/{id}/pickup [post]
func (h *InvoicesHandler) Pickup(c *gin.Context) {
	var req dto.PickupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.MarkPickedUp(c.Request.Context(), c.Param("id"), req.IsInvoice); err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Update godoc
// @Summary      Update an invoice
// @Description  Replaces mutable fields; a save carrying a new last_edited_at appends one edit-history entry (idempotent per timestamp).
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id   path string                   true "Invoice id"
// @Param        body body dto.UpdateInvoiceRequest true "Updated fields"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/invoices/{id} [put]
func (h *InvoicesHandler) Update(c *gin.Context) {
	var req dto.UpdateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refund godoc
// @Summary      Refund an invoice
// @Description  Emits one refund record and flags invoice and linked work order refunded. Deposit/remaining stay untouched.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id   path string            true "Invoice id"
// @Param        body body dto.RefundRequest true "Refund"
// @Success      200  {object} dto.RefundResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/invoices/{id}/refund [post]
func (h *InvoicesHandler) Refund(c *gin.Context) {
	var req dto.RefundRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refund(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(ledgerErrStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Unpaid godoc
// @Summary      List unpaid invoices
// @Tags         invoices
// @Produce      json
// @Success      200 {array} model.Invoice
// @Router       /v1/invoices/unpaid [get]
func (h *InvoicesHandler) Unpaid(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Unpaid(c.Request.Context()))
}

// Archived godoc
// @Summary      List archived invoices
// @Tags         invoices
// @Produce      json
// @Success      200 {array} model.Invoice
// @Router       /v1/invoices/archived [get]
func (h *InvoicesHandler) Archived(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ArchivedInvoices(c.Request.Context()))
}

// ByPatient godoc
// @Summary      List a patient's active invoices
// @Tags         patients
// @Produce      json
// @Param        id path string true "Patient id"
// @Success      200 {array} model.Invoice
// @Router       /v1/patients/{id}/invoices [get]
func (h *InvoicesHandler) ByPatient(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.InvoicesByPatient(c.Request.Context(), c.Param("id")))
}
