package dto

import (
	"time"

	"opticpos/internal/model"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest registers a new sale. For glasses/contacts a work
// order is created and linked alongside the invoice.
type CreateInvoiceRequest struct {
	PatientID    *string `json:"patient_id"`
	PatientName  string  `json:"patient_name" validate:"required"`
	PatientPhone string  `json:"patient_phone"`

	InvoiceType string             `json:"invoice_type" validate:"required,oneof=glasses contacts exam repair"`
	Items       model.InvoiceItems `json:"items"`

	Total    decimal.Decimal `json:"total" validate:"required,gt=0"`
	Discount decimal.Decimal `json:"discount" validate:"min=0"`
	Deposit  decimal.Decimal `json:"deposit" validate:"min=0"`

	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash card transfer"`
	AuthNumber    *string `json:"auth_number"`

	// Work order selections (glasses/contacts only).
	Prescription *string `json:"prescription"`
}

// PaymentRequest applies one partial payment to an invoice.
type PaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method     string          `json:"method" validate:"required,oneof=cash card transfer"`
	AuthNumber *string         `json:"auth_number"`
}

// MarkPaidRequest settles the outstanding balance in one payment.
type MarkPaidRequest struct {
	Method     string  `json:"method" validate:"omitempty,oneof=cash card transfer"`
	AuthNumber *string `json:"auth_number"`
}

// UpdateInvoiceRequest replaces the mutable descriptive fields of an invoice.
// LastEditedAt drives the edit-history idempotency guard: two saves carrying
// the same timestamp append a single history entry.
type UpdateInvoiceRequest struct {
	PatientID    *string            `json:"patient_id"`
	PatientName  string             `json:"patient_name" validate:"required"`
	PatientPhone string             `json:"patient_phone"`
	Items        model.InvoiceItems `json:"items"`
	Discount     decimal.Decimal    `json:"discount" validate:"min=0"`
	LastEditedAt *time.Time         `json:"last_edited_at"`
	EditNotes    string             `json:"edit_notes"`
}

// RefundRequest reverses an invoice.
type RefundRequest struct {
	Amount     decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method     string          `json:"method" validate:"required,oneof=cash card transfer"`
	Reason     string          `json:"reason" validate:"required"`
	StaffNotes *string         `json:"staff_notes"`
}

// CancelWorkOrderRequest drives the compensating cancel flow.
type CancelWorkOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// PickupRequest marks an invoice or work order picked up.
type PickupRequest struct {
	IsInvoice bool `json:"is_invoice"`
}

// InvoiceResponse mirrors the ledger invoice for clients.
type InvoiceResponse struct {
	Invoice *model.Invoice `json:"invoice"`
	// Notice carries the user-facing confirmation surfaced by the notifier.
	Notice string `json:"notice,omitempty"`
}

// RefundResponse reports a completed refund.
type RefundResponse struct {
	RefundID string          `json:"refund_id"`
	Amount   decimal.Decimal `json:"amount"`
	Invoice  *model.Invoice  `json:"invoice"`
	Notice   string          `json:"notice,omitempty"`
}

// CancelWorkOrderResponse reports the compensating cancel outcome. RefundID
// is empty when the invoice held no deposit and no refund was issued.
type CancelWorkOrderResponse struct {
	RefundID  string           `json:"refund_id,omitempty"`
	Refunded  bool             `json:"refunded"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	WorkOrder *model.WorkOrder `json:"work_order"`
	Notice    string           `json:"notice,omitempty"`
}
