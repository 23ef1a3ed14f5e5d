package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice categories. "exam" invoices have no work order; the rest do.
const (
	CategoryGlasses  = "glasses"
	CategoryContacts = "contacts"
	CategoryExam     = "exam"
	CategoryRepair   = "repair"
)

// Payment methods accepted at the counter.
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
)

// Payment is an immutable record of money received against an invoice.
// Payments are appended to Invoice.Payments and never modified or removed.
type Payment struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	// Date is assigned by the ledger at application time, never by callers.
	Date       time.Time `json:"date"`
	AuthNumber *string   `json:"auth_number,omitempty"`
}

// EditHistoryEntry records one save of an invoice or work order.
// Entries are appended, never removed, and deduplicated by Timestamp equality.
type EditHistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes"`
}

// InvoiceItems carries the itemized components of a sale. All fields are
// optional and mutually contextual by category (a glasses invoice has
// lens/coating/frame, a contacts invoice has contact-lens items, etc.).
type InvoiceItems struct {
	LensType     *string          `json:"lens_type,omitempty"`
	LensPrice    *decimal.Decimal `json:"lens_price,omitempty"`
	Coating      *string          `json:"coating,omitempty"`
	CoatingPrice *decimal.Decimal `json:"coating_price,omitempty"`
	Thickness    *string          `json:"thickness,omitempty"`
	FrameBrand   *string          `json:"frame_brand,omitempty"`
	FrameModel   *string          `json:"frame_model,omitempty"`
	FramePrice   *decimal.Decimal `json:"frame_price,omitempty"`
	ContactLens  *string          `json:"contact_lens,omitempty"`
	ContactQty   *int             `json:"contact_qty,omitempty"`
	ServiceName  *string          `json:"service_name,omitempty"`
	RepairDesc   *string          `json:"repair_desc,omitempty"`
}

// Invoice is one sale transaction. Total is fixed at creation; Deposit is the
// cumulative amount paid; Remaining is derived and always equals
// max(0, Total - Deposit). IsPaid holds exactly when Remaining is zero.
type Invoice struct {
	ID string `json:"invoice_id"`

	PatientID    *string `json:"patient_id,omitempty"`
	PatientName  string  `json:"patient_name"`
	PatientPhone string  `json:"patient_phone"`

	Category string       `json:"invoice_type"`
	Items    InvoiceItems `json:"items"`

	Total     decimal.Decimal `json:"total"`
	Discount  decimal.Decimal `json:"discount"`
	Deposit   decimal.Decimal `json:"deposit"`
	Remaining decimal.Decimal `json:"remaining"`

	// PaymentMethod is the method of the most recent payment.
	PaymentMethod string    `json:"payment_method"`
	Payments      []Payment `json:"payments"`

	CreatedAt time.Time `json:"created_at"`

	IsPaid     bool `json:"is_paid"`
	IsPickedUp bool `json:"is_picked_up"`
	IsRefunded bool `json:"is_refunded"`
	IsArchived bool `json:"is_archived"`

	PickedUpAt *time.Time `json:"picked_up_at,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// Refund metadata — populated by ProcessRefund. At most one refund per
	// invoice. Independent of Deposit/Remaining bookkeeping.
	RefundID     *string          `json:"refund_id,omitempty"`
	RefundDate   *time.Time       `json:"refund_date,omitempty"`
	RefundAmount *decimal.Decimal `json:"refund_amount,omitempty"`
	RefundReason *string          `json:"refund_reason,omitempty"`
	RefundMethod *string          `json:"refund_method,omitempty"`

	// WorkOrderID links the fulfillment-side counterpart for glasses/contacts.
	WorkOrderID *string `json:"work_order_id,omitempty"`

	LastEditedAt *time.Time         `json:"last_edited_at,omitempty"`
	EditHistory  []EditHistoryEntry `json:"edit_history,omitempty"`
}

// Clone returns a deep copy so callers can never mutate ledger state through
// a returned pointer.
func (inv *Invoice) Clone() *Invoice {
	cp := *inv
	cp.Payments = append([]Payment(nil), inv.Payments...)
	cp.EditHistory = append([]EditHistoryEntry(nil), inv.EditHistory...)
	return &cp
}

// Refund is an immutable record of money returned against an invoice.
type Refund struct {
	ID         string          `json:"refund_id"`
	InvoiceID  string          `json:"associated_invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Date       time.Time       `json:"date"`
	Reason     string          `json:"reason"`
	StaffNotes *string         `json:"staff_notes,omitempty"`
}

// WorkOrder is the fulfillment-side counterpart to an Invoice for
// glasses/contacts sales. Pickup/refund/archival state is kept in sync with
// the linked invoice; at most one invoice per work order.
type WorkOrder struct {
	ID        string  `json:"work_order_id"`
	InvoiceID *string `json:"invoice_id,omitempty"`
	PatientID string  `json:"patient_id"`

	LensType     *string `json:"lens_type,omitempty"`
	ContactLens  *string `json:"contact_lens,omitempty"`
	Prescription *string `json:"prescription,omitempty"`

	IsPickedUp bool `json:"is_picked_up"`
	IsRefunded bool `json:"is_refunded"`
	IsArchived bool `json:"is_archived"`

	PickedUpAt *time.Time `json:"picked_up_at,omitempty"`
	RefundDate *time.Time `json:"refund_date,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	CreatedAt    time.Time          `json:"created_at"`
	LastEditedAt *time.Time         `json:"last_edited_at,omitempty"`
	EditHistory  []EditHistoryEntry `json:"edit_history,omitempty"`
}

// Clone returns a deep copy of the work order.
func (wo *WorkOrder) Clone() *WorkOrder {
	cp := *wo
	cp.EditHistory = append([]EditHistoryEntry(nil), wo.EditHistory...)
	return &cp
}
