// Package ledger holds the in-process invoice/payment/refund bookkeeping.
// All mutations are applied synchronously here before any remote sync is
// attempted, so this view is always immediately self-consistent; the remote
// reporting projection only catches up eventually.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"opticpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrWorkOrderNotFound = errors.New("work order not found")
	// ErrInvoiceClosed rejects payments against refunded or archived invoices.
	ErrInvoiceClosed   = errors.New("invoice is refunded or archived")
	ErrAlreadyRefunded = errors.New("invoice already has a refund")
)

// Store is the process-wide ledger. Construct one per process (or per test)
// and inject it — there is no package-level singleton.
type Store struct {
	mu         sync.RWMutex
	invoices   map[string]*model.Invoice
	workOrders map[string]*model.WorkOrder
	// refunds is one flat list, not partitioned per invoice; lookups by
	// invoice id do a linear scan (at most one match by invariant).
	refunds []model.Refund

	// clock is swappable in tests.
	clock        func() time.Time
	lastRefundMs int64
}

func NewStore() *Store {
	return &Store{
		invoices:   make(map[string]*model.Invoice),
		workOrders: make(map[string]*model.WorkOrder),
		clock:      time.Now,
	}
}

// ── Invoice / payment engine ──────────────────────────────────────────────────

// CreateInvoice assigns a new id, derives Remaining/IsPaid from
// Total/initialDeposit and, when initialDeposit > 0, synthesizes one initial
// payment dated now. The passed invoice's monetary Total and Discount are
// taken as-is; Deposit/Remaining/Payments are overwritten.
func (s *Store) CreateInvoice(inv *model.Invoice, initialDeposit decimal.Decimal, method string, authNumber *string) (string, error) {
	if inv.Category == "" {
		return "", fmt.Errorf("invoice category is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	inv.ID = uuid.NewString()
	inv.CreatedAt = now
	inv.Payments = nil
	inv.PaymentMethod = method

	if initialDeposit.IsPositive() {
		inv.Payments = append(inv.Payments, model.Payment{
			Amount:     initialDeposit,
			Method:     method,
			Date:       now,
			AuthNumber: authNumber,
		})
	}
	s.recomputeBalance(inv)

	s.invoices[inv.ID] = inv
	return inv.ID, nil
}

// CreateWorkOrder registers the fulfillment counterpart of an invoice and
// links the two. invoiceID may be empty for a not-yet-invoiced order.
func (s *Store) CreateWorkOrder(wo *model.WorkOrder, invoiceID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wo.ID = uuid.NewString()
	wo.CreatedAt = s.clock()
	if invoiceID != "" {
		inv, ok := s.invoices[invoiceID]
		if !ok {
			return "", ErrInvoiceNotFound
		}
		wo.InvoiceID = &invoiceID
		woID := wo.ID
		inv.WorkOrderID = &woID
	}
	s.workOrders[wo.ID] = wo
	return wo.ID, nil
}

// AddPartialPayment appends a dated payment and recomputes the cumulative
// deposit as the sum of all payment amounts. Overpayment is accepted; it
// simply clamps Remaining to zero. Payments against refunded or archived
// invoices are rejected.
func (s *Store) AddPartialPayment(invoiceID string, amount decimal.Decimal, method string, authNumber *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return ErrInvoiceNotFound
	}
	if inv.IsRefunded || inv.IsArchived {
		return ErrInvoiceClosed
	}

	inv.Payments = append(inv.Payments, model.Payment{
		Amount:     amount,
		Method:     method,
		Date:       s.clock(),
		AuthNumber: authNumber,
	})
	inv.PaymentMethod = method
	s.recomputeBalance(inv)
	return nil
}

// MarkAsPaid settles the invoice by adding one payment for exactly the
// current Remaining. A no-op on an invoice that is already paid up.
func (s *Store) MarkAsPaid(invoiceID string, method string, authNumber *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return ErrInvoiceNotFound
	}
	if inv.IsRefunded || inv.IsArchived {
		return ErrInvoiceClosed
	}
	if inv.Remaining.IsZero() {
		return nil
	}
	if method == "" {
		method = inv.PaymentMethod
	}

	inv.Payments = append(inv.Payments, model.Payment{
		Amount:     inv.Remaining,
		Method:     method,
		Date:       s.clock(),
		AuthNumber: authNumber,
	})
	inv.PaymentMethod = method
	s.recomputeBalance(inv)
	return nil
}

// MarkAsPickedUp flags the target entity picked up and propagates the same
// flag to its linked counterpart, keeping pickup status consistent across
// both views of one physical transaction.
func (s *Store) MarkAsPickedUp(id string, isInvoice bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if isInvoice {
		inv, ok := s.invoices[id]
		if !ok {
			return ErrInvoiceNotFound
		}
		inv.IsPickedUp = true
		inv.PickedUpAt = &now
		if inv.WorkOrderID != nil {
			if wo, ok := s.workOrders[*inv.WorkOrderID]; ok {
				wo.IsPickedUp = true
				wo.PickedUpAt = &now
			}
		}
		return nil
	}

	wo, ok := s.workOrders[id]
	if !ok {
		return ErrWorkOrderNotFound
	}
	wo.IsPickedUp = true
	wo.PickedUpAt = &now
	if wo.InvoiceID != nil {
		if inv, ok := s.invoices[*wo.InvoiceID]; ok {
			inv.IsPickedUp = true
			inv.PickedUpAt = &now
		}
	}
	return nil
}

// UpdateInvoice replaces the mutable descriptive fields of an invoice.
// Total, payments and balance state are never replaced through here.
// When updated.LastEditedAt differs from the stored value and no existing
// history entry shares that exact timestamp, exactly one EditHistoryEntry is
// appended — the idempotency guard against duplicate-save races.
func (s *Store) UpdateInvoice(updated *model.Invoice, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[updated.ID]
	if !ok {
		return ErrInvoiceNotFound
	}

	inv.PatientID = updated.PatientID
	inv.PatientName = updated.PatientName
	inv.PatientPhone = updated.PatientPhone
	inv.Items = updated.Items
	inv.Discount = updated.Discount

	if updated.LastEditedAt == nil {
		return nil
	}
	ts := *updated.LastEditedAt
	if inv.LastEditedAt != nil && inv.LastEditedAt.Equal(ts) {
		return nil
	}
	inv.LastEditedAt = &ts
	for _, e := range inv.EditHistory {
		if e.Timestamp.Equal(ts) {
			return nil
		}
	}
	inv.EditHistory = append(inv.EditHistory, model.EditHistoryEntry{Timestamp: ts, Notes: notes})
	return nil
}

// recomputeBalance derives Deposit, Remaining and IsPaid from the payment
// list. Remaining never goes negative. Must be called under lock.
func (s *Store) recomputeBalance(inv *model.Invoice) {
	deposit := decimal.Zero
	for _, p := range inv.Payments {
		deposit = deposit.Add(p.Amount)
	}
	inv.Deposit = deposit
	remaining := inv.Total.Sub(deposit)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	inv.Remaining = remaining
	inv.IsPaid = remaining.IsZero()
}

// ── Refund & archival engine ──────────────────────────────────────────────────

// ProcessRefund reverses an invoice: it emits one Refund record, flags the
// invoice (and its linked work order) refunded, and populates the refund
// metadata. It deliberately does NOT touch Deposit/Remaining — refund and
// payment-balance state are tracked independently.
func (s *Store) ProcessRefund(invoiceID string, amount decimal.Decimal, method, reason string, staffNotes *string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processRefundLocked(invoiceID, amount, method, reason, staffNotes)
}

func (s *Store) processRefundLocked(invoiceID string, amount decimal.Decimal, method, reason string, staffNotes *string) (string, error) {
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return "", ErrInvoiceNotFound
	}
	if inv.IsRefunded {
		return "", ErrAlreadyRefunded
	}

	now := s.clock()
	refundID := s.nextRefundID(now)
	refund := model.Refund{
		ID:         refundID,
		InvoiceID:  invoiceID,
		Amount:     amount,
		Method:     method,
		Date:       now,
		Reason:     reason,
		StaffNotes: staffNotes,
	}
	s.refunds = append(s.refunds, refund)

	inv.IsRefunded = true
	inv.RefundID = &refundID
	inv.RefundDate = &now
	inv.RefundAmount = &amount
	inv.RefundReason = &reason
	inv.RefundMethod = &method

	if inv.WorkOrderID != nil {
		if wo, ok := s.workOrders[*inv.WorkOrderID]; ok {
			wo.IsRefunded = true
			wo.RefundDate = &now
		}
	}
	return refundID, nil
}

// nextRefundID issues a time-based refund id, bumping the millisecond part on
// collision so two refunds in the same tick never share an id.
func (s *Store) nextRefundID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastRefundMs {
		ms = s.lastRefundMs + 1
	}
	s.lastRefundMs = ms
	return fmt.Sprintf("RF%d", ms)
}

// DeleteWorkOrder cancels an order as a compensating transaction: when the
// linked invoice holds a positive deposit, the entire current deposit (not
// the original total) is refunded with a system-supplied reason; then both
// sides are archived and the invoice's outstanding balance is written off
// (Remaining forced to zero, not collected). Returns the refund id, or empty
// when no refund was needed.
func (s *Store) DeleteWorkOrder(workOrderID, reason string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wo, ok := s.workOrders[workOrderID]
	if !ok {
		return "", ErrWorkOrderNotFound
	}

	now := s.clock()
	refundID := ""
	if wo.InvoiceID != nil {
		inv, ok := s.invoices[*wo.InvoiceID]
		if ok {
			if inv.Deposit.IsPositive() && !inv.IsRefunded {
				id, err := s.processRefundLocked(inv.ID, inv.Deposit, inv.PaymentMethod,
					fmt.Sprintf("work order cancelled: %s", reason), nil)
				if err != nil {
					return "", err
				}
				refundID = id
			}
			inv.IsArchived = true
			inv.ArchivedAt = &now
			// Write-off: nothing further is collectible, so the paid flag
			// follows the zeroed balance.
			inv.Remaining = decimal.Zero
			inv.IsPaid = true
		}
	}

	wo.IsArchived = true
	wo.ArchivedAt = &now
	return refundID, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────
// Archived entities are tombstones: excluded from every active query but
// still reachable through the Archived* accessors.

func (s *Store) InvoiceByID(id string) (*model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return inv.Clone(), nil
}

func (s *Store) WorkOrderByID(id string) (*model.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wo, ok := s.workOrders[id]
	if !ok {
		return nil, ErrWorkOrderNotFound
	}
	return wo.Clone(), nil
}

func (s *Store) UnpaidInvoices() []*model.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Invoice
	for _, inv := range s.invoices {
		if !inv.IsPaid && !inv.IsArchived {
			out = append(out, inv.Clone())
		}
	}
	return out
}

func (s *Store) InvoicesByPatientID(patientID string) []*model.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Invoice
	for _, inv := range s.invoices {
		if inv.IsArchived || inv.PatientID == nil || *inv.PatientID != patientID {
			continue
		}
		out = append(out, inv.Clone())
	}
	return out
}

func (s *Store) WorkOrdersByPatientID(patientID string) []*model.WorkOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.WorkOrder
	for _, wo := range s.workOrders {
		if !wo.IsArchived && wo.PatientID == patientID {
			out = append(out, wo.Clone())
		}
	}
	return out
}

func (s *Store) ArchivedInvoices() []*model.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Invoice
	for _, inv := range s.invoices {
		if inv.IsArchived {
			out = append(out, inv.Clone())
		}
	}
	return out
}

func (s *Store) ArchivedWorkOrders() []*model.WorkOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.WorkOrder
	for _, wo := range s.workOrders {
		if wo.IsArchived {
			out = append(out, wo.Clone())
		}
	}
	return out
}

// RefundsByInvoiceID scans the flat refund list; by invariant it returns at
// most one element.
func (s *Store) RefundsByInvoiceID(invoiceID string) []model.Refund {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Refund
	for _, r := range s.refunds {
		if r.InvoiceID == invoiceID {
			out = append(out, r)
		}
	}
	return out
}

// AllInvoices returns the full invoice snapshot, archived included — used by
// the bulk ledger reconciliation sync.
func (s *Store) AllInvoices() []*model.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv.Clone())
	}
	return out
}

func (s *Store) AllRefunds() []model.Refund {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Refund(nil), s.refunds...)
}
