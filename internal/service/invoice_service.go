package service

import (
	"context"
	"fmt"

	"opticpos/internal/dto"
	"opticpos/internal/infra"
	"opticpos/internal/ledger"
	"opticpos/internal/model"
	"opticpos/internal/worker"

	"github.com/rs/zerolog/log"
)

// InvoiceService coordinates ledger mutations with the async remote sync.
// Every mutation is applied to the in-memory ledger synchronously, then a
// sync job is enqueued best-effort — the remote projection catches up
// eventually, and a sync failure never rolls back the local mutation.
type InvoiceService interface {
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Get(ctx context.Context, id string) (*model.Invoice, error)
	AddPayment(ctx context.Context, id string, req dto.PaymentRequest) (*dto.InvoiceResponse, error)
	MarkPaid(ctx context.Context, id string, req dto.MarkPaidRequest) (*dto.InvoiceResponse, error)
	MarkPickedUp(ctx context.Context, id string, isInvoice bool) error
	Update(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	Refund(ctx context.Context, id string, req dto.RefundRequest) (*dto.RefundResponse, error)
	CancelWorkOrder(ctx context.Context, workOrderID, reason string) (*dto.CancelWorkOrderResponse, error)

	Unpaid(ctx context.Context) []*model.Invoice
	ArchivedInvoices(ctx context.Context) []*model.Invoice
	ArchivedWorkOrders(ctx context.Context) []*model.WorkOrder
	InvoicesByPatient(ctx context.Context, patientID string) []*model.Invoice
	WorkOrdersByPatient(ctx context.Context, patientID string) []*model.WorkOrder
}

type invoiceService struct {
	store      *ledger.Store
	dispatcher *worker.Dispatcher // nil in unit tests, sync is skipped
	notifier   infra.Notifier
}

func NewInvoiceService(store *ledger.Store, dispatcher *worker.Dispatcher, notifier infra.Notifier) InvoiceService {
	return &invoiceService{store: store, dispatcher: dispatcher, notifier: notifier}
}

func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv := &model.Invoice{
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		Category:     req.InvoiceType,
		Items:        req.Items,
		Total:        req.Total,
		Discount:     req.Discount,
	}
	invoiceID, err := s.store.CreateInvoice(inv, req.Deposit, req.PaymentMethod, req.AuthNumber)
	if err != nil {
		return nil, err
	}

	// Glasses/contacts sales get a linked fulfillment work order.
	if req.InvoiceType == model.CategoryGlasses || req.InvoiceType == model.CategoryContacts {
		patientID := ""
		if req.PatientID != nil {
			patientID = *req.PatientID
		}
		wo := &model.WorkOrder{
			PatientID:    patientID,
			LensType:     req.Items.LensType,
			ContactLens:  req.Items.ContactLens,
			Prescription: req.Prescription,
		}
		if _, err := s.store.CreateWorkOrder(wo, invoiceID); err != nil {
			return nil, fmt.Errorf("create work order: %w", err)
		}
	}

	created, err := s.store.InvoiceByID(invoiceID)
	if err != nil {
		return nil, err
	}
	s.enqueueSync(ctx, created, nil)
	s.notifier.Success(fmt.Sprintf("Invoice %s created", invoiceID))
	return &dto.InvoiceResponse{Invoice: created, Notice: "invoice created"}, nil
}

func (s *invoiceService) Get(_ context.Context, id string) (*model.Invoice, error) {
	return s.store.InvoiceByID(id)
}

func (s *invoiceService) AddPayment(ctx context.Context, id string, req dto.PaymentRequest) (*dto.InvoiceResponse, error) {
	if err := s.store.AddPartialPayment(id, req.Amount, req.Method, req.AuthNumber); err != nil {
		s.notifier.Error("payment could not be applied")
		return nil, err
	}
	inv, err := s.store.InvoiceByID(id)
	if err != nil {
		return nil, err
	}
	s.enqueueSync(ctx, inv, nil)
	s.notifier.Success(fmt.Sprintf("Payment applied to invoice %s", id))
	return &dto.InvoiceResponse{Invoice: inv, Notice: "payment applied"}, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id string, req dto.MarkPaidRequest) (*dto.InvoiceResponse, error) {
	if err := s.store.MarkAsPaid(id, req.Method, req.AuthNumber); err != nil {
		s.notifier.Error("invoice could not be settled")
		return nil, err
	}
	inv, err := s.store.InvoiceByID(id)
	if err != nil {
		return nil, err
	}
	s.enqueueSync(ctx, inv, nil)
	s.notifier.Success(fmt.Sprintf("Invoice %s settled", id))
	return &dto.InvoiceResponse{Invoice: inv, Notice: "invoice settled"}, nil
}

func (s *invoiceService) MarkPickedUp(ctx context.Context, id string, isInvoice bool) error {
	if err := s.store.MarkAsPickedUp(id, isInvoice); err != nil {
		return err
	}
	if isInvoice {
		if inv, err := s.store.InvoiceByID(id); err == nil {
			s.enqueueSync(ctx, inv, nil)
		}
	}
	return nil
}

func (s *invoiceService) Update(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	updated := &model.Invoice{
		ID:           id,
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		Items:        req.Items,
		Discount:     req.Discount,
		LastEditedAt: req.LastEditedAt,
	}
	if err := s.store.UpdateInvoice(updated, req.EditNotes); err != nil {
		return nil, err
	}
	inv, err := s.store.InvoiceByID(id)
	if err != nil {
		return nil, err
	}
	s.enqueueSync(ctx, inv, nil)
	return &dto.InvoiceResponse{Invoice: inv, Notice: "invoice updated"}, nil
}

func (s *invoiceService) Refund(ctx context.Context, id string, req dto.RefundRequest) (*dto.RefundResponse, error) {
	refundID, err := s.store.ProcessRefund(id, req.Amount, req.Method, req.Reason, req.StaffNotes)
	if err != nil {
		s.notifier.Error("refund could not be processed")
		return nil, err
	}
	inv, err := s.store.InvoiceByID(id)
	if err != nil {
		return nil, err
	}
	refunds := s.store.RefundsByInvoiceID(id)
	if len(refunds) > 0 {
		s.enqueueSync(ctx, inv, &refunds[0])
	}
	s.notifier.Success(fmt.Sprintf("Refund %s issued for invoice %s", refundID, id))
	return &dto.RefundResponse{
		RefundID: refundID,
		Amount:   req.Amount,
		Invoice:  inv,
		Notice:   "refund issued",
	}, nil
}

func (s *invoiceService) CancelWorkOrder(ctx context.Context, workOrderID, reason string) (*dto.CancelWorkOrderResponse, error) {
	refundID, err := s.store.DeleteWorkOrder(workOrderID, reason)
	if err != nil {
		s.notifier.Error("work order could not be cancelled")
		return nil, err
	}
	wo, err := s.store.WorkOrderByID(workOrderID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CancelWorkOrderResponse{
		RefundID:  refundID,
		Refunded:  refundID != "",
		WorkOrder: wo,
		Notice:    "work order cancelled",
	}

	if wo.InvoiceID != nil {
		if inv, err := s.store.InvoiceByID(*wo.InvoiceID); err == nil {
			var refund *model.Refund
			if refundID != "" {
				if refunds := s.store.RefundsByInvoiceID(inv.ID); len(refunds) > 0 {
					refund = &refunds[0]
					resp.Amount = &refunds[0].Amount
				}
			}
			s.enqueueSync(ctx, inv, refund)
		}
	}
	s.notifier.Success(fmt.Sprintf("Work order %s cancelled", workOrderID))
	return resp, nil
}

func (s *invoiceService) Unpaid(_ context.Context) []*model.Invoice {
	return s.store.UnpaidInvoices()
}

func (s *invoiceService) ArchivedInvoices(_ context.Context) []*model.Invoice {
	return s.store.ArchivedInvoices()
}

func (s *invoiceService) ArchivedWorkOrders(_ context.Context) []*model.WorkOrder {
	return s.store.ArchivedWorkOrders()
}

func (s *invoiceService) InvoicesByPatient(_ context.Context, patientID string) []*model.Invoice {
	return s.store.InvoicesByPatientID(patientID)
}

func (s *invoiceService) WorkOrdersByPatient(_ context.Context, patientID string) []*model.WorkOrder {
	return s.store.WorkOrdersByPatientID(patientID)
}

// enqueueSync fires a best-effort remote sync job for the invoice and the
// optional refund that touched it. Failure to enqueue is logged, never
// surfaced — the bulk reconciliation endpoint covers any gap.
func (s *invoiceService) enqueueSync(ctx context.Context, inv *model.Invoice, refund *model.Refund) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.LedgerSyncPayload{
		InvoiceID: inv.ID,
		Dates:     []string{inv.CreatedAt.Format(dateLayout)},
	}
	if refund != nil {
		payload.RefundID = refund.ID
		refundDate := refund.Date.Format(dateLayout)
		if refundDate != payload.Dates[0] {
			payload.Dates = append(payload.Dates, refundDate)
		}
	}
	if err := s.dispatcher.EnqueueLedgerSync(ctx, payload); err != nil {
		log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("failed to enqueue ledger sync")
	}
}
