package service

import (
	"context"
	"testing"

	"opticpos/internal/dto"
	"opticpos/internal/infra"
	"opticpos/internal/ledger"
	"opticpos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInvoiceSvc() (InvoiceService, *ledger.Store) {
	store := ledger.NewStore()
	return NewInvoiceService(store, nil, infra.NewLogNotifier()), store
}

func glassesRequest(total, deposit string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		PatientName:   "Amira Ben Salah",
		InvoiceType:   model.CategoryGlasses,
		Total:         d(total),
		Deposit:       d(deposit),
		PaymentMethod: model.MethodCash,
	}
}

func TestInvoiceCreate_GlassesGetsWorkOrder(t *testing.T) {
	svc, store := buildInvoiceSvc()

	resp, err := svc.Create(context.Background(), glassesRequest("120.000", "40.000"))
	require.NoError(t, err)
	require.NotNil(t, resp.Invoice.WorkOrderID)

	wo, err := store.WorkOrderByID(*resp.Invoice.WorkOrderID)
	require.NoError(t, err)
	require.NotNil(t, wo.InvoiceID)
	assert.Equal(t, resp.Invoice.ID, *wo.InvoiceID)
}

func TestInvoiceCreate_ExamHasNoWorkOrder(t *testing.T) {
	svc, _ := buildInvoiceSvc()

	resp, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PatientName:   "Karim Trabelsi",
		InvoiceType:   model.CategoryExam,
		Total:         d("25.000"),
		Deposit:       d("25.000"),
		PaymentMethod: model.MethodCard,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Invoice.WorkOrderID)
	assert.True(t, resp.Invoice.IsPaid)
}

func TestInvoiceRefund_ThenPaymentRejected(t *testing.T) {
	svc, _ := buildInvoiceSvc()

	created, err := svc.Create(context.Background(), glassesRequest("100.000", "100.000"))
	require.NoError(t, err)

	refund, err := svc.Refund(context.Background(), created.Invoice.ID, dto.RefundRequest{
		Amount: d("100.000"), Method: model.MethodCash, Reason: "scratched lens",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refund.RefundID)

	_, err = svc.AddPayment(context.Background(), created.Invoice.ID, dto.PaymentRequest{
		Amount: d("10.000"), Method: model.MethodCash,
	})
	assert.ErrorIs(t, err, ledger.ErrInvoiceClosed)
}

func TestCancelWorkOrder_RefundsDeposit(t *testing.T) {
	svc, _ := buildInvoiceSvc()

	created, err := svc.Create(context.Background(), glassesRequest("100.000", "50.000"))
	require.NoError(t, err)

	resp, err := svc.CancelWorkOrder(context.Background(), *created.Invoice.WorkOrderID, "patient unreachable")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RefundID)

	inv, err := svc.Get(context.Background(), created.Invoice.ID)
	require.NoError(t, err)
	assert.True(t, inv.IsArchived)
	assert.True(t, inv.Remaining.IsZero())
}
