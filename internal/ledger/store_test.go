package ledger

import (
	"testing"
	"time"

	"opticpos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestStore() *Store {
	s := NewStore()
	// Deterministic clock: advances one second per call.
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	n := 0
	s.clock = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return s
}

func seedInvoice(t *testing.T, s *Store, total, deposit string) string {
	t.Helper()
	id, err := s.CreateInvoice(&model.Invoice{
		PatientName: "Amira Ben Salah",
		Category:    model.CategoryGlasses,
		Total:       d(total),
	}, d(deposit), model.MethodCash, nil)
	require.NoError(t, err)
	return id
}

func TestCreateInvoice_DepositSynthesizesPayment(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "120.000", "40.000")

	inv, err := s.InvoiceByID(id)
	require.NoError(t, err)
	require.Len(t, inv.Payments, 1)
	assert.True(t, inv.Deposit.Equal(d("40.000")))
	assert.True(t, inv.Remaining.Equal(d("80.000")))
	assert.False(t, inv.IsPaid)
}

func TestCreateInvoice_ZeroDeposit(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "50.000", "0")

	inv, err := s.InvoiceByID(id)
	require.NoError(t, err)
	assert.Empty(t, inv.Payments)
	assert.True(t, inv.Remaining.Equal(d("50.000")))
	assert.False(t, inv.IsPaid)
}

func TestCreateInvoice_FullDepositIsPaid(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "75.500", "75.500")

	inv, err := s.InvoiceByID(id)
	require.NoError(t, err)
	assert.True(t, inv.Remaining.IsZero())
	assert.True(t, inv.IsPaid)
}

// Scenario: 120.000 sale, 40.000 deposit, then 80.000 at pickup.
func TestAddPartialPayment_SettlesExactly(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "120.000", "40.000")

	require.NoError(t, s.AddPartialPayment(id, d("80.000"), model.MethodCard, nil))

	inv, _ := s.InvoiceByID(id)
	require.Len(t, inv.Payments, 2)
	assert.True(t, inv.Deposit.Equal(d("120.000")))
	assert.True(t, inv.Remaining.IsZero())
	assert.True(t, inv.IsPaid)
	assert.Equal(t, model.MethodCard, inv.PaymentMethod)
}

func TestAddPartialPayment_OverpaymentClampsToZero(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "100.000", "0")

	require.NoError(t, s.AddPartialPayment(id, d("150.000"), model.MethodCash, nil))

	inv, _ := s.InvoiceByID(id)
	// Deposit records what was actually taken; Remaining never goes negative.
	assert.True(t, inv.Deposit.Equal(d("150.000")))
	assert.True(t, inv.Remaining.IsZero())
	assert.True(t, inv.IsPaid)
}

func TestAddPartialPayment_BalanceInvariantHolds(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "200.000", "30.000")

	for _, amt := range []string{"25.000", "10.500", "60.000"} {
		require.NoError(t, s.AddPartialPayment(id, d(amt), model.MethodCash, nil))
		inv, _ := s.InvoiceByID(id)
		want := inv.Total.Sub(inv.Deposit)
		if want.IsNegative() {
			want = decimal.Zero
		}
		assert.True(t, inv.Remaining.Equal(want), "remaining=%s deposit=%s", inv.Remaining, inv.Deposit)
		assert.Equal(t, inv.Remaining.IsZero(), inv.IsPaid)
	}
}

func TestAddPartialPayment_RejectedOnRefundedInvoice(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "100.000", "100.000")
	_, err := s.ProcessRefund(id, d("100.000"), model.MethodCash, "defective frame", nil)
	require.NoError(t, err)

	err = s.AddPartialPayment(id, d("10.000"), model.MethodCash, nil)
	assert.ErrorIs(t, err, ErrInvoiceClosed)
}

func TestMarkAsPaid_PaysExactRemaining(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "90.000", "35.000")

	require.NoError(t, s.MarkAsPaid(id, model.MethodTransfer, nil))

	inv, _ := s.InvoiceByID(id)
	require.Len(t, inv.Payments, 2)
	assert.True(t, inv.Payments[1].Amount.Equal(d("55.000")))
	assert.True(t, inv.IsPaid)
}

func TestMarkAsPaid_NoOpWhenAlreadyPaid(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "60.000", "60.000")

	require.NoError(t, s.MarkAsPaid(id, model.MethodCash, nil))

	inv, _ := s.InvoiceByID(id)
	assert.Len(t, inv.Payments, 1)
}

func TestMarkAsPaid_NotFound(t *testing.T) {
	s := newTestStore()
	err := s.MarkAsPaid("nope", model.MethodCash, nil)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestMarkAsPickedUp_PropagatesToWorkOrder(t *testing.T) {
	s := newTestStore()
	invID := seedInvoice(t, s, "100.000", "100.000")
	woID, err := s.CreateWorkOrder(&model.WorkOrder{PatientID: "patient-1"}, invID)
	require.NoError(t, err)

	require.NoError(t, s.MarkAsPickedUp(invID, true))

	wo, err := s.WorkOrderByID(woID)
	require.NoError(t, err)
	assert.True(t, wo.IsPickedUp)
	require.NotNil(t, wo.PickedUpAt)

	inv, _ := s.InvoiceByID(invID)
	assert.True(t, inv.IsPickedUp)
}

func TestMarkAsPickedUp_FromWorkOrderSide(t *testing.T) {
	s := newTestStore()
	invID := seedInvoice(t, s, "100.000", "0")
	woID, _ := s.CreateWorkOrder(&model.WorkOrder{PatientID: "patient-1"}, invID)

	require.NoError(t, s.MarkAsPickedUp(woID, false))

	inv, _ := s.InvoiceByID(invID)
	assert.True(t, inv.IsPickedUp)
}

func TestUpdateInvoice_AppendsOneHistoryEntry(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "100.000", "0")

	ts := time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
	upd := &model.Invoice{ID: id, PatientName: "Amira B. Salah", LastEditedAt: &ts}
	require.NoError(t, s.UpdateInvoice(upd, "fixed name spelling"))

	inv, _ := s.InvoiceByID(id)
	assert.Equal(t, "Amira B. Salah", inv.PatientName)
	require.Len(t, inv.EditHistory, 1)
	assert.Equal(t, "fixed name spelling", inv.EditHistory[0].Notes)
}

// A duplicate save carrying the same timestamp must not duplicate history.
func TestUpdateInvoice_IdempotentPerTimestamp(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "100.000", "0")

	ts := time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
	upd := &model.Invoice{ID: id, PatientName: "Amira", LastEditedAt: &ts}
	require.NoError(t, s.UpdateInvoice(upd, "first save"))
	require.NoError(t, s.UpdateInvoice(upd, "replayed save"))

	inv, _ := s.InvoiceByID(id)
	assert.Len(t, inv.EditHistory, 1)

	ts2 := ts.Add(time.Minute)
	upd2 := &model.Invoice{ID: id, PatientName: "Amira", LastEditedAt: &ts2}
	require.NoError(t, s.UpdateInvoice(upd2, "second edit"))

	inv, _ = s.InvoiceByID(id)
	assert.Len(t, inv.EditHistory, 2)
}

func TestUpdateInvoice_NeverTouchesBalance(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "120.000", "40.000")

	upd := &model.Invoice{ID: id, PatientName: "X", Total: d("999.000"), Deposit: d("999.000")}
	require.NoError(t, s.UpdateInvoice(upd, ""))

	inv, _ := s.InvoiceByID(id)
	assert.True(t, inv.Total.Equal(d("120.000")))
	assert.True(t, inv.Deposit.Equal(d("40.000")))
	assert.True(t, inv.Remaining.Equal(d("80.000")))
}

// Scenario: 50.000 fully-paid sale refunded in full. Deposit and Remaining
// keep their settled values; only the refund metadata changes.
func TestProcessRefund_IndependentOfBalance(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "50.000", "50.000")

	refundID, err := s.ProcessRefund(id, d("50.000"), model.MethodCash, "changed mind", nil)
	require.NoError(t, err)
	assert.Regexp(t, `^RF\d+$`, refundID)

	inv, _ := s.InvoiceByID(id)
	assert.True(t, inv.IsRefunded)
	assert.True(t, inv.Deposit.Equal(d("50.000")))
	assert.True(t, inv.Remaining.IsZero())
	assert.True(t, inv.IsPaid)
	require.NotNil(t, inv.RefundAmount)
	assert.True(t, inv.RefundAmount.Equal(d("50.000")))

	refunds := s.RefundsByInvoiceID(id)
	require.Len(t, refunds, 1)
	assert.Equal(t, refundID, refunds[0].ID)
	assert.Equal(t, "changed mind", refunds[0].Reason)
}

func TestProcessRefund_SecondRefundRejected(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "50.000", "50.000")
	_, err := s.ProcessRefund(id, d("50.000"), model.MethodCash, "first", nil)
	require.NoError(t, err)

	_, err = s.ProcessRefund(id, d("10.000"), model.MethodCash, "second", nil)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
	assert.Len(t, s.RefundsByInvoiceID(id), 1)
}

func TestProcessRefund_PropagatesToWorkOrder(t *testing.T) {
	s := newTestStore()
	invID := seedInvoice(t, s, "80.000", "80.000")
	woID, _ := s.CreateWorkOrder(&model.WorkOrder{PatientID: "patient-1"}, invID)

	_, err := s.ProcessRefund(invID, d("80.000"), model.MethodCash, "wrong prescription", nil)
	require.NoError(t, err)

	wo, _ := s.WorkOrderByID(woID)
	assert.True(t, wo.IsRefunded)
	assert.NotNil(t, wo.RefundDate)
}

func TestNextRefundID_UniqueWithinSameMillisecond(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return fixed }

	a := s.nextRefundID(fixed)
	b := s.nextRefundID(fixed)
	assert.NotEqual(t, a, b)
}

// Scenario: 100.000 order with a 50.000 deposit is cancelled. The 50.000
// deposit is refunded, the outstanding 50.000 is written off, both sides end
// archived.
func TestDeleteWorkOrder_RefundsDepositAndWritesOff(t *testing.T) {
	s := newTestStore()
	invID := seedInvoice(t, s, "100.000", "50.000")
	woID, _ := s.CreateWorkOrder(&model.WorkOrder{PatientID: "patient-1"}, invID)

	refundID, err := s.DeleteWorkOrder(woID, "patient moved away")
	require.NoError(t, err)
	require.NotEmpty(t, refundID)

	inv, _ := s.InvoiceByID(invID)
	assert.True(t, inv.IsArchived)
	assert.True(t, inv.IsRefunded)
	assert.True(t, inv.Remaining.IsZero(), "outstanding balance must be written off")
	assert.True(t, inv.IsPaid, "zero remaining implies paid, archived or not")
	assert.True(t, inv.Deposit.Equal(d("50.000")))

	refunds := s.RefundsByInvoiceID(invID)
	require.Len(t, refunds, 1)
	assert.True(t, refunds[0].Amount.Equal(d("50.000")))
	assert.Contains(t, refunds[0].Reason, "work order cancelled")

	wo, _ := s.WorkOrderByID(woID)
	assert.True(t, wo.IsArchived)
}

func TestDeleteWorkOrder_NoDepositNoRefund(t *testing.T) {
	s := newTestStore()
	invID := seedInvoice(t, s, "100.000", "0")
	woID, _ := s.CreateWorkOrder(&model.WorkOrder{PatientID: "patient-1"}, invID)

	refundID, err := s.DeleteWorkOrder(woID, "duplicate order")
	require.NoError(t, err)
	assert.Empty(t, refundID)
	assert.Empty(t, s.RefundsByInvoiceID(invID))

	inv, _ := s.InvoiceByID(invID)
	assert.True(t, inv.IsArchived)
	assert.True(t, inv.Remaining.IsZero())
	assert.True(t, inv.IsPaid)
}

func TestDeleteWorkOrder_AlreadyRefundedSkipsSecondRefund(t *testing.T) {
	s := newTestStore()
	invID := seedInvoice(t, s, "100.000", "50.000")
	woID, _ := s.CreateWorkOrder(&model.WorkOrder{PatientID: "patient-1"}, invID)
	_, err := s.ProcessRefund(invID, d("50.000"), model.MethodCash, "manual refund", nil)
	require.NoError(t, err)

	refundID, err := s.DeleteWorkOrder(woID, "cleanup")
	require.NoError(t, err)
	assert.Empty(t, refundID)
	assert.Len(t, s.RefundsByInvoiceID(invID), 1)
}

func TestQueries_ArchivedExcludedFromActiveViews(t *testing.T) {
	s := newTestStore()
	pid := "patient-7"
	activeID, err := s.CreateInvoice(&model.Invoice{
		PatientID: &pid, PatientName: "Amira", Category: model.CategoryGlasses, Total: d("100.000"),
	}, d("10.000"), model.MethodCash, nil)
	require.NoError(t, err)

	archID, err := s.CreateInvoice(&model.Invoice{
		PatientID: &pid, PatientName: "Amira", Category: model.CategoryContacts, Total: d("30.000"),
	}, decimal.Zero, model.MethodCash, nil)
	require.NoError(t, err)
	woID, _ := s.CreateWorkOrder(&model.WorkOrder{PatientID: pid}, archID)
	_, err = s.DeleteWorkOrder(woID, "cancelled")
	require.NoError(t, err)

	unpaid := s.UnpaidInvoices()
	require.Len(t, unpaid, 1)
	assert.Equal(t, activeID, unpaid[0].ID)

	byPatient := s.InvoicesByPatientID(pid)
	require.Len(t, byPatient, 1)
	assert.Equal(t, activeID, byPatient[0].ID)

	archived := s.ArchivedInvoices()
	require.Len(t, archived, 1)
	assert.Equal(t, archID, archived[0].ID)

	require.Len(t, s.ArchivedWorkOrders(), 1)
	assert.Empty(t, s.WorkOrdersByPatientID(pid))
}

func TestQueries_ReturnClones(t *testing.T) {
	s := newTestStore()
	id := seedInvoice(t, s, "100.000", "0")

	inv, _ := s.InvoiceByID(id)
	inv.PatientName = "mutated"
	inv.Payments = append(inv.Payments, model.Payment{Amount: d("999")})

	fresh, _ := s.InvoiceByID(id)
	assert.Equal(t, "Amira Ben Salah", fresh.PatientName)
	assert.Empty(t, fresh.Payments)
}
