package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRecord is the flattened, remote-persisted projection of an Invoice,
// used solely for reporting. It is kept eventually consistent with the
// in-memory ledger by the sync pipeline — never mutated by hand.
type InvoiceRecord struct {
	ID         string `gorm:"primaryKey"`
	LocationID string `gorm:"index;not null"`
	// Date is the calendar day of the sale, YYYY-MM-DD.
	Date        string `gorm:"type:date;not null"`
	InvoiceType string `gorm:"type:varchar(20);not null"`

	PatientID   *string
	PatientName string

	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Deposit       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	PaymentMethod string          `gorm:"type:varchar(20)"`

	IsRefunded bool `gorm:"not null;default:false"`
	IsArchived bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewInvoiceRecord flattens a ledger invoice into its reporting projection.
func NewInvoiceRecord(inv *Invoice, locationID string) InvoiceRecord {
	return InvoiceRecord{
		ID:            inv.ID,
		LocationID:    locationID,
		Date:          inv.CreatedAt.Format("2006-01-02"),
		InvoiceType:   inv.Category,
		PatientID:     inv.PatientID,
		PatientName:   inv.PatientName,
		TotalAmount:   inv.Total,
		Discount:      inv.Discount,
		Deposit:       inv.Deposit,
		PaymentMethod: inv.PaymentMethod,
		IsRefunded:    inv.IsRefunded,
		IsArchived:    inv.IsArchived,
	}
}

// RefundRecord is the flattened projection of a Refund for reporting.
type RefundRecord struct {
	ID         string `gorm:"primaryKey"`
	InvoiceID  string `gorm:"index;not null"`
	LocationID string `gorm:"index;not null"`
	Date       string `gorm:"type:date;not null"`

	Amount decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Method string          `gorm:"type:varchar(20);not null"`
	Reason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRefundRecord flattens a ledger refund into its reporting projection.
func NewRefundRecord(r *Refund, locationID string) RefundRecord {
	return RefundRecord{
		ID:         r.ID,
		InvoiceID:  r.InvoiceID,
		LocationID: locationID,
		Date:       r.Date.Format("2006-01-02"),
		Amount:     r.Amount,
		Method:     r.Method,
		Reason:     r.Reason,
	}
}
