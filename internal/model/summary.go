package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailySalesSummary is one derived row per (date, location). It is fully
// recomputable from the InvoiceRecord/RefundRecord rows sharing that date and
// is never hand-edited — the aggregation engine rebuilds it on every touch.
type DailySalesSummary struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date       string    `gorm:"type:date;uniqueIndex:idx_daily_date_location,priority:1;not null"`
	LocationID string    `gorm:"uniqueIndex:idx_daily_date_location,priority:2;not null"`

	TotalSales   decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	TotalRefunds decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	// NetSales = TotalSales - TotalRefunds
	NetSales decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`

	GlassesCount  int `gorm:"not null;default:0"`
	ContactsCount int `gorm:"not null;default:0"`
	ExamCount     int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	PaymentMethods []PaymentMethodSummary `gorm:"foreignKey:DailySummaryID"`
	InvoiceTypes   []InvoiceTypeSummary   `gorm:"foreignKey:DailySummaryID"`
}

// PaymentMethodSummary is a child breakdown of a daily summary, one row per
// distinct payment method present that day. Regenerated wholesale
// (delete-then-reinsert) on every daily recompute so stale groupings cannot
// persist.
type PaymentMethodSummary struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DailySummaryID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Method         string          `gorm:"type:varchar(20);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Count          int             `gorm:"not null;default:0"`
	CreatedAt      time.Time
}

// InvoiceTypeSummary is the per-category child breakdown of a daily summary.
type InvoiceTypeSummary struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DailySummaryID uuid.UUID       `gorm:"type:uuid;index;not null"`
	InvoiceType    string          `gorm:"type:varchar(20);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Count          int             `gorm:"not null;default:0"`
	CreatedAt      time.Time
}

// MonthlySalesSummary is one derived row per (year, month, location), computed
// exclusively by summing that month's DailySalesSummary rows — never directly
// from invoices.
type MonthlySalesSummary struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Year       int       `gorm:"uniqueIndex:idx_monthly_ym_location,priority:1;not null"`
	Month      int       `gorm:"uniqueIndex:idx_monthly_ym_location,priority:2;not null"`
	LocationID string    `gorm:"uniqueIndex:idx_monthly_ym_location,priority:3;not null"`

	TotalSales   decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	TotalRefunds decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	NetSales     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`

	GlassesCount  int `gorm:"not null;default:0"`
	ContactsCount int `gorm:"not null;default:0"`
	ExamCount     int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
