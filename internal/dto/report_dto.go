package dto

import "github.com/shopspring/decimal"

// DailySummaryResponse is the reporting view of one (date, location) row
// with its regenerated breakdowns.
type DailySummaryResponse struct {
	Date       string `json:"date"`
	LocationID string `json:"location_id"`

	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalRefunds decimal.Decimal `json:"total_refunds"`
	NetSales     decimal.Decimal `json:"net_sales"`

	GlassesCount  int `json:"glasses_count"`
	ContactsCount int `json:"contacts_count"`
	ExamCount     int `json:"exam_count"`

	PaymentMethods []MethodBreakdown `json:"payment_methods"`
	InvoiceTypes   []TypeBreakdown   `json:"invoice_types"`
}

type MethodBreakdown struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

type TypeBreakdown struct {
	InvoiceType string          `json:"invoice_type"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
}

// MonthlySummaryResponse is the reporting view of one (year, month, location)
// rollup.
type MonthlySummaryResponse struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	LocationID string `json:"location_id"`

	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalRefunds decimal.Decimal `json:"total_refunds"`
	NetSales     decimal.Decimal `json:"net_sales"`

	GlassesCount  int `json:"glasses_count"`
	ContactsCount int `json:"contacts_count"`
	ExamCount     int `json:"exam_count"`
}
