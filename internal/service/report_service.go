package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"opticpos/internal/dto"
	"opticpos/internal/model"
	"opticpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ReportService owns the daily → monthly aggregation rollup. Summaries are
// always recomputed in full from the underlying records, never incremented —
// strong consistency over efficiency, appropriate for single-location daily
// sales volumes.
type ReportService interface {
	// UpdateDailySummary recomputes a day's summary from that day's
	// invoice/refund records and cascades the monthly rollup.
	UpdateDailySummary(ctx context.Context, date, locationID string) error
	// UpdateMonthlySummary recomputes the month containing date by summing
	// its daily summaries. Never computed directly from invoices.
	UpdateMonthlySummary(ctx context.Context, date, locationID string) error
	GetDailySummary(ctx context.Context, date, locationID string) (*dto.DailySummaryResponse, error)
	GetMonthlySummary(ctx context.Context, year, month int, locationID string) (*dto.MonthlySummaryResponse, error)
}

type reportService struct {
	records   repository.RecordRepository
	summaries repository.SummaryRepository
}

func NewReportService(records repository.RecordRepository, summaries repository.SummaryRepository) ReportService {
	return &reportService{records: records, summaries: summaries}
}

func (s *reportService) UpdateDailySummary(ctx context.Context, date, locationID string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	invoices, err := s.records.InvoiceRecordsByDate(ctx, date, locationID)
	if err != nil {
		return fmt.Errorf("fetch invoice records: %w", err)
	}
	refunds, err := s.records.RefundRecordsByDate(ctx, date, locationID)
	if err != nil {
		return fmt.Errorf("fetch refund records: %w", err)
	}

	totalSales := decimal.Zero
	var glasses, contacts, exams int
	for _, rec := range invoices {
		totalSales = totalSales.Add(rec.TotalAmount)
		switch rec.InvoiceType {
		case model.CategoryGlasses:
			glasses++
		case model.CategoryContacts:
			contacts++
		case model.CategoryExam:
			exams++
		}
	}
	totalRefunds := decimal.Zero
	for _, rec := range refunds {
		totalRefunds = totalRefunds.Add(rec.Amount)
	}

	// Reuse the existing row's id on upsert so the child rows stay keyed to it.
	// Only a genuine not-found mints a new id; any other read failure aborts
	// the recompute, otherwise the breakdowns would be written under an id no
	// daily row carries.
	daily, err := s.summaries.FindDaily(ctx, date, locationID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		daily = &model.DailySalesSummary{ID: uuid.New(), Date: date, LocationID: locationID}
	case err != nil:
		return fmt.Errorf("fetch daily summary: %w", err)
	}
	daily.TotalSales = totalSales
	daily.TotalRefunds = totalRefunds
	daily.NetSales = totalSales.Sub(totalRefunds)
	daily.GlassesCount = glasses
	daily.ContactsCount = contacts
	daily.ExamCount = exams

	if err := s.summaries.SaveDaily(ctx, daily); err != nil {
		return fmt.Errorf("save daily summary: %w", err)
	}

	methods, types := buildBreakdowns(daily.ID, invoices)
	if err := s.summaries.ReplaceDailyChildren(ctx, daily.ID, methods, types); err != nil {
		return fmt.Errorf("replace daily breakdowns: %w", err)
	}

	return s.UpdateMonthlySummary(ctx, date, locationID)
}

// buildBreakdowns regenerates the per-method and per-type child rows from the
// day's invoice records, grouped by the distinct values present that day.
func buildBreakdowns(dailyID uuid.UUID, invoices []model.InvoiceRecord) ([]model.PaymentMethodSummary, []model.InvoiceTypeSummary) {
	byMethod := make(map[string]*model.PaymentMethodSummary)
	byType := make(map[string]*model.InvoiceTypeSummary)
	for _, rec := range invoices {
		if rec.PaymentMethod != "" {
			m, ok := byMethod[rec.PaymentMethod]
			if !ok {
				m = &model.PaymentMethodSummary{ID: uuid.New(), DailySummaryID: dailyID, Method: rec.PaymentMethod}
				byMethod[rec.PaymentMethod] = m
			}
			m.Total = m.Total.Add(rec.TotalAmount)
			m.Count++
		}
		t, ok := byType[rec.InvoiceType]
		if !ok {
			t = &model.InvoiceTypeSummary{ID: uuid.New(), DailySummaryID: dailyID, InvoiceType: rec.InvoiceType}
			byType[rec.InvoiceType] = t
		}
		t.Total = t.Total.Add(rec.TotalAmount)
		t.Count++
	}

	methods := make([]model.PaymentMethodSummary, 0, len(byMethod))
	for _, m := range byMethod {
		methods = append(methods, *m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Method < methods[j].Method })

	types := make([]model.InvoiceTypeSummary, 0, len(byType))
	for _, t := range byType {
		types = append(types, *t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].InvoiceType < types[j].InvoiceType })

	return methods, types
}

func (s *reportService) UpdateMonthlySummary(ctx context.Context, date, locationID string) error {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	dailies, err := s.summaries.DailyRange(ctx, first.Format(dateLayout), last.Format(dateLayout), locationID)
	if err != nil {
		return fmt.Errorf("fetch daily range: %w", err)
	}

	monthly, err := s.summaries.FindMonthly(ctx, first.Year(), int(first.Month()), locationID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		monthly = &model.MonthlySalesSummary{
			ID:         uuid.New(),
			Year:       first.Year(),
			Month:      int(first.Month()),
			LocationID: locationID,
		}
	case err != nil:
		return fmt.Errorf("fetch monthly summary: %w", err)
	}

	monthly.TotalSales = decimal.Zero
	monthly.TotalRefunds = decimal.Zero
	monthly.GlassesCount = 0
	monthly.ContactsCount = 0
	monthly.ExamCount = 0
	for _, d := range dailies {
		monthly.TotalSales = monthly.TotalSales.Add(d.TotalSales)
		monthly.TotalRefunds = monthly.TotalRefunds.Add(d.TotalRefunds)
		monthly.GlassesCount += d.GlassesCount
		monthly.ContactsCount += d.ContactsCount
		monthly.ExamCount += d.ExamCount
	}
	monthly.NetSales = monthly.TotalSales.Sub(monthly.TotalRefunds)

	if err := s.summaries.SaveMonthly(ctx, monthly); err != nil {
		return fmt.Errorf("save monthly summary: %w", err)
	}
	return nil
}

func (s *reportService) GetDailySummary(ctx context.Context, date, locationID string) (*dto.DailySummaryResponse, error) {
	daily, err := s.summaries.FindDailyWithChildren(ctx, date, locationID)
	if err != nil {
		return nil, err
	}
	resp := &dto.DailySummaryResponse{
		Date:          daily.Date,
		LocationID:    daily.LocationID,
		TotalSales:    daily.TotalSales,
		TotalRefunds:  daily.TotalRefunds,
		NetSales:      daily.NetSales,
		GlassesCount:  daily.GlassesCount,
		ContactsCount: daily.ContactsCount,
		ExamCount:     daily.ExamCount,
	}
	for _, m := range daily.PaymentMethods {
		resp.PaymentMethods = append(resp.PaymentMethods, dto.MethodBreakdown{
			Method: m.Method, Total: m.Total, Count: m.Count,
		})
	}
	for _, t := range daily.InvoiceTypes {
		resp.InvoiceTypes = append(resp.InvoiceTypes, dto.TypeBreakdown{
			InvoiceType: t.InvoiceType, Total: t.Total, Count: t.Count,
		})
	}
	return resp, nil
}

func (s *reportService) GetMonthlySummary(ctx context.Context, year, month int, locationID string) (*dto.MonthlySummaryResponse, error) {
	monthly, err := s.summaries.FindMonthly(ctx, year, month, locationID)
	if err != nil {
		return nil, err
	}
	return &dto.MonthlySummaryResponse{
		Year:          monthly.Year,
		Month:         monthly.Month,
		LocationID:    monthly.LocationID,
		TotalSales:    monthly.TotalSales,
		TotalRefunds:  monthly.TotalRefunds,
		NetSales:      monthly.NetSales,
		GlassesCount:  monthly.GlassesCount,
		ContactsCount: monthly.ContactsCount,
		ExamCount:     monthly.ExamCount,
	}, nil
}
