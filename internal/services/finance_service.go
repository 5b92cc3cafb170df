package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"insighthunter/internal/cache"
	"insighthunter/internal/core"
	"insighthunter/internal/store"

	"github.com/google/uuid"
)

// Forecast horizon bounds accepted by Forecast.
const (
	MinForecastMonths     = 1
	MaxForecastMonths     = 120
	DefaultForecastMonths = 6
)

// ReportPublisher announces generated reports to other processes.
type ReportPublisher interface {
	PublishReportGenerated(ctx context.Context, r core.Report) error
}

// FinanceService runs the import, report and forecast pipelines over a
// store. The publisher and history cache are optional.
type FinanceService struct {
	store     store.Store
	publisher ReportPublisher
	history   cache.Cache[core.TimeSeries]

	// generations counts history invalidations per company so a series
	// computed before an import is never cached after it.
	mu          sync.Mutex
	generations map[string]uint64

	newID func() string
	now   func() time.Time
}

func NewFinanceService(st store.Store, publisher ReportPublisher, history cache.Cache[core.TimeSeries]) *FinanceService {
	return &FinanceService{
		store:       st,
		publisher:   publisher,
		history:     history,
		generations: make(map[string]uint64),
		newID:       NewID,
		now:         time.Now,
	}
}

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ImportCSV parses and validates CSV text and stores every accepted row.
// Importing the same text twice stores the rows twice.
func (s *FinanceService) ImportCSV(ctx context.Context, text string) (core.ImportResult, error) {
	rows := core.ParseCSV(text)
	txs := core.NormalizeRows(rows, s.newID)

	slog.DebugContext(ctx, "CSV parsed",
		"rows", len(rows),
		"accepted", len(txs))

	if len(txs) == 0 {
		return core.ImportResult{}, nil
	}

	inserted, err := s.store.InsertTransactions(ctx, txs)
	s.invalidateHistory(ctx, txs)
	if err != nil {
		return core.ImportResult{InsertedCount: inserted}, fmt.Errorf("insert transactions: %w", err)
	}

	slog.InfoContext(ctx, "CSV imported",
		"rows", len(rows)-1,
		"inserted", inserted)
	return core.ImportResult{InsertedCount: inserted}, nil
}

// GenerateReport summarizes the period, stores the report and publishes it.
// A failed publish is logged and does not fail the call.
func (s *FinanceService) GenerateReport(ctx context.Context, companyID, start, end string) (core.Report, error) {
	if companyID == "" {
		return core.Report{}, core.ErrEmptyCompany
	}
	if err := core.ValidateDate(start); err != nil {
		return core.Report{}, fmt.Errorf("start %q: %w", start, err)
	}
	if err := core.ValidateDate(end); err != nil {
		return core.Report{}, fmt.Errorf("end %q: %w", end, err)
	}

	txs, err := s.store.ListTransactionsInRange(ctx, companyID, start, end)
	if err != nil {
		return core.Report{}, fmt.Errorf("list transactions: %w", err)
	}

	report := core.NewReport(companyID, start, end, core.Summarize(companyID, start, end, txs))
	report.ID = s.newID()
	report.CreatedAt = s.now().UTC()

	if err := s.store.InsertReport(ctx, report); err != nil {
		return core.Report{}, fmt.Errorf("insert report: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReportGenerated(ctx, report); err != nil {
			slog.ErrorContext(ctx, "Failed to publish report generated message",
				"report_id", report.ID,
				"error", err)
		}
	}

	return report, nil
}

// Forecast returns the monthly net history of the company and a linear
// projection over the next months.
func (s *FinanceService) Forecast(ctx context.Context, companyID string, months int) (core.ForecastResult, error) {
	if months < MinForecastMonths || months > MaxForecastMonths {
		return core.ForecastResult{}, fmt.Errorf("%w: %d not in %d..%d", core.ErrInvalidRange, months, MinForecastMonths, MaxForecastMonths)
	}
	companyID = core.CompanyOrDefault(companyID)

	history, err := s.monthlyHistory(ctx, companyID)
	if err != nil {
		return core.ForecastResult{}, err
	}

	res, err := core.Forecast(history, months)
	if err != nil {
		return core.ForecastResult{}, fmt.Errorf("forecast %s: %w", companyID, err)
	}
	return res, nil
}

// ListTransactions returns the company's transactions ascending by date.
func (s *FinanceService) ListTransactions(ctx context.Context, companyID string) ([]core.Transaction, error) {
	if companyID == "" {
		return nil, core.ErrEmptyCompany
	}
	txs, err := s.store.ListTransactions(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// GetReport returns a stored report. Unknown ids yield store.ErrReportNotFound.
func (s *FinanceService) GetReport(ctx context.Context, id string) (core.Report, error) {
	if id == "" {
		return core.Report{}, fmt.Errorf("report %q: %w", id, store.ErrReportNotFound)
	}
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return core.Report{}, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

// ListReports returns the company's stored reports, newest first.
func (s *FinanceService) ListReports(ctx context.Context, companyID string) ([]core.Report, error) {
	if companyID == "" {
		return nil, core.ErrEmptyCompany
	}
	reports, err := s.store.ListReports(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *FinanceService) monthlyHistory(ctx context.Context, companyID string) (core.TimeSeries, error) {
	if s.history != nil {
		if ts, ok := s.history.Get(ctx, companyID); ok {
			return ts, nil
		}
	}

	gen := s.generation(companyID)
	txs, err := s.store.ListTransactions(ctx, companyID)
	if err != nil {
		return core.TimeSeries{}, fmt.Errorf("list transactions: %w", err)
	}
	ts := core.MonthlyNetSeries(txs)

	if s.history != nil {
		s.mu.Lock()
		if s.generations[companyID] == gen {
			s.history.Set(ctx, companyID, ts)
		}
		s.mu.Unlock()
	}
	return ts, nil
}

func (s *FinanceService) generation(companyID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[companyID]
}

func (s *FinanceService) invalidateHistory(ctx context.Context, txs []core.Transaction) {
	if s.history == nil {
		return
	}
	seen := make(map[string]struct{})
	for _, tx := range txs {
		if _, ok := seen[tx.CompanyID]; ok {
			continue
		}
		seen[tx.CompanyID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for companyID := range seen {
		s.generations[companyID]++
		s.history.Delete(ctx, companyID)
	}
}
