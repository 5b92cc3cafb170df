package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"insighthunter/internal/cache"
	"insighthunter/internal/core"
	"insighthunter/internal/store"
	"insighthunter/internal/store/memory"
)

const sampleCSV = `date,type,amount,company_id,description
2025-01-03,revenue,5000,demo-co,invoice 1001
2025-01-09,cogs,1200,demo-co,materials
2025-01-15,opex,900,demo-co,rent
2025-02-06,revenue,6000,demo-co,invoice 1010
2025-02-10,cogs,1500,demo-co,materials
2025-02-19,opex,950,demo-co,utilities
`

// countingStore wraps the memory store to count full listings and inject errors.
type countingStore struct {
	*memory.Store
	lists     int
	listErr   error
	insertErr error
	// afterList runs once a listing has been read, before it is returned.
	afterList func()
}

func (c *countingStore) ListTransactions(ctx context.Context, companyID string) ([]core.Transaction, error) {
	c.lists++
	if c.listErr != nil {
		return nil, c.listErr
	}
	txs, err := c.Store.ListTransactions(ctx, companyID)
	if c.afterList != nil {
		hook := c.afterList
		c.afterList = nil
		hook()
	}
	return txs, err
}

func (c *countingStore) InsertReport(ctx context.Context, r core.Report) error {
	if c.insertErr != nil {
		return c.insertErr
	}
	return c.Store.InsertReport(ctx, r)
}

type fakePublisher struct {
	published []core.Report
	err       error
}

func (f *fakePublisher) PublishReportGenerated(_ context.Context, r core.Report) error {
	f.published = append(f.published, r)
	return f.err
}

func newTestService(st *countingStore, pub ReportPublisher, history cache.Cache[core.TimeSeries]) *FinanceService {
	s := NewFinanceService(st, pub, history)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600)) }
	return s
}

func TestFinanceService_ImportCSV(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: memory.New()}
	s := newTestService(st, nil, nil)

	res, err := s.ImportCSV(ctx, sampleCSV)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.InsertedCount != 6 {
		t.Fatalf("inserted = %d, want 6", res.InsertedCount)
	}

	// importing again duplicates rows
	if _, err := s.ImportCSV(ctx, sampleCSV); err != nil {
		t.Fatalf("second ImportCSV: %v", err)
	}
	txs, _ := s.ListTransactions(ctx, "demo-co")
	if len(txs) != 12 {
		t.Fatalf("expected 12 rows after double import, got %d", len(txs))
	}
	if txs[0].ID == txs[1].ID {
		t.Fatal("every stored row needs a fresh id")
	}
}

func TestFinanceService_ImportCSV_NothingAccepted(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"header only", "date,type,amount\n"},
		{"missing amount column", "date,type\n2025-01-01,revenue\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(&countingStore{Store: memory.New()}, nil, nil)
			res, err := s.ImportCSV(context.Background(), tt.text)
			if err != nil || res.InsertedCount != 0 {
				t.Fatalf("got %+v err=%v", res, err)
			}
		})
	}
}

func TestFinanceService_GenerateReport(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: memory.New()}
	pub := &fakePublisher{}
	s := newTestService(st, pub, nil)
	if _, err := s.ImportCSV(ctx, sampleCSV); err != nil {
		t.Fatal(err)
	}

	rep, err := s.GenerateReport(ctx, "demo-co", "2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	want := map[string]int64{"revenue": 5000, "cogs": 1200, "gross": 3800, "opex": 900, "net": 2900}
	got := map[string]int64{
		"revenue": rep.Revenue.IntPart(), "cogs": rep.COGS.IntPart(), "gross": rep.GrossProfit.IntPart(),
		"opex": rep.Opex.IntPart(), "net": rep.NetIncome.IntPart(),
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %d, want %d", k, got[k], v)
		}
	}
	if rep.ID == "" || rep.CreatedAt.Location() != time.UTC {
		t.Fatalf("report must carry id and UTC timestamp: %+v", rep)
	}
	if reps := st.Reports(); len(reps) != 1 || reps[0].ID != rep.ID {
		t.Fatalf("report not stored: %+v", reps)
	}
	if len(pub.published) != 1 || pub.published[0].ID != rep.ID {
		t.Fatalf("report not published: %+v", pub.published)
	}
}

func TestFinanceService_GenerateReport_EmptyPeriod(t *testing.T) {
	s := newTestService(&countingStore{Store: memory.New()}, nil, nil)
	rep, err := s.GenerateReport(context.Background(), "demo-co", "2030-01-01", "2030-12-31")
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if !rep.Revenue.IsZero() || !rep.NetIncome.IsZero() {
		t.Fatalf("expected zero report, got %+v", rep)
	}
}

func TestFinanceService_GenerateReport_PublishFailureIgnored(t *testing.T) {
	s := newTestService(&countingStore{Store: memory.New()}, &fakePublisher{err: errors.New("broker down")}, nil)
	if _, err := s.GenerateReport(context.Background(), "demo-co", "2025-01-01", "2025-01-31"); err != nil {
		t.Fatalf("publish failure must not fail generation: %v", err)
	}
}

func TestFinanceService_GenerateReport_Errors(t *testing.T) {
	storeErr := errors.New("disk full")
	tests := []struct {
		name      string
		company   string
		start     string
		end       string
		insertErr error
		want      error
	}{
		{"empty company", "", "2025-01-01", "2025-01-31", nil, core.ErrEmptyCompany},
		{"bad start", "demo-co", "2025-13-01", "2025-01-31", nil, core.ErrInvalidDate},
		{"bad end", "demo-co", "2025-01-01", "31/01/2025", nil, core.ErrInvalidDate},
		{"store failure", "demo-co", "2025-01-01", "2025-01-31", storeErr, storeErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			s := newTestService(&countingStore{Store: memory.New(), insertErr: tt.insertErr}, pub, nil)
			_, err := s.GenerateReport(context.Background(), tt.company, tt.start, tt.end)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if len(pub.published) != 0 {
				t.Fatal("nothing should be published on failure")
			}
		})
	}
}

func TestFinanceService_Forecast(t *testing.T) {
	ctx := context.Background()
	s := newTestService(&countingStore{Store: memory.New()}, nil, nil)
	if _, err := s.ImportCSV(ctx, sampleCSV); err != nil {
		t.Fatal(err)
	}

	res, err := s.Forecast(ctx, "", 2)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if res.Months != 2 || res.History.Len() != 2 || res.History.Months[0] != "2025-01" {
		t.Fatalf("unexpected history %+v", res.History)
	}
	want := []float64{4200, 4850}
	for i, w := range want {
		if math.Abs(res.Forecast[i]-w) > 1e-9 {
			t.Fatalf("forecast[%d] = %v, want %v", i, res.Forecast[i], w)
		}
	}
}

func TestFinanceService_Forecast_NoData(t *testing.T) {
	s := newTestService(&countingStore{Store: memory.New()}, nil, nil)
	res, err := s.Forecast(context.Background(), "nobody", 6)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if res.History.Len() != 0 || len(res.Forecast) != 0 {
		t.Fatalf("expected empty forecast, got %+v", res)
	}
}

func TestFinanceService_Forecast_MonthsRange(t *testing.T) {
	s := newTestService(&countingStore{Store: memory.New()}, nil, nil)
	for _, m := range []int{0, -1, 121} {
		if _, err := s.Forecast(context.Background(), "demo-co", m); !errors.Is(err, core.ErrInvalidRange) {
			t.Errorf("months=%d: got %v, want ErrInvalidRange", m, err)
		}
	}
	for _, m := range []int{1, 120} {
		if _, err := s.Forecast(context.Background(), "demo-co", m); err != nil {
			t.Errorf("months=%d: unexpected error %v", m, err)
		}
	}
}

func TestFinanceService_ForecastHistoryCache(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: memory.New()}
	s := newTestService(st, nil, cache.NewLRUCache[core.TimeSeries](16, time.Minute))

	if _, err := s.ImportCSV(ctx, sampleCSV); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.Forecast(ctx, "demo-co", 3); err != nil {
			t.Fatal(err)
		}
	}
	if st.lists != 1 {
		t.Fatalf("expected one store read, got %d", st.lists)
	}

	// import invalidates the company's cached history
	if _, err := s.ImportCSV(ctx, "date,type,amount,company_id\n2025-03-01,revenue,100,demo-co\n"); err != nil {
		t.Fatal(err)
	}
	res, err := s.Forecast(ctx, "demo-co", 3)
	if err != nil {
		t.Fatal(err)
	}
	if st.lists != 2 || res.History.Len() != 3 {
		t.Fatalf("expected fresh history after import: lists=%d months=%v", st.lists, res.History.Months)
	}
}

func TestFinanceService_ForecastHistoryNotCachedAcrossImport(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: memory.New()}
	s := newTestService(st, nil, cache.NewLRUCache[core.TimeSeries](16, time.Minute))

	if _, err := s.ImportCSV(ctx, sampleCSV); err != nil {
		t.Fatal(err)
	}
	// an import lands between the store read and the cache write
	st.afterList = func() {
		if _, err := s.ImportCSV(ctx, "date,type,amount,company_id\n2025-03-01,revenue,100,demo-co\n"); err != nil {
			t.Errorf("ImportCSV: %v", err)
		}
	}
	stale, err := s.Forecast(ctx, "demo-co", 3)
	if err != nil {
		t.Fatal(err)
	}
	if stale.History.Len() != 2 {
		t.Fatalf("history months = %v, want the two read before the import", stale.History.Months)
	}

	res, err := s.Forecast(ctx, "demo-co", 3)
	if err != nil {
		t.Fatal(err)
	}
	if st.lists != 2 || res.History.Len() != 3 {
		t.Fatalf("stale history served from cache: lists=%d months=%v", st.lists, res.History.Months)
	}
}

func TestFinanceService_Forecast_NonFinite(t *testing.T) {
	ctx := context.Background()
	s := newTestService(&countingStore{Store: memory.New()}, nil, nil)

	if _, err := s.ImportCSV(ctx, "date,type,amount\n2025-01-01,revenue,1e308\n2025-01-02,revenue,1e308\n"); err != nil {
		t.Fatal(err)
	}
	_, err := s.Forecast(ctx, "", 2)
	if !errors.Is(err, core.ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
}

func TestFinanceService_ReportReads(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: memory.New()}
	s := newTestService(st, nil, nil)

	if _, err := s.ImportCSV(ctx, sampleCSV); err != nil {
		t.Fatal(err)
	}
	jan, err := s.GenerateReport(ctx, "demo-co", "2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC) }
	feb, err := s.GenerateReport(ctx, "demo-co", "2025-02-01", "2025-02-28")
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetReport(ctx, jan.ID)
	if err != nil || !got.NetIncome.Equal(jan.NetIncome) {
		t.Fatalf("GetReport: %+v err=%v", got, err)
	}
	if _, err := s.GetReport(ctx, "nope"); !errors.Is(err, store.ErrReportNotFound) {
		t.Fatalf("GetReport(nope) err = %v", err)
	}

	list, err := s.ListReports(ctx, "demo-co")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != feb.ID || list[1].ID != jan.ID {
		t.Fatalf("ListReports = %+v, want newest first", list)
	}
	if _, err := s.ListReports(ctx, ""); !errors.Is(err, core.ErrEmptyCompany) {
		t.Fatalf("ListReports(\"\") err = %v", err)
	}
}

func TestFinanceService_StoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	s := newTestService(&countingStore{Store: memory.New(), listErr: boom}, nil, nil)

	if _, err := s.Forecast(context.Background(), "demo-co", 3); !errors.Is(err, boom) {
		t.Fatalf("Forecast: got %v", err)
	}
	if _, err := s.ListTransactions(context.Background(), "demo-co"); !errors.Is(err, boom) {
		t.Fatalf("ListTransactions: got %v", err)
	}
	if _, err := s.ListTransactions(context.Background(), ""); !errors.Is(err, core.ErrEmptyCompany) {
		t.Fatalf("ListTransactions empty company: got %v", err)
	}
}
