package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"insighthunter/internal/core"
	"insighthunter/internal/store"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_TransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	desc := "invoice 1001"
	txs := []core.Transaction{
		{ID: "t2", CompanyID: "demo-co", Date: "2025-02-06", Type: core.Revenue, Amount: decimal.NewFromInt(6000)},
		{ID: "t1", CompanyID: "demo-co", Date: "2025-01-03", Type: core.Revenue, Amount: decimal.RequireFromString("5000.75"), Description: &desc},
		{ID: "t3", CompanyID: "demo-co", Date: "2025-01-15", Type: core.Opex, Amount: decimal.NewFromInt(-900)},
		{ID: "t4", CompanyID: "other", Date: "2025-01-10", Type: core.Revenue, Amount: decimal.NewFromInt(1)},
	}
	n, err := repo.InsertTransactions(ctx, txs)
	if err != nil || n != 4 {
		t.Fatalf("insert: n=%d err=%v", n, err)
	}

	all, err := repo.ListTransactions(ctx, "demo-co")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(all))
	}
	if all[0].ID != "t1" || all[1].ID != "t3" || all[2].ID != "t2" {
		t.Fatalf("not ordered by date: %v, %v, %v", all[0].ID, all[1].ID, all[2].ID)
	}
	if all[0].Amount.String() != "5000.75" || all[0].Description == nil || *all[0].Description != desc {
		t.Fatalf("unexpected first row: %+v", all[0])
	}
	if all[1].Description != nil {
		t.Fatalf("expected nil description, got %q", *all[1].Description)
	}

	jan, err := repo.ListTransactionsInRange(ctx, "demo-co", "2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(jan) != 2 {
		t.Fatalf("expected 2 january rows, got %d", len(jan))
	}
}

func TestSQLiteRepository_DuplicateIDStopsInsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	txs := []core.Transaction{
		{ID: "a", CompanyID: "c", Date: "2025-01-01", Type: core.Revenue, Amount: decimal.NewFromInt(1)},
		{ID: "a", CompanyID: "c", Date: "2025-01-02", Type: core.Revenue, Amount: decimal.NewFromInt(2)},
	}
	n, err := repo.InsertTransactions(ctx, txs)
	if err == nil {
		t.Fatal("expected primary key violation")
	}
	if n != 1 {
		t.Fatalf("expected 1 row written before the failure, got %d", n)
	}
	got, _ := repo.ListTransactions(ctx, "c")
	if len(got) != 1 {
		t.Fatalf("first row should persist, got %d rows", len(got))
	}
}

func TestSQLiteRepository_Reports(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	rep := core.Report{
		ID: "r1", CompanyID: "demo-co", PeriodStart: "2025-01-01", PeriodEnd: "2025-01-31",
		Revenue: decimal.NewFromInt(5000), COGS: decimal.NewFromInt(1200), GrossProfit: decimal.NewFromInt(3800),
		Opex: decimal.NewFromInt(900), NetIncome: decimal.NewFromInt(2900), CreatedAt: created,
	}
	if err := repo.InsertReport(ctx, rep); err != nil {
		t.Fatalf("insert report: %v", err)
	}

	got, err := repo.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if !got.CreatedAt.Equal(created) || !got.NetIncome.Equal(rep.NetIncome) || got.PeriodEnd != "2025-01-31" {
		t.Fatalf("unexpected report: %+v", got)
	}

	if err := repo.InsertReport(ctx, rep); err == nil {
		t.Fatal("expected duplicate report id to fail")
	}
}

func TestSQLiteRepository_ReportReads(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	for _, r := range []core.Report{
		{ID: "r1", CompanyID: "demo-co", CreatedAt: base},
		{ID: "r2", CompanyID: "demo-co", CreatedAt: base.Add(500 * time.Millisecond)},
		{ID: "r3", CompanyID: "other", CreatedAt: base.Add(time.Hour)},
		{ID: "r4", CompanyID: "demo-co", CreatedAt: base},
	} {
		r.PeriodStart, r.PeriodEnd = "2025-01-01", "2025-01-31"
		if err := repo.InsertReport(ctx, r); err != nil {
			t.Fatalf("insert report %s: %v", r.ID, err)
		}
	}

	list, err := repo.ListReports(ctx, "demo-co")
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if strings.Join(ids, ",") != "r2,r4,r1" {
		t.Fatalf("order = %v, want [r2 r4 r1]", ids)
	}
	if !list[0].CreatedAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("created_at = %v", list[0].CreatedAt)
	}

	if _, err := repo.GetReport(ctx, "missing"); !errors.Is(err, store.ErrReportNotFound) {
		t.Fatalf("GetReport(missing) err = %v, want ErrReportNotFound", err)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
