package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"insighthunter/internal/core"
	"insighthunter/internal/store"

	"github.com/shopspring/decimal"
)

func tx(company, date string, typ core.TransactionType, amount int64) core.Transaction {
	return core.Transaction{CompanyID: company, Date: date, Type: typ, Amount: decimal.NewFromInt(amount)}
}

func TestMemoryStoreInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	n, err := s.InsertTransactions(ctx, []core.Transaction{
		tx("a", "2025-02-01", core.Revenue, 10),
		tx("a", "2025-01-01", core.Opex, 3),
		tx("b", "2025-01-15", core.Revenue, 7),
	})
	if err != nil || n != 3 {
		t.Fatalf("unexpected insert: n=%d err=%v", n, err)
	}

	all, err := s.ListTransactions(ctx, "a")
	if err != nil || len(all) != 2 {
		t.Fatalf("unexpected list: %v err=%v", all, err)
	}
	if all[0].Date != "2025-01-01" || all[1].Date != "2025-02-01" {
		t.Fatalf("list not ordered by date: %+v", all)
	}

	inRange, err := s.ListTransactionsInRange(ctx, "a", "2025-01-01", "2025-01-31")
	if err != nil || len(inRange) != 1 || inRange[0].Type != core.Opex {
		t.Fatalf("unexpected range: %+v err=%v", inRange, err)
	}
}

func TestMemoryStoreReportsAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"r1", "r2"} {
		if err := s.InsertReport(ctx, core.Report{ID: id, CompanyID: "a"}); err != nil {
			t.Fatalf("insert report: %v", err)
		}
	}
	got := s.Reports()
	if len(got) != 2 || got[0].ID != "r1" || got[1].ID != "r2" {
		t.Fatalf("unexpected reports: %+v", got)
	}
}

func TestMemoryStoreReportReads(t *testing.T) {
	ctx := context.Background()
	s := New()
	jan := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []core.Report{
		{ID: "r1", CompanyID: "a", CreatedAt: jan},
		{ID: "r2", CompanyID: "a", CreatedAt: jan.Add(time.Hour)},
		{ID: "r3", CompanyID: "b", CreatedAt: jan},
		{ID: "r4", CompanyID: "a", CreatedAt: jan},
	} {
		if err := s.InsertReport(ctx, r); err != nil {
			t.Fatalf("insert report: %v", err)
		}
	}

	got, err := s.GetReport(ctx, "r3")
	if err != nil || got.CompanyID != "b" {
		t.Fatalf("GetReport: %+v err=%v", got, err)
	}
	if _, err := s.GetReport(ctx, "missing"); !errors.Is(err, store.ErrReportNotFound) {
		t.Fatalf("GetReport(missing) err = %v, want ErrReportNotFound", err)
	}

	list, err := s.ListReports(ctx, "a")
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if strings.Join(ids, ",") != "r2,r4,r1" {
		t.Fatalf("ListReports order = %v, want [r2 r4 r1]", ids)
	}
	if empty, err := s.ListReports(ctx, "nobody"); err != nil || len(empty) != 0 {
		t.Fatalf("ListReports(nobody) = %v err=%v", empty, err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	if got, _ := NewFromFiles(dir).ListTransactions(context.Background(), core.DefaultCompanyID); len(got) != 0 {
		t.Fatalf("expected empty store when seed file missing, got %d", len(got))
	}

	seed := "date,type,amount,company_id\n2025-01-03,revenue,5000,\n2025-01-09,cogs,1200,demo-co\nbad,,,\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	got, err := NewFromFiles(dir).ListTransactions(context.Background(), core.DefaultCompanyID)
	if err != nil || len(got) != 2 {
		t.Fatalf("expected 2 seeded transactions, got %d err=%v", len(got), err)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatalf("seeded transactions need distinct ids: %+v", got)
	}
}
