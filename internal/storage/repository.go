package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"insighthunter/internal/core"
	"insighthunter/internal/store"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteRepository)(nil)

// createdAtLayout is fixed width so report timestamps sort as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertTransactions implements store.TransactionWriter. Rows are written one
// by one; on failure the rows already written stay in place.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	inserted := 0
	for _, tx := range txs {
		var desc sql.NullString
		if tx.Description != nil {
			desc = sql.NullString{String: *tx.Description, Valid: true}
		}
		err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
			ID:          tx.ID,
			CompanyID:   tx.CompanyID,
			Date:        tx.Date,
			Type:        tx.Type.String(),
			Amount:      tx.Amount.String(),
			Description: desc,
		})
		if err != nil {
			return inserted, fmt.Errorf("create transaction %s: %w", tx.ID, err)
		}
		inserted++
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", inserted)
	return inserted, nil
}

// ListTransactionsInRange implements store.TransactionReader
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, companyID, start, end string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsInRange(ctx, ListTransactionsInRangeParams{
		CompanyID: companyID,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	return toCoreTransactions(rows)
}

// ListTransactions implements store.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context, companyID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

// InsertReport implements store.ReportWriter
func (r *SQLiteRepository) InsertReport(ctx context.Context, rep core.Report) error {
	err := r.queries.CreateReport(ctx, Report{
		ID:          rep.ID,
		CompanyID:   rep.CompanyID,
		PeriodStart: rep.PeriodStart,
		PeriodEnd:   rep.PeriodEnd,
		Revenue:     rep.Revenue.String(),
		Cogs:        rep.COGS.String(),
		GrossProfit: rep.GrossProfit.String(),
		Opex:        rep.Opex.String(),
		NetIncome:   rep.NetIncome.String(),
		CreatedAt:   rep.CreatedAt.UTC().Format(createdAtLayout),
	})
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	slog.InfoContext(ctx, "Report saved to SQLite",
		"id", rep.ID,
		"company_id", rep.CompanyID,
		"period_start", rep.PeriodStart,
		"period_end", rep.PeriodEnd)
	return nil
}

// GetReport implements store.ReportReader.
func (r *SQLiteRepository) GetReport(ctx context.Context, id string) (core.Report, error) {
	row, err := r.queries.GetReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, fmt.Errorf("report %s: %w", id, store.ErrReportNotFound)
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("get report by id: %w", err)
	}
	return toCoreReport(row)
}

// ListReports implements store.ReportReader.
func (r *SQLiteRepository) ListReports(ctx context.Context, companyID string) ([]core.Report, error) {
	rows, err := r.queries.ListReportsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]core.Report, 0, len(rows))
	for _, row := range rows {
		rep, err := toCoreReport(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

func toCoreReport(row Report) (core.Report, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return core.Report{}, fmt.Errorf("parse report created_at %q: %w", row.CreatedAt, err)
	}
	rep := core.Report{
		ID:          row.ID,
		CompanyID:   row.CompanyID,
		PeriodStart: row.PeriodStart,
		PeriodEnd:   row.PeriodEnd,
		CreatedAt:   createdAt,
	}
	fields := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{row.Revenue, &rep.Revenue},
		{row.Cogs, &rep.COGS},
		{row.GrossProfit, &rep.GrossProfit},
		{row.Opex, &rep.Opex},
		{row.NetIncome, &rep.NetIncome},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return core.Report{}, fmt.Errorf("parse report %s amount %q: %w", row.ID, f.raw, err)
		}
		*f.dst = d
	}
	return rep, nil
}

func toCoreTransactions(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount of transaction %s: %w", row.ID, err)
		}
		tx := core.Transaction{
			ID:        row.ID,
			CompanyID: row.CompanyID,
			Date:      row.Date,
			Type:      core.TransactionType(row.Type),
			Amount:    amount,
		}
		if row.Description.Valid {
			desc := row.Description.String
			tx.Description = &desc
		}
		out = append(out, tx)
	}
	return out, nil
}
