package store

import (
	"context"
	"errors"

	"insighthunter/internal/core"
)

// ErrReportNotFound is returned by ReportReader.GetReport for unknown ids.
var ErrReportNotFound = errors.New("report not found")

// Ports for persistence adapters.
type (
	TransactionWriter interface {
		// InsertTransactions appends the transactions and returns how many
		// were stored. Inserts are not atomic across records.
		InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error)
	}

	TransactionReader interface {
		// ListTransactionsInRange returns the transactions of companyID dated
		// within the inclusive [start, end] range, ascending by date.
		ListTransactionsInRange(ctx context.Context, companyID, start, end string) ([]core.Transaction, error)
		// ListTransactions returns every transaction of companyID ascending by date.
		ListTransactions(ctx context.Context, companyID string) ([]core.Transaction, error)
	}

	ReportWriter interface {
		InsertReport(ctx context.Context, r core.Report) error
	}

	ReportReader interface {
		GetReport(ctx context.Context, id string) (core.Report, error)
		// ListReports returns the reports of companyID, newest first.
		ListReports(ctx context.Context, companyID string) ([]core.Report, error)
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		TransactionWriter
		TransactionReader
		ReportWriter
		ReportReader
	}
)
