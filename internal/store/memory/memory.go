package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"insighthunter/internal/core"
	"insighthunter/internal/store"

	"github.com/google/uuid"
)

var _ store.Store = (*Store)(nil)

// Store keeps transactions and reports in process memory.
type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	reports []core.Report
}

func New(seed ...core.Transaction) *Store {
	return &Store{txs: append([]core.Transaction(nil), seed...)}
}

// NewFromFiles seeds the store from base/seed_transactions.csv when present.
// A missing or empty file yields an empty store.
func NewFromFiles(base string) *Store {
	path := filepath.Join(base, "seed_transactions.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		return New()
	}
	txs := core.NormalizeRows(core.ParseCSV(string(data)), func() string {
		return uuid.Must(uuid.NewV7()).String()
	})
	slog.Info("Seeded memory store", "path", path, "transactions", len(txs))
	return New(txs...)
}

func (s *Store) InsertTransactions(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
	return len(txs), nil
}

func (s *Store) ListTransactionsInRange(_ context.Context, companyID, start, end string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.InPeriod(companyID, start, end) {
			out = append(out, tx)
		}
	}
	sortByDate(out)
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, companyID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.CompanyID == companyID {
			out = append(out, tx)
		}
	}
	sortByDate(out)
	return out, nil
}

func (s *Store) InsertReport(_ context.Context, r core.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *Store) GetReport(_ context.Context, id string) (core.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Report{}, fmt.Errorf("report %s: %w", id, store.ErrReportNotFound)
}

// ListReports returns the company's reports newest first; reports created at
// the same instant keep reverse insertion order.
func (s *Store) ListReports(_ context.Context, companyID string) ([]core.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Report
	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].CompanyID == companyID {
			out = append(out, s.reports[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Reports returns a copy of the stored reports in insertion order.
func (s *Store) Reports() []core.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Report(nil), s.reports...)
}

func sortByDate(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date < txs[j].Date })
}
