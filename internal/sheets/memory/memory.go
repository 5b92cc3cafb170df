package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"insighthunter/internal/core"
	ports "insighthunter/internal/sheets"
)

var _ ports.ReportAppender = (*Appender)(nil)

// Appender keeps appended reports in memory. It stands in for the Sheets
// client when no spreadsheet is configured.
type Appender struct {
	mu   sync.Mutex
	rows [][]any
	ids  []string
}

func New() *Appender {
	return &Appender{}
}

// AppendReport stores the rendered row and returns a synthetic row reference.
func (a *Appender) AppendReport(_ context.Context, r core.Report) (string, error) {
	if r.ID == "" {
		return "", errors.New("report has no id")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, ports.ReportRow(r))
	a.ids = append(a.ids, r.ID)
	return fmt.Sprintf("mem:%d", len(a.rows)), nil
}

// ReportIDs returns the ids of appended reports in order.
func (a *Appender) ReportIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.ids...)
}

func (a *Appender) Rows() [][]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]any, len(a.rows))
	copy(out, a.rows)
	return out
}
