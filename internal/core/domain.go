package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Revenue TransactionType = "revenue"
	COGS    TransactionType = "cogs"
	Opex    TransactionType = "opex"
)

// DefaultCompanyID is used when a record or request carries no company.
const DefaultCompanyID = "demo-co"

// DateLayout is the calendar date format used by transactions and report periods.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Transaction is a single ledger entry. Date is kept as the text that was
	// imported so range filters compare it lexicographically.
	Transaction struct {
		ID          string
		CompanyID   string
		Date        string
		Type        TransactionType
		Amount      decimal.Decimal
		Description *string
	}

	// Report is an immutable profit and loss snapshot for a company and period.
	Report struct {
		ID          string
		CompanyID   string
		PeriodStart string
		PeriodEnd   string
		Revenue     decimal.Decimal
		COGS        decimal.Decimal
		GrossProfit decimal.Decimal
		Opex        decimal.Decimal
		NetIncome   decimal.Decimal
		CreatedAt   time.Time
	}

	// TimeSeries holds net cash flow per month. Months is sorted ascending
	// and Values[i] belongs to Months[i].
	TimeSeries struct {
		Months []string
		Values []decimal.Decimal
	}

	ForecastResult struct {
		Months   int
		History  TimeSeries
		Forecast []float64
	}

	ImportResult struct {
		InsertedCount int
	}
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrEmptyCompany = errors.New("empty company id")
	ErrInvalidRange = errors.New("invalid months range")
)

// Normalize lower-cases a raw type label. Surrounding whitespace is kept.
func (t TransactionType) Normalize() TransactionType {
	return TransactionType(strings.ToLower(string(t)))
}

func (t TransactionType) String() string {
	return string(t)
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// CompanyOrDefault returns the trimmed id or DefaultCompanyID when blank.
func CompanyOrDefault(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultCompanyID
	}
	return id
}

// Floats converts the series values for numeric fitting.
func (ts TimeSeries) Floats() []float64 {
	out := make([]float64, len(ts.Values))
	for i, v := range ts.Values {
		out[i] = v.InexactFloat64()
	}
	return out
}

func (ts TimeSeries) Len() int {
	return len(ts.Months)
}
