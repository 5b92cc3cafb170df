package core

import "github.com/shopspring/decimal"

// Totals are the profit and loss figures for a set of transactions.
type Totals struct {
	Revenue     decimal.Decimal
	COGS        decimal.Decimal
	GrossProfit decimal.Decimal
	Opex        decimal.Decimal
	NetIncome   decimal.Decimal
}

// InPeriod reports whether tx belongs to companyID and falls within the
// inclusive [start, end] date range, compared as strings.
func (tx Transaction) InPeriod(companyID, start, end string) bool {
	return tx.CompanyID == companyID && tx.Date >= start && tx.Date <= end
}

// Summarize sums revenue, cogs and opex over the transactions of companyID
// dated within [start, end]. Types other than the three categories are
// ignored. With no matching rows every figure is zero.
func Summarize(companyID, start, end string, txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if !tx.InPeriod(companyID, start, end) {
			continue
		}
		switch tx.Type.Normalize() {
		case Revenue:
			t.Revenue = t.Revenue.Add(tx.Amount)
		case COGS:
			t.COGS = t.COGS.Add(tx.Amount)
		case Opex:
			t.Opex = t.Opex.Add(tx.Amount)
		}
	}
	t.GrossProfit = t.Revenue.Sub(t.COGS)
	t.NetIncome = t.GrossProfit.Sub(t.Opex)
	return t
}

// NewReport builds the report for a summarized period. ID and CreatedAt are
// stamped by the caller.
func NewReport(companyID, start, end string, t Totals) Report {
	return Report{
		CompanyID:   companyID,
		PeriodStart: start,
		PeriodEnd:   end,
		Revenue:     t.Revenue,
		COGS:        t.COGS,
		GrossProfit: t.GrossProfit,
		Opex:        t.Opex,
		NetIncome:   t.NetIncome,
	}
}
