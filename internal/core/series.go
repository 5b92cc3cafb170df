package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthOf returns the YYYY-MM bucket of a transaction date, or the whole
// date when it is shorter than seven characters.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// MonthlyNetSeries buckets transactions by month. Revenue adds to the month
// and every other type subtracts from it. Months are emitted ascending.
func MonthlyNetSeries(txs []Transaction) TimeSeries {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		m := MonthOf(tx.Date)
		amt := tx.Amount
		if tx.Type.Normalize() != Revenue {
			amt = amt.Neg()
		}
		sums[m] = sums[m].Add(amt)
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Strings(months)

	values := make([]decimal.Decimal, len(months))
	for i, m := range months {
		values[i] = sums[m]
	}
	return TimeSeries{Months: months, Values: values}
}
