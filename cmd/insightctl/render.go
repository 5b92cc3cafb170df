package main

import (
	"fmt"
	"strings"
	"time"

	"insighthunter/internal/core"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func reportMarkdown(r core.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# P&L report: %s\n\n", r.CompanyID)
	fmt.Fprintf(&b, "Period **%s** to **%s**, report `%s`\n\n", r.PeriodStart, r.PeriodEnd, r.ID)
	b.WriteString("| Line | Amount |\n|---|---:|\n")
	for _, line := range reportLines(r) {
		fmt.Fprintf(&b, "| %s | %s |\n", line.label, money(line.value))
	}
	return b.String()
}

type reportLine struct {
	label string
	value decimal.Decimal
}

func reportLines(r core.Report) []reportLine {
	return []reportLine{
		{"Revenue", r.Revenue},
		{"COGS", r.COGS},
		{"Gross profit", r.GrossProfit},
		{"Opex", r.Opex},
		{"Net income", r.NetIncome},
	}
}

func forecastMarkdown(companyID string, res core.ForecastResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Cash flow forecast: %s\n\n", companyID)

	if res.History.Len() == 0 {
		b.WriteString("No transactions yet, nothing to forecast.\n")
		return b.String()
	}

	b.WriteString("## History\n\n| Month | Net |\n|---|---:|\n")
	for i, m := range res.History.Months {
		fmt.Fprintf(&b, "| %s | %s |\n", m, money(res.History.Values[i]))
	}

	fmt.Fprintf(&b, "\n## Next %d months\n\n| Month | Projected net |\n|---|---:|\n", res.Months)
	labels := nextMonths(res.History.Months[res.History.Len()-1], len(res.Forecast))
	for i, v := range res.Forecast {
		fmt.Fprintf(&b, "| %s | %s |\n", labels[i], money(decimal.NewFromFloat(v)))
	}
	return b.String()
}

// nextMonths labels the n months after last (YYYY-MM); unparsable input
// yields +1, +2, ...
func nextMonths(last string, n int) []string {
	out := make([]string, n)
	t, err := time.Parse("2006-01", last)
	for i := range out {
		if err != nil {
			out[i] = fmt.Sprintf("+%d", i+1)
			continue
		}
		out[i] = t.AddDate(0, i+1, 0).Format("2006-01")
	}
	return out
}

func transactionsMarkdown(companyID string, txs []core.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions: %s\n\n", companyID)
	if len(txs) == 0 {
		b.WriteString("No transactions.\n")
		return b.String()
	}
	b.WriteString("| Date | Type | Amount | Description |\n|---|---|---:|---|\n")
	for _, tx := range txs {
		desc := ""
		if tx.Description != nil {
			desc = strings.ReplaceAll(*tx.Description, "|", "\\|")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", tx.Date, tx.Type, money(tx.Amount), desc)
	}
	fmt.Fprintf(&b, "\n%d transactions\n", len(txs))
	return b.String()
}

func reportsMarkdown(companyID string, reports []core.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Reports: %s\n\n", companyID)
	if len(reports) == 0 {
		b.WriteString("No reports.\n")
		return b.String()
	}
	b.WriteString("| Created | Period | Revenue | Net income | ID |\n|---|---|---:|---:|---|\n")
	for _, r := range reports {
		fmt.Fprintf(&b, "| %s | %s to %s | %s | %s | %s |\n",
			r.CreatedAt.UTC().Format(time.RFC3339), r.PeriodStart, r.PeriodEnd, money(r.Revenue), money(r.NetIncome), r.ID)
	}
	return b.String()
}

const xlsxSheet = "Report"

// writeReportXLSX writes the report lines to a single sheet workbook.
func writeReportXLSX(r core.Report, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	cells := [][]any{
		{"Company", r.CompanyID},
		{"Period start", r.PeriodStart},
		{"Period end", r.PeriodEnd},
		{"Report id", r.ID},
		{"Created at", r.CreatedAt.UTC().Format(time.RFC3339)},
		{},
	}
	for _, line := range reportLines(r) {
		cells = append(cells, []any{line.label, line.value.InexactFloat64()})
	}

	for i, row := range cells {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 16); err != nil {
		return err
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}
