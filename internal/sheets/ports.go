package sheets

import (
	"context"

	"insighthunter/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// ReportAppender writes one row per generated report.
	ReportAppender interface {
		AppendReport(ctx context.Context, r core.Report) (rowRef string, err error)
	}
)

// ReportHeader is the column layout of the reports sheet.
var ReportHeader = []string{
	"created_at", "report_id", "company_id", "period_start", "period_end",
	"revenue", "cogs", "gross_profit", "opex", "net_income",
}

// ReportRow renders a report in ReportHeader order.
func ReportRow(r core.Report) []any {
	return []any{
		r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		r.ID,
		r.CompanyID,
		r.PeriodStart,
		r.PeriodEnd,
		r.Revenue.String(),
		r.COGS.String(),
		r.GrossProfit.String(),
		r.Opex.String(),
		r.NetIncome.String(),
	}
}
