package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"insighthunter/internal/core"
	"insighthunter/internal/services"

	"github.com/google/subcommands"
)

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a CSV file" }
func (*importCmd) Usage() string {
	return `insightctl import <file.csv|->

  Imports the rows of a CSV file with date,type,amount[,company_id,description]
  columns. Invalid rows are skipped. Use - to read standard input.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	text, err := readInput(f.Arg(0))
	if err != nil {
		return fail("%v", err)
	}

	svc, closeSvc, err := openService(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer closeSvc()

	res, err := svc.ImportCSV(ctx, text)
	if err != nil {
		return fail("import: %v (%d rows stored)", err, res.InsertedCount)
	}
	fmt.Printf("Imported %d transactions\n", res.InsertedCount)
	return subcommands.ExitSuccess
}

func readInput(name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), nil
}

type reportCmd struct {
	company string
	start   string
	end     string
	xlsx    string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "generate a profit and loss report" }
func (*reportCmd) Usage() string {
	return `insightctl report -company <id> -start YYYY-MM-DD -end YYYY-MM-DD [-xlsx out.xlsx]

  Generates, stores and prints a P&L report for the period.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", core.DefaultCompanyID, "company id")
	f.StringVar(&c.start, "start", "", "first day of the period (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", "", "last day of the period (YYYY-MM-DD)")
	f.StringVar(&c.xlsx, "xlsx", "", "also write the report to this .xlsx file")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.start == "" || c.end == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	svc, closeSvc, err := openService(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer closeSvc()

	report, err := svc.GenerateReport(ctx, c.company, c.start, c.end)
	if err != nil {
		return fail("report: %v", err)
	}

	if c.xlsx != "" {
		if err := writeReportXLSX(report, c.xlsx); err != nil {
			return fail("%v", err)
		}
	}
	printMarkdown(reportMarkdown(report))
	return subcommands.ExitSuccess
}

type reportsCmd struct {
	company string
	id      string
	xlsx    string
}

func (*reportsCmd) Name() string     { return "reports" }
func (*reportsCmd) Synopsis() string { return "list or show stored P&L reports" }
func (*reportsCmd) Usage() string {
	return `insightctl reports [-company <id>] [-id <report id> [-xlsx file]]

  Lists the company's stored reports newest first, or prints one report
  when -id is given.
`
}

func (c *reportsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", core.DefaultCompanyID, "company id")
	f.StringVar(&c.id, "id", "", "show this report instead of listing")
	f.StringVar(&c.xlsx, "xlsx", "", "with -id, also write the report to this .xlsx file")
}

func (c *reportsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.xlsx != "" && c.id == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	svc, closeSvc, err := openService(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer closeSvc()

	if c.id != "" {
		report, err := svc.GetReport(ctx, c.id)
		if err != nil {
			return fail("report %s: %v", c.id, err)
		}
		if c.xlsx != "" {
			if err := writeReportXLSX(report, c.xlsx); err != nil {
				return fail("%v", err)
			}
		}
		printMarkdown(reportMarkdown(report))
		return subcommands.ExitSuccess
	}

	reports, err := svc.ListReports(ctx, c.company)
	if err != nil {
		return fail("reports: %v", err)
	}
	printMarkdown(reportsMarkdown(c.company, reports))
	return subcommands.ExitSuccess
}

type forecastCmd struct {
	company string
	months  int
}

func (*forecastCmd) Name() string     { return "forecast" }
func (*forecastCmd) Synopsis() string { return "project monthly net cash flow" }
func (*forecastCmd) Usage() string {
	return `insightctl forecast [-company <id>] [-months n]

  Prints the monthly net history and a linear projection of the next n months.
`
}

func (c *forecastCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", core.DefaultCompanyID, "company id")
	f.IntVar(&c.months, "months", services.DefaultForecastMonths, "months to project (1..120)")
}

func (c *forecastCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, closeSvc, err := openService(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer closeSvc()

	res, err := svc.Forecast(ctx, c.company, c.months)
	if err != nil {
		return fail("forecast: %v", err)
	}
	printMarkdown(forecastMarkdown(core.CompanyOrDefault(c.company), res))
	return subcommands.ExitSuccess
}

type transactionsCmd struct {
	company string
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list stored transactions" }
func (*transactionsCmd) Usage() string {
	return `insightctl transactions [-company <id>]

  Lists the company's transactions ascending by date.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", core.DefaultCompanyID, "company id")
}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, closeSvc, err := openService(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer closeSvc()

	txs, err := svc.ListTransactions(ctx, c.company)
	if err != nil {
		return fail("transactions: %v", err)
	}
	printMarkdown(transactionsMarkdown(c.company, txs))
	return subcommands.ExitSuccess
}
