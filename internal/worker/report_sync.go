package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"insighthunter/internal/amqp"
	"insighthunter/internal/sheets"
)

// ReportSyncWorker appends generated reports to the reports sheet.
type ReportSyncWorker struct {
	sheets  sheets.ReportAppender
	claimer Claimer
}

// NewReportSyncWorker creates the worker. claimer may be nil when only one
// worker consumes the queue.
func NewReportSyncWorker(appender sheets.ReportAppender, claimer Claimer) *ReportSyncWorker {
	return &ReportSyncWorker{sheets: appender, claimer: claimer}
}

// HandleReportMessage processes a single report generated message from AMQP.
// Returning an error makes the consumer requeue the message.
func (w *ReportSyncWorker) HandleReportMessage(ctx context.Context, msg *amqp.ReportGeneratedMessage) error {
	report := msg.Report()

	var claim Claim
	if w.claimer != nil {
		var err error
		claim, err = w.claimer.Claim(ctx, report.ID)
		if errors.Is(err, ErrAlreadyClaimed) {
			slog.InfoContext(ctx, "Report already synced by another worker, skipping",
				"report_id", report.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("claim report %s: %w", report.ID, err)
		}
	}

	ref, err := w.sheets.AppendReport(ctx, report)
	if err != nil {
		if claim != nil {
			if relErr := claim.Release(ctx); relErr != nil {
				slog.ErrorContext(ctx, "Failed to release report claim",
					"report_id", report.ID,
					"error", relErr)
			}
		}
		return fmt.Errorf("append report to sheets: %w", err)
	}

	if claim != nil {
		if err := claim.Complete(ctx); err != nil {
			slog.WarnContext(ctx, "Failed to extend report claim, a redelivery may append it again",
				"report_id", report.ID,
				"error", err)
		}
	}

	slog.InfoContext(ctx, "Successfully synced report",
		"report_id", report.ID,
		"company_id", report.CompanyID,
		"period_start", report.PeriodStart,
		"period_end", report.PeriodEnd,
		"sheets_ref", ref)
	return nil
}
