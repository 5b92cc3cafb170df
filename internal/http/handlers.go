package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"insighthunter/internal/core"
	applog "insighthunter/internal/log"
	"insighthunter/internal/services"
	"insighthunter/internal/store"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Service: "insighthunter"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			requestLogger(r).LogError(r.Context(), "Readiness check failed", err, "ready", nil)
			writeJSON(w, http.StatusServiceUnavailable, readyResponse{OK: false, Error: "backend not ready"})
			return
		}
	}

	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, readyResponse{
		OK:           true,
		Requests:     m.TotalRequests,
		ServerErrors: m.ServerErrors,
		RateLimited:  s.limiter.Rejected(),
		Suspicious:   s.detector.GetMetrics().SuspiciousRequests,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	companyID := strings.TrimSpace(r.PathValue("companyId"))

	txs, err := s.finance.ListTransactions(r.Context(), companyID)
	if err != nil {
		s.writeServiceError(w, r, applog.OpList, err, applog.NewFields().WithComponent(applog.ComponentFinance))
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCSVBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "CSV body exceeds 10 MiB")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	res, err := s.finance.ImportCSV(r.Context(), string(body))
	if err != nil {
		s.writeServiceError(w, r, applog.OpImport, err, applog.NewFields().With(applog.FieldInserted, res.InsertedCount))
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "CSV import completed",
		applog.FieldOperation, applog.OpImport,
		applog.FieldInserted, res.InsertedCount)
	writeJSON(w, http.StatusOK, importResponse{InsertedCount: res.InsertedCount})
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.CompanyID = strings.TrimSpace(req.CompanyID)

	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	report, err := s.finance.GenerateReport(r.Context(), req.CompanyID, req.Start, req.End)
	if err != nil {
		s.writeServiceError(w, r, applog.OpReport, err, applog.NewFields().With(applog.FieldCompanyID, req.CompanyID))
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Report generated",
		applog.NewFields().WithReport(report).WithOperation(applog.OpReport).ToSlice()...)
	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	report, err := s.finance.GetReport(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, applog.OpReportRead, err, applog.NewFields().With(applog.FieldReportID, id))
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	companyID := strings.TrimSpace(r.URL.Query().Get("companyId"))

	reports, err := s.finance.ListReports(r.Context(), companyID)
	if err != nil {
		s.writeServiceError(w, r, applog.OpReportRead, err, applog.NewFields().With(applog.FieldCompanyID, companyID))
		return
	}

	out := make([]reportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, newReportResponse(rep))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	months := services.DefaultForecastMonths
	if v := strings.TrimSpace(q.Get("months")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "months must be an integer")
			return
		}
		months = n
	}

	res, err := s.finance.Forecast(r.Context(), q.Get("companyId"), months)
	if err != nil {
		s.writeServiceError(w, r, applog.OpForecast, err, applog.NewFields().With(applog.FieldMonths, months))
		return
	}
	writeJSON(w, http.StatusOK, newForecastResponse(res))
}

// writeServiceError maps request validation errors to 400, unknown reports to
// 404, series outside the float64 range to 422 and anything else to a logged
// 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error, fields applog.LogFields) {
	switch {
	case errors.Is(err, core.ErrEmptyCompany):
		writeError(w, http.StatusBadRequest, "companyId is required")
	case errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
	case errors.Is(err, core.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "months must be between 1 and 120")
	case errors.Is(err, store.ErrReportNotFound):
		writeError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, core.ErrNonFinite):
		requestLogger(r).LogError(r.Context(), "Forecast out of numeric range", err, op, fields)
		writeError(w, http.StatusUnprocessableEntity, "amounts too large to forecast")
	default:
		requestLogger(r).LogError(r.Context(), "Request failed", err, op, fields)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func requestLogger(r *http.Request) *applog.StructuredLogger {
	return applog.NewStructuredLogger(applog.FromContext(r.Context()))
}
