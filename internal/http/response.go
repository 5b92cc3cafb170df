package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"insighthunter/internal/core"

	"github.com/shopspring/decimal"
)

type (
	healthResponse struct {
		OK      bool   `json:"ok"`
		Service string `json:"service"`
	}

	readyResponse struct {
		OK           bool   `json:"ok"`
		Error        string `json:"error,omitempty"`
		Requests     int64  `json:"requests,omitempty"`
		ServerErrors int64  `json:"serverErrors,omitempty"`
		RateLimited  int64  `json:"rateLimited,omitempty"`
		Suspicious   int64  `json:"suspicious,omitempty"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}

	importResponse struct {
		InsertedCount int `json:"insertedCount"`
	}

	transactionResponse struct {
		ID          string      `json:"id"`
		CompanyID   string      `json:"companyId"`
		Date        string      `json:"date"`
		Type        string      `json:"type"`
		Amount      json.Number `json:"amount"`
		Description *string     `json:"description"`
	}

	reportResponse struct {
		ID          string      `json:"id"`
		CompanyID   string      `json:"companyId"`
		PeriodStart string      `json:"periodStart"`
		PeriodEnd   string      `json:"periodEnd"`
		Revenue     json.Number `json:"revenue"`
		COGS        json.Number `json:"cogs"`
		GrossProfit json.Number `json:"grossProfit"`
		Opex        json.Number `json:"opex"`
		NetIncome   json.Number `json:"netIncome"`
		CreatedAt   string      `json:"createdAt"`
	}

	seriesResponse struct {
		Months []string      `json:"months"`
		Values []json.Number `json:"values"`
	}

	forecastResponse struct {
		Months   int            `json:"months"`
		History  seriesResponse `json:"history"`
		Forecast []float64      `json:"forecast"`
	}
)

// number renders a decimal as a JSON number without going through float64.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func newTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		CompanyID:   tx.CompanyID,
		Date:        tx.Date,
		Type:        tx.Type.String(),
		Amount:      number(tx.Amount),
		Description: tx.Description,
	}
}

func newReportResponse(r core.Report) reportResponse {
	return reportResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Revenue:     number(r.Revenue),
		COGS:        number(r.COGS),
		GrossProfit: number(r.GrossProfit),
		Opex:        number(r.Opex),
		NetIncome:   number(r.NetIncome),
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func newForecastResponse(res core.ForecastResult) forecastResponse {
	out := forecastResponse{
		Months: res.Months,
		History: seriesResponse{
			Months: make([]string, 0, res.History.Len()),
			Values: make([]json.Number, 0, res.History.Len()),
		},
		Forecast: make([]float64, 0, len(res.Forecast)),
	}
	out.History.Months = append(out.History.Months, res.History.Months...)
	for _, v := range res.History.Values {
		out.History.Values = append(out.History.Values, number(v))
	}
	out.Forecast = append(out.Forecast, res.Forecast...)
	return out
}

// writeJSON encodes v before touching the response, so an encoding failure
// still produces a 500 with a body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "status", status, "error", err)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "internal error"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("Failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
