// Package gateway stores transactions and reports in a document database
// reached through its HTTP data API. Every call is a JSON POST to
// <BaseURL>/action/<name> authenticated with an api-key header.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"insighthunter/internal/core"
	"insighthunter/internal/store"

	"github.com/shopspring/decimal"
)

const (
	transactionsCollection = "transactions"
	reportsCollection      = "reports"

	defaultPageSize = 1000
	maxErrorBody    = 4 << 10

	// createdAtLayout is fixed width so timestamps sort as text.
	createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Sort documents on _id after the business key so skip/limit pages stay
// stable when keys repeat.
var (
	sortByDate      = json.RawMessage(`{"date":1,"_id":1}`)
	sortNewestFirst = json.RawMessage(`{"created_at":-1,"_id":-1}`)
)

var _ store.Store = (*Client)(nil)

// Config holds the connection settings for the data API.
type Config struct {
	BaseURL    string
	APIKey     string
	DataSource string
	Database   string
	Timeout    time.Duration
	PageSize   int
	HTTPClient *http.Client
}

// APIError is returned when the gateway answers with a non-2xx status.
type APIError struct {
	Action     string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway %s failed: %d %s", e.Action, e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	dataSource string
	database   string
	pageSize   int
	http       *http.Client
}

func New(cfg Config) (*Client, error) {
	var missing []string
	if strings.TrimSpace(cfg.BaseURL) == "" {
		missing = append(missing, "base URL")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		missing = append(missing, "API key")
	}
	if strings.TrimSpace(cfg.DataSource) == "" {
		missing = append(missing, "data source")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		missing = append(missing, "database")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("gateway config: missing %s", strings.Join(missing, ", "))
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		dataSource: cfg.DataSource,
		database:   cfg.Database,
		pageSize:   pageSize,
		http:       hc,
	}, nil
}

type transactionDoc struct {
	ID          string      `json:"_id,omitempty"`
	CompanyID   string      `json:"company_id"`
	Date        string      `json:"date"`
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	Description *string     `json:"description"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

type reportDoc struct {
	ID          string      `json:"_id"`
	CompanyID   string      `json:"company_id"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	Revenue     json.Number `json:"revenue"`
	COGS        json.Number `json:"cogs"`
	GrossProfit json.Number `json:"gross_profit"`
	Opex        json.Number `json:"opex"`
	NetIncome   json.Number `json:"net_income"`
	CreatedAt   string      `json:"created_at"`
}

func (d transactionDoc) toCore() (core.Transaction, error) {
	amount, err := core.ParseAmount(d.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("document %s amount %q: %w", d.ID, d.Amount, err)
	}
	return core.Transaction{
		ID:          d.ID,
		CompanyID:   d.CompanyID,
		Date:        d.Date,
		Type:        core.TransactionType(d.Type).Normalize(),
		Amount:      amount,
		Description: d.Description,
	}, nil
}

func (d reportDoc) toCore() (core.Report, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, d.CreatedAt)
	if err != nil {
		return core.Report{}, fmt.Errorf("report %s created_at %q: %w", d.ID, d.CreatedAt, err)
	}
	r := core.Report{
		ID:          d.ID,
		CompanyID:   d.CompanyID,
		PeriodStart: d.PeriodStart,
		PeriodEnd:   d.PeriodEnd,
		CreatedAt:   createdAt,
	}
	amounts := []struct {
		name string
		raw  json.Number
		dst  *decimal.Decimal
	}{
		{"revenue", d.Revenue, &r.Revenue},
		{"cogs", d.COGS, &r.COGS},
		{"gross_profit", d.GrossProfit, &r.GrossProfit},
		{"opex", d.Opex, &r.Opex},
		{"net_income", d.NetIncome, &r.NetIncome},
	}
	for _, a := range amounts {
		v, err := core.ParseAmount(a.raw.String())
		if err != nil {
			return core.Report{}, fmt.Errorf("report %s %s %q: %w", d.ID, a.name, a.raw, err)
		}
		*a.dst = v
	}
	return r, nil
}

func numberOf(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// InsertTransactions implements store.TransactionWriter with a single insertMany.
func (c *Client) InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	docs := make([]transactionDoc, len(txs))
	for i, tx := range txs {
		docs[i] = transactionDoc{
			ID:          tx.ID,
			CompanyID:   tx.CompanyID,
			Date:        tx.Date,
			Type:        tx.Type.String(),
			Amount:      numberOf(tx.Amount),
			Description: tx.Description,
			CreatedAt:   now,
		}
	}

	var resp struct {
		InsertedIDs []json.RawMessage `json:"insertedIds"`
	}
	if err := c.do(ctx, "insertMany", map[string]any{
		"collection": transactionsCollection,
		"documents":  docs,
	}, &resp); err != nil {
		return 0, fmt.Errorf("insert transactions: %w", err)
	}

	if resp.InsertedIDs == nil {
		return len(docs), nil
	}
	return len(resp.InsertedIDs), nil
}

// ListTransactionsInRange implements store.TransactionReader.
func (c *Client) ListTransactionsInRange(ctx context.Context, companyID, start, end string) ([]core.Transaction, error) {
	filter := map[string]any{
		"company_id": companyID,
		"date":       map[string]string{"$gte": start, "$lte": end},
	}
	txs, err := c.findTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s in [%s, %s]: %w", companyID, start, end, err)
	}
	return txs, nil
}

// ListTransactions implements store.TransactionReader.
func (c *Client) ListTransactions(ctx context.Context, companyID string) ([]core.Transaction, error) {
	txs, err := c.findTransactions(ctx, map[string]any{"company_id": companyID})
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", companyID, err)
	}
	return txs, nil
}

func (c *Client) findTransactions(ctx context.Context, filter map[string]any) ([]core.Transaction, error) {
	docs, err := findAll[transactionDoc](ctx, c, transactionsCollection, filter, sortByDate)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// findAll pages through find results until a short page arrives.
func findAll[T any](ctx context.Context, c *Client, collection string, filter map[string]any, sort json.RawMessage) ([]T, error) {
	var out []T
	for skip := 0; ; skip += c.pageSize {
		var resp struct {
			Documents []T `json:"documents"`
		}
		err := c.do(ctx, "find", map[string]any{
			"collection": collection,
			"filter":     filter,
			"sort":       sort,
			"limit":      c.pageSize,
			"skip":       skip,
		}, &resp)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Documents...)
		if len(resp.Documents) < c.pageSize {
			return out, nil
		}
	}
}

// InsertReport implements store.ReportWriter.
func (c *Client) InsertReport(ctx context.Context, r core.Report) error {
	doc := reportDoc{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Revenue:     numberOf(r.Revenue),
		COGS:        numberOf(r.COGS),
		GrossProfit: numberOf(r.GrossProfit),
		Opex:        numberOf(r.Opex),
		NetIncome:   numberOf(r.NetIncome),
		CreatedAt:   r.CreatedAt.UTC().Format(createdAtLayout),
	}
	if err := c.do(ctx, "insertOne", map[string]any{
		"collection": reportsCollection,
		"document":   doc,
	}, nil); err != nil {
		return fmt.Errorf("insert report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport implements store.ReportReader.
func (c *Client) GetReport(ctx context.Context, id string) (core.Report, error) {
	var resp struct {
		Document *reportDoc `json:"document"`
	}
	if err := c.do(ctx, "findOne", map[string]any{
		"collection": reportsCollection,
		"filter":     map[string]string{"_id": id},
	}, &resp); err != nil {
		return core.Report{}, fmt.Errorf("get report %s: %w", id, err)
	}
	if resp.Document == nil {
		return core.Report{}, fmt.Errorf("report %s: %w", id, store.ErrReportNotFound)
	}
	return resp.Document.toCore()
}

// ListReports implements store.ReportReader.
func (c *Client) ListReports(ctx context.Context, companyID string) ([]core.Report, error) {
	docs, err := findAll[reportDoc](ctx, c, reportsCollection, map[string]any{"company_id": companyID}, sortNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("list reports for %s: %w", companyID, err)
	}
	out := make([]core.Report, 0, len(docs))
	for _, d := range docs {
		r, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Ping runs a one-document find to check the data API answers and accepts
// the api key.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.do(ctx, "find", map[string]any{
		"collection": transactionsCollection,
		"filter":     map[string]any{},
		"limit":      1,
	}, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// do posts payload to action/<action> and decodes the JSON answer into out.
func (c *Client) do(ctx context.Context, action string, payload map[string]any, out any) error {
	payload["dataSource"] = c.dataSource
	payload["database"] = c.database

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", action, err)
	}

	url := c.baseURL + "/action/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", action, err)
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "Gateway call completed",
		"action", action,
		"collection", payload["collection"],
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Action: action, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", action, err)
	}
	return nil
}
