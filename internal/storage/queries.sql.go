package storage

import (
	"context"
	"database/sql"
)

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, company_id, date, type, amount, description)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	ID          string
	CompanyID   string
	Date        string
	Type        string
	Amount      string
	Description sql.NullString
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.CompanyID,
		arg.Date,
		arg.Type,
		arg.Amount,
		arg.Description,
	)
	return err
}

const listTransactionsByCompany = `-- name: ListTransactionsByCompany :many
SELECT id, company_id, date, type, amount, description
FROM transactions
WHERE company_id = ?
ORDER BY date ASC, rowid ASC
`

func (q *Queries) ListTransactionsByCompany(ctx context.Context, companyID string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByCompany, companyID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const listTransactionsInRange = `-- name: ListTransactionsInRange :many
SELECT id, company_id, date, type, amount, description
FROM transactions
WHERE company_id = ? AND date >= ? AND date <= ?
ORDER BY date ASC, rowid ASC
`

type ListTransactionsInRangeParams struct {
	CompanyID string
	Start     string
	End       string
}

func (q *Queries) ListTransactionsInRange(ctx context.Context, arg ListTransactionsInRangeParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsInRange, arg.CompanyID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.CompanyID,
			&i.Date,
			&i.Type,
			&i.Amount,
			&i.Description,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createReport = `-- name: CreateReport :exec
INSERT INTO reports (id, company_id, period_start, period_end, revenue, cogs, gross_profit, opex, net_income, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateReport(ctx context.Context, arg Report) error {
	_, err := q.db.ExecContext(ctx, createReport,
		arg.ID,
		arg.CompanyID,
		arg.PeriodStart,
		arg.PeriodEnd,
		arg.Revenue,
		arg.Cogs,
		arg.GrossProfit,
		arg.Opex,
		arg.NetIncome,
		arg.CreatedAt,
	)
	return err
}

const getReport = `-- name: GetReport :one
SELECT id, company_id, period_start, period_end, revenue, cogs, gross_profit, opex, net_income, created_at
FROM reports
WHERE id = ?
`

func (q *Queries) GetReport(ctx context.Context, id string) (Report, error) {
	row := q.db.QueryRowContext(ctx, getReport, id)
	var i Report
	err := row.Scan(
		&i.ID,
		&i.CompanyID,
		&i.PeriodStart,
		&i.PeriodEnd,
		&i.Revenue,
		&i.Cogs,
		&i.GrossProfit,
		&i.Opex,
		&i.NetIncome,
		&i.CreatedAt,
	)
	return i, err
}

const listReportsByCompany = `-- name: ListReportsByCompany :many
SELECT id, company_id, period_start, period_end, revenue, cogs, gross_profit, opex, net_income, created_at
FROM reports
WHERE company_id = ?
ORDER BY created_at DESC, rowid DESC
`

func (q *Queries) ListReportsByCompany(ctx context.Context, companyID string) ([]Report, error) {
	rows, err := q.db.QueryContext(ctx, listReportsByCompany, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Report
	for rows.Next() {
		var i Report
		if err := rows.Scan(
			&i.ID,
			&i.CompanyID,
			&i.PeriodStart,
			&i.PeriodEnd,
			&i.Revenue,
			&i.Cogs,
			&i.GrossProfit,
			&i.Opex,
			&i.NetIncome,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
