package storage

import "database/sql"

type Transaction struct {
	ID          string
	CompanyID   string
	Date        string
	Type        string
	Amount      string
	Description sql.NullString
}

type Report struct {
	ID          string
	CompanyID   string
	PeriodStart string
	PeriodEnd   string
	Revenue     string
	Cogs        string
	GrossProfit string
	Opex        string
	NetIncome   string
	CreatedAt   string
}
