package core

import "strings"

// Header names recognised by NormalizeRows.
const (
	ColumnDate        = "date"
	ColumnType        = "type"
	ColumnAmount      = "amount"
	ColumnCompanyID   = "company_id"
	ColumnDescription = "description"
)

type columnIndex struct {
	date, typ, amount, company, description int
}

func indexHeader(header []string) columnIndex {
	find := func(name string) int {
		for i, h := range header {
			if strings.ToLower(strings.TrimSpace(h)) == name {
				return i
			}
		}
		return -1
	}
	return columnIndex{
		date:        find(ColumnDate),
		typ:         find(ColumnType),
		amount:      find(ColumnAmount),
		company:     find(ColumnCompanyID),
		description: find(ColumnDescription),
	}
}

// cell returns the value at i and whether it exists in the row.
func cell(row []string, i int) (string, bool) {
	if i < 0 || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// NormalizeRows turns parsed CSV rows into transactions. The first row is the
// header. Rows without a date, without a type or with an unparsable amount
// are dropped without error; the caller observes them only through a lower
// count. A header lacking date, type or amount rejects every row.
func NormalizeRows(rows [][]string, newID func() string) []Transaction {
	if len(rows) < 2 {
		return nil
	}
	idx := indexHeader(rows[0])
	if idx.date < 0 || idx.typ < 0 || idx.amount < 0 {
		return nil
	}

	var out []Transaction
	for _, row := range rows[1:] {
		tx, ok := normalizeRow(row, idx)
		if !ok {
			continue
		}
		tx.ID = newID()
		out = append(out, tx)
	}
	return out
}

func normalizeRow(row []string, idx columnIndex) (Transaction, bool) {
	rawDate, _ := cell(row, idx.date)
	rawType, _ := cell(row, idx.typ)
	rawAmount, _ := cell(row, idx.amount)

	date := strings.TrimSpace(rawDate)
	typ := TransactionType(rawType).Normalize()
	if date == "" || typ == "" {
		return Transaction{}, false
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return Transaction{}, false
	}

	company, _ := cell(row, idx.company)
	tx := Transaction{
		CompanyID: CompanyOrDefault(company),
		Date:      date,
		Type:      typ,
		Amount:    amount,
	}
	if raw, ok := cell(row, idx.description); ok {
		if desc := strings.TrimSpace(raw); desc != "" {
			tx.Description = &desc
		}
	}
	return tx, true
}
