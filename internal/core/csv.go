package core

import "strings"

type csvState int

const (
	unquoted csvState = iota
	quoted
)

// ParseCSV splits text into rows of fields. It never fails: malformed
// quoting is accepted and the trailing field and row are always emitted.
// Rows consisting of a single blank field are dropped.
func ParseCSV(text string) [][]string {
	var (
		rows  [][]string
		row   []string
		field strings.Builder
		state = unquoted
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if state == quoted {
			switch {
			case ch == '"' && i+1 < len(text) && text[i+1] == '"':
				field.WriteByte('"')
				i++
			case ch == '"':
				state = unquoted
			default:
				field.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			state = quoted
		case ',':
			endField()
		case '\n':
			endRow()
		case '\r':
		default:
			field.WriteByte(ch)
		}
	}
	endRow()

	out := rows[:0]
	for _, r := range rows {
		if len(r) == 1 && strings.TrimSpace(r[0]) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
