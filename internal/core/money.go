package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a signed decimal amount from an imported cell.
//
// Surrounding whitespace is ignored and a blank cell is zero. Exponent
// notation is accepted ("1.5e3"); thousands separators, hex literals and
// the textual NaN/Infinity forms are not. Values outside the float64 range
// are rejected so every stored amount can be fitted numerically.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
