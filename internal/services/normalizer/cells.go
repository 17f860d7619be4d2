package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ActDateLayout     = "2-Jan-2006"
	PaymentDateLayout = "2.1.2006"
)

var (
	ErrUnparseable  = errors.New("unparseable cell")
	errDecimalComma = errors.New("comma used as decimal separator")
)

// CellError describes a cell that had text but could not be converted.
type CellError struct {
	Kind  string
	Value string
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("could not parse %s %q: %v", e.Kind, e.Value, e.Err)
}

func (e *CellError) Unwrap() []error { return []error{ErrUnparseable, e.Err} }

// decimalComma matches "1234,5" or "1 234,00": a comma with one or two
// trailing digits and no dot anywhere.
var decimalComma = regexp.MustCompile(`^[^.]*,\d{1,2}$`)

var currencyCleaner = strings.NewReplacer(
	"₽", "",
	"$", "",
	"€", "",
	"руб.", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
)

// ParseCurrency converts text like "1,234.00 ₽" into a decimal. Commas are
// thousands separators; a decimal comma is rejected rather than guessed.
// Empty input yields (nil, nil); malformed input yields (nil, *CellError).
func ParseCurrency(raw string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	s = currencyCleaner.Replace(s)
	if decimalComma.MatchString(s) {
		return nil, &CellError{Kind: "currency", Value: raw, Err: errDecimalComma}
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, &CellError{Kind: "currency", Value: raw, Err: err}
	}
	return &d, nil
}

// ParseDate parses a date in the given layout and returns it at UTC midnight.
func ParseDate(raw, layout string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, &CellError{Kind: "date", Value: raw, Err: err}
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
