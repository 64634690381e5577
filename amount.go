package moola

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// cents is the number of fractional digits an Amount keeps.
const cents = 2

// MaxAmount is the largest amount an expense can have.
var MaxAmount = Amount{value: decimal.New(1, 12).Sub(decimal.New(1, -cents))}

// maxCents bounds the amounts whose minor units fit in an int64.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// Amount represents a monetary value with exactly two fractional digits.
//
// It is backed by a decimal so that repeated edits never drift by a cent.
type Amount struct {
	value decimal.Decimal
}

// A returns the Amount for a value, rounded to the cent.
func A[T float64 | int | int64 | decimal.Decimal](value T) Amount {
	var d decimal.Decimal
	switch v := any(value).(type) {
	case decimal.Decimal:
		d = v
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	}
	return Amount{value: d.Round(cents)}
}

// ParseAmount parses a user supplied amount.
//
// Both "." and "," are accepted as decimal separator. The amount must be a
// positive finite number not above MaxAmount, it is rounded to the cent.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	a := A(d)
	if !a.IsPositive() {
		return Amount{}, fmt.Errorf("invalid amount %q: must be positive", s)
	}
	if MaxAmount.LessThan(a) {
		return Amount{}, fmt.Errorf("invalid amount %q: must not exceed %s", s, MaxAmount)
	}
	return a, nil
}

func (a Amount) Equal(b Amount) bool    { return a.value.Equal(b.value) }
func (a Amount) IsZero() bool           { return a.value.IsZero() }
func (a Amount) IsPositive() bool       { return a.value.IsPositive() }
func (a Amount) Add(b Amount) Amount    { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount    { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) LessThan(b Amount) bool { return a.value.LessThan(b.value) }

// Cents returns the amount in minor units and whether it fits in an int64.
func (a Amount) Cents() (int64, bool) {
	c := a.value.Shift(cents)
	if c.Abs().GreaterThan(maxCents) {
		return 0, false
	}
	return c.IntPart(), true
}

// String returns the amount with two digits and a "." separator, e.g. "1234.50".
func (a Amount) String() string { return a.value.StringFixed(cents) }

// Decimal returns the exact value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// FormatOptions controls how amounts are displayed.
type FormatOptions struct {
	Currency     string // ISO 4217 code, the symbol is looked up from it.
	EU           bool   // use "." for thousands and "," for decimals.
	HideDecimals bool   // round to whole units.
	NoSymbol     bool
}

// Format returns the amount for display, e.g. "$1,234.50" or "€1.234,50".
func (a Amount) Format(opts FormatOptions) string {
	thousand, dec := ",", "."
	if opts.EU {
		thousand, dec = ".", ","
	}
	grapheme := ""
	if !opts.NoSymbol {
		grapheme = currencySymbol(opts.Currency)
	}
	c, ok := a.Cents()
	if !ok {
		// beyond the formatter range, printed without grouping.
		return grapheme + strings.Replace(a.String(), ".", dec, 1)
	}
	if opts.HideDecimals {
		f := money.NewFormatter(0, dec, thousand, grapheme, "$1")
		return f.Format(a.value.Round(0).IntPart())
	}
	f := money.NewFormatter(cents, dec, thousand, grapheme, "$1")
	return f.Format(c)
}

// currencySymbol returns the symbol for a currency code or the code itself when unknown.
func currencySymbol(code string) string {
	if code == "" {
		return ""
	}
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil {
		return c.Grapheme
	}
	return code
}

// MarshalJSON writes the amount as a json number with two digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.value.StringFixed(cents)), nil
}

// UnmarshalJSON reads a json number or string, rounding it to the cent.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = A(d)
	return nil
}
