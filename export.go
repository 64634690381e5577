package moola

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
)

var csvHeader = []string{"Date", "Amount", "Currency", "Note", "Recurring", "Frequency"}

// ExportCSV writes the expenses as CSV, most recent date first.
//
// Amounts are written with two digits, with a decimal comma when eu is set.
func ExportCSV(w io.Writer, expenses []Expense, currency string, eu bool) error {
	sorted := slices.Clone(expenses)
	slices.SortStableFunc(sorted, func(a, b Expense) int { return b.Date.Compare(a.Date) })

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("cannot write csv header: %w", err)
	}
	for _, e := range sorted {
		amount := e.Amount.String()
		if eu {
			amount = strings.Replace(amount, ".", ",", 1)
		}
		recurring := "No"
		if e.Recurring {
			recurring = "Yes"
		}
		row := []string{e.Date.String(), amount, currency, e.Note, recurring, string(e.Freq)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cannot write expense %q: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
