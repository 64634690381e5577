package renderer

import (
	"fmt"

	"github.com/etnz/moola"
)

// Expense renders an expense on a single line.
func Expense(e moola.Expense, opts moola.FormatOptions) string {
	note := e.Note
	if note == "" {
		note = "(no note)"
	}
	s := fmt.Sprintf("%s %s on %s", e.Amount.Format(opts), note, e.Date)
	if e.Recurring {
		s += fmt.Sprintf(", %s, next due %s", e.Freq, e.NextDue)
	}
	return s
}
