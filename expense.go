package moola

import (
	"fmt"
	"strings"

	"github.com/etnz/moola/date"
)

// Frequency is the step between two occurrences of a recurring expense.
type Frequency string

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// ParseFrequency parses "weekly", "monthly" or "yearly".
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case Weekly, Monthly, Yearly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown frequency %q, want weekly, monthly or yearly", s)
	}
}

// Next returns the occurrence following 'on'.
//
// Monthly and yearly steps keep the day of the month, clamped to the last
// day of a shorter target month. Feb 29th steps to Feb 28th on non-leap years.
func (f Frequency) Next(on date.Date) date.Date {
	switch f {
	case Weekly:
		return on.Add(7)
	case Monthly:
		return on.AddMonths(1)
	case Yearly:
		return on.AddYears(1)
	default:
		panic(fmt.Sprintf("unknown frequency %q", string(f)))
	}
}

// Expense is a single monetary event recorded in the ledger.
//
// Freq and NextDue are only set for recurring expenses, and NextDue is
// always Date stepped once by Freq.
type Expense struct {
	ID        string
	Amount    Amount
	Note      string
	Date      date.Date
	Recurring bool
	Freq      Frequency
	NextDue   date.Date
}

// ExpenseInput holds the user editable fields of an Expense.
type ExpenseInput struct {
	Amount    string // as typed by the user
	Note      string
	Date      date.Date
	Recurring bool
	Freq      Frequency
}

// validate checks the input and returns the record it describes, without id.
func (in ExpenseInput) validate() (Expense, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, &ValidationError{Reason: InvalidAmount, Err: err}
	}
	if in.Date.IsZero() {
		return Expense{}, &ValidationError{Reason: InvalidDate, Err: fmt.Errorf("missing date")}
	}
	e := Expense{
		Amount: amount,
		Note:   strings.TrimSpace(in.Note),
		Date:   in.Date,
	}
	if in.Recurring {
		freq, err := ParseFrequency(string(in.Freq))
		if err != nil {
			return Expense{}, &ValidationError{Reason: InvalidFrequency, Err: err}
		}
		e.Recurring = true
		e.Freq = freq
	}
	e.normalize()
	return e, nil
}

// normalize enforces the recurring invariants.
func (e *Expense) normalize() {
	if !e.Recurring {
		e.Freq = ""
		e.NextDue = date.Date{}
		return
	}
	e.NextDue = e.Freq.Next(e.Date)
}
