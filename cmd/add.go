package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moola"
	"github.com/etnz/moola/date"
	"github.com/etnz/moola/renderer"
	"github.com/google/subcommands"
)

type addCmd struct {
	amount string
	note   string
	date   string
	repeat string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense" }
func (*addCmd) Usage() string {
	return `moola add -a <amount> [-n <note>] [-d <date>] [-r weekly|monthly|yearly]

Records an expense. The date defaults to today. With -r the expense repeats
and its next due date is computed from its date.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "amount, e.g. 12.50 or 12,50")
	f.StringVar(&c.note, "n", "", "note")
	f.StringVar(&c.date, "d", "", "date (YYYY-MM-DD), default today")
	f.StringVar(&c.repeat, "r", "", "repeat: weekly, monthly or yearly")
}

// input builds an expense input from the flags, missing values come from base.
func input(base moola.ExpenseInput, amount, note, on, repeat string) (moola.ExpenseInput, error) {
	in := base
	if amount != "" {
		in.Amount = amount
	}
	if note != "" {
		in.Note = note
	}
	if on != "" {
		d, err := date.Parse(on)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	switch repeat {
	case "":
	case "none", "no":
		in.Recurring, in.Freq = false, ""
	default:
		in.Recurring, in.Freq = true, moola.Frequency(repeat)
	}
	return in, nil
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -a is required")
		return subcommands.ExitUsageError
	}
	in, err := input(moola.ExpenseInput{Date: Today()}, c.amount, c.note, c.date, c.repeat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	e, err := a.ledger.Add(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding expense: %v\n", err)
		if moola.IsPersistence(err) {
			return subcommands.ExitFailure
		}
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(out, "Added %s: %s\n", e.ID, renderer.Expense(e, a.formatOptions()))
	return subcommands.ExitSuccess
}
