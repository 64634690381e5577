package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moola"
	"github.com/etnz/moola/renderer"
	"github.com/google/subcommands"
)

type editCmd struct {
	id     string
	amount string
	note   string
	date   string
	repeat string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change an expense" }
func (*editCmd) Usage() string {
	return `moola edit -id <id> [-a <amount>] [-n <note>] [-d <date>] [-r weekly|monthly|yearly|none]

Changes an expense. Omitted flags keep their current value, -r none makes the
expense a one-off. The next due date is computed again from the date.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "id of the expense to change")
	f.StringVar(&c.amount, "a", "", "new amount")
	f.StringVar(&c.note, "n", "", "new note")
	f.StringVar(&c.date, "d", "", "new date (YYYY-MM-DD)")
	f.StringVar(&c.repeat, "r", "", "repeat: weekly, monthly, yearly or none")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	var base moola.ExpenseInput
	if e, found := a.ledger.Get(c.id); found {
		base = moola.ExpenseInput{Amount: e.Amount.String(), Note: e.Note, Date: e.Date, Recurring: e.Recurring, Freq: e.Freq}
	}
	in, err := input(base, c.amount, c.note, c.date, c.repeat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	e, err := a.ledger.Edit(ctx, c.id, in)
	switch {
	case errors.Is(err, moola.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: no expense %q\n", c.id)
		return subcommands.ExitFailure
	case moola.IsPersistence(err):
		fmt.Fprintf(os.Stderr, "Error saving expense: %v\n", err)
		return subcommands.ExitFailure
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(out, "Changed %s: %s\n", e.ID, renderer.Expense(e, a.formatOptions()))
	return subcommands.ExitSuccess
}
