package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/moola"
	"github.com/etnz/moola/date"
	"github.com/etnz/moola/renderer"
	"github.com/google/subcommands"
)

type listCmd struct {
	period string
	date   string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "summarize expenses over a period" }
func (*listCmd) Usage() string {
	return `moola list [-p today|week|month|year] [-d <date>]

Shows the expenses of the current period, grouped by date, with the period
total and the spending and recurring subtotals.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "month", "period: today, week, month or year")
	f.StringVar(&c.date, "d", "", "show the period as of this date (YYYY-MM-DD), default today")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	now := Now()
	today := date.Of(now)
	if c.date != "" {
		if today, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		// the progress of a past period is measured at the end of that day.
		now = time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.Local)
	}

	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	summary := a.ledger.Summary(p, today)
	printMarkdown(renderer.SummaryMarkdown(summary, moola.TimeProgress(p, now), a.formatOptions()))
	return subcommands.ExitSuccess
}
