package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moola/date"
	"github.com/etnz/moola/renderer"
	"github.com/google/subcommands"
)

type upcomingCmd struct {
	date string
}

func (*upcomingCmd) Name() string     { return "upcoming" }
func (*upcomingCmd) Synopsis() string { return "list recurring expenses by next due date" }
func (*upcomingCmd) Usage() string {
	return `moola upcoming [-d <date>]

Lists the recurring expenses, soonest due first, with the time left until each
one is due again.
`
}

func (c *upcomingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "count days from this date (YYYY-MM-DD), default today")
}

func (c *upcomingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	today := Today()
	if c.date != "" {
		var err error
		if today, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	printMarkdown(renderer.UpcomingMarkdown(a.ledger.Upcoming(), today, a.formatOptions()))
	return subcommands.ExitSuccess
}
