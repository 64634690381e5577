package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type clearCmd struct {
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove all expenses" }
func (*clearCmd) Usage() string {
	return `moola clear -yes

Removes every expense. Preferences and the app lock are kept.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "confirm that all expenses must be removed")
}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: this removes all expenses, confirm with -yes")
		return subcommands.ExitUsageError
	}
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	n := a.ledger.Len()
	if err := a.ledger.ClearAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing expenses: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(out, "Removed %d expenses\n", n)
	return subcommands.ExitSuccess
}
