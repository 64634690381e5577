package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove expenses" }
func (*rmCmd) Usage() string {
	return `moola rm <id>...

Removes expenses by id. Unknown ids are reported and skipped.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one id is required")
		return subcommands.ExitUsageError
	}
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	for _, id := range f.Args() {
		removed, err := a.ledger.Remove(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error removing %q: %v\n", id, err)
			return subcommands.ExitFailure
		}
		if !removed {
			fmt.Fprintf(out, "No expense %s\n", id)
			continue
		}
		fmt.Fprintf(out, "Removed %s\n", id)
	}
	return subcommands.ExitSuccess
}
