package cmd

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moola/lock"
	"github.com/google/subcommands"
)

type unlockCmd struct {
	pin string
}

func (*unlockCmd) Name() string     { return "unlock" }
func (*unlockCmd) Synopsis() string { return "check the app lock PIN" }
func (*unlockCmd) Usage() string {
	return `moola unlock -pin <pin>

Checks the PIN against the app lock. It exits with a failure status when the
PIN is wrong, so that scripts can test it before running other commands.
`
}

func (c *unlockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pin, "pin", "", "PIN to check, default the global -pin")
}

func (c *unlockCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if !a.lock.Locked() {
		fmt.Fprintln(out, "The app lock is off")
		return subcommands.ExitSuccess
	}
	*pin = cmp.Or(c.pin, *pin)
	switch err := a.unlock(ctx); {
	case errors.Is(err, lock.ErrWrongPIN):
		fmt.Fprintln(os.Stderr, "Error: incorrect PIN")
		return subcommands.ExitFailure
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error unlocking: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(out, "Unlocked")
	return subcommands.ExitSuccess
}
