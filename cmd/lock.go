package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moola/lock"
	"github.com/etnz/moola/renderer"
	"github.com/google/subcommands"
)

type lockCmd struct {
	method string
	newPIN string
	status bool
}

func (*lockCmd) Name() string     { return "lock" }
func (*lockCmd) Synopsis() string { return "configure the app lock" }
func (*lockCmd) Usage() string {
	return `moola [-pin <pin>] lock [-method none|pin|biometric|both] [-new-pin <pin>] [-status]

Configures the app lock. When the lock is on, the current PIN must be given
with the global -pin flag.

  moola lock -method pin -new-pin 1234   turns the PIN lock on
  moola -pin 1234 lock -new-pin 5678     changes the PIN
  moola -pin 1234 lock -method none      turns the lock off
  moola lock -status                     shows the lock, backup and reminder status
`
}

func (c *lockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "", "lock method: none, pin, biometric or both")
	f.StringVar(&c.newPIN, "new-pin", "", "new PIN, at least 4 digits")
	f.BoolVar(&c.status, "status", false, "show the status without changing anything")
}

func (c *lockCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.status {
		a, err := openApp(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening data: %v\n", err)
			return subcommands.ExitFailure
		}
		defer a.Close()
		printMarkdown(renderer.StatusMarkdown(a.status()))
		return subcommands.ExitSuccess
	}
	if c.method == "" && c.newPIN == "" {
		fmt.Fprintln(os.Stderr, "Error: -method, -new-pin or -status is required")
		return subcommands.ExitUsageError
	}

	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	method := a.lock.Method()
	if c.method != "" {
		m, err := lock.ParseMethod(c.method)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		method = m
	}

	var err error
	switch {
	case c.newPIN != "" && !method.NeedsPIN():
		method = lock.PIN
		fallthrough
	case c.newPIN != "":
		err = a.lock.SetPIN(ctx, c.newPIN, method)
	default:
		err = a.lock.SetMethod(ctx, method)
	}
	switch {
	case errors.Is(err, lock.ErrNeedsCredential):
		fmt.Fprintf(os.Stderr, "Error: lock method %q needs a PIN, use -new-pin\n", method)
		return subcommands.ExitUsageError
	case errors.Is(err, lock.ErrInvalidPIN), errors.Is(err, lock.ErrBiometricUnavailable):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error configuring the app lock: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(out, "App lock: %s\n", a.lock.Method())
	return subcommands.ExitSuccess
}

// status gathers the status report.
func (a *app) status() renderer.Status {
	return renderer.Status{
		Method:   a.lock.Method(),
		State:    a.lock.State(),
		Load:     a.load,
		Backup:   a.prefs.Backup(Today()),
		Reminder: a.prefs.Reminder(),
		Expenses: a.ledger.Len(),
	}
}
