// Command migrate moves moola data between storage backends and upgrades
// data written by older versions.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/moola"
	"github.com/etnz/moola/store"
	"github.com/etnz/moola/store/postgres"
	"github.com/etnz/moola/store/sqlite"
	"github.com/google/subcommands"
)

func main() {
	// The migrate tool needs its own set of flags, independent of the main moola tool.
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	commander := subcommands.NewCommander(flag.CommandLine, "migrate")
	commander.Register(&copyCmd{}, "")
	commander.Register(&checkCmd{}, "")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// keys are the general store entries owned by moola.
var keys = []string{moola.KeyExpenses, moola.KeyPreferences, moola.KeyLastExport}

// openKV opens a store from its location:
//
//	file:<path>
//	sqlite:<path>[#table]
//	postgres:<url>[#table]
func openKV(ctx context.Context, location string) (store.KV, func(), error) {
	kind, target, ok := strings.Cut(location, ":")
	if !ok || target == "" {
		return nil, nil, fmt.Errorf("invalid location %q, want file:<path>, sqlite:<path> or postgres:<url>", location)
	}
	switch kind {
	case "file":
		f, err := store.OpenFile(target)
		return f, func() {}, err
	case "sqlite":
		path, table, _ := strings.Cut(target, "#")
		db, err := sqlite.Open(ctx, path, cmp.Or(table, "general"))
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case "postgres":
		url, table, _ := strings.Cut(target, "#")
		db, err := postgres.Open(ctx, url, cmp.Or(table, "moola_general"))
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q in %q", kind, location)
	}
}

// errNotEmpty is returned when copying onto existing expenses.
var errNotEmpty = errors.New("destination already holds expenses")

// copyKeys copies the moola entries from src to dst and returns how many were copied.
//
// Expenses are decoded and encoded again on the way, so that legacy records
// are upgraded. Unless force is set, dst must not hold expenses.
func copyKeys(ctx context.Context, src, dst moola.Store, force bool) (int, error) {
	if !force {
		_, exists, err := dst.Get(ctx, moola.KeyExpenses)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, errNotEmpty
		}
	}
	n := 0
	for _, key := range keys {
		value, ok, err := src.Get(ctx, key)
		if err != nil {
			return n, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if key == moola.KeyExpenses {
			expenses, err := moola.DecodeExpenses(value)
			if err != nil {
				return n, fmt.Errorf("decode %s: %w", key, err)
			}
			if value, err = moola.EncodeExpenses(expenses); err != nil {
				return n, err
			}
		}
		if err := dst.Set(ctx, key, value); err != nil {
			return n, fmt.Errorf("write %s: %w", key, err)
		}
		n++
	}
	return n, nil
}

// --- copyCmd ---

type copyCmd struct {
	from  string
	to    string
	force bool
}

func (*copyCmd) Name() string     { return "copy" }
func (*copyCmd) Synopsis() string { return "copies moola data to another store" }
func (*copyCmd) Usage() string {
	return `migrate copy -from <location> -to <location> [-force]

Copies the expenses and preferences from one store to another, upgrading
records written by older versions. Locations are file:<path>,
sqlite:<path>[#table] or postgres:<url>[#table].

The app lock is not copied, it must be configured again.
`
}
func (c *copyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "The location of the source store.")
	f.StringVar(&c.to, "to", "", "The location of the destination store.")
	f.BoolVar(&c.force, "force", false, "Overwrite the expenses of the destination.")
}

func (c *copyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "Error: -from and -to flags are required.")
		return subcommands.ExitUsageError
	}
	if c.from == c.to {
		fmt.Fprintln(os.Stderr, "Error: -from and -to must be different.")
		return subcommands.ExitUsageError
	}
	src, closeSrc, err := openKV(ctx, c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening source: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSrc()
	dst, closeDst, err := openKV(ctx, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening destination: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeDst()

	n, err := copyKeys(ctx, src, dst, c.force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error copying: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Copied %d entries from %s to %s\n", n, c.from, c.to)
	return subcommands.ExitSuccess
}

// --- checkCmd ---

// report is what check found in a store.
type report struct {
	Expenses  int
	Recurring int
	Upgraded  bool // the persisted expenses differ from their current encoding
}

func check(ctx context.Context, kv moola.Store) (report, error) {
	var r report
	value, ok, err := kv.Get(ctx, moola.KeyExpenses)
	if err != nil || !ok {
		return r, err
	}
	expenses, err := moola.DecodeExpenses(value)
	if err != nil {
		return r, err
	}
	for _, e := range expenses {
		r.Expenses++
		if e.Recurring {
			r.Recurring++
		}
	}
	encoded, err := moola.EncodeExpenses(expenses)
	if err != nil {
		return r, err
	}
	r.Upgraded = encoded != value
	if _, err := moola.LoadPreferences(ctx, kv); err != nil {
		return r, err
	}
	return r, nil
}

type checkCmd struct {
	in    string
	write bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verifies that a store can be read" }
func (*checkCmd) Usage() string {
	return `migrate check -in <location> [-write]

Reads the expenses and preferences of a store and reports whether records
written by older versions need an upgrade. With -write they are upgraded in
place.
`
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "The location of the store to check.")
	f.BoolVar(&c.write, "write", false, "Upgrade the expenses in place.")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in flag is required.")
		return subcommands.ExitUsageError
	}
	kv, closeKV, err := openKV(ctx, c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeKV()

	r, err := check(ctx, kv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading store: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d expenses, %d recurring\n", r.Expenses, r.Recurring)
	if !r.Upgraded {
		fmt.Println("Up to date")
		return subcommands.ExitSuccess
	}
	if !c.write {
		fmt.Println("Needs an upgrade, run again with -write")
		return subcommands.ExitSuccess
	}
	if _, err := copyKeys(ctx, kv, kv, true); err != nil {
		fmt.Fprintf(os.Stderr, "Error upgrading: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Upgraded")
	return subcommands.ExitSuccess
}
