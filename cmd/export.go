package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moola"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export expenses as CSV" }
func (*exportCmd) Usage() string {
	return `moola export [-o <file>]

Writes all expenses as CSV, most recent first, to the file or to the standard
output. A successful export counts as a backup.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, default standard output")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := c.write(a.ledger.Expenses(), a.formatOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.prefs.MarkExported(ctx, a.general, Today()); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording the export: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		fmt.Fprintf(out, "Exported %d expenses to %s\n", a.ledger.Len(), c.output)
	}
	return subcommands.ExitSuccess
}

// write exports the expenses to the output file, or to out when there is none.
// The export is complete only once the file is closed.
func (c *exportCmd) write(expenses []moola.Expense, opts moola.FormatOptions) error {
	if c.output == "" {
		return moola.ExportCSV(out, expenses, opts.Currency, opts.EU)
	}
	file, err := os.Create(c.output)
	if err != nil {
		return err
	}
	if err := moola.ExportCSV(file, expenses, opts.Currency, opts.EU); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
