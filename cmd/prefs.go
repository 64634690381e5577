package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moola"
	"github.com/google/subcommands"
)

type prefsCmd struct {
	currency     string
	eu           string
	hideDecimals string
	backup       string
}

func (*prefsCmd) Name() string     { return "prefs" }
func (*prefsCmd) Synopsis() string { return "show or change preferences" }
func (*prefsCmd) Usage() string {
	return `moola prefs [-currency <code>] [-eu true|false] [-hide-decimals true|false] [-backup weekly|monthly|off]

Changes the given preferences, then shows all of them.
`
}

func (c *prefsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "display currency code, e.g. EUR")
	f.StringVar(&c.eu, "eu", "", "use a decimal comma: true or false")
	f.StringVar(&c.hideDecimals, "hide-decimals", "", "round amounts to whole units: true or false")
	f.StringVar(&c.backup, "backup", "", "backup reminder: weekly, monthly or off")
}

// apply changes p according to the flags and reports whether anything changed.
func (c *prefsCmd) apply(p *moola.Preferences) (bool, error) {
	changed := false
	if c.currency != "" {
		p.Currency, changed = c.currency, true
	}
	if c.eu != "" {
		v, err := parseBool(c.eu)
		if err != nil {
			return false, err
		}
		p.EUFormat, changed = v, true
	}
	if c.hideDecimals != "" {
		v, err := parseBool(c.hideDecimals)
		if err != nil {
			return false, err
		}
		p.HideDecimals, changed = v, true
	}
	switch c.backup {
	case "":
	case "off":
		p.BackupReminder, changed = false, true
	case "weekly", "monthly":
		p.BackupReminder, p.BackupFreq, changed = true, moola.Frequency(c.backup), true
	default:
		return false, fmt.Errorf("invalid backup frequency %q, want weekly, monthly or off", c.backup)
	}
	return changed, nil
}

func (c *prefsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	changed, err := c.apply(a.prefs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if changed {
		if err := a.prefs.Save(ctx, a.general); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving preferences: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	p := a.prefs
	backup := "off"
	if p.BackupReminder {
		backup = string(p.BackupFreq)
	}
	reminder := "off"
	if p.DailyReminder {
		reminder = fmt.Sprintf("%02d:%02d", p.ReminderHour, p.ReminderMinute)
	}
	fmt.Fprintf(out, "currency:       %s\n", p.Currency)
	fmt.Fprintf(out, "eu format:      %t\n", p.EUFormat)
	fmt.Fprintf(out, "hide decimals:  %t\n", p.HideDecimals)
	fmt.Fprintf(out, "daily reminder: %s\n", reminder)
	fmt.Fprintf(out, "backup:         %s\n", backup)
	fmt.Fprintf(out, "                %s\n", p.Backup(Today()).Message)
	return subcommands.ExitSuccess
}
