package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/moola/notify"
	"github.com/google/subcommands"
)

type remindCmd struct {
	at  string
	off bool
	run bool
}

func (*remindCmd) Name() string     { return "remind" }
func (*remindCmd) Synopsis() string { return "configure the daily reminder" }
func (*remindCmd) Usage() string {
	return `moola remind [-at HH:MM] [-off] [-run]

Turns the daily reminder to log expenses on at the given time, or off.
With -run it keeps running and prints the reminder every day until
interrupted.
`
}

func (c *remindCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.at, "at", "", "reminder time, e.g. 20:00")
	f.BoolVar(&c.off, "off", false, "turn the daily reminder off")
	f.BoolVar(&c.run, "run", false, "stay in the foreground and deliver reminders")
}

func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

func (c *remindCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.off && c.at != "" {
		fmt.Fprintln(os.Stderr, "Error: -at and -off are exclusive")
		return subcommands.ExitUsageError
	}
	a, ok := openUnlocked(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.at != "" || c.off {
		a.prefs.DailyReminder = !c.off
		if c.at != "" {
			h, m, err := parseClock(c.at)
			if err == nil {
				err = a.prefs.SetReminderTime(h, m)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		if err := a.prefs.Save(ctx, a.general); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving preferences: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	req := a.prefs.Reminder()
	if !c.run {
		if req.ShouldSchedule {
			fmt.Fprintf(out, "Daily reminder at %02d:%02d\n", req.Hour, req.Minute)
		} else {
			fmt.Fprintln(out, "Daily reminder is off")
		}
		return subcommands.ExitSuccess
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	gw := notify.NewCron(time.Local, func(title, body string) {
		fmt.Fprintf(out, "%s %s: %s\n", time.Now().Format(time.TimeOnly), title, body)
	})
	defer gw.Stop()

	outcome, err := notify.Apply(ctx, gw, req, a.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scheduling the reminder: %v\n", err)
		return subcommands.ExitFailure
	}
	if outcome != notify.Scheduled {
		fmt.Fprintf(out, "No reminder to run (%s)\n", outcome)
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(out, "Next reminder at %s, press Ctrl-C to stop\n", gw.Next().Format("2006-01-02 15:04"))
	<-ctx.Done()
	return subcommands.ExitSuccess
}
