package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/moola/cmd"
	"github.com/etnz/moola/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors of flag values, by "command/flag".
var predictors = map[string]complete.Predictor{
	"/store":              predict.Set{"file", "sqlite", "postgres"},
	"/data-dir":           predict.Dirs("*"),
	"add/r":               predict.Set{"weekly", "monthly", "yearly"},
	"edit/r":              predict.Set{"weekly", "monthly", "yearly", "none"},
	"list/p":              predict.Set{"today", "week", "month", "year"},
	"export/o":            predict.Files("*.csv"),
	"lock/method":         predict.Set{"none", "pin", "biometric", "both"},
	"prefs/eu":            predict.Set{"true", "false"},
	"prefs/hide-decimals": predict.Set{"true", "false"},
	"prefs/backup":        predict.Set{"weekly", "monthly", "off"},
}

// flags returns the completion of every flag in fs.
func flags(name string, fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		p, ok := predictors[name+"/"+f.Name]
		switch {
		case ok:
		case isBool(f):
			p = predict.Nothing
		default:
			p = predict.Something
		}
		m[f.Name] = p
	})
	return m
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// completion describes the command line to shell completion.
func completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags("", flag.CommandLine),
	}
	for _, c := range cmd.Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: flags(c.Name(), fs), Args: predict.Nothing}
		switch c.Name() {
		case "rm":
			sub.Args = predict.Something
		case "topic":
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		}
		root.Sub[c.Name()] = sub
	}
	return root
}

func main() {
	name := path.Base(os.Args[0])
	// Exits when invoked by the shell for completion.
	completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if err := cmd.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	if sub := flag.Arg(0); sub != "" && !registered(sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range cmd.Commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}
