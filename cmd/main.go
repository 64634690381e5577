package cmd

import (
	"github.com/google/subcommands"
)

// Commands lists the moola subcommands, in help order.
var Commands = []subcommands.Command{
	&addCmd{},
	&editCmd{},
	&rmCmd{},
	&clearCmd{},
	&listCmd{},
	&upcomingCmd{},
	&exportCmd{},
	&prefsCmd{},
	&remindCmd{},
	&lockCmd{},
	&unlockCmd{},
	&topicCmd{},
}

// groups maps each command to its help group.
var groups = map[string]string{
	"add":      "expenses",
	"edit":     "expenses",
	"rm":       "expenses",
	"clear":    "expenses",
	"list":     "reports",
	"upcoming": "reports",
	"export":   "reports",
	"prefs":    "settings",
	"remind":   "settings",
	"lock":     "settings",
	"unlock":   "settings",
	"topic":    "help",
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, groups[cmd.Name()])
	}
}
