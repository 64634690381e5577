package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/etnz/moola"
	"github.com/etnz/moola/lock"
	md "github.com/nao1215/markdown"
)

// Status is what the status report shows.
type Status struct {
	Method   lock.Method
	State    lock.State
	Load     lock.LoadResult
	Backup   moola.BackupStatus
	Reminder moola.ReminderRequest
	Expenses int
}

// StatusMarkdown renders the app lock, backup and reminder status.
func StatusMarkdown(s Status) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Status")
	reminder := "off"
	if s.Reminder.ShouldSchedule {
		reminder = fmt.Sprintf("daily at %02d:%02d", s.Reminder.Hour, s.Reminder.Minute)
	}
	backup := s.Backup.Message
	if s.Backup.Overdue {
		backup = md.Bold(backup + ", backup overdue")
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Setting", "Value"},
		Rows: [][]string{
			{"App lock", string(s.Method)},
			{"Lock state", s.State.String()},
			{"Expenses", fmt.Sprintf("%d", s.Expenses)},
			{"Backup", backup},
			{"Daily reminder", reminder},
		},
	})

	var notes bytes.Buffer
	ConditionalBlock(&notes, func(w io.Writer) bool {
		switch s.Load.Outcome {
		case lock.Healed:
			fmt.Fprintf(w, "The app lock was reset: %s.\n", s.Load.Reason)
			return true
		case lock.FailedOpen:
			fmt.Fprintf(w, "The app lock is disabled: %v.\n", s.Load.Err)
			return true
		}
		return false
	})
	if notes.Len() > 0 {
		doc.PlainText(notes.String())
	}
	return doc.String()
}
