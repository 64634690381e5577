package renderer

import (
	"bytes"

	"github.com/etnz/moola"
	"github.com/etnz/moola/date"
	md "github.com/nao1215/markdown"
)

// DateGroupsMarkdown renders one section per date, most recent first.
func DateGroupsMarkdown(groups []moola.DateGroup, opts moola.FormatOptions) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	for _, g := range groups {
		doc.H2(g.Date.String())
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignLeft,
				md.AlignRight,
				md.AlignLeft,
			},
			Header: []string{"ID", "Note", "Amount", "Repeats"},
		}
		for _, e := range g.Items {
			table.Rows = append(table.Rows, []string{e.ID, e.Note, e.Amount.Format(opts), string(e.Freq)})
		}
		table.Rows = append(table.Rows, []string{"", md.Bold("Total"), md.Bold(g.Total.Format(opts)), ""})
		doc.Table(table)
	}
	return doc.String()
}

// UpcomingMarkdown renders the recurring expenses by next due date.
func UpcomingMarkdown(upcoming []moola.Expense, today date.Date, opts moola.FormatOptions) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Upcoming")
	if len(upcoming) == 0 {
		doc.PlainText("No recurring expenses.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"ID", "Note", "Amount", "Repeats", "Next Due", "When"},
	}
	for _, e := range upcoming {
		table.Rows = append(table.Rows, []string{
			e.ID,
			e.Note,
			e.Amount.Format(opts),
			string(e.Freq),
			e.NextDue.String(),
			moola.DaysUntil(e.NextDue, today),
		})
	}
	doc.Table(table)
	return doc.String()
}
