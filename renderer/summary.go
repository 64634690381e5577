package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/moola"
	"github.com/etnz/moola/date"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the totals of a period and its expenses grouped by date.
//
// progress is how far through the period we are, see moola.TimeProgress.
func SummaryMarkdown(s moola.Summary, progress float64, opts moola.FormatOptions) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s (%s)", s.Period.ToDateName(), s.Range))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total"),
			md.Bold(s.Total.Format(opts)),
		},
		Rows: [][]string{
			{"Spending", s.SpendingTotal().Format(opts)},
			{"Recurring", s.RecurringTotal().Format(opts)},
			{"Expenses", fmt.Sprintf("%d", len(s.Items))},
			{fmt.Sprintf("%s elapsed", periodNoun(s.Period)), fmt.Sprintf("%.0f%%", progress*100)},
		},
	})

	if len(s.Items) == 0 {
		doc.PlainText("No expenses yet.")
		return doc.String()
	}
	doc.PlainText(DateGroupsMarkdown(moola.GroupByDate(s.Items), opts))
	return doc.String()
}

func periodNoun(p date.Period) string {
	switch p {
	case date.Daily:
		return "Day"
	case date.Weekly:
		return "Week"
	case date.Monthly:
		return "Month"
	default:
		return "Year"
	}
}
