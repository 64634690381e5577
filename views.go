package moola

import (
	"fmt"
	"slices"
	"time"

	"github.com/etnz/moola/date"
)

// Summary is the set of expenses of a period window and their total.
type Summary struct {
	Period date.Period
	Range  date.Range
	Items  []Expense
	Total  Amount
}

// SpendingTotal is the total of the non recurring expenses.
func (s Summary) SpendingTotal() Amount {
	return total(s.Items, func(e Expense) bool { return !e.Recurring })
}

// RecurringTotal is the total of the recurring expenses.
func (s Summary) RecurringTotal() Amount {
	return total(s.Items, func(e Expense) bool { return e.Recurring })
}

func total(items []Expense, keep func(Expense) bool) Amount {
	var sum Amount
	for _, e := range items {
		if keep == nil || keep(e) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// FilterByPeriod keeps the expenses dated within the window of period p ending on today.
//
// See [date.Period.ToDate] for the windows. Items keep their input order.
func FilterByPeriod(expenses []Expense, p date.Period, today date.Date) Summary {
	r := p.ToDate(today)
	items := make([]Expense, 0)
	for _, e := range expenses {
		if r.Contains(e.Date) {
			items = append(items, e)
		}
	}
	return Summary{Period: p, Range: r, Items: items, Total: total(items, nil)}
}

// Summary returns the expenses of the window of period p ending on today.
func (l *Ledger) Summary(p date.Period, today date.Date) Summary {
	return FilterByPeriod(l.expenses, p, today)
}

// DateGroup holds the expenses sharing the same date.
type DateGroup struct {
	Date  date.Date
	Items []Expense
	Total Amount
}

// GroupByDate groups expenses by date, most recent date first.
func GroupByDate(expenses []Expense) []DateGroup {
	index := make(map[date.Date]int)
	groups := make([]DateGroup, 0)
	for _, e := range expenses {
		i, ok := index[e.Date]
		if !ok {
			i = len(groups)
			index[e.Date] = i
			groups = append(groups, DateGroup{Date: e.Date})
		}
		groups[i].Items = append(groups[i].Items, e)
		groups[i].Total = groups[i].Total.Add(e.Amount)
	}
	slices.SortFunc(groups, func(a, b DateGroup) int { return b.Date.Compare(a.Date) })
	return groups
}

// Upcoming returns the recurring expenses ordered by next due date, soonest first.
func (l *Ledger) Upcoming() []Expense {
	var recurring []Expense
	for _, e := range l.expenses {
		if e.Recurring {
			recurring = append(recurring, e)
		}
	}
	slices.SortStableFunc(recurring, func(a, b Expense) int { return a.NextDue.Compare(b.NextDue) })
	return recurring
}

// DaysUntil describes how far the due date is from today:
// "due today", "tomorrow", "in 3d", or "2d overdue".
func DaysUntil(due, today date.Date) string {
	switch diff := due.Sub(today); {
	case diff == 0:
		return "due today"
	case diff == 1:
		return "tomorrow"
	case diff < 0:
		return fmt.Sprintf("%dd overdue", -diff)
	default:
		return fmt.Sprintf("in %dd", diff)
	}
}

// TimeProgress returns how far 'now' is through the current period, in [0,1].
//
//   - Daily: time of day over 24h.
//   - Weekly: days since Sunday plus the time of day, over 7.
//   - Monthly: days since the 1st plus the time of day, over the month length.
//   - Yearly: days since January 1st plus the time of day, over 365 or 366.
func TimeProgress(p date.Period, now time.Time) float64 {
	h, m, s := now.Clock()
	day := float64(h*3600+m*60+s) / (24 * 3600)
	today := date.Of(now)
	var progress float64
	switch p {
	case date.Daily:
		progress = day
	case date.Weekly:
		progress = (float64(now.Weekday()) + day) / 7
	case date.Monthly:
		progress = (float64(p.ToDate(today).Len()-1) + day) / float64(date.DaysIn(today.Year(), today.Month()))
	case date.Yearly:
		progress = (float64(p.ToDate(today).Len()-1) + day) / float64(date.DaysInYear(today.Year()))
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
	return min(max(progress, 0), 1)
}
