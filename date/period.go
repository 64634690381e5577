package date

import (
	"fmt"
	"strings"
)

// Period is one of the rolling windows expenses are summarized over.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Yearly
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "today"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	case Yearly:
		return "year"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// ToDateName returns the "-to-Date" name for the period (e.g., "Month-to-Date").
func (p Period) ToDateName() string {
	switch p {
	case Daily:
		return "Today"
	case Weekly:
		return "Last 7 Days"
	case Monthly:
		return "Month-to-Date"
	case Yearly:
		return "Year-to-Date"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// ToDate returns the window of period p that ends on today, boundaries included.
//
//   - Daily is today alone.
//   - Weekly is the trailing 7 days [today-6, today], not the calendar week.
//   - Monthly starts on the first of today's month.
//   - Yearly starts on January 1st of today's year.
func (p Period) ToDate(today Date) Range {
	switch p {
	case Daily:
		return NewRange(today, today)
	case Weekly:
		return NewRange(today.Add(-6), today)
	case Monthly:
		return NewRange(today.StartOfMonth(), today)
	case Yearly:
		return NewRange(today.StartOfYear(), today)
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// Periods lists all known periods, shortest first.
var Periods = []Period{Daily, Weekly, Monthly, Yearly}

func ParsePeriod(p string) (Period, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	switch p {
	case "today", "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "yearly", "year":
		return Yearly, nil
	default:
		return Daily, fmt.Errorf("unknown period %q", p)
	}
}
