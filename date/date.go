// Package date provides a day-granular calendar date and the periods an
// expense ledger is summarized over.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// Format is the format used to represent dates as strings in ISO-8601 format.
//
// Dates in this format compare lexicographically in chronological order.
const Format = "2006-01-02" // write date format

// Date represents a date with day-level granularity.
//
// The zero value is not a valid calendar day, IsZero reports it.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// New returns a normalized Date for the given year, month, and day.
//
// Out of range values overflow like time.Date does: New(2025, 2, 31) is 2025-03-03.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Of returns the calendar day of t, in t's location.
func Of(t time.Time) Date { return New(t.Date()) }

// Today returns the current date.
func Today() Date { return Of(time.Now()) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// YearDay returns the day of the year, in the range [1,365] for non-leap years, and [1,366] in leap years.
func (d Date) YearDay() int { return d.time().YearDay() }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(Format) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 whether d is before, equal or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// AddMonths returns the same day of the month, i months later.
//
// When the target month is shorter the day is clamped to its last day:
// 2025-01-31 plus one month is 2025-02-28.
func (d Date) AddMonths(i int) Date {
	first := New(d.y, d.m+time.Month(i), 1)
	return New(first.y, first.m, min(d.d, DaysIn(first.y, first.m)))
}

// AddYears returns the same month and day, i years later.
//
// February 29th is clamped to February 28th on non-leap years.
func (d Date) AddYears(i int) Date { return d.AddMonths(12 * i) }

// Sub returns the number of days between x and d, positive when d is after x.
func (d Date) Sub(x Date) int { return int(d.time().Sub(x.time()).Hours()) / 24 }

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date { return New(d.y, d.m, 1) }

// StartOfYear returns January 1st of d's year.
func (d Date) StartOfYear() Date { return New(d.y, time.January, 1) }

// IsLeap reports whether year is a leap year in the proleptic Gregorian calendar.
func IsLeap(year int) bool { return year%4 == 0 && (year%100 != 0 || year%400 == 0) }

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
//
// Invalid calendar days like "2025-02-30" are rejected.
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, strings.TrimSpace(str))
	// We use a slightly more permisive format for read, to support 2025-7-1 instead of 2025-07-01
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, Format, err)
	}
	return Of(on), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
