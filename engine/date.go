package engine

import (
	"time"
)

// =============================================================================
// DATE - Naive Gregorian calendar day (the only time abstraction we need)
// =============================================================================

// Date is a calendar day with no timezone. All planning math is day-granular;
// two Dates are equal iff they name the same YMD.
type Date struct {
	t time.Time
}

const ymdLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ymdLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// MustDate parses a YYYY-MM-DD string, returning the zero Date on failure.
// Mirrors the fail-soft policy for malformed inputs: a zero Date never
// matches anything downstream.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return d
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (d Date) IsBusinessDay() bool { return !d.IsWeekend() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(ymdLayout)
}

// Time exposes the underlying instant (midnight UTC) for collaborators
// that need a time.Time, e.g. chart rendering.
func (d Date) Time() time.Time { return d.t }

// NextBusinessDay rolls a weekend date forward to Monday.
func (d Date) NextBusinessDay() Date {
	for d.IsWeekend() {
		d = d.AddDays(1)
	}
	return d
}

// PreviousBusinessDay rolls a weekend date back to Friday.
func (d Date) PreviousBusinessDay() Date {
	for d.IsWeekend() {
		d = d.AddDays(-1)
	}
	return d
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetween returns the signed day distance from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MonthsBetween counts whole calendar-month boundaries crossed from one date
// to another. The day of month is deliberately ignored: Jan 15 to Feb 13
// counts as 1 month even though fewer than 31 days elapsed. Escalator math
// depends on this definition.
func MonthsBetween(from, to Date) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive [Start, End] date range.
type Period struct {
	Start Date
	End   Date
}

// Normalize forces End to Start when the range is inverted. Inverted ranges
// are repaired, never rejected.
func (p Period) Normalize() Period {
	if p.End.Before(p.Start) {
		p.End = p.Start
	}
	return p
}

// Contains returns true if the date falls within the period.
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the number of days in the period, inclusive.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
