/*
recurrence.go - Recurrence matching

PURPOSE:
  Decides whether a recurring stream fires on a given date. This is the
  single source of truth for scheduling; the scanner and the projection
  never duplicate this logic.

FAIL-CLOSED POLICY:
  A stream with missing or malformed frequency-specific configuration
  never fires. No error, no panic - an inert stream is preferable to an
  aborted projection.

FREQUENCY RULES:
  once:     fires on the start date only
  daily:    every date, optionally excluding Saturday/Sunday
  weekly:   date's weekday is in the configured weekday set
  biweekly: per configured weekday, anchored at the first on/after-start
            date with that weekday; fires every 14 days from the anchor
  monthly (day):          day-of-month, clamped into short months
  monthly (nth weekday):  ordinal 1..5 selects by position; "last" always
                          resolves; an ordinal past the month's count
                          yields nothing (asymmetric with "last" - this
                          matches observed planning behavior and is kept)

SEE ALSO:
  - scanner.go: Walks a range applying Fires + ResolveAmount
*/
package engine

import "time"

// Fires reports whether the stream produces an occurrence on the date.
// The date must fall inside the stream's [Start, End] window.
func (s RecurringStream) Fires(d Date) bool {
	if s.Start.IsZero() || d.IsZero() {
		return false
	}
	w := s.Window()
	if !w.Contains(d) {
		return false
	}

	switch s.Frequency {
	case FreqOnce:
		return d.Equal(s.Start)

	case FreqDaily:
		if s.SkipWeekends && d.IsWeekend() {
			return false
		}
		return true

	case FreqWeekly:
		return s.weekdayConfigured(d.Weekday())

	case FreqBiweekly:
		return s.firesBiweekly(d)

	case FreqMonthly:
		return s.firesMonthly(d)

	default:
		return false
	}
}

func (s RecurringStream) weekdayConfigured(wd time.Weekday) bool {
	for _, w := range s.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

func (s RecurringStream) firesBiweekly(d Date) bool {
	if !s.weekdayConfigured(d.Weekday()) {
		return false
	}
	anchor := biweeklyAnchor(s.Start, d.Weekday())
	dist := DaysBetween(anchor, d)
	return dist >= 0 && dist%14 == 0
}

// biweeklyAnchor is the first date on or after start matching the weekday.
func biweeklyAnchor(start Date, wd time.Weekday) Date {
	offset := (int(wd) - int(start.Weekday()) + 7) % 7
	return start.AddDays(offset)
}

func (s RecurringStream) firesMonthly(d Date) bool {
	switch s.MonthlyMode {
	case MonthlyByDay:
		if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
			return false
		}
		day := s.DayOfMonth
		if max := DaysInMonth(d.Year(), d.Month()); day > max {
			day = max
		}
		return d.Day() == day

	case MonthlyByNthWeekday:
		if s.Nth == nil {
			return false
		}
		return s.Nth.matches(d)

	default:
		return false
	}
}

// matches reports whether the date is the configured nth weekday of its
// month.
func (spec NthWeekdaySpec) matches(d Date) bool {
	if d.Weekday() != spec.Weekday {
		return false
	}
	if spec.Last {
		// No later occurrence of this weekday in the month.
		return d.AddDays(7).Month() != d.Month()
	}
	if spec.Ordinal < 1 || spec.Ordinal > 5 {
		return false
	}
	// Position of d among its month's occurrences of this weekday.
	position := (d.Day()-1)/7 + 1
	return position == spec.Ordinal
}
