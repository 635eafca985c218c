/*
validate.go - Document validation pass

PURPOSE:
  One dedicated pass that either repairs a document (lenient) or reports
  what it would have repaired (strict). Per-site inline coercion is
  deliberately avoided: every rule lives here, the projection trusts its
  input, and the matcher's fail-closed behavior is the last line of
  defense rather than the validation strategy.

RULES:
  - unknown frequency, or missing per-frequency configuration
      lenient: stream dropped        strict: issue
  - stream end before start
      lenient: end forced to start   strict: issue (and repaired)
  - unparsable/zero stream start date
      lenient: stream dropped        strict: issue
  - one-off or adjustment with a zero date
      lenient: entry dropped         strict: issue
  - steps out of order
      lenient: re-sorted             strict: issue (and re-sorted)
*/
package engine

import "sort"

type ValidationMode string

const (
	Lenient ValidationMode = "lenient"
	Strict  ValidationMode = "strict"
)

// ValidateDocument returns a repaired copy of the document plus the list
// of issues found. In Strict mode a non-empty issue list also yields a
// *ValidationError; in Lenient mode the error is always nil.
func ValidateDocument(doc Document, mode ValidationMode) (Document, []Issue, error) {
	doc = doc.Clone()
	var issues []Issue

	if doc.Settings.End.Before(doc.Settings.Start) {
		issues = append(issues, Issue{
			Code: "inverted_range", Field: "settings.end",
			Message: "end date before start date; forced to start",
		})
		doc.Settings.End = doc.Settings.Start
	}

	streams := doc.Streams[:0]
	for _, s := range doc.Streams {
		keep, streamIssues := validateStream(&s)
		issues = append(issues, streamIssues...)
		if keep {
			streams = append(streams, s)
		}
	}
	doc.Streams = streams

	oneOffs := doc.OneOffs[:0]
	for _, e := range doc.OneOffs {
		if e.Date.IsZero() {
			issues = append(issues, Issue{
				Code: "invalid_date", Field: "one_off.date",
				Message: "one-off entry has no valid date; dropped",
			})
			continue
		}
		oneOffs = append(oneOffs, e)
	}
	doc.OneOffs = oneOffs

	adjustments := doc.Adjustments[:0]
	for _, a := range doc.Adjustments {
		if a.Date.IsZero() {
			issues = append(issues, Issue{
				Code: "invalid_date", Field: "adjustment.date",
				Message: "adjustment has no valid date; dropped",
			})
			continue
		}
		adjustments = append(adjustments, a)
	}
	doc.Adjustments = adjustments

	if mode == Strict && len(issues) > 0 {
		return doc, issues, &ValidationError{Issues: issues}
	}
	return doc, issues, nil
}

// validateStream repairs a stream in place and reports whether it is
// usable at all.
func validateStream(s *RecurringStream) (keep bool, issues []Issue) {
	if s.Start.IsZero() {
		return false, []Issue{{
			Code: "invalid_date", StreamID: s.ID, Field: "start",
			Message: "stream has no valid start date; dropped",
		}}
	}
	if !s.End.IsZero() && s.End.Before(s.Start) {
		issues = append(issues, Issue{
			Code: "inverted_range", StreamID: s.ID, Field: "end",
			Message: "end date before start date; forced to start",
		})
		s.End = s.Start
	}
	if s.End.IsZero() {
		s.End = s.Start
		if s.Frequency != FreqOnce {
			issues = append(issues, Issue{
				Code: "invalid_date", StreamID: s.ID, Field: "end",
				Message: "recurring stream has no end date; forced to start",
			})
		}
	}

	switch s.Frequency {
	case FreqOnce, FreqDaily:
		// No extra configuration required.
	case FreqWeekly, FreqBiweekly:
		if len(s.Weekdays) == 0 {
			issues = append(issues, Issue{
				Code: "missing_config", StreamID: s.ID, Field: "weekdays",
				Message: string(s.Frequency) + " stream has no weekdays; dropped",
			})
			return false, issues
		}
	case FreqMonthly:
		switch s.MonthlyMode {
		case MonthlyByDay:
			if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
				issues = append(issues, Issue{
					Code: "missing_config", StreamID: s.ID, Field: "day_of_month",
					Message: "monthly stream day out of 1..31; dropped",
				})
				return false, issues
			}
		case MonthlyByNthWeekday:
			if s.Nth == nil || (!s.Nth.Last && (s.Nth.Ordinal < 1 || s.Nth.Ordinal > 5)) {
				issues = append(issues, Issue{
					Code: "missing_config", StreamID: s.ID, Field: "nth_weekday",
					Message: "monthly stream nth-weekday spec malformed; dropped",
				})
				return false, issues
			}
		default:
			issues = append(issues, Issue{
				Code: "missing_config", StreamID: s.ID, Field: "monthly_mode",
				Message: "monthly stream has no scheduling mode; dropped",
			})
			return false, issues
		}
	default:
		issues = append(issues, Issue{
			Code: "unknown_frequency", StreamID: s.ID, Field: "frequency",
			Message: "unknown frequency " + string(s.Frequency) + "; dropped",
		})
		return false, issues
	}

	if !sort.SliceIsSorted(s.Steps, func(i, j int) bool {
		return s.Steps[i].EffectiveFrom.Before(s.Steps[j].EffectiveFrom)
	}) {
		issues = append(issues, Issue{
			Code: "unsorted_steps", StreamID: s.ID, Field: "steps",
			Message: "steps out of order; re-sorted",
		})
		sort.SliceStable(s.Steps, func(i, j int) bool {
			return s.Steps[i].EffectiveFrom.Before(s.Steps[j].EffectiveFrom)
		})
	}

	return true, issues
}
