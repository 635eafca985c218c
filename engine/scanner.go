/*
scanner.go - Occurrence scanning

PURPOSE:
  Walks a date range applying the recurrence matcher and the amount
  resolver to emit concrete occurrences. Both the projection fold and
  "next occurrence" lookups go through here, so the escalator's
  previous-fire anchoring is defined in exactly one place.

TRANSFORM SEAM:
  Every resolved amount passes through an injectable TransformFunc
  (identity when nil). The what-if overlay binds its tweak math to this
  hook; the scan itself is never duplicated.
*/
package engine

// TransformFunc adjusts a resolved occurrence amount. The what-if overlay
// supplies one; a nil transform is identity.
type TransformFunc func(stream RecurringStream, amount Money, on Date) Money

// ScanOccurrences emits the stream's occurrences within the period, in
// date order. The escalator anchors on the previous fire date found in
// this same scan.
func ScanOccurrences(s RecurringStream, p Period, transform TransformFunc) []Occurrence {
	p = p.Normalize()
	var out []Occurrence
	var prev *Date

	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		if !s.Fires(d) {
			continue
		}
		amount := ResolveAmount(s, d, prev)
		if transform != nil {
			amount = transform(s, amount, d)
		}
		out = append(out, Occurrence{Date: d, Amount: amount})
		fired := d
		prev = &fired
	}
	return out
}

// NextOccurrence returns the first occurrence on or after the given date,
// searching up to horizonDays ahead. Reports false if none fires.
func NextOccurrence(s RecurringStream, from Date, horizonDays int) (Occurrence, bool) {
	if horizonDays < 1 {
		return Occurrence{}, false
	}
	occ := ScanOccurrences(s, Period{Start: from, End: from.AddDays(horizonDays - 1)}, nil)
	if len(occ) == 0 {
		return Occurrence{}, false
	}
	return occ[0], true
}
