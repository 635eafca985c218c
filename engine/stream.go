/*
stream.go - Stream and document definitions

PURPOSE:
  Defines the two explicit entry variants (RecurringStream, OneOffEntry),
  manual adjustments, and the Document snapshot the projection consumes.

TAGGED VARIANTS:
  A recurring stream and a one-off entry are different types, each
  carrying only its relevant fields. There is no "repeats" flag that
  reshapes a single loose record; frequency-specific configuration lives
  on the recurring variant and is validated per frequency.

LIFECYCLE:
  Documents are owned by the persistence layer. The engine takes a
  defensive Clone of whatever it is handed, so concurrent edits elsewhere
  cannot corrupt an in-flight projection.

SEE ALSO:
  - recurrence.go: Whether a stream fires on a date
  - amount.go: What a firing stream is worth on a date
  - validate.go: The strict/lenient validation pass
*/
package engine

import "time"

// =============================================================================
// FREQUENCY AND DIRECTION
// =============================================================================

type Frequency string

const (
	FreqOnce     Frequency = "once"
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
)

type Direction string

const (
	DirIncome  Direction = "income"
	DirExpense Direction = "expense"
)

// MonthlyMode selects between day-of-month and nth-weekday scheduling.
type MonthlyMode string

const (
	MonthlyByDay        MonthlyMode = "day"
	MonthlyByNthWeekday MonthlyMode = "nth_weekday"
)

// NthWeekdaySpec configures "the Nth <weekday> of the month".
// Ordinal is 1..5; Last selects the final occurrence regardless of how
// many there are. Ordinal and Last are mutually exclusive.
type NthWeekdaySpec struct {
	Weekday time.Weekday
	Ordinal int
	Last    bool
}

// =============================================================================
// AMOUNT STEPS
// =============================================================================

// AmountStep is an absolute override effective from a date onward.
// Steps replace the base, they do not add to it.
type AmountStep struct {
	EffectiveFrom Date
	Amount        Money
}

// =============================================================================
// RECURRING STREAM
// =============================================================================

// RecurringStream is a repeating money movement. Base is an unsigned
// magnitude; Direction supplies the sign when folding.
//
// Invariants: Start <= End (repaired by validation, guarded by the
// matcher); Steps sorted ascending by EffectiveFrom; the frequency's
// own configuration present (weekday set for weekly/biweekly, day or
// nth-weekday spec for monthly). A stream whose configuration is
// missing or malformed never fires.
type RecurringStream struct {
	ID        StreamID
	Name      string
	Direction Direction
	Frequency Frequency

	Start Date
	End   Date

	Base             Money
	Steps            []AmountStep
	EscalatorPercent float64

	// daily
	SkipWeekends bool

	// weekly / biweekly
	Weekdays []time.Weekday

	// monthly
	MonthlyMode MonthlyMode
	DayOfMonth  int
	Nth         *NthWeekdaySpec
}

// Window returns the stream's active period, repaired if inverted.
func (s RecurringStream) Window() Period {
	return Period{Start: s.Start, End: s.End}.Normalize()
}

func (s RecurringStream) clone() RecurringStream {
	out := s
	if s.Steps != nil {
		out.Steps = append([]AmountStep(nil), s.Steps...)
	}
	if s.Weekdays != nil {
		out.Weekdays = append([]time.Weekday(nil), s.Weekdays...)
	}
	if s.Nth != nil {
		nth := *s.Nth
		out.Nth = &nth
	}
	return out
}

// =============================================================================
// ONE-OFF ENTRY
// =============================================================================

// OneOffEntry is a single dated movement with no recurrence fields.
type OneOffEntry struct {
	ID     EntryID
	Date   Date
	Amount Money
	Kind   Direction
	Label  string
}

// =============================================================================
// ADJUSTMENT - Manual signed balance correction on a single date
// =============================================================================

type Adjustment struct {
	Date  Date
	Delta Money
	Note  string
}

// =============================================================================
// DOCUMENT - The full planning input
// =============================================================================

type Settings struct {
	Start           Date
	End             Date
	StartingBalance Money
}

type Document struct {
	Settings    Settings
	Adjustments []Adjustment
	OneOffs     []OneOffEntry
	Streams     []RecurringStream
}

// Range returns the projection period, repaired if inverted.
func (d Document) Range() Period {
	return Period{Start: d.Settings.Start, End: d.Settings.End}.Normalize()
}

// Clone deep-copies the document. Every projection run starts from a
// clone so the engine never mutates caller-owned data.
func (d Document) Clone() Document {
	out := d
	if d.Adjustments != nil {
		out.Adjustments = append([]Adjustment(nil), d.Adjustments...)
	}
	if d.OneOffs != nil {
		out.OneOffs = append([]OneOffEntry(nil), d.OneOffs...)
	}
	if d.Streams != nil {
		out.Streams = make([]RecurringStream, len(d.Streams))
		for i, s := range d.Streams {
			out.Streams[i] = s.clone()
		}
	}
	return out
}

// Stream returns the stream with the given id, if present.
func (d Document) Stream(id StreamID) (RecurringStream, bool) {
	for _, s := range d.Streams {
		if s.ID == id {
			return s, true
		}
	}
	return RecurringStream{}, false
}
