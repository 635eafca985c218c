/*
Package engine provides the core cash-flow projection engine.

PURPOSE:
  This package contains the types and algorithms for projecting a
  day-by-day cash balance from recurring and one-time money movements,
  and for re-evaluating the same plan under a speculative what-if
  overlay without touching the base data.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A monetary magnitude backed by decimal.Decimal
  - Occurrence: One concrete (date, amount) instance of a stream
  - CalendarRow: One projected day with its contributions
  - ProjectionResult: The full projection plus summary statistics

DESIGN PRINCIPLES:
  1. Purity: documents in, results out; no package-level state
  2. Precision: decimal.Decimal everywhere, rounded at point of addition
  3. Fail-soft: malformed inputs degrade to zero/inert, never panic
  4. Ephemerality: rows and results are rebuilt on every call

SEE ALSO:
  - stream.go: Stream and document definitions
  - projection.go: The projection fold
  - whatif.go: The overlay that wraps the projection
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Monetary magnitude (single implicit currency)
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

// ParseMoney parses a decimal string. Unparsable amounts contribute zero;
// a bad entry must never abort a projection run.
func ParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func (m Money) Add(b Money) Money            { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money            { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(s decimal.Decimal) Money  { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money  { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                   { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money                   { return Money{Value: m.Value.Abs()} }
func (m Money) Round2() Money                { return Money{Value: m.Value.Round(2)} }
func (m Money) IsZero() bool                 { return m.Value.IsZero() }
func (m Money) IsNegative() bool             { return m.Value.IsNegative() }
func (m Money) IsPositive() bool             { return m.Value.IsPositive() }
func (m Money) Equal(b Money) bool           { return m.Value.Equal(b.Value) }
func (m Money) LessThan(b Money) bool        { return m.Value.LessThan(b.Value) }
func (m Money) GreaterThan(b Money) bool     { return m.Value.GreaterThan(b.Value) }
func (m Money) Float64() float64             { f, _ := m.Value.Float64(); return f }
func (m Money) String() string               { return m.Value.StringFixed(2) }

var zeroMoney = Money{Value: decimal.Zero}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StreamID string
type EntryID string

// =============================================================================
// OCCURRENCE - Materialized result of evaluating one stream on one day
// =============================================================================

type Occurrence struct {
	Date   Date
	Amount Money
}

// =============================================================================
// CALENDAR ROW - One projected day
// =============================================================================

// Detail records a single labeled contribution to a row. Labels are for
// audit and export only; nothing downstream re-parses them.
type Detail struct {
	Label  string
	Amount Money
}

// CalendarRow is created fresh per projection, additively mutated while
// folding sources, and discarded after use. Never persisted.
type CalendarRow struct {
	Date           Date
	Income         Money
	Expenses       Money
	Net            Money
	Running        Money
	IncomeDetails  []Detail
	ExpenseDetails []Detail
}

// =============================================================================
// PROJECTION RESULT - Immutable once returned
// =============================================================================

type ProjectionResult struct {
	Calendar []CalendarRow

	TotalIncome   Money
	TotalExpenses Money
	EndBalance    Money

	LowestBalance     Money
	LowestBalanceDate Date
	PeakBalance       Money
	PeakBalanceDate   Date

	// FirstNegativeDate is nil iff NegativeDayCount is zero.
	FirstNegativeDate *Date
	NegativeDayCount  int

	// Linear rate over the whole range, not a moving average.
	ProjectedWeeklyIncome Money
}
