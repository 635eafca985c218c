/*
projection.go - Full-range balance projection

PURPOSE:
  Builds the day-by-day calendar for a document: one row per date, all
  sources folded in, running balance and summary statistics computed in
  a second pass.

FOLD ORDER:
  1. One CalendarRow per date in the (normalized) range, zeroed.
  2. One-off entries by exact-date lookup, labeled per contribution.
  3. Recurring streams via ScanOccurrences, each amount routed through
     the injectable transform (the what-if seam).
  4. Manual adjustments (signed, single date).
  5. Sale-window uplifts atop the day's already-computed income.
     Overlapping windows each compute against the pre-uplift income and
     stack cumulatively.
  6. Every monetary figure is rounded to 2 decimals at the point of
     addition so rounding error cannot drift across hundreds of rows.

SECOND PASS:
  running starts at the starting balance; net = income - expenses per
  row. Lowest (strict <, first wins) and peak (strict >) are tracked
  alongside the first negative date and the count of negative days.

GUARANTEES:
  Deterministic, no input mutation (the document is cloned first), cost
  O(streams x days-in-range).

SEE ALSO:
  - scanner.go: Occurrence emission
  - whatif.go: Binds the transform and sale windows
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// SALE WINDOW - Date-bounded income uplift
// =============================================================================

// SaleWindow lifts a day's income inside [Start, End]: either by a
// percentage of the day's computed income or by a flat top-up, never
// both. BusinessDaysOnly skips Saturday/Sunday rows.
type SaleWindow struct {
	Start            Date
	End              Date
	UpliftPercent    float64
	FlatTopUp        Money
	BusinessDaysOnly bool
}

func (w SaleWindow) period() Period {
	return Period{Start: w.Start, End: w.End}.Normalize()
}

// =============================================================================
// PROJECTION OPTIONS
// =============================================================================

// ProjectionOptions carries the optional overlay inputs. A nil options
// value projects the document as-is.
type ProjectionOptions struct {
	// Transform adjusts each resolved stream amount; nil is identity.
	Transform TransformFunc

	// Sale windows applied after all sources are folded.
	Sale []SaleWindow

	// Range overrides the document's own settings range when non-nil
	// (the what-if overlay evaluates sub-ranges this way).
	Range *Period
}

// =============================================================================
// PROJECTION
// =============================================================================

// ComputeProjection builds the full calendar and summary statistics for
// the document. The input is never mutated; results are rebuilt on every
// call and safe to hand out.
func ComputeProjection(doc Document, opts *ProjectionOptions) *ProjectionResult {
	doc = doc.Clone()

	rng := doc.Range()
	var transform TransformFunc
	var sale []SaleWindow
	if opts != nil {
		transform = opts.Transform
		sale = opts.Sale
		if opts.Range != nil {
			rng = opts.Range.Normalize()
		}
	}

	// 1. One row per date, ascending.
	calendar := make([]CalendarRow, rng.Days())
	index := make(map[Date]int, len(calendar))
	d := rng.Start
	for i := range calendar {
		calendar[i] = CalendarRow{Date: d}
		index[d] = i
		d = d.AddDays(1)
	}

	// 2. One-offs by exact-date lookup.
	for _, entry := range doc.OneOffs {
		i, ok := index[entry.Date]
		if !ok {
			continue
		}
		amount := entry.Amount.Round2()
		row := &calendar[i]
		switch entry.Kind {
		case DirExpense:
			row.Expenses = row.Expenses.Add(amount)
			row.ExpenseDetails = append(row.ExpenseDetails, Detail{Label: entry.Label, Amount: amount})
		default:
			row.Income = row.Income.Add(amount)
			row.IncomeDetails = append(row.IncomeDetails, Detail{Label: entry.Label, Amount: amount})
		}
	}

	// 3. Recurring streams through the transform seam.
	streamIncome := zeroMoney
	for _, s := range doc.Streams {
		for _, occ := range ScanOccurrences(s, rng, transform) {
			i, ok := index[occ.Date]
			if !ok {
				continue
			}
			amount := occ.Amount.Round2()
			row := &calendar[i]
			if s.Direction == DirExpense {
				row.Expenses = row.Expenses.Add(amount)
				row.ExpenseDetails = append(row.ExpenseDetails, Detail{Label: s.Name, Amount: amount})
			} else {
				row.Income = row.Income.Add(amount)
				row.IncomeDetails = append(row.IncomeDetails, Detail{Label: s.Name, Amount: amount})
				streamIncome = streamIncome.Add(amount)
			}
		}
	}

	// 4. Manual adjustments: signed, folded by sign so net stays honest.
	for _, adj := range doc.Adjustments {
		i, ok := index[adj.Date]
		if !ok {
			continue
		}
		delta := adj.Delta.Round2()
		row := &calendar[i]
		label := adj.Note
		if label == "" {
			label = "adjustment"
		}
		if delta.IsNegative() {
			row.Expenses = row.Expenses.Add(delta.Neg())
			row.ExpenseDetails = append(row.ExpenseDetails, Detail{Label: label, Amount: delta.Neg()})
		} else {
			row.Income = row.Income.Add(delta)
			row.IncomeDetails = append(row.IncomeDetails, Detail{Label: label, Amount: delta})
		}
	}

	// 5. Sale uplifts: each window computes against the pre-uplift income
	// so overlapping windows stack without compounding each other.
	if len(sale) > 0 {
		for i := range calendar {
			row := &calendar[i]
			base := row.Income
			uplift := zeroMoney
			for _, w := range sale {
				if !w.period().Contains(row.Date) {
					continue
				}
				if w.BusinessDaysOnly && row.Date.IsWeekend() {
					continue
				}
				if pct := percentRate(w.UpliftPercent); !pct.IsZero() {
					uplift = uplift.Add(base.Mul(pct).Round2())
				} else if !w.FlatTopUp.IsZero() {
					uplift = uplift.Add(w.FlatTopUp.Round2())
				}
			}
			if !uplift.IsZero() {
				row.Income = row.Income.Add(uplift)
				row.IncomeDetails = append(row.IncomeDetails, Detail{Label: "sale uplift", Amount: uplift})
			}
		}
	}

	// Second pass: running balance and statistics.
	result := &ProjectionResult{Calendar: calendar}
	running := doc.Settings.StartingBalance
	for i := range calendar {
		row := &calendar[i]
		row.Net = row.Income.Sub(row.Expenses)
		running = running.Add(row.Net)
		row.Running = running

		result.TotalIncome = result.TotalIncome.Add(row.Income)
		result.TotalExpenses = result.TotalExpenses.Add(row.Expenses)

		if i == 0 || row.Running.LessThan(result.LowestBalance) {
			result.LowestBalance = row.Running
			result.LowestBalanceDate = row.Date
		}
		if i == 0 || row.Running.GreaterThan(result.PeakBalance) {
			result.PeakBalance = row.Running
			result.PeakBalanceDate = row.Date
		}
		if row.Running.IsNegative() {
			if result.FirstNegativeDate == nil {
				first := row.Date
				result.FirstNegativeDate = &first
			}
			result.NegativeDayCount++
		}
	}
	result.EndBalance = running

	// Linear weekly rate: streamIncome / (days / 7).
	days := decimal.NewFromInt(int64(rng.Days()))
	if days.IsPositive() {
		result.ProjectedWeeklyIncome = streamIncome.Mul(decSeven).Div(days).Round2()
	}

	return result
}
