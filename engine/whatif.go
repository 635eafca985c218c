/*
whatif.go - Speculative what-if overlay

PURPOSE:
  Wraps the projection engine with a non-destructive overlay: a sandbox
  holds a snapshot of the base document plus a tree of tweaks (one
  global, one per stream, optional sale windows). Evaluation binds the
  tweak math to the projection's transform seam and compares the result
  field-by-field against an untweaked projection of the same base.

TWEAK MODES (one active at a time per stream):
  percent/delta: composed AFTER the global tweak -
                 base*(1+gPct/100)+gDelta, then *(1+sPct/100)+sDelta
  effective:     stored absolute override, used verbatim per occurrence
  weekly:        target / estimated-occurrences-per-week; demoted
                 silently to percent when the estimate is zero

LOCKING:
  Locking a stream computes its CURRENT effective per-occurrence amount
  under whatever mode is active and freezes it as an effective override.
  Unlocking resets to percent with zeroed fields - an explicit reset,
  not a restoration of prior values.

The base snapshot is never written through; persistence of the sandbox
is the caller's concern and happens only after a successful mutation.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// TWEAKS
// =============================================================================

type TweakMode string

const (
	TweakPercent   TweakMode = "percent"
	TweakEffective TweakMode = "effective"
	TweakWeekly    TweakMode = "weekly"
)

// StreamTweak is one per-stream what-if edit. Only the fields belonging
// to the active mode are meaningful; switching modes abandons the rest.
type StreamTweak struct {
	Mode         TweakMode
	Percent      float64
	Delta        Money
	Effective    Money
	WeeklyTarget Money
	Locked       bool
}

// GlobalTweak applies to every stream before its own percent/delta.
type GlobalTweak struct {
	Percent float64
	Delta   Money
}

// SaleConfig gates the sandbox's sale windows.
type SaleConfig struct {
	Enabled bool
	Windows []SaleWindow
}

type Tweaks struct {
	Global    GlobalTweak
	PerStream map[StreamID]*StreamTweak
	Sale      SaleConfig

	// Optional evaluation sub-range; zero dates fall back to the base
	// document's own settings.
	EvalStart Date
	EvalEnd   Date
}

// Sandbox is the speculative working copy: a base snapshot plus tweaks.
type Sandbox struct {
	Base   Document
	Tweaks Tweaks
}

// Clone deep-copies the sandbox, including the tweak map.
func (sb Sandbox) Clone() Sandbox {
	out := sb
	out.Base = sb.Base.Clone()
	if sb.Tweaks.PerStream != nil {
		out.Tweaks.PerStream = make(map[StreamID]*StreamTweak, len(sb.Tweaks.PerStream))
		for id, t := range sb.Tweaks.PerStream {
			if t == nil {
				continue
			}
			c := *t
			out.Tweaks.PerStream[id] = &c
		}
	}
	if sb.Tweaks.Sale.Windows != nil {
		out.Tweaks.Sale.Windows = append([]SaleWindow(nil), sb.Tweaks.Sale.Windows...)
	}
	return out
}

// =============================================================================
// RECONCILIATION - Default and demote tweaks against the base snapshot
// =============================================================================

func defaultTweak() *StreamTweak {
	return &StreamTweak{Mode: TweakPercent}
}

// Reconcile ensures every stream in the base snapshot has a tweak and
// demotes weekly-target tweaks whose occurrence estimate is zero.
// Tweaks for streams no longer in the base are left in place, inert.
func (sb *Sandbox) Reconcile() {
	if sb.Tweaks.PerStream == nil {
		sb.Tweaks.PerStream = make(map[StreamID]*StreamTweak)
	}
	for _, s := range sb.Base.Streams {
		t, ok := sb.Tweaks.PerStream[s.ID]
		if !ok || t == nil {
			sb.Tweaks.PerStream[s.ID] = defaultTweak()
			continue
		}
		if t.Mode == TweakWeekly && EstimatedOccurrencesPerWeek(s) == 0 {
			// Weekly targets are meaningless on a stream that never
			// recurs; the target is discarded, not kept around.
			t.Mode = TweakPercent
			t.WeeklyTarget = zeroMoney
		}
	}
}

// EstimatedOccurrencesPerWeek is the static per-frequency estimate used
// to convert a weekly target into a per-occurrence amount.
func EstimatedOccurrencesPerWeek(s RecurringStream) float64 {
	switch s.Frequency {
	case FreqDaily:
		if s.SkipWeekends {
			return 5
		}
		return 7
	case FreqWeekly:
		return float64(len(s.Weekdays))
	case FreqBiweekly:
		return float64(len(s.Weekdays)) / 2
	case FreqMonthly:
		return 12.0 / 52.0
	default: // once, unknown
		return 0
	}
}

// =============================================================================
// EFFECTIVE AMOUNT RESOLUTION
// =============================================================================

// effectiveAmount applies the sandbox's tweak math to one resolved
// occurrence amount.
func effectiveAmount(s RecurringStream, base Money, t *StreamTweak, g GlobalTweak) Money {
	if t == nil {
		t = defaultTweak()
	}

	switch t.Mode {
	case TweakWeekly:
		perWeek := EstimatedOccurrencesPerWeek(s)
		if perWeek > 0 {
			return t.WeeklyTarget.Div(decimal.NewFromFloat(perWeek))
		}
		// Demoted: fall through to percent with whatever is stored.
	case TweakEffective:
		return t.Effective
	}

	amount := base
	if pct := percentRate(g.Percent); !pct.IsZero() {
		amount = amount.Mul(decOne.Add(pct))
	}
	amount = amount.Add(g.Delta)
	if pct := percentRate(t.Percent); !pct.IsZero() {
		amount = amount.Mul(decOne.Add(pct))
	}
	return amount.Add(t.Delta)
}

// =============================================================================
// EVALUATION
// =============================================================================

// WhatIfDeltas reports tweaked-minus-base differences for the headline
// figures.
type WhatIfDeltas struct {
	EndBalance       Money
	TotalIncome      Money
	TotalExpenses    Money
	LowestBalance    Money
	NegativeDayCount int
}

type WhatIfResult struct {
	Base    *ProjectionResult
	Tweaked *ProjectionResult
	Deltas  WhatIfDeltas
}

// evalRange resolves the sandbox's evaluation period against the base
// document's settings.
func (sb *Sandbox) evalRange() Period {
	rng := sb.Base.Range()
	if !sb.Tweaks.EvalStart.IsZero() {
		rng.Start = sb.Tweaks.EvalStart
	}
	if !sb.Tweaks.EvalEnd.IsZero() {
		rng.End = sb.Tweaks.EvalEnd
	}
	return rng.Normalize()
}

// Evaluate reconciles the tweaks, projects the base snapshot twice (once
// untouched, once through the tweak transform plus sale windows), and
// reports the deltas. The base document is never mutated.
func (sb Sandbox) Evaluate() *WhatIfResult {
	sb.Base = sb.Base.Clone()
	sb.Reconcile()

	rng := sb.evalRange()
	global := sb.Tweaks.Global
	perStream := sb.Tweaks.PerStream

	base := ComputeProjection(sb.Base, &ProjectionOptions{Range: &rng})

	opts := &ProjectionOptions{
		Range: &rng,
		Transform: func(s RecurringStream, amount Money, _ Date) Money {
			return effectiveAmount(s, amount, perStream[s.ID], global)
		},
	}
	if sb.Tweaks.Sale.Enabled {
		opts.Sale = sb.Tweaks.Sale.Windows
	}
	tweaked := ComputeProjection(sb.Base, opts)

	return &WhatIfResult{
		Base:    base,
		Tweaked: tweaked,
		Deltas: WhatIfDeltas{
			EndBalance:       tweaked.EndBalance.Sub(base.EndBalance),
			TotalIncome:      tweaked.TotalIncome.Sub(base.TotalIncome),
			TotalExpenses:    tweaked.TotalExpenses.Sub(base.TotalExpenses),
			LowestBalance:    tweaked.LowestBalance.Sub(base.LowestBalance),
			NegativeDayCount: tweaked.NegativeDayCount - base.NegativeDayCount,
		},
	}
}

// =============================================================================
// LOCK / UNLOCK
// =============================================================================

// Lock freezes the stream's current effective per-occurrence amount as
// an absolute override. Reports false if the stream is not in the base.
func (sb *Sandbox) Lock(id StreamID) bool {
	s, ok := sb.Base.Stream(id)
	if !ok {
		return false
	}
	sb.Reconcile()
	t := sb.Tweaks.PerStream[id]

	rng := sb.evalRange()
	current := s.Base
	if occ := ScanOccurrences(s, rng, nil); len(occ) > 0 {
		current = occ[0].Amount
	}

	frozen := effectiveAmount(s, current, t, sb.Tweaks.Global)
	*t = StreamTweak{Mode: TweakEffective, Effective: frozen, Locked: true}
	return true
}

// Unlock clears the override and resets the tweak to a zeroed percent
// mode. Prior percent/delta values are not restored.
func (sb *Sandbox) Unlock(id StreamID) bool {
	sb.Reconcile()
	t, ok := sb.Tweaks.PerStream[id]
	if !ok {
		return false
	}
	*t = StreamTweak{Mode: TweakPercent}
	return true
}
