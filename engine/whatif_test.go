package engine

import (
	"math"
	"testing"
	"time"
)

func sandboxWith(streams ...RecurringStream) Sandbox {
	return Sandbox{Base: halfYearDoc(streams...)}
}

func TestEvaluate_ZeroTweaksMatchBase(t *testing.T) {
	// GIVEN a sandbox whose tweaks are all defaults
	sb := sandboxWith(
		monthlyIncome("salary", "Salary", 1, "2500"),
		monthlyIncome("side", "Side gig", 15, "400"),
	)

	// WHEN evaluating
	result := sb.Evaluate()

	// THEN the tweaked projection equals the base projection exactly
	if !result.Tweaked.EndBalance.Equal(result.Base.EndBalance) {
		t.Errorf("end balance diverged: %s vs %s", result.Tweaked.EndBalance, result.Base.EndBalance)
	}
	if !result.Deltas.EndBalance.IsZero() {
		t.Errorf("expected zero end-balance delta, got %s", result.Deltas.EndBalance)
	}
	if !result.Deltas.TotalIncome.IsZero() {
		t.Errorf("expected zero income delta, got %s", result.Deltas.TotalIncome)
	}
	if result.Deltas.NegativeDayCount != 0 {
		t.Errorf("expected zero negative-day delta, got %d", result.Deltas.NegativeDayCount)
	}
}

func TestEvaluate_GlobalPercentScalesExpenses(t *testing.T) {
	// GIVEN a weekly Monday $200 expense over four Mondays
	sb := Sandbox{
		Base: Document{
			Settings: Settings{Start: MustDate("2025-01-06"), End: MustDate("2025-01-27")},
			Streams: []RecurringStream{{
				ID: "groceries", Name: "Groceries", Direction: DirExpense,
				Frequency: FreqWeekly,
				Start:     MustDate("2025-01-01"), End: MustDate("2025-12-31"),
				Weekdays:  []time.Weekday{time.Monday},
				Base:      money("200"),
			}},
		},
		Tweaks: Tweaks{Global: GlobalTweak{Percent: 10}},
	}

	result := sb.Evaluate()

	// THEN tweaked expenses are exactly 1.10x the base expenses
	assertMoney(t, result.Base.TotalExpenses, "800")
	assertMoney(t, result.Tweaked.TotalExpenses, "880")
	assertMoney(t, result.Deltas.TotalExpenses, "80")
	assertMoney(t, result.Deltas.EndBalance, "-80")
}

func TestEvaluate_NonFinitePercentsInert(t *testing.T) {
	// GIVEN NaN global and infinite per-stream percents
	sb := Sandbox{
		Base: Document{
			Settings: Settings{Start: MustDate("2025-01-06"), End: MustDate("2025-01-27")},
			Streams: []RecurringStream{{
				ID: "groceries", Name: "Groceries", Direction: DirExpense,
				Frequency: FreqWeekly,
				Start:     MustDate("2025-01-01"), End: MustDate("2025-12-31"),
				Weekdays:  []time.Weekday{time.Monday},
				Base:      money("200"),
			}},
		},
		Tweaks: Tweaks{
			Global: GlobalTweak{Percent: math.NaN()},
			PerStream: map[StreamID]*StreamTweak{
				"groceries": {Mode: TweakPercent, Percent: math.Inf(1)},
			},
		},
	}

	// THEN evaluation completes and both percents contribute nothing
	result := sb.Evaluate()
	assertMoney(t, result.Base.TotalExpenses, "800")
	assertMoney(t, result.Tweaked.TotalExpenses, "800")
	assertMoney(t, result.Deltas.EndBalance, "0")
}

func TestEvaluate_StreamPercentComposesAfterGlobal(t *testing.T) {
	// GIVEN a +10% global and a +10% stream tweak on a $100 once stream
	sb := Sandbox{
		Base: Document{
			Settings: Settings{Start: MustDate("2025-01-01"), End: MustDate("2025-01-31")},
			Streams: []RecurringStream{{
				ID: "bonus", Name: "Bonus", Direction: DirIncome,
				Frequency: FreqOnce,
				Start:     MustDate("2025-01-10"), End: MustDate("2025-01-10"),
				Base:      money("100"),
			}},
		},
		Tweaks: Tweaks{
			Global:    GlobalTweak{Percent: 10},
			PerStream: map[StreamID]*StreamTweak{"bonus": {Mode: TweakPercent, Percent: 10}},
		},
	}

	result := sb.Evaluate()

	// THEN the composition is multiplicative: 100 * 1.1 * 1.1 = 121
	assertMoney(t, result.Tweaked.TotalIncome, "121")
}

func TestEvaluate_DeltaAppliesPerOccurrence(t *testing.T) {
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	sb.Tweaks = Tweaks{
		PerStream: map[StreamID]*StreamTweak{"salary": {Mode: TweakPercent, Delta: money("50")}},
	}

	result := sb.Evaluate()

	// Six occurrences, each +50.
	assertMoney(t, result.Deltas.TotalIncome, "300")
}

func TestEvaluate_EffectiveOverridesVerbatim(t *testing.T) {
	// GIVEN an effective override and a global tweak that should not apply
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	sb.Tweaks = Tweaks{
		Global:    GlobalTweak{Percent: 50},
		PerStream: map[StreamID]*StreamTweak{"salary": {Mode: TweakEffective, Effective: money("1234.56")}},
	}

	result := sb.Evaluate()

	// THEN every occurrence is the override, untouched by the global
	assertMoney(t, result.Tweaked.TotalIncome, "7407.36")
}

func TestEvaluate_WeeklyTargetDividesByOccurrenceEstimate(t *testing.T) {
	// GIVEN a daily skip-weekends stream with a $500 weekly target
	sb := Sandbox{
		Base: Document{
			// Two full weeks: ten business days.
			Settings: Settings{Start: MustDate("2025-01-06"), End: MustDate("2025-01-19")},
			Streams: []RecurringStream{{
				ID: "wages", Name: "Wages", Direction: DirIncome,
				Frequency:    FreqDaily,
				Start:        MustDate("2025-01-01"), End: MustDate("2025-12-31"),
				SkipWeekends: true,
				Base:         money("80"),
			}},
		},
		Tweaks: Tweaks{
			PerStream: map[StreamID]*StreamTweak{"wages": {Mode: TweakWeekly, WeeklyTarget: money("500")}},
		},
	}

	result := sb.Evaluate()

	// THEN each occurrence is 500/5 = 100, ten occurrences = 1000
	assertMoney(t, result.Tweaked.TotalIncome, "1000")
}

func TestEstimatedOccurrencesPerWeek(t *testing.T) {
	cases := []struct {
		name string
		s    RecurringStream
		want float64
	}{
		{"daily", RecurringStream{Frequency: FreqDaily}, 7},
		{"daily skip weekends", RecurringStream{Frequency: FreqDaily, SkipWeekends: true}, 5},
		{"weekly two days", RecurringStream{Frequency: FreqWeekly, Weekdays: []time.Weekday{time.Monday, time.Friday}}, 2},
		{"biweekly one day", RecurringStream{Frequency: FreqBiweekly, Weekdays: []time.Weekday{time.Monday}}, 0.5},
		{"monthly", RecurringStream{Frequency: FreqMonthly}, 12.0 / 52.0},
		{"once", RecurringStream{Frequency: FreqOnce}, 0},
	}
	for _, c := range cases {
		if got := EstimatedOccurrencesPerWeek(c.s); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestReconcile_DemotesWeeklyTweakOnOnceStream(t *testing.T) {
	// GIVEN a weekly-target tweak on a once stream
	sb := sandboxWith(RecurringStream{
		ID: "bonus", Name: "Bonus", Direction: DirIncome,
		Frequency: FreqOnce,
		Start:     MustDate("2025-02-01"), End: MustDate("2025-02-01"),
		Base:      money("300"),
	})
	sb.Tweaks.PerStream = map[StreamID]*StreamTweak{
		"bonus": {Mode: TweakWeekly, WeeklyTarget: money("700")},
	}

	// WHEN reconciling
	sb.Reconcile()

	// THEN the tweak is demoted to percent and the target discarded
	t2 := sb.Tweaks.PerStream["bonus"]
	if t2.Mode != TweakPercent {
		t.Errorf("expected demotion to percent, got %s", t2.Mode)
	}
	if !t2.WeeklyTarget.IsZero() {
		t.Errorf("expected the weekly target cleared, got %s", t2.WeeklyTarget)
	}
}

func TestReconcile_BackfillsMissingTweaks(t *testing.T) {
	sb := sandboxWith(
		monthlyIncome("a", "A", 1, "100"),
		monthlyIncome("b", "B", 2, "100"),
	)
	sb.Reconcile()

	for _, id := range []StreamID{"a", "b"} {
		t2, ok := sb.Tweaks.PerStream[id]
		if !ok || t2 == nil {
			t.Fatalf("stream %s missing its default tweak", id)
		}
		if t2.Mode != TweakPercent {
			t.Errorf("stream %s: expected percent default, got %s", id, t2.Mode)
		}
	}
}

func TestEvaluate_EvalSubrange(t *testing.T) {
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	sb.Tweaks.EvalStart = MustDate("2025-03-01")
	sb.Tweaks.EvalEnd = MustDate("2025-04-30")

	result := sb.Evaluate()

	if got := len(result.Base.Calendar); got != 61 {
		t.Errorf("expected 61 rows for Mar-Apr, got %d", got)
	}
	assertMoney(t, result.Base.TotalIncome, "2000")
}

func TestEvaluate_SaleWindowsGatedByEnabled(t *testing.T) {
	base := Document{
		Settings: Settings{Start: MustDate("2025-01-06"), End: MustDate("2025-01-06")},
		OneOffs: []OneOffEntry{
			{ID: "d", Date: MustDate("2025-01-06"), Amount: money("100"), Kind: DirIncome},
		},
	}
	windows := []SaleWindow{{Start: MustDate("2025-01-01"), End: MustDate("2025-01-31"), UpliftPercent: 50}}

	// Disabled: windows present but inert.
	sb := Sandbox{Base: base, Tweaks: Tweaks{Sale: SaleConfig{Enabled: false, Windows: windows}}}
	assertMoney(t, sb.Evaluate().Tweaked.TotalIncome, "100")

	// Enabled: the uplift lands in the tweaked projection only.
	sb.Tweaks.Sale.Enabled = true
	result := sb.Evaluate()
	assertMoney(t, result.Base.TotalIncome, "100")
	assertMoney(t, result.Tweaked.TotalIncome, "150")
}

func TestLock_FreezesCurrentEffectiveAmount(t *testing.T) {
	// GIVEN a +10% tweak on a $1000 monthly stream
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	sb.Tweaks.PerStream = map[StreamID]*StreamTweak{
		"salary": {Mode: TweakPercent, Percent: 10},
	}

	// WHEN locking
	if !sb.Lock("salary") {
		t.Fatal("lock should succeed for a known stream")
	}

	// THEN the tweak became a locked effective override at 1100
	t2 := sb.Tweaks.PerStream["salary"]
	if t2.Mode != TweakEffective || !t2.Locked {
		t.Fatalf("expected a locked effective tweak, got %+v", t2)
	}
	assertMoney(t, t2.Effective, "1100")

	// AND raising the global tweak afterwards no longer moves the stream
	sb.Tweaks.Global = GlobalTweak{Percent: 50}
	assertMoney(t, sb.Evaluate().Tweaked.TotalIncome, "6600")
}

func TestLock_UnknownStreamFails(t *testing.T) {
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	if sb.Lock("ghost") {
		t.Error("lock must fail for a stream not in the base")
	}
}

func TestUnlock_ResetsToZeroedPercent(t *testing.T) {
	// GIVEN a locked stream
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	sb.Tweaks.PerStream = map[StreamID]*StreamTweak{
		"salary": {Mode: TweakPercent, Percent: 25, Delta: money("10")},
	}
	sb.Lock("salary")

	// WHEN unlocking
	if !sb.Unlock("salary") {
		t.Fatal("unlock should succeed")
	}

	// THEN the tweak is an explicit reset, not the prior percent values
	t2 := sb.Tweaks.PerStream["salary"]
	if t2.Mode != TweakPercent || t2.Locked {
		t.Errorf("expected an unlocked percent tweak, got %+v", t2)
	}
	if t2.Percent != 0 || !t2.Delta.IsZero() {
		t.Errorf("unlock must not restore prior values, got %+v", t2)
	}
}

func TestEvaluate_DoesNotMutateBase(t *testing.T) {
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	sb.Tweaks.Global = GlobalTweak{Percent: 100}

	before := ComputeProjection(sb.Base, nil).TotalIncome
	sb.Evaluate()
	after := ComputeProjection(sb.Base, nil).TotalIncome

	if !before.Equal(after) {
		t.Errorf("evaluation mutated the base document: %s vs %s", before, after)
	}
}

func TestSandbox_CloneIsIndependent(t *testing.T) {
	sb := sandboxWith(monthlyIncome("salary", "Salary", 1, "1000"))
	sb.Tweaks.PerStream = map[StreamID]*StreamTweak{
		"salary": {Mode: TweakPercent, Percent: 10},
	}

	clone := sb.Clone()
	clone.Tweaks.PerStream["salary"].Percent = 99

	if sb.Tweaks.PerStream["salary"].Percent != 10 {
		t.Error("clone shares tweak state with the original")
	}
}
