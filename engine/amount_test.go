package engine

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func money(s string) Money {
	return Money{Value: decimal.RequireFromString(s)}
}

func assertMoney(t *testing.T, got Money, want string) {
	t.Helper()
	if !got.Equal(money(want)) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestResolveAmount_BaseOnly(t *testing.T) {
	s := RecurringStream{Base: money("120.50")}
	assertMoney(t, ResolveAmount(s, MustDate("2025-05-01"), nil), "120.50")
}

func TestResolveAmount_LastStepWins(t *testing.T) {
	// GIVEN a stream with two dated step overrides
	s := RecurringStream{
		Base: money("100"),
		Steps: []AmountStep{
			{EffectiveFrom: MustDate("2025-02-01"), Amount: money("150")},
			{EffectiveFrom: MustDate("2025-04-01"), Amount: money("175")},
		},
	}
	// THEN the last step at or before the date replaces the base outright
	assertMoney(t, ResolveAmount(s, MustDate("2025-01-15"), nil), "100")
	assertMoney(t, ResolveAmount(s, MustDate("2025-02-01"), nil), "150")
	assertMoney(t, ResolveAmount(s, MustDate("2025-03-31"), nil), "150")
	assertMoney(t, ResolveAmount(s, MustDate("2025-04-02"), nil), "175")
}

func TestResolveAmount_ZeroDateStepIgnored(t *testing.T) {
	s := RecurringStream{
		Base: money("100"),
		Steps: []AmountStep{
			{Amount: money("999")}, // no effective date
		},
	}
	assertMoney(t, ResolveAmount(s, MustDate("2025-06-01"), nil), "100")
}

func TestResolveAmount_FirstOccurrenceNeverEscalated(t *testing.T) {
	s := RecurringStream{Base: money("100"), EscalatorPercent: 10}
	assertMoney(t, ResolveAmount(s, MustDate("2025-06-01"), nil), "100")
}

func TestResolveAmount_EscalatorCompoundsPerMonth(t *testing.T) {
	// GIVEN a 10% escalator and a previous fire two month boundaries back
	s := RecurringStream{Base: money("100"), EscalatorPercent: 10}
	prev := MustDate("2025-01-15")

	// THEN two elapsed months compound: 100 * 1.1^2 = 121, not 120
	assertMoney(t, ResolveAmount(s, MustDate("2025-03-15"), &prev), "121")
}

func TestResolveAmount_NonFiniteEscalatorInert(t *testing.T) {
	// GIVEN escalators configured as NaN and infinity
	prev := MustDate("2025-01-15")
	for _, pct := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		s := RecurringStream{Base: money("100"), EscalatorPercent: pct}

		// THEN the escalator contributes nothing instead of aborting
		assertMoney(t, ResolveAmount(s, MustDate("2025-03-15"), &prev), "100")
	}
}

func TestResolveAmount_EscalatorCountsMonthBoundariesNotDays(t *testing.T) {
	s := RecurringStream{Base: money("100"), EscalatorPercent: 10}

	// Jan 31 -> Feb 1: one day apart, one boundary crossed.
	prev := MustDate("2025-01-31")
	assertMoney(t, ResolveAmount(s, MustDate("2025-02-01"), &prev), "110")

	// Mar 1 -> Mar 31: thirty days apart, same month, no escalation.
	prev = MustDate("2025-03-01")
	assertMoney(t, ResolveAmount(s, MustDate("2025-03-31"), &prev), "100")
}

func TestResolveAmount_EscalatorAppliesToSteppedValue(t *testing.T) {
	s := RecurringStream{
		Base:             money("100"),
		EscalatorPercent: 10,
		Steps: []AmountStep{
			{EffectiveFrom: MustDate("2025-02-01"), Amount: money("200")},
		},
	}
	prev := MustDate("2025-02-15")
	assertMoney(t, ResolveAmount(s, MustDate("2025-03-15"), &prev), "220")
}

func TestScanOccurrences_EscalatorAnchorsOnPreviousFire(t *testing.T) {
	// GIVEN a monthly stream with a 10% escalator
	s := RecurringStream{
		Frequency:        FreqMonthly,
		Start:            MustDate("2025-01-01"),
		End:              MustDate("2025-03-31"),
		MonthlyMode:      MonthlyByDay,
		DayOfMonth:       1,
		Base:             money("100"),
		EscalatorPercent: 10,
	}
	// WHEN scanning the full window
	occ := ScanOccurrences(s, s.Window(), nil)
	// THEN the first occurrence is unescalated and each later one is
	// anchored one month past its predecessor
	if len(occ) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occ))
	}
	assertMoney(t, occ[0].Amount, "100")
	assertMoney(t, occ[1].Amount, "110")
	assertMoney(t, occ[2].Amount, "110")
}

func TestScanOccurrences_TransformSeam(t *testing.T) {
	s := RecurringStream{
		Frequency: FreqDaily,
		Start:     MustDate("2025-01-01"),
		End:       MustDate("2025-01-03"),
		Base:      money("50"),
	}
	double := func(_ RecurringStream, amount Money, _ Date) Money {
		return amount.Mul(decimal.NewFromInt(2))
	}
	occ := ScanOccurrences(s, s.Window(), double)
	if len(occ) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occ))
	}
	for _, o := range occ {
		assertMoney(t, o.Amount, "100")
	}
}
