package engine

import (
	"errors"
	"testing"
	"time"
)

func TestValidateDocument_RepairsInvertedSettingsRange(t *testing.T) {
	doc := Document{Settings: Settings{
		Start: MustDate("2025-06-01"),
		End:   MustDate("2025-01-01"),
	}}

	repaired, issues, err := ValidateDocument(doc, Lenient)
	if err != nil {
		t.Fatalf("lenient validation must not error: %v", err)
	}
	if !repaired.Settings.End.Equal(repaired.Settings.Start) {
		t.Errorf("inverted range should collapse to start, got %s", repaired.Settings.End)
	}
	if len(issues) != 1 || issues[0].Code != "inverted_range" {
		t.Errorf("expected one inverted_range issue, got %v", issues)
	}
}

func TestValidateDocument_DropsStreamsMissingConfig(t *testing.T) {
	doc := Document{
		Settings: Settings{Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
		Streams: []RecurringStream{
			{ID: "no-start", Frequency: FreqDaily},
			{ID: "no-weekdays", Frequency: FreqWeekly, Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
			{ID: "bad-day", Frequency: FreqMonthly, MonthlyMode: MonthlyByDay, DayOfMonth: 42, Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
			{ID: "bad-nth", Frequency: FreqMonthly, MonthlyMode: MonthlyByNthWeekday, Nth: &NthWeekdaySpec{Ordinal: 9}, Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
			{ID: "mystery", Frequency: Frequency("fortnightly-ish"), Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
			{ID: "fine", Frequency: FreqDaily, Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
		},
	}

	repaired, issues, err := ValidateDocument(doc, Lenient)
	if err != nil {
		t.Fatalf("lenient validation must not error: %v", err)
	}
	if len(repaired.Streams) != 1 || repaired.Streams[0].ID != "fine" {
		t.Fatalf("expected only the valid stream to survive, got %d", len(repaired.Streams))
	}
	if len(issues) != 5 {
		t.Errorf("expected 5 issues, got %d: %v", len(issues), issues)
	}
}

func TestValidateDocument_RepairsStreamEndBeforeStart(t *testing.T) {
	doc := Document{
		Settings: Settings{Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
		Streams: []RecurringStream{{
			ID: "s", Frequency: FreqDaily,
			Start: MustDate("2025-06-01"), End: MustDate("2025-05-01"),
		}},
	}

	repaired, _, _ := ValidateDocument(doc, Lenient)
	if len(repaired.Streams) != 1 {
		t.Fatal("repairable stream should be kept")
	}
	if !repaired.Streams[0].End.Equal(repaired.Streams[0].Start) {
		t.Errorf("stream end should be forced to start, got %s", repaired.Streams[0].End)
	}
}

func TestValidateDocument_ReSortsSteps(t *testing.T) {
	doc := Document{
		Settings: Settings{Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
		Streams: []RecurringStream{{
			ID: "s", Frequency: FreqDaily,
			Start: MustDate("2025-01-01"), End: MustDate("2025-12-31"),
			Steps: []AmountStep{
				{EffectiveFrom: MustDate("2025-06-01"), Amount: money("300")},
				{EffectiveFrom: MustDate("2025-02-01"), Amount: money("200")},
			},
		}},
	}

	repaired, issues, _ := ValidateDocument(doc, Lenient)
	steps := repaired.Streams[0].Steps
	if !steps[0].EffectiveFrom.Before(steps[1].EffectiveFrom) {
		t.Errorf("steps not re-sorted: %v, %v", steps[0].EffectiveFrom, steps[1].EffectiveFrom)
	}
	found := false
	for _, is := range issues {
		if is.Code == "unsorted_steps" {
			found = true
		}
	}
	if !found {
		t.Error("expected an unsorted_steps issue")
	}
}

func TestValidateDocument_DropsUndatedEntries(t *testing.T) {
	doc := Document{
		Settings: Settings{Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
		OneOffs: []OneOffEntry{
			{ID: "ok", Date: MustDate("2025-03-01"), Amount: money("10"), Kind: DirIncome},
			{ID: "bad", Amount: money("10"), Kind: DirIncome},
		},
		Adjustments: []Adjustment{
			{Date: MustDate("2025-03-02"), Delta: money("5")},
			{Delta: money("5")},
		},
	}

	repaired, issues, _ := ValidateDocument(doc, Lenient)
	if len(repaired.OneOffs) != 1 || len(repaired.Adjustments) != 1 {
		t.Errorf("undated entries should be dropped, got %d one-offs, %d adjustments",
			len(repaired.OneOffs), len(repaired.Adjustments))
	}
	if len(issues) != 2 {
		t.Errorf("expected 2 issues, got %d", len(issues))
	}
}

func TestValidateDocument_StrictReturnsValidationError(t *testing.T) {
	doc := Document{
		Settings: Settings{Start: MustDate("2025-06-01"), End: MustDate("2025-01-01")},
	}

	_, issues, err := ValidateDocument(doc, Strict)
	if err == nil {
		t.Fatal("strict validation should error on issues")
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("error should unwrap to ErrValidationFailed, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Issues) != len(issues) {
		t.Errorf("error should carry the same issues: %d vs %d", len(verr.Issues), len(issues))
	}
}

func TestValidateDocument_StrictCleanDocumentPasses(t *testing.T) {
	doc := Document{
		Settings: Settings{Start: MustDate("2025-01-01"), End: MustDate("2025-12-31")},
		Streams: []RecurringStream{{
			ID: "s", Frequency: FreqWeekly,
			Start:    MustDate("2025-01-01"), End: MustDate("2025-12-31"),
			Weekdays: []time.Weekday{time.Monday},
		}},
	}

	_, issues, err := ValidateDocument(doc, Strict)
	if err != nil {
		t.Fatalf("clean document should pass strict validation: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestValidateDocument_DoesNotMutateInput(t *testing.T) {
	doc := Document{
		Settings: Settings{Start: MustDate("2025-06-01"), End: MustDate("2025-01-01")},
	}
	ValidateDocument(doc, Lenient)
	if !doc.Settings.End.Equal(MustDate("2025-01-01")) {
		t.Error("validation mutated the caller's document")
	}
}
