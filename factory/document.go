/*
Package factory provides JSON to Go document conversion.

PURPOSE:
  Converts JSON planning documents into engine.Document values and back.
  This is the single wire/storage schema: the HTTP API, the SQLite store
  and the demo scenarios all go through this package, so the engine
  itself never sees JSON.

JSON SCHEMA:
  {
    "settings": {
      "start": "2025-01-01",
      "end": "2025-06-30",
      "starting_balance": "1500.00"
    },
    "streams": [
      {
        "id": "salary",
        "name": "Salary",
        "direction": "income",
        "frequency": "monthly",
        "start": "2025-01-01",
        "end": "2025-12-31",
        "base": "2500.00",
        "monthly_mode": "day",
        "day_of_month": 1,
        "escalator_percent": 2,
        "steps": [{"effective_from": "2025-04-01", "amount": "2600.00"}]
      }
    ],
    "one_offs": [
      {"id": "tax", "date": "2025-04-15", "amount": "820.55", "kind": "expense", "label": "tax bill"}
    ],
    "adjustments": [
      {"date": "2025-02-10", "delta": "-75.25", "note": "bank fee"}
    ]
  }

CONVENTIONS:
  - Dates are "YYYY-MM-DD" strings; unparsable dates become the zero
    date and fall to validation, which drops or repairs the entry.
  - Money travels as decimal strings, never floats. Unparsable amounts
    contribute zero.
  - Weekdays are lowercase English names ("monday").

KEY FEATURES:
  - Lenient by default: parsing runs the engine's lenient validation
    pass and reports the repairs it made
  - Symmetric: EncodeDocument(ParseDocument(x)) preserves meaning
  - Covers sandboxes too, tweaks and sale windows included

SEE ALSO:
  - engine/stream.go: Document type definitions
  - engine/validate.go: The validation pass parsing delegates to
  - store/sqlite: Persists these JSON bodies verbatim
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ledgerline/cashflow-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// DocumentJSON is the JSON representation of a planning document.
type DocumentJSON struct {
	Settings    SettingsJSON     `json:"settings"`
	Streams     []StreamJSON     `json:"streams,omitempty"`
	OneOffs     []OneOffJSON     `json:"one_offs,omitempty"`
	Adjustments []AdjustmentJSON `json:"adjustments,omitempty"`
}

type SettingsJSON struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	StartingBalance string `json:"starting_balance,omitempty"`
}

// StreamJSON is the JSON representation of a recurring stream. Only the
// fields belonging to the stream's frequency are meaningful.
type StreamJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Direction string `json:"direction"` // income, expense
	Frequency string `json:"frequency"` // once, daily, weekly, biweekly, monthly

	Start string `json:"start"`
	End   string `json:"end,omitempty"`

	Base             string     `json:"base"`
	Steps            []StepJSON `json:"steps,omitempty"`
	EscalatorPercent float64    `json:"escalator_percent,omitempty"`

	SkipWeekends bool     `json:"skip_weekends,omitempty"` // daily
	Weekdays     []string `json:"weekdays,omitempty"`      // weekly, biweekly

	MonthlyMode string   `json:"monthly_mode,omitempty"` // day, nth_weekday
	DayOfMonth  int      `json:"day_of_month,omitempty"`
	Nth         *NthJSON `json:"nth,omitempty"`
}

// StepJSON is a dated absolute amount override.
type StepJSON struct {
	EffectiveFrom string `json:"effective_from"`
	Amount        string `json:"amount"`
}

// NthJSON configures "the Nth <weekday> of the month".
type NthJSON struct {
	Weekday string `json:"weekday"`
	Ordinal int    `json:"ordinal,omitempty"` // 1-5
	Last    bool   `json:"last,omitempty"`
}

type OneOffJSON struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Kind   string `json:"kind"` // income, expense
	Label  string `json:"label,omitempty"`
}

type AdjustmentJSON struct {
	Date  string `json:"date"`
	Delta string `json:"delta"` // signed
	Note  string `json:"note,omitempty"`
}

// =============================================================================
// DOCUMENT FACTORY
// =============================================================================

// DocumentFactory converts JSON documents to engine structs and back.
type DocumentFactory struct{}

// NewDocumentFactory creates a new document factory.
func NewDocumentFactory() *DocumentFactory {
	return &DocumentFactory{}
}

// ParseDocument parses a JSON string into a repaired engine.Document.
// Parsing is lenient: malformed entries are dropped or repaired and the
// repairs reported as issues, never as an error.
func (f *DocumentFactory) ParseDocument(jsonStr string) (engine.Document, []engine.Issue, error) {
	var dj DocumentJSON
	if err := json.Unmarshal([]byte(jsonStr), &dj); err != nil {
		return engine.Document{}, nil, fmt.Errorf("failed to parse document JSON: %w", err)
	}
	return f.FromJSON(dj)
}

// FromJSON converts DocumentJSON to a repaired engine.Document.
func (f *DocumentFactory) FromJSON(dj DocumentJSON) (engine.Document, []engine.Issue, error) {
	doc := engine.Document{
		Settings: engine.Settings{
			Start:           engine.MustDate(dj.Settings.Start),
			End:             engine.MustDate(dj.Settings.End),
			StartingBalance: engine.ParseMoney(dj.Settings.StartingBalance),
		},
	}

	for _, sj := range dj.Streams {
		doc.Streams = append(doc.Streams, streamFromJSON(sj))
	}
	for _, oj := range dj.OneOffs {
		doc.OneOffs = append(doc.OneOffs, engine.OneOffEntry{
			ID:     engine.EntryID(oj.ID),
			Date:   engine.MustDate(oj.Date),
			Amount: engine.ParseMoney(oj.Amount),
			Kind:   parseDirection(oj.Kind),
			Label:  oj.Label,
		})
	}
	for _, aj := range dj.Adjustments {
		doc.Adjustments = append(doc.Adjustments, engine.Adjustment{
			Date:  engine.MustDate(aj.Date),
			Delta: engine.ParseMoney(aj.Delta),
			Note:  aj.Note,
		})
	}

	repaired, issues, err := engine.ValidateDocument(doc, engine.Lenient)
	if err != nil {
		return engine.Document{}, issues, err
	}
	return repaired, issues, nil
}

// ToJSON converts an engine.Document to its JSON schema form.
func (f *DocumentFactory) ToJSON(doc engine.Document) DocumentJSON {
	dj := DocumentJSON{
		Settings: SettingsJSON{
			Start:           doc.Settings.Start.String(),
			End:             doc.Settings.End.String(),
			StartingBalance: doc.Settings.StartingBalance.String(),
		},
	}
	for _, s := range doc.Streams {
		dj.Streams = append(dj.Streams, streamToJSON(s))
	}
	for _, e := range doc.OneOffs {
		dj.OneOffs = append(dj.OneOffs, OneOffJSON{
			ID:     string(e.ID),
			Date:   e.Date.String(),
			Amount: e.Amount.String(),
			Kind:   string(e.Kind),
			Label:  e.Label,
		})
	}
	for _, a := range doc.Adjustments {
		dj.Adjustments = append(dj.Adjustments, AdjustmentJSON{
			Date:  a.Date.String(),
			Delta: a.Delta.String(),
			Note:  a.Note,
		})
	}
	return dj
}

// EncodeDocument renders the document as its canonical JSON body.
func (f *DocumentFactory) EncodeDocument(doc engine.Document) ([]byte, error) {
	return json.Marshal(f.ToJSON(doc))
}

// =============================================================================
// STREAM CONVERSION
// =============================================================================

func streamFromJSON(sj StreamJSON) engine.RecurringStream {
	s := engine.RecurringStream{
		ID:               engine.StreamID(sj.ID),
		Name:             sj.Name,
		Direction:        parseDirection(sj.Direction),
		Frequency:        engine.Frequency(sj.Frequency),
		Start:            engine.MustDate(sj.Start),
		End:              engine.MustDate(sj.End),
		Base:             engine.ParseMoney(sj.Base),
		EscalatorPercent: sj.EscalatorPercent,
		SkipWeekends:     sj.SkipWeekends,
		MonthlyMode:      engine.MonthlyMode(sj.MonthlyMode),
		DayOfMonth:       sj.DayOfMonth,
	}
	for _, w := range sj.Weekdays {
		if wd, ok := parseWeekday(w); ok {
			s.Weekdays = append(s.Weekdays, wd)
		}
	}
	for _, st := range sj.Steps {
		s.Steps = append(s.Steps, engine.AmountStep{
			EffectiveFrom: engine.MustDate(st.EffectiveFrom),
			Amount:        engine.ParseMoney(st.Amount),
		})
	}
	if sj.Nth != nil {
		nth := engine.NthWeekdaySpec{Ordinal: sj.Nth.Ordinal, Last: sj.Nth.Last}
		if wd, ok := parseWeekday(sj.Nth.Weekday); ok {
			nth.Weekday = wd
		}
		s.Nth = &nth
	}
	return s
}

func streamToJSON(s engine.RecurringStream) StreamJSON {
	sj := StreamJSON{
		ID:               string(s.ID),
		Name:             s.Name,
		Direction:        string(s.Direction),
		Frequency:        string(s.Frequency),
		Start:            s.Start.String(),
		End:              s.End.String(),
		Base:             s.Base.String(),
		EscalatorPercent: s.EscalatorPercent,
		SkipWeekends:     s.SkipWeekends,
		MonthlyMode:      string(s.MonthlyMode),
		DayOfMonth:       s.DayOfMonth,
	}
	for _, wd := range s.Weekdays {
		sj.Weekdays = append(sj.Weekdays, weekdayName(wd))
	}
	for _, st := range s.Steps {
		sj.Steps = append(sj.Steps, StepJSON{
			EffectiveFrom: st.EffectiveFrom.String(),
			Amount:        st.Amount.String(),
		})
	}
	if s.Nth != nil {
		sj.Nth = &NthJSON{
			Weekday: weekdayName(s.Nth.Weekday),
			Ordinal: s.Nth.Ordinal,
			Last:    s.Nth.Last,
		}
	}
	return sj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDirection(s string) engine.Direction {
	if s == "expense" {
		return engine.DirExpense
	}
	return engine.DirIncome
}

var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdaysByName[s]
	return wd, ok
}

func weekdayName(wd time.Weekday) string {
	switch wd {
	case time.Sunday:
		return "sunday"
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	default:
		return "saturday"
	}
}
