/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built planning documents that populate the store with
	realistic data for testing and demos. Each scenario creates one or
	more documents that demonstrate specific engine features.

AVAILABLE SCENARIOS:

	household:      Salary + rent + groceries, a one-off tax bill
	freelancer:     Irregular gig income, biweekly retainer, escalating rent
	small-business: Daily weekday revenue, payroll, sale-window sandbox

HOW SCENARIOS WORK:
 1. Build documents in Go (engine structs, not JSON)
 2. Save them through the document store (last-write-wins)
 3. Optionally fork a ready-made sandbox

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "freelancer"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios overwrite documents with the same ids. Only use in
	development/demo environments.

SEE ALSO:
  - handlers.go: Document and sandbox handlers
  - engine/stream.go: Document definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ledgerline/cashflow-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "household",
		Name:        "Household Budget",
		Description: "Monthly salary and rent, weekly groceries, a spring tax bill",
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Biweekly retainer, escalating rent, lumpy project income",
	},
	{
		ID:          "small-business",
		Name:        "Small Business",
		Description: "Weekday revenue, monthly payroll, plus a sale-window sandbox",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario populates the store with the selected demo scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ScenarioID {
	case "household":
		err = loadHouseholdScenario(ctx, h)
	case "freelancer":
		err = loadFreelancerScenario(ctx, h)
	case "small-business":
		err = loadSmallBusinessScenario(ctx, h)
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func loadHouseholdScenario(ctx context.Context, h *Handler) error {
	doc := engine.Document{
		Settings: engine.Settings{
			Start:           engine.MustDate("2025-01-01"),
			End:             engine.MustDate("2025-12-31"),
			StartingBalance: engine.ParseMoney("1500.00"),
		},
		Streams: []engine.RecurringStream{
			{
				ID: "salary", Name: "Salary", Direction: engine.DirIncome,
				Frequency:   engine.FreqMonthly,
				Start:       engine.MustDate("2025-01-01"),
				End:         engine.MustDate("2025-12-31"),
				MonthlyMode: engine.MonthlyByDay, DayOfMonth: 1,
				Base: engine.ParseMoney("3200.00"),
				Steps: []engine.AmountStep{
					// Mid-year raise.
					{EffectiveFrom: engine.MustDate("2025-07-01"), Amount: engine.ParseMoney("3400.00")},
				},
			},
			{
				ID: "rent", Name: "Rent", Direction: engine.DirExpense,
				Frequency:   engine.FreqMonthly,
				Start:       engine.MustDate("2025-01-01"),
				End:         engine.MustDate("2025-12-31"),
				MonthlyMode: engine.MonthlyByDay, DayOfMonth: 3,
				Base: engine.ParseMoney("1450.00"),
			},
			{
				ID: "groceries", Name: "Groceries", Direction: engine.DirExpense,
				Frequency: engine.FreqWeekly,
				Start:     engine.MustDate("2025-01-01"),
				End:       engine.MustDate("2025-12-31"),
				Weekdays:  []time.Weekday{time.Saturday},
				Base:      engine.ParseMoney("180.00"),
			},
		},
		OneOffs: []engine.OneOffEntry{
			{ID: "tax", Date: engine.MustDate("2025-04-15"),
				Amount: engine.ParseMoney("820.55"), Kind: engine.DirExpense, Label: "tax bill"},
		},
	}

	return h.Store.SaveDocument(ctx, "household", "Household Budget", doc)
}

func loadFreelancerScenario(ctx context.Context, h *Handler) error {
	doc := engine.Document{
		Settings: engine.Settings{
			Start:           engine.MustDate("2025-01-01"),
			End:             engine.MustDate("2025-06-30"),
			StartingBalance: engine.ParseMoney("4200.00"),
		},
		Streams: []engine.RecurringStream{
			{
				ID: "retainer", Name: "Client retainer", Direction: engine.DirIncome,
				Frequency: engine.FreqBiweekly,
				Start:     engine.MustDate("2025-01-03"),
				End:       engine.MustDate("2025-06-30"),
				Weekdays:  []time.Weekday{time.Friday},
				Base:      engine.ParseMoney("1100.00"),
			},
			{
				ID: "rent", Name: "Studio rent", Direction: engine.DirExpense,
				Frequency:   engine.FreqMonthly,
				Start:       engine.MustDate("2025-01-01"),
				End:         engine.MustDate("2025-12-31"),
				MonthlyMode: engine.MonthlyByDay, DayOfMonth: 1,
				Base:             engine.ParseMoney("950.00"),
				EscalatorPercent: 0.5,
			},
			{
				ID: "subscriptions", Name: "Software subscriptions", Direction: engine.DirExpense,
				Frequency:   engine.FreqMonthly,
				Start:       engine.MustDate("2025-01-01"),
				End:         engine.MustDate("2025-12-31"),
				MonthlyMode: engine.MonthlyByNthWeekday,
				Nth:         &engine.NthWeekdaySpec{Weekday: time.Friday, Last: true},
				Base:        engine.ParseMoney("86.00"),
			},
		},
		OneOffs: []engine.OneOffEntry{
			{ID: "project-a", Date: engine.MustDate("2025-02-20"),
				Amount: engine.ParseMoney("3500.00"), Kind: engine.DirIncome, Label: "project A milestone"},
			{ID: "project-b", Date: engine.MustDate("2025-05-12"),
				Amount: engine.ParseMoney("2800.00"), Kind: engine.DirIncome, Label: "project B final"},
			{ID: "laptop", Date: engine.MustDate("2025-03-10"),
				Amount: engine.ParseMoney("2100.00"), Kind: engine.DirExpense, Label: "laptop replacement"},
		},
		Adjustments: []engine.Adjustment{
			{Date: engine.MustDate("2025-01-15"), Delta: engine.ParseMoney("-45.00"), Note: "bank fees"},
		},
	}

	return h.Store.SaveDocument(ctx, "freelancer", "Freelancer", doc)
}

func loadSmallBusinessScenario(ctx context.Context, h *Handler) error {
	doc := engine.Document{
		Settings: engine.Settings{
			Start:           engine.MustDate("2025-01-01"),
			End:             engine.MustDate("2025-03-31"),
			StartingBalance: engine.ParseMoney("12000.00"),
		},
		Streams: []engine.RecurringStream{
			{
				ID: "revenue", Name: "Shop revenue", Direction: engine.DirIncome,
				Frequency:    engine.FreqDaily,
				Start:        engine.MustDate("2025-01-01"),
				End:          engine.MustDate("2025-12-31"),
				SkipWeekends: true,
				Base:         engine.ParseMoney("640.00"),
			},
			{
				ID: "payroll", Name: "Payroll", Direction: engine.DirExpense,
				Frequency:   engine.FreqMonthly,
				Start:       engine.MustDate("2025-01-01"),
				End:         engine.MustDate("2025-12-31"),
				MonthlyMode: engine.MonthlyByDay, DayOfMonth: 28,
				Base: engine.ParseMoney("9800.00"),
			},
			{
				ID: "lease", Name: "Premises lease", Direction: engine.DirExpense,
				Frequency:   engine.FreqMonthly,
				Start:       engine.MustDate("2025-01-01"),
				End:         engine.MustDate("2025-12-31"),
				MonthlyMode: engine.MonthlyByDay, DayOfMonth: 1,
				Base: engine.ParseMoney("2400.00"),
			},
		},
	}

	if err := h.Store.SaveDocument(ctx, "small-business", "Small Business", doc); err != nil {
		return err
	}

	// Ready-made sandbox: a two-week 25% sale on business days.
	sb := engine.Sandbox{Base: doc}
	sb.Tweaks.Sale = engine.SaleConfig{
		Enabled: true,
		Windows: []engine.SaleWindow{{
			Start:            engine.MustDate("2025-02-03"),
			End:              engine.MustDate("2025-02-14"),
			UpliftPercent:    25,
			BusinessDaysOnly: true,
		}},
	}
	sb.Reconcile()
	return h.Store.SaveSandbox(ctx, "small-business-sale", "small-business", sb)
}
