/*
sandbox.go - JSON conversion for what-if sandboxes

The sandbox schema embeds the full base document plus the tweak tree, so
a stored sandbox is self-contained: loading it never requires re-joining
against the document table it was forked from.
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/ledgerline/cashflow-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SandboxJSON is the JSON representation of a what-if sandbox.
type SandboxJSON struct {
	Base   DocumentJSON `json:"base"`
	Tweaks TweaksJSON   `json:"tweaks"`
}

type TweaksJSON struct {
	Global    GlobalTweakJSON            `json:"global"`
	PerStream map[string]StreamTweakJSON `json:"per_stream,omitempty"`
	Sale      SaleConfigJSON             `json:"sale"`
	EvalStart string                     `json:"eval_start,omitempty"`
	EvalEnd   string                     `json:"eval_end,omitempty"`
}

type GlobalTweakJSON struct {
	Percent float64 `json:"percent,omitempty"`
	Delta   string  `json:"delta,omitempty"`
}

type StreamTweakJSON struct {
	Mode         string  `json:"mode"` // percent, effective, weekly
	Percent      float64 `json:"percent,omitempty"`
	Delta        string  `json:"delta,omitempty"`
	Effective    string  `json:"effective,omitempty"`
	WeeklyTarget string  `json:"weekly_target,omitempty"`
	Locked       bool    `json:"locked,omitempty"`
}

type SaleConfigJSON struct {
	Enabled bool             `json:"enabled"`
	Windows []SaleWindowJSON `json:"windows,omitempty"`
}

type SaleWindowJSON struct {
	Start            string  `json:"start"`
	End              string  `json:"end"`
	UpliftPercent    float64 `json:"uplift_percent,omitempty"`
	FlatTopUp        string  `json:"flat_top_up,omitempty"`
	BusinessDaysOnly bool    `json:"business_days_only,omitempty"`
}

// =============================================================================
// SANDBOX CONVERSION
// =============================================================================

// ParseSandbox parses a JSON string into an engine.Sandbox. The embedded
// base document goes through the same lenient repair as ParseDocument.
func (f *DocumentFactory) ParseSandbox(jsonStr string) (engine.Sandbox, []engine.Issue, error) {
	var sj SandboxJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return engine.Sandbox{}, nil, fmt.Errorf("failed to parse sandbox JSON: %w", err)
	}
	return f.SandboxFromJSON(sj)
}

// SandboxFromJSON converts SandboxJSON to an engine.Sandbox.
func (f *DocumentFactory) SandboxFromJSON(sj SandboxJSON) (engine.Sandbox, []engine.Issue, error) {
	base, issues, err := f.FromJSON(sj.Base)
	if err != nil {
		return engine.Sandbox{}, issues, err
	}

	sb := engine.Sandbox{
		Base: base,
		Tweaks: engine.Tweaks{
			Global: engine.GlobalTweak{
				Percent: sj.Tweaks.Global.Percent,
				Delta:   engine.ParseMoney(sj.Tweaks.Global.Delta),
			},
			Sale: engine.SaleConfig{
				Enabled: sj.Tweaks.Sale.Enabled,
			},
			EvalStart: engine.MustDate(sj.Tweaks.EvalStart),
			EvalEnd:   engine.MustDate(sj.Tweaks.EvalEnd),
		},
	}

	if len(sj.Tweaks.PerStream) > 0 {
		sb.Tweaks.PerStream = make(map[engine.StreamID]*engine.StreamTweak, len(sj.Tweaks.PerStream))
		for id, tj := range sj.Tweaks.PerStream {
			sb.Tweaks.PerStream[engine.StreamID(id)] = tweakFromJSON(tj)
		}
	}
	for _, wj := range sj.Tweaks.Sale.Windows {
		sb.Tweaks.Sale.Windows = append(sb.Tweaks.Sale.Windows, engine.SaleWindow{
			Start:            engine.MustDate(wj.Start),
			End:              engine.MustDate(wj.End),
			UpliftPercent:    wj.UpliftPercent,
			FlatTopUp:        engine.ParseMoney(wj.FlatTopUp),
			BusinessDaysOnly: wj.BusinessDaysOnly,
		})
	}

	sb.Reconcile()
	return sb, issues, nil
}

// SandboxToJSON converts an engine.Sandbox to its JSON schema form.
func (f *DocumentFactory) SandboxToJSON(sb engine.Sandbox) SandboxJSON {
	sj := SandboxJSON{
		Base: f.ToJSON(sb.Base),
		Tweaks: TweaksJSON{
			Global: GlobalTweakJSON{
				Percent: sb.Tweaks.Global.Percent,
				Delta:   moneyField(sb.Tweaks.Global.Delta),
			},
			Sale: SaleConfigJSON{Enabled: sb.Tweaks.Sale.Enabled},
		},
	}
	if !sb.Tweaks.EvalStart.IsZero() {
		sj.Tweaks.EvalStart = sb.Tweaks.EvalStart.String()
	}
	if !sb.Tweaks.EvalEnd.IsZero() {
		sj.Tweaks.EvalEnd = sb.Tweaks.EvalEnd.String()
	}
	if len(sb.Tweaks.PerStream) > 0 {
		sj.Tweaks.PerStream = make(map[string]StreamTweakJSON, len(sb.Tweaks.PerStream))
		for id, t := range sb.Tweaks.PerStream {
			if t == nil {
				continue
			}
			sj.Tweaks.PerStream[string(id)] = tweakToJSON(*t)
		}
	}
	for _, w := range sb.Tweaks.Sale.Windows {
		sj.Tweaks.Sale.Windows = append(sj.Tweaks.Sale.Windows, SaleWindowJSON{
			Start:            w.Start.String(),
			End:              w.End.String(),
			UpliftPercent:    w.UpliftPercent,
			FlatTopUp:        moneyField(w.FlatTopUp),
			BusinessDaysOnly: w.BusinessDaysOnly,
		})
	}
	return sj
}

// EncodeSandbox renders the sandbox as its canonical JSON body.
func (f *DocumentFactory) EncodeSandbox(sb engine.Sandbox) ([]byte, error) {
	return json.Marshal(f.SandboxToJSON(sb))
}

func tweakFromJSON(tj StreamTweakJSON) *engine.StreamTweak {
	mode := engine.TweakMode(tj.Mode)
	switch mode {
	case engine.TweakPercent, engine.TweakEffective, engine.TweakWeekly:
	default:
		mode = engine.TweakPercent
	}
	return &engine.StreamTweak{
		Mode:         mode,
		Percent:      tj.Percent,
		Delta:        engine.ParseMoney(tj.Delta),
		Effective:    engine.ParseMoney(tj.Effective),
		WeeklyTarget: engine.ParseMoney(tj.WeeklyTarget),
		Locked:       tj.Locked,
	}
}

func tweakToJSON(t engine.StreamTweak) StreamTweakJSON {
	return StreamTweakJSON{
		Mode:         string(t.Mode),
		Percent:      t.Percent,
		Delta:        moneyField(t.Delta),
		Effective:    moneyField(t.Effective),
		WeeklyTarget: moneyField(t.WeeklyTarget),
		Locked:       t.Locked,
	}
}

// moneyField renders zero money as the empty string so omitempty elides
// fields that were never set.
func moneyField(m engine.Money) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}
