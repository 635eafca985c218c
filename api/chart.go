/*
chart.go - PNG rendering of the projected balance curve

Renders the running balance as a time-series line chart, with a dashed
zero line when the projection ever dips negative. Returns raw PNG bytes
for the /chart.png endpoint.
*/
package api

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ledgerline/cashflow-engine/engine"
)

// renderBalanceChart renders the projection's running balance as a PNG.
func renderBalanceChart(result *engine.ProjectionResult) ([]byte, error) {
	if len(result.Calendar) < 2 {
		return nil, fmt.Errorf("need at least 2 projected days, got %d", len(result.Calendar))
	}

	xValues := make([]time.Time, len(result.Calendar))
	yValues := make([]float64, len(result.Calendar))
	for i, row := range result.Calendar {
		xValues[i] = row.Date.Time()
		yValues[i] = row.Running.Float64()
	}

	balanceSeries := chart.TimeSeries{
		Name: "Running Balance",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	series := []chart.Series{balanceSeries}

	if result.NegativeDayCount > 0 {
		zeroY := make([]float64, len(xValues))
		series = append(series, chart.TimeSeries{
			Name: "Zero",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("dc2626"), // red-600
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{4.0, 4.0},
			},
			XValues: xValues,
			YValues: zeroY,
		})
	}

	graph := chart.Chart{
		Title:  "Projected Balance",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
