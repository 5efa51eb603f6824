package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/simfolio/simfolio/internal/models"
)

// renderWeightsChart renders a PNG bar chart of position weights plus the
// cash share. Unpriced positions carry no weight and are skipped.
func renderWeightsChart(snapshot *models.EvaluationSnapshot) ([]byte, error) {
	var bars []chart.Value
	for i := range snapshot.Positions {
		p := &snapshot.Positions[i]
		if !p.Priced() || p.WeightPct == nil {
			continue
		}
		bars = append(bars, chart.Value{
			Label: p.Code,
			Value: *p.WeightPct,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("2563eb"),
			},
		})
	}
	bars = append(bars, chart.Value{
		Label: "Cash",
		Value: snapshot.CashPct,
		Style: chart.Style{
			FillColor:   drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeColor: drawing.ColorFromHex("9ca3af"),
		},
	})

	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least one priced position to chart, got none")
	}

	graph := chart.BarChart{
		Title:  "Position Weights",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth: 60,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
