package report

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/food-calorie-app/audio-eval/internal/metrics"
)

const (
	chartWidth    = 800
	chartHeight   = 500
	chartBarWidth = 80
	chartTitle    = "Audio food-label evaluation"
)

// RenderChart draws the aggregate metrics as a PNG bar chart at path,
// overwriting any previous file. The y axis is pinned to [0, 1] so charts
// from different runs compare directly.
func RenderChart(path string, result metrics.Result) error {
	graph := chart.BarChart{
		Title:    chartTitle,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: chartBarWidth,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: []chart.Value{
			{Label: "precision", Value: result.Precision},
			{Label: "recall", Value: result.Recall},
			{Label: "f1", Value: result.F1},
			{Label: "accuracy", Value: result.Accuracy},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}
