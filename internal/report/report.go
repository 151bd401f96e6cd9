// Package report publishes the outcome of an evaluation run: a per-sample
// predictions table, a metrics bar chart, and a logged summary.
package report

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/food-calorie-app/audio-eval/internal/labels"
	"github.com/food-calorie-app/audio-eval/internal/metrics"
	"github.com/food-calorie-app/audio-eval/internal/nutrition"
)

// Row is one line of the predictions table.
type Row struct {
	SampleID    string
	GroundTruth labels.Set
	Predicted   labels.Set
	Transcript  string
}

// NutritionLookup annotates summary labels with nutrition facts. Optional.
type NutritionLookup interface {
	Lookup(ctx context.Context, label string) (nutrition.Info, bool)
}

// Config configures a Reporter.
type Config struct {
	PredictionsPath string
	ChartPath       string
}

// Reporter owns the run's three output side effects. They are independent:
// each is always attempted, each failure is logged on its own, and only
// losing the predictions table fails the run. A broken chart never throws
// away the numeric report.
type Reporter struct {
	cfg       Config
	nutrition NutritionLookup
	logger    *zerolog.Logger
}

// New creates a Reporter. lookup may be nil when nutrition annotation is
// not configured.
func New(cfg Config, lookup NutritionLookup, logger *zerolog.Logger) *Reporter {
	return &Reporter{
		cfg:       cfg,
		nutrition: lookup,
		logger:    logger,
	}
}

// Publish writes the predictions table, renders the chart, and logs the
// summary.
func (r *Reporter) Publish(ctx context.Context, rows []Row, result metrics.Result, skipped int) error {
	tableErr := WritePredictions(r.cfg.PredictionsPath, rows)
	if tableErr != nil {
		r.logger.Error().Err(tableErr).Str("path", r.cfg.PredictionsPath).Msg("failed to write predictions table")
	} else {
		r.logger.Info().Str("path", r.cfg.PredictionsPath).Int("rows", len(rows)).Msg("predictions table written")
	}

	if err := RenderChart(r.cfg.ChartPath, result); err != nil {
		r.logger.Error().Err(err).Str("path", r.cfg.ChartPath).Msg("failed to render metrics chart")
	} else {
		r.logger.Info().Str("path", r.cfg.ChartPath).Msg("metrics chart written")
	}

	r.logSummary(ctx, result, len(rows), skipped)

	if tableErr != nil {
		return fmt.Errorf("write predictions table: %w", tableErr)
	}

	return nil
}

func (r *Reporter) logSummary(ctx context.Context, result metrics.Result, processed, skipped int) {
	r.logger.Info().
		Int("samples", processed).
		Int("skipped", skipped).
		Str("precision", percent(result.Precision)).
		Str("recall", percent(result.Recall)).
		Str("f1", percent(result.F1)).
		Str("accuracy", percent(result.Accuracy)).
		Msg("evaluation summary")

	r.logger.Info().
		Int("tp", result.TP).
		Int("fp", result.FP).
		Int("fn", result.FN).
		Int("tn", result.TN).
		Msg("confusion counts")

	for _, class := range result.PerClass {
		event := r.logger.Info().
			Str("label", class.Label).
			Str("precision", percent(class.Precision)).
			Str("recall", percent(class.Recall)).
			Str("f1", percent(class.F1)).
			Int("tp", class.TP).
			Int("fp", class.FP).
			Int("fn", class.FN)

		if r.nutrition != nil && class.TP+class.FP > 0 {
			if info, ok := r.nutrition.Lookup(ctx, class.Label); ok {
				event = event.Float64("kcal_per_100g", info.CaloriesPer100g)
			}
		}

		event.Msg("per-class metrics")
	}
}

func percent(value float64) string {
	return fmt.Sprintf("%.1f%%", value*100)
}
