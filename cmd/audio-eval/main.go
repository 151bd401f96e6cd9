// Command audio-eval runs one batch evaluation of the audio food-analysis
// endpoint against a labeled annotation set, producing a predictions CSV,
// a metrics chart, and a logged summary.
package main

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/food-calorie-app/audio-eval/internal/evaluation"
	"github.com/food-calorie-app/audio-eval/internal/inference"
	"github.com/food-calorie-app/audio-eval/internal/nutrition"
	"github.com/food-calorie-app/audio-eval/internal/platform/config"
	"github.com/food-calorie-app/audio-eval/internal/platform/logging"
	"github.com/food-calorie-app/audio-eval/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	runID := uuid.NewString()

	logger, err := logging.New(cfg.AppEnv, cfg.LogFilePath, runID)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	client := inference.NewClient(inference.Config{
		BaseURL:           cfg.InferenceBaseURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, &logger)

	var lookup report.NutritionLookup

	if cfg.NutritionEnabled() {
		nutritionClient, err := nutrition.NewClient(nutrition.Config{
			BaseURL:   cfg.NutritionBaseURL,
			Timeout:   cfg.NutritionTimeout,
			CacheSize: cfg.NutritionCacheSize,
		}, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to set up nutrition client")
		}

		lookup = nutritionClient
	}

	reporter := report.New(report.Config{
		PredictionsPath: cfg.PredictionsPath,
		ChartPath:       cfg.ChartPath,
	}, lookup, &logger)

	runner := evaluation.NewRunner(evaluation.Config{
		AnnotationsPath: cfg.AnnotationsPath,
		MediaDir:        cfg.MediaDir,
		MediaExtensions: cfg.MediaExtensions,
		Concurrency:     cfg.Concurrency,
	}, client, reporter, &logger)

	logger.Info().
		Str("endpoint", cfg.InferenceBaseURL).
		Str("annotations", cfg.AnnotationsPath).
		Int("concurrency", cfg.Concurrency).
		Msg("starting audio evaluation")

	if err := runner.Run(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("evaluation failed")
	}

	logger.Info().Msg("evaluation complete")
}
