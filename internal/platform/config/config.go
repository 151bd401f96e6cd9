// Package config loads evaluator configuration from the environment, with
// optional .env support for local runs.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob of an evaluation run. Paths are relative to the
// working directory unless absolute.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// Remote analysis endpoint. The default points at a locally deployed
	// analysis service.
	InferenceBaseURL  string        `env:"INFERENCE_BASE_URL" envDefault:"http://127.0.0.1:5002"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"180s"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"1"`
	Concurrency       int           `env:"CONCURRENCY" envDefault:"1"`

	// Dataset and outputs.
	AnnotationsPath string   `env:"ANNOTATIONS_PATH" envDefault:"evaluation/audio/annotations.csv"`
	MediaDir        string   `env:"MEDIA_DIR" envDefault:"evaluation/audio"`
	MediaExtensions []string `env:"MEDIA_EXTENSIONS" envSeparator:"," envDefault:".wav,.m4a,.mp3"`
	PredictionsPath string   `env:"PREDICTIONS_PATH" envDefault:"evaluation/audio/predictions.csv"`
	ChartPath       string   `env:"CHART_PATH" envDefault:"evaluation/audio/metrics.png"`
	LogFilePath     string   `env:"LOG_FILE_PATH" envDefault:"evaluation/audio/eval.log"`

	// Optional nutrition annotation; disabled while the base URL is empty.
	NutritionBaseURL   string        `env:"NUTRITION_BASE_URL"`
	NutritionTimeout   time.Duration `env:"NUTRITION_TIMEOUT" envDefault:"10s"`
	NutritionCacheSize int           `env:"NUTRITION_CACHE_SIZE" envDefault:"256"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

// NutritionEnabled reports whether summary rows should carry nutrition
// annotations.
func (c *Config) NutritionEnabled() bool {
	return c.NutritionBaseURL != ""
}
