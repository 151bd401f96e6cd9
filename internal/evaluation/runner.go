// Package evaluation sequences one batch run: load annotations, call the
// analysis endpoint per sample, score against the fixed vocabulary, and
// publish the report.
package evaluation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/food-calorie-app/audio-eval/internal/annotations"
	"github.com/food-calorie-app/audio-eval/internal/inference"
	"github.com/food-calorie-app/audio-eval/internal/labels"
	"github.com/food-calorie-app/audio-eval/internal/metrics"
	"github.com/food-calorie-app/audio-eval/internal/report"
)

// InferenceClient produces a prediction for one sample. Implementations
// absorb per-sample failures into empty predictions.
type InferenceClient interface {
	Analyze(ctx context.Context, sampleID, mediaPath string) inference.PredictionRecord
}

// Publisher emits the run outputs.
type Publisher interface {
	Publish(ctx context.Context, rows []report.Row, result metrics.Result, skipped int) error
}

// Config configures a Runner.
type Config struct {
	AnnotationsPath string
	MediaDir        string
	// MediaExtensions is the probe order for resolving a sampleId to a
	// file on disk.
	MediaExtensions []string
	// Concurrency > 1 fans inference out over a bounded worker group.
	// The default of 1 keeps the run strictly sequential.
	Concurrency int
}

// Runner drives the evaluation pipeline.
type Runner struct {
	cfg       Config
	client    InferenceClient
	publisher Publisher
	logger    *zerolog.Logger
}

type sample struct {
	annotations.Record
	mediaPath string
}

// NewRunner wires the pipeline stages together.
func NewRunner(cfg Config, client InferenceClient, publisher Publisher, logger *zerolog.Logger) *Runner {
	if len(cfg.MediaExtensions) == 0 {
		cfg.MediaExtensions = []string{".wav", ".m4a", ".mp3"}
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return &Runner{
		cfg:       cfg,
		client:    client,
		publisher: publisher,
		logger:    logger,
	}
}

// Run executes one full evaluation pass. Annotation rows whose media file
// is missing are excluded from scoring entirely; they are neither a hit
// nor a miss.
func (r *Runner) Run(ctx context.Context) error {
	records, err := annotations.Load(r.cfg.AnnotationsPath, r.logger)
	if err != nil {
		return fmt.Errorf("load annotations: %w", err)
	}

	samples, skipped := r.resolveMedia(records)

	r.logger.Info().
		Int("annotations", len(records)).
		Int("samples", len(samples)).
		Int("skipped", skipped).
		Msg("starting evaluation batch")

	predictions := r.infer(ctx, samples)

	truth := make([]labels.Set, len(samples))
	predicted := make([]labels.Set, len(samples))
	rows := make([]report.Row, len(samples))

	for i, s := range samples {
		truth[i] = s.GroundTruth
		predicted[i] = predictions[i].Predicted
		rows[i] = report.Row{
			SampleID:    s.SampleID,
			GroundTruth: s.GroundTruth,
			Predicted:   predictions[i].Predicted,
			Transcript:  predictions[i].Transcript,
		}
	}

	result, err := metrics.Compute(Vocabulary(), truth, predicted)
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	return r.publisher.Publish(ctx, rows, result, skipped)
}

// resolveMedia maps each annotation row to its media file, preserving row
// order and dropping rows without a file on disk.
func (r *Runner) resolveMedia(records []annotations.Record) ([]sample, int) {
	samples := make([]sample, 0, len(records))
	skipped := 0

	for _, record := range records {
		path, ok := r.findMedia(record.SampleID)
		if !ok {
			skipped++
			r.logger.Warn().Str("sample_id", record.SampleID).Msg("media file missing, sample excluded from scoring")

			continue
		}

		samples = append(samples, sample{Record: record, mediaPath: path})
	}

	return samples, skipped
}

func (r *Runner) findMedia(sampleID string) (string, bool) {
	for _, ext := range r.cfg.MediaExtensions {
		path := filepath.Join(r.cfg.MediaDir, sampleID+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	return "", false
}

// infer collects one prediction per sample. Results land in
// index-addressed slots, so annotation order is preserved even when the
// calls fan out.
func (r *Runner) infer(ctx context.Context, samples []sample) []inference.PredictionRecord {
	predictions := make([]inference.PredictionRecord, len(samples))

	if r.cfg.Concurrency == 1 {
		for i, s := range samples {
			r.logProgress(i, len(samples), s.SampleID)
			predictions[i] = r.client.Analyze(ctx, s.SampleID, s.mediaPath)
		}

		return predictions
	}

	group := errgroup.Group{}
	group.SetLimit(r.cfg.Concurrency)

	for i, s := range samples {
		i, s := i, s
		group.Go(func() error {
			r.logProgress(i, len(samples), s.SampleID)
			predictions[i] = r.client.Analyze(ctx, s.SampleID, s.mediaPath)

			return nil
		})
	}

	// Workers never return errors; per-sample failures became empty
	// predictions inside the client.
	_ = group.Wait()

	return predictions
}

func (r *Runner) logProgress(index, total int, sampleID string) {
	r.logger.Info().
		Int("index", index+1).
		Int("total", total).
		Str("sample_id", sampleID).
		Msg("analyzing sample")
}
