package evaluation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/food-calorie-app/audio-eval/internal/inference"
	"github.com/food-calorie-app/audio-eval/internal/labels"
	"github.com/food-calorie-app/audio-eval/internal/metrics"
	"github.com/food-calorie-app/audio-eval/internal/report"
)

type fakeClient struct {
	mu        sync.Mutex
	analyzed  []string
	responses map[string]inference.PredictionRecord
	delay     time.Duration
}

func (f *fakeClient) Analyze(_ context.Context, sampleID, _ string) inference.PredictionRecord {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.analyzed = append(f.analyzed, sampleID)
	f.mu.Unlock()

	if rec, ok := f.responses[sampleID]; ok {
		return rec
	}

	return inference.PredictionRecord{SampleID: sampleID, Predicted: labels.Set{}}
}

type fakePublisher struct {
	rows    []report.Row
	result  metrics.Result
	skipped int
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, rows []report.Row, result metrics.Result, skipped int) error {
	f.rows = rows
	f.result = result
	f.skipped = skipped

	return f.err
}

func setupDataset(t *testing.T, sampleIDs []string, withMedia map[string]bool) (annotationsPath, mediaDir string) {
	t.Helper()

	dir := t.TempDir()
	mediaDir = filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(mediaDir, 0o755))

	content := "sampleId,groundTruth\n"
	for _, id := range sampleIDs {
		content += fmt.Sprintf("%s,apple\n", id)

		if withMedia[id] {
			require.NoError(t, os.WriteFile(filepath.Join(mediaDir, id+".wav"), []byte("wav"), 0o644))
		}
	}

	annotationsPath = filepath.Join(dir, "annotations.csv")
	require.NoError(t, os.WriteFile(annotationsPath, []byte(content), 0o644))

	return annotationsPath, mediaDir
}

func newTestRunner(cfg Config, client InferenceClient, publisher Publisher) *Runner {
	logger := zerolog.Nop()

	return NewRunner(cfg, client, publisher, &logger)
}

func TestRun_MissingMediaExcluded(t *testing.T) {
	annotationsPath, mediaDir := setupDataset(t,
		[]string{"audio_1", "audio_2", "audio_3"},
		map[string]bool{"audio_1": true, "audio_3": true})

	client := &fakeClient{responses: map[string]inference.PredictionRecord{
		"audio_1": {SampleID: "audio_1", Transcript: "an apple", Predicted: labels.NewSet("apple")},
		"audio_3": {SampleID: "audio_3", Predicted: labels.Set{}},
	}}
	publisher := &fakePublisher{}

	runner := newTestRunner(Config{
		AnnotationsPath: annotationsPath,
		MediaDir:        mediaDir,
	}, client, publisher)

	require.NoError(t, runner.Run(context.Background()))

	// Row 2 had no media file: exactly two rows, in annotation order.
	require.Len(t, publisher.rows, 2)
	require.Equal(t, "audio_1", publisher.rows[0].SampleID)
	require.Equal(t, "audio_3", publisher.rows[1].SampleID)
	require.Equal(t, 1, publisher.skipped)
	require.ElementsMatch(t, []string{"audio_1", "audio_3"}, client.analyzed)

	// Metrics were computed over exactly the two scored pairs.
	require.Equal(t, 1, publisher.result.TP)
	require.Equal(t, 1, publisher.result.FN)
	require.Zero(t, publisher.result.FP)
}

func TestRun_SequentialOrder(t *testing.T) {
	ids := []string{"audio_1", "audio_2", "audio_3", "audio_4"}
	media := map[string]bool{}

	for _, id := range ids {
		media[id] = true
	}

	annotationsPath, mediaDir := setupDataset(t, ids, media)

	client := &fakeClient{}
	publisher := &fakePublisher{}

	runner := newTestRunner(Config{
		AnnotationsPath: annotationsPath,
		MediaDir:        mediaDir,
		Concurrency:     1,
	}, client, publisher)

	require.NoError(t, runner.Run(context.Background()))
	require.Equal(t, ids, client.analyzed)
}

func TestRun_ConcurrentPreservesRowOrder(t *testing.T) {
	ids := []string{"audio_1", "audio_2", "audio_3", "audio_4", "audio_5"}
	media := map[string]bool{}

	for _, id := range ids {
		media[id] = true
	}

	annotationsPath, mediaDir := setupDataset(t, ids, media)

	responses := map[string]inference.PredictionRecord{}
	for _, id := range ids {
		responses[id] = inference.PredictionRecord{
			SampleID:   id,
			Transcript: "transcript for " + id,
			Predicted:  labels.NewSet("apple"),
		}
	}

	client := &fakeClient{delay: 5 * time.Millisecond, responses: responses}
	publisher := &fakePublisher{}

	runner := newTestRunner(Config{
		AnnotationsPath: annotationsPath,
		MediaDir:        mediaDir,
		Concurrency:     3,
	}, client, publisher)

	require.NoError(t, runner.Run(context.Background()))
	require.Len(t, publisher.rows, len(ids))

	for i, id := range ids {
		require.Equal(t, id, publisher.rows[i].SampleID)
		require.Equal(t, "transcript for "+id, publisher.rows[i].Transcript)
	}
}

func TestRun_AnnotationFailureIsFatal(t *testing.T) {
	runner := newTestRunner(Config{
		AnnotationsPath: filepath.Join(t.TempDir(), "missing.csv"),
		MediaDir:        t.TempDir(),
	}, &fakeClient{}, &fakePublisher{})

	require.Error(t, runner.Run(context.Background()))
}

func TestRun_MediaExtensionProbeOrder(t *testing.T) {
	dir := t.TempDir()
	mediaDir := filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(mediaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "audio_1.m4a"), []byte("m4a"), 0o644))

	annotationsPath := filepath.Join(dir, "annotations.csv")
	require.NoError(t, os.WriteFile(annotationsPath, []byte("sampleId,groundTruth\naudio_1,apple\n"), 0o644))

	client := &fakeClient{}
	publisher := &fakePublisher{}

	runner := newTestRunner(Config{
		AnnotationsPath: annotationsPath,
		MediaDir:        mediaDir,
	}, client, publisher)

	require.NoError(t, runner.Run(context.Background()))
	require.Len(t, publisher.rows, 1)
	require.Zero(t, publisher.skipped)
}
