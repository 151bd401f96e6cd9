// Package annotations reads the ground-truth table driving an evaluation
// run.
package annotations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/food-calorie-app/audio-eval/internal/labels"
)

const (
	columnSampleID    = "sampleId"
	columnGroundTruth = "groundTruth"
)

// ErrMissingColumn marks a header without the required columns. A broken
// header is fatal; the whole table is untrustworthy.
var ErrMissingColumn = errors.New("annotation table missing required column")

// Record is one row of ground truth. SampleID is the stem of a media file
// on disk; rows sharing a sampleId are kept and scored independently.
type Record struct {
	SampleID    string
	GroundTruth labels.Set
}

// Load parses the annotation CSV at path, preserving row order. Malformed
// individual rows are skipped with a warning; only an unreadable file or a
// broken header aborts.
func Load(path string, logger *zerolog.Logger) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	records, err := parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("parse annotations %s: %w", path, err)
	}

	return records, nil
}

func parse(r io.Reader, logger *zerolog.Logger) ([]Record, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	sampleIdx, truthIdx, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	var records []Record

	for row := 2; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				logger.Warn().Int("row", row).Msg("skipping malformed annotation row")

				continue
			}

			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		sampleID := strings.TrimSpace(fields[sampleIdx])
		if sampleID == "" {
			logger.Warn().Int("row", row).Msg("skipping annotation row without sampleId")

			continue
		}

		records = append(records, Record{
			SampleID:    sampleID,
			GroundTruth: labels.Split(fields[truthIdx]),
		})
	}

	return records, nil
}

func columnIndexes(header []string) (sampleIdx, truthIdx int, err error) {
	sampleIdx, truthIdx = -1, -1

	for i, name := range header {
		switch strings.TrimSpace(name) {
		case columnSampleID:
			sampleIdx = i
		case columnGroundTruth:
			truthIdx = i
		}
	}

	if sampleIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingColumn, columnSampleID)
	}

	if truthIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingColumn, columnGroundTruth)
	}

	return sampleIdx, truthIdx, nil
}
