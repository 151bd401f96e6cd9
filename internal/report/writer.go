package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

var predictionsHeader = []string{"sampleId", "groundTruth", "predicted", "transcript"}

// WritePredictions serializes the per-sample rows to a CSV at path,
// overwriting any previous file. Label sets are comma-joined; transcripts
// with embedded delimiters or quotes get RFC 4180 quoting (quotes doubled,
// field wrapped).
func WritePredictions(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}

	writer := csv.NewWriter(f)

	if err := writer.Write(predictionsHeader); err != nil {
		_ = f.Close()

		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := []string{row.SampleID, row.GroundTruth.Join(), row.Predicted.Join(), row.Transcript}
		if err := writer.Write(record); err != nil {
			_ = f.Close()

			return fmt.Errorf("write row %s: %w", row.SampleID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()

		return fmt.Errorf("flush predictions file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close predictions file: %w", err)
	}

	return nil
}
