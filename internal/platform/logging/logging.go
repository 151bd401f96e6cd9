// Package logging builds the process-wide logger: console plus an
// append-only log file, every line timestamped and stamped with the run
// id. The file is opened once at startup and left to close on process
// exit.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	envLocal    = "local"
	logFileMode = 0o644
)

// New constructs the logger. In the local environment the console side is
// human-readable; elsewhere it stays raw JSON. The file side is always
// JSON.
func New(appEnv, logFilePath, runID string) (zerolog.Logger, error) {
	var console io.Writer = os.Stderr
	if appEnv == envLocal {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("open log file %s: %w", logFilePath, err)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(console, file)).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()

	return logger, nil
}
