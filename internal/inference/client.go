// Package inference talks to the deployed audio-analysis service. One
// request per sample; every per-sample failure is absorbed into an empty
// prediction so a long batch never dies on a single bad call.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/food-calorie-app/audio-eval/internal/labels"
)

const (
	analyzeAudioPath = "/analyze-audio"
	audioFieldName   = "audio"

	// Covers a full transcription plus extraction round trip under
	// cold-start conditions on the shared service.
	defaultTimeout = 180 * time.Second

	defaultRequestsPerSecond = 1
	fallbackContentType      = "audio/wav"
)

var errUnexpectedStatus = errors.New("analyze-audio unexpected status")

// PredictionRecord is the model output for one sample. A failed call
// produces an empty transcript and an empty label set.
type PredictionRecord struct {
	SampleID   string
	Transcript string
	Predicted  labels.Set
}

// Config configures the inference client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client issues multipart uploads against the analyze-audio endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

type analyzeResponse struct {
	Transcript string `json:"transcript"`
	Items      []struct {
		Name  string   `json:"name"`
		Grams *float64 `json:"grams"`
	} `json:"items"`
}

// NewClient creates a Client. The limiter paces requests even when the
// caller fans out over multiple goroutines; the remote service is shared
// and must not be flooded.
func NewClient(cfg Config, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &Client{
		endpoint: cfg.BaseURL + analyzeAudioPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Analyze sends the media file for sampleID and returns the normalized
// prediction. Transport failures, timeouts, non-2xx statuses and malformed
// bodies are logged and yield an empty record; Analyze never fails the
// batch.
func (c *Client) Analyze(ctx context.Context, sampleID, mediaPath string) PredictionRecord {
	payload, err := c.call(ctx, mediaPath)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("sample_id", sampleID).
			Msg("inference call failed, recording empty prediction")

		return PredictionRecord{SampleID: sampleID, Predicted: labels.Set{}}
	}

	names := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		names = append(names, item.Name)
	}

	return PredictionRecord{
		SampleID:   sampleID,
		Transcript: payload.Transcript,
		Predicted:  labels.NewSet(names...),
	}
}

func (c *Client) call(ctx context.Context, mediaPath string) (analyzeResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return analyzeResponse{}, fmt.Errorf("rate limit: %w", err)
	}

	body, contentType, err := buildMultipartBody(mediaPath)
	if err != nil {
		return analyzeResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return analyzeResponse{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return analyzeResponse{}, fmt.Errorf("analyze-audio request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return analyzeResponse{}, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return analyzeResponse{}, fmt.Errorf("read analyze-audio response: %w", err)
	}

	var payload analyzeResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return analyzeResponse{}, fmt.Errorf("decode analyze-audio response: %w", err)
	}

	return payload, nil
}

func buildMultipartBody(mediaPath string) (*bytes.Buffer, string, error) {
	media, err := os.ReadFile(mediaPath)
	if err != nil {
		return nil, "", fmt.Errorf("read media file: %w", err)
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, audioFieldName, filepath.Base(mediaPath)))
	header.Set("Content-Type", mediaContentType(mediaPath))

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart field: %w", err)
	}

	if _, err := part.Write(media); err != nil {
		return nil, "", fmt.Errorf("write multipart payload: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}

func mediaContentType(mediaPath string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(mediaPath)); contentType != "" {
		return contentType
	}

	return fallbackContentType
}
