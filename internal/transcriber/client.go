// Package transcriber talks to an AssemblyAI-style speech-to-text API:
// upload the audio, submit a transcript request, then poll until the
// service finishes or the poll budget runs out.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"caption/internal/config"
	"caption/internal/logging"
)

var (
	// ErrSubmission marks upload or submit requests the API rejected.
	ErrSubmission = errors.New("transcript submission failed")
	// ErrTranscription marks jobs the service itself reported as failed.
	ErrTranscription = errors.New("transcription failed")
	// ErrPollTimeout marks jobs still unfinished after the poll budget.
	ErrPollTimeout = errors.New("transcription timeout")
)

// Config captures the endpoint, credentials, and poll policy for the client.
type Config struct {
	BaseURL        string
	APIKey         string
	SpeechModel    string
	PollInterval   time.Duration
	MaxPolls       int
	UploadTimeout  time.Duration
	RequestTimeout time.Duration
}

// Client is a transcription API client safe for concurrent use.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *slog.Logger
}

// New builds a Client from the resolved settings.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 120
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 60 * time.Second
	}
	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
		logger:       logger.With(logging.String(logging.FieldComponent, "transcriber")),
	}
}

// FromConfig adapts application configuration into a Client.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return New(Config{
		BaseURL:        cfg.Transcriber.BaseURL,
		APIKey:         cfg.Transcriber.APIKey,
		SpeechModel:    cfg.Transcriber.SpeechModel,
		PollInterval:   time.Duration(cfg.Transcriber.PollIntervalSeconds) * time.Second,
		MaxPolls:       cfg.Transcriber.MaxPolls,
		UploadTimeout:  time.Duration(cfg.Transcriber.UploadTimeoutSeconds) * time.Second,
		RequestTimeout: time.Duration(cfg.Transcriber.RequestTimeoutSeconds) * time.Second,
	}, logger)
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type submitRequest struct {
	AudioURL    string `json:"audio_url"`
	SpeechModel string `json:"speech_model"`
}

type submitResponse struct {
	ID string `json:"id"`
}

// Upload streams the audio file to the API and returns the hosted audio URL.
func (c *Client) Upload(ctx context.Context, audioPath string) (string, error) {
	payload, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	var decoded uploadResponse
	err = c.doJSON(ctx, c.uploadClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/upload", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("authorization", c.cfg.APIKey)
		req.Header.Set("content-type", "application/octet-stream")
		return req, nil
	}, &decoded)
	if err != nil {
		return "", fmt.Errorf("%w: upload audio: %w", ErrSubmission, err)
	}
	if decoded.UploadURL == "" {
		return "", fmt.Errorf("%w: upload response missing upload_url", ErrSubmission)
	}

	c.logger.Debug("audio uploaded", logging.String("upload_url", decoded.UploadURL))
	return decoded.UploadURL, nil
}

// Submit requests a transcript for the hosted audio and returns the
// transcript identifier to poll.
func (c *Client) Submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(submitRequest{
		AudioURL:    audioURL,
		SpeechModel: c.cfg.SpeechModel,
	})
	if err != nil {
		return "", fmt.Errorf("encode transcript request: %w", err)
	}

	var decoded submitResponse
	err = c.doJSON(ctx, c.httpClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/transcript", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("authorization", c.cfg.APIKey)
		req.Header.Set("content-type", "application/json")
		return req, nil
	}, &decoded)
	if err != nil {
		return "", fmt.Errorf("%w: submit transcript: %w", ErrSubmission, err)
	}
	if decoded.ID == "" {
		return "", fmt.Errorf("%w: transcript response missing id", ErrSubmission)
	}

	c.logger.Debug("transcript submitted", logging.String("transcript_id", decoded.ID))
	return decoded.ID, nil
}

// doJSON performs a request with short exponential-backoff retries on network
// failures and 5xx responses. 4xx responses are terminal; the API will not
// change its mind about a bad request.
func (c *Client) doJSON(ctx context.Context, client *http.Client, build func() (*http.Request, error), target any) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = client.Timeout

	operation := func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}
		if err := json.Unmarshal(body, target); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}
