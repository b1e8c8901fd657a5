package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"caption/internal/logging"
	"caption/internal/transcript"
)

const (
	statusCompleted = "completed"
	statusError     = "error"
)

type transcriptResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Words  []struct {
		Text  string `json:"text"`
		Start uint64 `json:"start"`
		End   uint64 `json:"end"`
	} `json:"words"`
}

// Poll fetches the transcript state at a fixed interval until the service
// reports completed or error, or the attempt budget is spent. The progress
// callback, when non-nil, receives the service's intermediate status on each
// poll that is neither terminal outcome.
func (c *Client) Poll(ctx context.Context, transcriptID string, progress func(status string)) ([]transcript.Word, error) {
	endpoint := c.cfg.BaseURL + "/v2/transcript/" + transcriptID

	for attempt := 0; attempt < c.cfg.MaxPolls; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.PollInterval):
			}
		}

		result, err := c.fetchTranscript(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: network error during transcription: %w", ErrTranscription, err)
		}

		c.logger.Debug("transcript polled",
			logging.String("transcript_id", transcriptID),
			logging.Int("attempt", attempt),
			logging.String("status", result.Status))

		switch result.Status {
		case statusCompleted:
			return c.collectWords(result), nil
		case statusError:
			message := result.Error
			if message == "" {
				message = "Unknown transcription error"
			}
			return nil, fmt.Errorf("%w: %s", ErrTranscription, message)
		default:
			if progress != nil {
				progress(result.Status)
			}
		}
	}

	return nil, fmt.Errorf("%w: please try with a shorter video", ErrPollTimeout)
}

// Transcribe runs the full upload, submit, poll sequence for a local audio file.
func (c *Client) Transcribe(ctx context.Context, audioPath string, progress func(status string)) ([]transcript.Word, error) {
	audioURL, err := c.Upload(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	transcriptID, err := c.Submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}
	return c.Poll(ctx, transcriptID, progress)
}

func (c *Client) fetchTranscript(ctx context.Context, endpoint string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("authorization", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded transcriptResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &decoded, nil
}

// collectWords converts the wire payload into transcript words, dropping any
// whose timestamps do not form a positive interval.
func (c *Client) collectWords(result *transcriptResponse) []transcript.Word {
	words := make([]transcript.Word, 0, len(result.Words))
	for _, w := range result.Words {
		words = append(words, transcript.Word{Text: w.Text, StartMS: w.Start, EndMS: w.End})
	}
	valid := transcript.FilterValid(words)
	if dropped := len(words) - len(valid); dropped > 0 {
		c.logger.Warn("dropped words with non-positive durations", logging.Int("dropped", dropped))
	}
	return valid
}
