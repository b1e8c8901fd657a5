package transcriber_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"caption/internal/testsupport"
	"caption/internal/transcriber"
)

func newTestClient(t *testing.T, baseURL string, maxPolls int) *transcriber.Client {
	t.Helper()
	return transcriber.New(transcriber.Config{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		SpeechModel:    "universal",
		PollInterval:   time.Millisecond,
		MaxPolls:       maxPolls,
		UploadTimeout:  time.Second,
		RequestTimeout: time.Second,
	}, nil)
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	testsupport.WriteFile(t, path, 64)
	return path
}

func TestTranscribeHappyPath(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") != "test-key" {
			t.Errorf("missing authorization header on %s", r.URL.Path)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/upload":
			fmt.Fprint(w, `{"upload_url":"https://cdn.example/audio/1"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode submit body: %v", err)
			}
			if req["audio_url"] != "https://cdn.example/audio/1" || req["speech_model"] != "universal" {
				t.Errorf("unexpected submit body: %v", req)
			}
			fmt.Fprint(w, `{"id":"tr-1"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v2/transcript/tr-1":
			if polls.Add(1) < 3 {
				fmt.Fprint(w, `{"status":"processing"}`)
				return
			}
			fmt.Fprint(w, `{"status":"completed","words":[
                {"text":"hello","start":80,"end":480},
                {"text":"broken","start":900,"end":700},
                {"text":"world","start":480,"end":1250}
            ]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 10)

	var seen []string
	words, err := client.Transcribe(context.Background(), writeAudio(t), func(status string) {
		seen = append(seen, status)
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("words = %#v, want invalid word dropped", words)
	}
	if words[0].Text != "hello" || words[1].Text != "world" {
		t.Fatalf("unexpected words: %#v", words)
	}
	if len(seen) != 2 || seen[0] != "processing" {
		t.Fatalf("progress calls = %v", seen)
	}
}

func TestPollSurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","error":"audio unreadable"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 10)
	_, err := client.Poll(context.Background(), "tr-1", nil)
	if !errors.Is(err, transcriber.ErrTranscription) {
		t.Fatalf("err = %v, want ErrTranscription", err)
	}
	if got := err.Error(); !strings.Contains(got, "audio unreadable") {
		t.Fatalf("error text missing cause: %q", got)
	}
}

func TestPollStopsAtBudget(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		fmt.Fprint(w, `{"status":"queued"}`)
	}))
	defer server.Close()

	const budget = 5
	client := newTestClient(t, server.URL, budget)
	_, err := client.Poll(context.Background(), "tr-1", nil)
	if !errors.Is(err, transcriber.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if got := polls.Load(); got != budget {
		t.Fatalf("polls = %d, want exactly %d", got, budget)
	}
}

func TestPollHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"queued"}`)
	}))
	defer server.Close()

	client := transcriber.New(transcriber.Config{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		PollInterval:   time.Hour,
		MaxPolls:       10,
		RequestTimeout: time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.Poll(ctx, "tr-1", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestUploadRejectionIsSubmissionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 10)
	_, err := client.Upload(context.Background(), writeAudio(t))
	if !errors.Is(err, transcriber.ErrSubmission) {
		t.Fatalf("err = %v, want ErrSubmission", err)
	}
}

func TestSubmitRequiresTranscriptID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 10)
	_, err := client.Submit(context.Background(), "https://cdn.example/audio/1")
	if !errors.Is(err, transcriber.ErrSubmission) {
		t.Fatalf("err = %v, want ErrSubmission", err)
	}
}
