package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"caption/internal/config"
	"caption/internal/queue"
)

// ErrDaemonUnavailable indicates the daemon API could not be reached.
var ErrDaemonUnavailable = errors.New("daemon API unavailable")

// Client is the HTTP client the CLI uses to talk to a running daemon.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient builds a Client for the configured API bind address.
func NewClient(cfg *config.Config) (*Client, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address not configured")
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse api address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	return &Client{
		base: base,
		// Uploads of large videos can take a while; downloads too.
		http: &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

// Submit uploads a video file and returns the created job.
func (c *Client) Submit(ctx context.Context, path string) (Job, error) {
	file, err := os.Open(path)
	if err != nil {
		return Job{}, fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	reader, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = form.Close()
		}
		writer.CloseWithError(err)
	}()

	endpoint := c.base.ResolveReference(&url.URL{Path: "/api/jobs"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), reader)
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var payload SubmitResponse
	if err := c.do(req, &payload); err != nil {
		return Job{}, err
	}
	return payload.Job, nil
}

// List fetches jobs, optionally filtered by status.
func (c *Client) List(ctx context.Context, statuses ...queue.Status) ([]Job, error) {
	values := url.Values{}
	for _, status := range statuses {
		values.Add("status", string(status))
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: "/api/jobs", RawQuery: values.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var payload JobListResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return payload.Jobs, nil
}

// Describe fetches one job, or nil when the daemon does not know it.
func (c *Client) Describe(ctx context.Context, id string) (*Job, error) {
	endpoint := c.base.ResolveReference(&url.URL{Path: "/api/jobs/" + id})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var payload JobResponse
	if err := c.do(req, &payload); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payload.Job, nil
}

// Download streams the finished video into destDir and returns the written path.
func (c *Client) Download(ctx context.Context, id, destDir string) (string, error) {
	endpoint := c.base.ResolveReference(&url.URL{Path: "/api/jobs/" + id + "/download"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDaemonUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = id + "_captioned.mp4"
	}
	dest := filepath.Join(destDir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	return dest, out.Close()
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	endpoint := c.base.ResolveReference(&url.URL{Path: "/api/status"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return DaemonStatus{}, err
	}
	req.Header.Set("Accept", "application/json")

	var payload DaemonStatus
	if err := c.do(req, &payload); err != nil {
		return DaemonStatus{}, err
	}
	return payload, nil
}

var errNotFound = errors.New("not found")

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDaemonUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", errNotFound, req.URL.Path)
	}
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("api returned status %d", resp.StatusCode)
}

func filenameFromDisposition(header string) string {
	const marker = `filename="`
	idx := strings.Index(header, marker)
	if idx < 0 {
		return ""
	}
	rest := header[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return filepath.Base(rest[:end])
}
