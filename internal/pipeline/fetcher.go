package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/reviewinsights/internal/util"
)

// Fetcher downloads remote datasets
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	robots     *util.RobotsPolicy
}

// NewFetcher creates a fetcher. maxBytes <= 0 disables the size cap.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, httpProxy, httpsProxy, noProxy string) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		maxRetries: 3,
	}
}

// RespectRobots makes Open consult the host's robots.txt before downloading
func (f *Fetcher) RespectRobots() {
	f.robots = util.NewRobotsPolicy(f.httpClient, f.userAgent)
}

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

// statusError is a non-2xx response
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// Fetch downloads rawURL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("dataset exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}

// FetchWithRetry retries connection failures, 429 and 5xx responses with
// exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		data, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if se, ok := err.(*statusError); ok && !se.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < f.maxRetries-1 {
			fetchSleepFunc(backoff)
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", f.maxRetries, lastErr)
}

// Open returns a reader for a local path or an http(s) URL
func (f *Fetcher) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if isRemote(path) {
		if f.robots != nil {
			allowed, delay, err := f.robots.Check(ctx, path)
			if err != nil {
				return nil, err
			}
			if !allowed {
				return nil, fmt.Errorf("robots.txt disallows %s", path)
			}
			if delay > 0 {
				fetchSleepFunc(delay)
			}
		}
		data, err := f.FetchWithRetry(ctx, path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return file, nil
}

func isRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
