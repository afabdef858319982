package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// callerHeader names the identity header the service authenticates by.
const callerHeader = "X-Caller-ID"

// progressInterval paces the in-flight progress lines.
const progressInterval = 1 * time.Second

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body on behalf of caller.
func (c *HTTPClient) Post(ctx context.Context, url, caller string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(callerHeader, caller)
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// mutation is one planned write: caller POSTs payload to path.
type mutation struct {
	Caller  string
	Path    string
	Payload interface{}
}

// executeMutations drives the planned writes through a worker pool. Every
// mutation in a phase is expected to succeed; rejections and transport
// failures are counted and reported to the caller.
func executeMutations(ctx context.Context, cfg *Config, label string, mutations []mutation) (ok, rejected, failed int) {
	log.Printf("📤 %s: submitting %d mutations with %d workers...", label, len(mutations), cfg.Workers)

	client := newHTTPClient(cfg.Timeout)

	var (
		okCount       int64
		rejectedCount int64
		failedCount   int64
	)

	var lastReport atomic.Int64
	lastReport.Store(time.Now().UnixNano())

	workers := cfg.Workers
	if workers > len(mutations) {
		workers = len(mutations)
	}

	indexChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					switch submitMutation(ctx, client, cfg.BaseURL, mutations[index]) {
					case outcomeOK:
						atomic.AddInt64(&okCount, 1)
					case outcomeRejected:
						atomic.AddInt64(&rejectedCount, 1)
					case outcomeFailed:
						atomic.AddInt64(&failedCount, 1)
					}

					now := time.Now().UnixNano()
					last := lastReport.Load()
					if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
						done := atomic.LoadInt64(&okCount) + atomic.LoadInt64(&rejectedCount) + atomic.LoadInt64(&failedCount)
						if cfg.Verbose {
							log.Printf("📊 %s progress: %d/%d (ok: %d, rejected: %d, failed: %d)",
								label, done, len(mutations),
								atomic.LoadInt64(&okCount), atomic.LoadInt64(&rejectedCount), atomic.LoadInt64(&failedCount))
						} else {
							fmt.Printf("\r📤 %s: %d/%d", label, done, len(mutations))
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range mutations {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Final progress report
	if !cfg.Verbose {
		fmt.Println() // New line after progress indicator
	}

	ok = int(atomic.LoadInt64(&okCount))
	rejected = int(atomic.LoadInt64(&rejectedCount))
	failed = int(atomic.LoadInt64(&failedCount))

	log.Printf("✅ %s completed: ok=%d rejected=%d failed=%d", label, ok, rejected, failed)
	return ok, rejected, failed
}

// outcome classifies a single mutation attempt.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeRejected
	outcomeFailed
)

// submitMutation posts one mutation and classifies the response.
func submitMutation(ctx context.Context, client *HTTPClient, baseURL string, m mutation) outcome {
	resp, err := client.Post(ctx, baseURL+m.Path, m.Caller, m.Payload)
	if err != nil {
		log.Printf("⚠️  %s %s transport error: %v", m.Caller, m.Path, err)
		return outcomeFailed
	}

	body, err := readResponseBody(resp)
	if err != nil {
		log.Printf("⚠️  %s %s read error: %v", m.Caller, m.Path, err)
		return outcomeFailed
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return outcomeOK
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		log.Printf("⚠️  %s %s rejected: HTTP %d %s (%s)", m.Caller, m.Path, resp.StatusCode, errResp.Code, errResp.Message)
		return outcomeRejected
	}

	log.Printf("⚠️  %s %s rejected: HTTP %d %s", m.Caller, m.Path, resp.StatusCode, string(body))
	return outcomeRejected
}

// getJSON fetches url and decodes the 200 body into out.
func getJSON(ctx context.Context, client *HTTPClient, url string, out interface{}) error {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
