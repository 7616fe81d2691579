package subgraph

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// serviceSDLResponse is the body a subgraph answers to `{ _service { sdl } }`.
type serviceSDLResponse struct {
	Data struct {
		Service struct {
			SDL string `json:"sdl"`
		} `json:"_service"`
	} `json:"data"`
}

type RetryOption struct {
	Attempts int           `yaml:"attempts"`
	Timeout  time.Duration `yaml:"timeout"`
	Backoff  time.Duration `yaml:"backoff"`
}

// FetchSDL sends { _service { sdl } } to a running subgraph endpoint and returns the SDL.
// Each attempt gets its own timeout.
func FetchSDL(ctx context.Context, endpoint string, httpClient *http.Client, retry RetryOption) (string, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	attempts := max(retry.Attempts, 1)
	timeout := retry.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	body := []byte(`{"query":"{_service{sdl}}"}`)

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && retry.Backoff > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retry.Backoff):
			}
		}
		sdl, err := fetchSDLOnce(ctx, endpoint, httpClient, body, timeout)
		if err == nil {
			return sdl, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("failed to fetch SDL from %s after %d attempt(s): %w", endpoint, attempts, lastErr)
}

func fetchSDLOnce(ctx context.Context, endpoint string, httpClient *http.Client, body []byte, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, endpoint)
	}

	var svcResp serviceSDLResponse
	if err := json.NewDecoder(resp.Body).Decode(&svcResp); err != nil {
		return "", fmt.Errorf("failed to decode SDL response: %w", err)
	}
	if svcResp.Data.Service.SDL == "" {
		return "", fmt.Errorf("empty SDL returned from %s", endpoint)
	}
	return svcResp.Data.Service.SDL, nil
}
