// Package llm is the shared text-generation client for the Ollama
// /api/generate endpoint. Template confirmation, parameter extraction, and
// response synthesis all go through it, so the retry policy lives here:
// timeouts are retried up to a fixed bound with a fixed delay, every other
// transport failure propagates immediately.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
	callTimeout = 60 * time.Second
)

// Client calls the Ollama generation API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *zap.Logger

	// delay between retry attempts, overridable in tests
	delay time.Duration
}

// NewClient creates a generation client for the given Ollama base URL and
// model name.
func NewClient(baseURL, model string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: callTimeout},
		logger:  logger,
		delay:   retryDelay,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete sends a prompt and returns the full generated text. Timeouts are
// retried up to the attempt bound with a fixed inter-attempt delay; any
// other failure returns immediately.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := c.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !isTimeout(err) {
			return "", err
		}
		lastErr = err
		if attempt < maxAttempts {
			c.logger.Warn("generation timed out, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts))
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("generation timed out after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.post(ctx, generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	return result.Response, nil
}

// CompleteStream sends a prompt and returns a channel of response chunks.
// The channel is closed when the model finishes or the context is canceled;
// cancellation closes the underlying connection and stops production without
// surfacing an error to chunks already consumed.
func (c *Client) CompleteStream(ctx context.Context, prompt string) (<-chan string, error) {
	resp, err := c.post(ctx, generateRequest{Model: c.model, Prompt: prompt, Stream: true})
	if err != nil {
		return nil, err
	}

	chunks := make(chan string)
	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk generateResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				c.logger.Warn("skipping malformed stream chunk", zap.Error(err))
				continue
			}
			if chunk.Response != "" {
				select {
				case chunks <- chunk.Response:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}
	}()
	return chunks, nil
}

func (c *Client) post(ctx context.Context, payload generateRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return resp, nil
}

// isTimeout reports whether err is a request timeout as opposed to any
// other transport failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
