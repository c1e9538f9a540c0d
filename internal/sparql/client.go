// Package sparql is the query-store client. It sends rendered SELECT
// queries to a Fuseki-style endpoint and parses the standard
// sparql-results+json bindings into row mappings.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Binding is one cell of a result row.
type Binding struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Row maps column names to bindings.
type Row map[string]Binding

// ExecutionError reports a non-2xx response from the query store, carrying
// the raw body for the user-facing message.
type ExecutionError struct {
	StatusCode int
	Body       string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed (status %d): %s", e.StatusCode, e.Body)
}

// Client queries a single SPARQL endpoint.
type Client struct {
	queryURL string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a client for the given query endpoint URL.
func NewClient(queryURL string, logger *zap.Logger) *Client {
	return &Client{
		queryURL: queryURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type resultsEnvelope struct {
	Results struct {
		Bindings []Row `json:"bindings"`
	} `json:"results"`
}

// Select executes a SELECT query and returns its bindings. Any non-2xx
// response becomes an *ExecutionError.
func (c *Client) Select(ctx context.Context, query string) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	c.logger.Debug("executing query", zap.String("endpoint", c.queryURL))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ExecutionError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope resultsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode query results: %w", err)
	}

	c.logger.Debug("query returned", zap.Int("rows", len(envelope.Results.Bindings)))
	return envelope.Results.Bindings, nil
}
