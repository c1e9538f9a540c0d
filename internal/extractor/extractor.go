// Package extractor pulls template parameters out of free-text questions
// with a single generation call, then defensively parses the model's JSON.
// A response that doesn't parse yields an empty mapping rather than an
// error, so every field simply shows up as missing downstream.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/catalog"
)

// Generator is the slice of the generation client the extractor needs.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor asks the generation service for a structured key/value
// extraction restricted to a template's declared parameter names.
type Extractor struct {
	llm    Generator
	logger *zap.Logger
}

// New creates an Extractor.
func New(llm Generator, logger *zap.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract returns the raw name->text parameters the model found in the
// query. Unparseable model output returns an empty mapping; only a failure
// of the generation call itself is an error.
func (e *Extractor) Extract(ctx context.Context, query string, d *catalog.Descriptor) (map[string]string, error) {
	response, err := e.llm.Complete(ctx, buildPrompt(query, d))
	if err != nil {
		return nil, fmt.Errorf("parameter extraction call failed: %w", err)
	}

	params := parseParams(response)
	if params == nil {
		e.logger.Warn("extraction output not parseable, treating all fields as missing",
			zap.String("template", d.Name))
		return map[string]string{}, nil
	}

	e.logger.Debug("extracted parameters",
		zap.String("template", d.Name),
		zap.Any("params", params))
	return params, nil
}

func buildPrompt(query string, d *catalog.Descriptor) string {
	names, _ := json.Marshal(d.FieldNames())
	descriptions := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		descriptions[f.Name] = f.Description
	}
	info, _ := json.MarshalIndent(descriptions, "", "  ")

	return fmt.Sprintf(`You are a parameter extraction assistant. Your task is to extract specific parameters from a user query and return them in JSON format.

Required parameters:
%s
Parameters descriptions:
%s

User query: %s

Instructions:
1. Extract ONLY the parameters listed above
2. Return ONLY a valid JSON object with the extracted parameters
3. Ensure the extracted parameters have the correct format specified in the description
4. Do not include any other text or explanation
5. If a parameter is not found, omit it from the JSON
`, names, info, query)
}

// parseParams locates the JSON object in the model output (first '{' to
// last '}') and coerces every value to text. Returns nil when no object can
// be parsed.
func parseParams(response string) map[string]string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return nil
	}

	decoder := json.NewDecoder(strings.NewReader(response[start : end+1]))
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil
	}

	params := make(map[string]string, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
			// Omitted field emitted as null; treat as not found.
		case string:
			params[name] = v
		case json.Number:
			params[name] = v.String()
		default:
			params[name] = fmt.Sprint(v)
		}
	}
	return params
}
