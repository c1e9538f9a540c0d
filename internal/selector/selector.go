// Package selector picks the query template that best matches a free-text
// question. Candidates are ranked by cosine similarity between the question
// embedding and precomputed template embeddings, then each candidate is
// confirmed with a strict yes/no generation call before being committed.
// Similarity alone is unreliable for short, ambiguous questions; the
// confirmation pass is bounded at two calls per candidate.
package selector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/catalog"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/embedding"
)

// ErrNoTemplate means no candidate was confirmed for the question. Callers
// treat it as "ask the user to clarify", not as a fault.
var ErrNoTemplate = errors.New("no suitable template for query")

// Generator is the slice of the generation client used for confirmation.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Candidate is a template with its similarity to the question.
type Candidate struct {
	Descriptor *catalog.Descriptor
	Score      float64
}

// Selector ranks and confirms templates for incoming questions.
type Selector struct {
	catalog *catalog.Catalog
	index   *embedding.TemplateIndex
	engine  embedding.Engine
	llm     Generator
	logger  *zap.Logger
}

// New creates a Selector over the given catalog.
func New(cat *catalog.Catalog, index *embedding.TemplateIndex, engine embedding.Engine, llm Generator, logger *zap.Logger) *Selector {
	return &Selector{
		catalog: cat,
		index:   index,
		engine:  engine,
		llm:     llm,
		logger:  logger,
	}
}

// IndexEntries returns the embedding-index entries for a catalog, in
// declaration order.
func IndexEntries(cat *catalog.Catalog) []embedding.Entry {
	entries := make([]embedding.Entry, 0, cat.Len())
	for _, d := range cat.List() {
		entries = append(entries, embedding.Entry{Name: d.Name, Text: d.EmbeddingContext()})
	}
	return entries
}

// Rank scores every template against the question and returns candidates in
// descending similarity order. Ties keep catalog declaration order, so the
// ranking is deterministic for a fixed catalog and fixed embeddings.
func (s *Selector) Rank(ctx context.Context, query string) ([]Candidate, error) {
	if err := s.index.Ensure(ctx, IndexEntries(s.catalog)); err != nil {
		return nil, err
	}

	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates := make([]Candidate, 0, s.catalog.Len())
	for _, d := range s.catalog.List() {
		vec, ok := s.index.Vector(d.Name)
		if !ok {
			return nil, fmt.Errorf("no embedding for template %s", d.Name)
		}
		score, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			return nil, fmt.Errorf("scoring template %s: %w", d.Name, err)
		}
		candidates = append(candidates, Candidate{Descriptor: d, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	for _, c := range candidates {
		s.logger.Debug("ranked template",
			zap.String("template", c.Descriptor.Name),
			zap.Float64("similarity", c.Score))
	}
	return candidates, nil
}

// Select returns the first ranked candidate the generation service confirms.
// A non-"Yes" answer is retried exactly once per candidate to absorb
// formatting noise before moving on. Exhausting all candidates returns
// ErrNoTemplate; a transport failure during confirmation fails the whole
// selection.
func (s *Selector) Select(ctx context.Context, query string) (*catalog.Descriptor, error) {
	candidates, err := s.Rank(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		confirmed, err := s.confirm(ctx, query, candidate.Descriptor)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			confirmed, err = s.confirm(ctx, query, candidate.Descriptor)
			if err != nil {
				return nil, err
			}
		}
		if confirmed {
			s.logger.Info("template selected",
				zap.String("template", candidate.Descriptor.Name),
				zap.Float64("similarity", candidate.Score))
			return candidate.Descriptor, nil
		}
	}
	return nil, ErrNoTemplate
}

// confirm asks the strict yes/no question for one candidate. Only the exact
// trimmed answer "Yes" counts as confirmation.
func (s *Selector) confirm(ctx context.Context, query string, d *catalog.Descriptor) (bool, error) {
	var fields strings.Builder
	for _, f := range d.Fields {
		fmt.Fprintf(&fields, "- %s: %s\n", f.Name, f.Description)
	}

	prompt := fmt.Sprintf(`You are a validator of query templates. You will be given a user query, a template description, and the template parameter names along with their descriptions. Decide whether the template is appropriate for answering the user query.

User Query: %s
Template Description: %s
Template Parameters with Descriptions:
%s
Instructions: Return your answer in exactly one word. Respond with Yes or No.
`, query, d.Description, fields.String())

	response, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("template confirmation call failed: %w", err)
	}

	answer := strings.TrimSpace(response)
	s.logger.Debug("confirmation answer",
		zap.String("template", d.Name),
		zap.String("answer", answer))
	return answer == "Yes", nil
}
