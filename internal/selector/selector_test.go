package selector

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/catalog"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/embedding"
)

// keywordEngine produces deterministic vectors: one dimension per keyword,
// set when the text mentions it. Good enough to steer cosine ranking.
type keywordEngine struct {
	keywords []string
}

func (e *keywordEngine) Embed(_ context.Context, text string) ([]float32, error) {
	lowered := strings.ToLower(text)
	vec := make([]float32, len(e.keywords)+1)
	vec[len(e.keywords)] = 0.1 // keep magnitude non-zero
	for i, kw := range e.keywords {
		if strings.Contains(lowered, kw) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (e *keywordEngine) Name() string { return "keyword" }

// confirmScript answers confirmation prompts from a queue; empty queue
// defaults to "No".
type confirmScript struct {
	answers []string
	errs    []error
	calls   int
	prompts []string
}

func (g *confirmScript) Complete(_ context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.answers) {
		return g.answers[i], nil
	}
	return "No", nil
}

func newSelector(t *testing.T, gen Generator) (*Selector, *keywordEngine) {
	t.Helper()
	engine := &keywordEngine{keywords: []string{"rooms", "devices", "average", "window"}}
	index := embedding.NewTemplateIndex(filepath.Join(t.TempDir(), "embeddings.json"), engine, zap.NewNop())
	return New(catalog.Default(), index, engine, gen, zap.NewNop()), engine
}

func TestRankIsIdempotent(t *testing.T) {
	s, _ := newSelector(t, &confirmScript{})

	first, err := s.Rank(context.Background(), "How many rooms are on floor 7?")
	require.NoError(t, err)
	second, err := s.Rank(context.Background(), "How many rooms are on floor 7?")
	require.NoError(t, err)

	var a, b []string
	for _, c := range first {
		a = append(a, c.Descriptor.Name)
	}
	for _, c := range second {
		b = append(b, c.Descriptor.Name)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("ranking is not deterministic (-first +second):\n%s", diff)
	}
}

// constEngine embeds every text to the same vector, so all similarities tie.
type constEngine struct{}

func (constEngine) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 1}, nil
}

func (constEngine) Name() string { return "const" }

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	engine := constEngine{}
	index := embedding.NewTemplateIndex(filepath.Join(t.TempDir(), "embeddings.json"), engine, zap.NewNop())
	s := New(catalog.Default(), index, engine, &confirmScript{}, zap.NewNop())

	candidates, err := s.Rank(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, candidates, catalog.Default().Len())

	var got []string
	for _, c := range candidates {
		got = append(got, c.Descriptor.Name)
	}
	var want []string
	for _, d := range catalog.Default().List() {
		want = append(want, d.Name)
	}
	assert.Equal(t, want, got)
}

func TestSelectShortCircuitsOnFirstYes(t *testing.T) {
	gen := &confirmScript{answers: []string{"Yes"}}
	s, _ := newSelector(t, gen)

	d, err := s.Select(context.Background(), "How many rooms are on floor 7?")
	require.NoError(t, err)
	assert.Equal(t, "count_rooms_on_floor", d.Name)
	assert.Equal(t, 1, gen.calls, "first Yes must stop further confirmation calls")
	assert.Contains(t, gen.prompts[0], "rooms")
}

func TestSelectRetriesNoOncePerCandidate(t *testing.T) {
	// First candidate: No then Yes on the retry.
	gen := &confirmScript{answers: []string{"No", "Yes"}}
	s, _ := newSelector(t, gen)

	d, err := s.Select(context.Background(), "How many rooms are on floor 7?")
	require.NoError(t, err)
	assert.Equal(t, "count_rooms_on_floor", d.Name)
	assert.Equal(t, 2, gen.calls)
}

func TestSelectMovesToNextCandidateAfterTwoNos(t *testing.T) {
	gen := &confirmScript{answers: []string{"No", "No", "Yes"}}
	s, _ := newSelector(t, gen)

	d, err := s.Select(context.Background(), "How many rooms are on floor 7?")
	require.NoError(t, err)
	// count_rooms_on_floor was rejected twice; second-ranked candidate won.
	assert.NotEqual(t, "count_rooms_on_floor", d.Name)
	assert.Equal(t, 3, gen.calls)
}

func TestSelectNonYesAnswersAreNotConfirmation(t *testing.T) {
	gen := &confirmScript{answers: []string{"yes", "YES.", " Yes "}}
	s, _ := newSelector(t, gen)

	// " Yes " trims to exactly "Yes" and confirms; the casing variants do not.
	d, err := s.Select(context.Background(), "How many rooms are on floor 7?")
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.NotNil(t, d)
}

func TestSelectExhausted(t *testing.T) {
	gen := &confirmScript{} // always "No"
	s, _ := newSelector(t, gen)

	_, err := s.Select(context.Background(), "How many rooms are on floor 7?")
	assert.ErrorIs(t, err, ErrNoTemplate)
	// Bounded: at most two confirmation calls per catalog entry.
	assert.Equal(t, 2*catalog.Default().Len(), gen.calls)
}

func TestSelectTransportFailurePropagates(t *testing.T) {
	transportErr := errors.New("generation timed out after 3 attempts")
	gen := &confirmScript{errs: []error{transportErr}}
	s, _ := newSelector(t, gen)

	_, err := s.Select(context.Background(), "How many rooms are on floor 7?")
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.NotErrorIs(t, err, ErrNoTemplate)
}

func TestSelectTransportFailureOnRetryPropagates(t *testing.T) {
	transportErr := errors.New("connection refused")
	gen := &confirmScript{answers: []string{"No"}, errs: []error{nil, transportErr}}
	s, _ := newSelector(t, gen)

	_, err := s.Select(context.Background(), "How many rooms are on floor 7?")
	assert.ErrorIs(t, err, transportErr)
}
