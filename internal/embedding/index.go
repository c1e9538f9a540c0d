package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Entry names one template and the text that represents it in the index.
type Entry struct {
	Name string
	Text string
}

// TemplateIndex owns the persisted name->vector mapping the selector ranks
// against. The on-disk format is plain JSON, recomputed wholesale whenever
// the file is absent. After Ensure returns, the vectors are read-only; the
// mutex only guards the one-time cold-start computation so concurrent
// sessions don't both run a full embedding pass.
type TemplateIndex struct {
	mu      sync.Mutex
	path    string
	engine  Engine
	logger  *zap.Logger
	vectors map[string][]float32
}

// NewTemplateIndex creates an index persisted at path, computing vectors
// with engine when the file is missing.
func NewTemplateIndex(path string, engine Engine, logger *zap.Logger) *TemplateIndex {
	return &TemplateIndex{
		path:   path,
		engine: engine,
		logger: logger,
	}
}

// Ensure makes the index ready: load it from disk, or compute and persist
// every entry's vector if no file exists yet. Calling it again is a no-op.
func (ix *TemplateIndex) Ensure(ctx context.Context, entries []Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.vectors != nil {
		return nil
	}

	data, err := os.ReadFile(ix.path)
	switch {
	case err == nil:
		vectors := make(map[string][]float32)
		if err := json.Unmarshal(data, &vectors); err != nil {
			return fmt.Errorf("parsing embedding cache %s: %w", ix.path, err)
		}
		ix.vectors = vectors
		ix.logger.Debug("loaded template embeddings", zap.String("path", ix.path), zap.Int("templates", len(vectors)))
		return nil
	case os.IsNotExist(err):
		ix.logger.Info("no template embedding file found, computing embeddings", zap.String("path", ix.path))
		return ix.recomputeLocked(ctx, entries)
	default:
		return fmt.Errorf("reading embedding cache %s: %w", ix.path, err)
	}
}

// Rebuild recomputes every entry's vector and rewrites the cache file,
// regardless of what is on disk.
func (ix *TemplateIndex) Rebuild(ctx context.Context, entries []Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.recomputeLocked(ctx, entries)
}

func (ix *TemplateIndex) recomputeLocked(ctx context.Context, entries []Entry) error {
	vectors := make(map[string][]float32, len(entries))
	for _, entry := range entries {
		vec, err := ix.engine.Embed(ctx, entry.Text)
		if err != nil {
			return fmt.Errorf("embedding template %s: %w", entry.Name, err)
		}
		vectors[entry.Name] = vec
	}

	if err := ix.save(vectors); err != nil {
		return err
	}
	ix.vectors = vectors
	ix.logger.Info("computed template embeddings", zap.Int("templates", len(vectors)), zap.String("path", ix.path))
	return nil
}

func (ix *TemplateIndex) save(vectors map[string][]float32) error {
	if dir := filepath.Dir(ix.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(vectors, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding embedding cache: %w", err)
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return fmt.Errorf("writing embedding cache %s: %w", ix.path, err)
	}
	return nil
}

// Vector returns the cached vector for a template name.
func (ix *TemplateIndex) Vector(name string) ([]float32, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	vec, ok := ix.vectors[name]
	return vec, ok
}
