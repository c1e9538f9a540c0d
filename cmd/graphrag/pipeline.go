package main

import (
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/catalog"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/config"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/embedding"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/extractor"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/llm"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/processor"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/selector"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/sparql"

	"go.uber.org/zap"
)

// pipeline bundles every component a command might need.
type pipeline struct {
	catalog *catalog.Catalog
	index   *embedding.TemplateIndex
	llm     *llm.Client
	sparql  *sparql.Client

	selector  *selector.Selector
	extractor *extractor.Extractor
}

// buildPipeline wires the full question-answering stack from configuration.
func buildPipeline(cfg config.Config, logger *zap.Logger) *pipeline {
	cat := catalog.Default()
	engine := embedding.NewOllamaEngine(cfg.Ollama.BaseURL(), cfg.Embedding.Model)
	index := embedding.NewTemplateIndex(cfg.Embedding.CachePath, engine, logger)
	generator := llm.NewClient(cfg.Ollama.BaseURL(), cfg.Ollama.Model, logger)
	store := sparql.NewClient(cfg.Fuseki.QueryURL(), logger)

	return &pipeline{
		catalog:   cat,
		index:     index,
		llm:       generator,
		sparql:    store,
		selector:  selector.New(cat, index, engine, generator, logger),
		extractor: extractor.New(generator, logger),
	}
}

// newProcessor starts a fresh conversation over the shared components.
func (p *pipeline) newProcessor(logger *zap.Logger) *processor.Processor {
	return processor.New(p.selector, p.extractor, p.sparql, p.llm, logger)
}
