package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/selector"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Rebuild the template embedding cache",
	Long: `Recomputes the embedding for every registered query template and
rewrites the cache file. Run this after changing template descriptions or
switching embedding models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := buildPipeline(cfg, logger)

		entries := selector.IndexEntries(p.catalog)
		if err := p.index.Rebuild(cmd.Context(), entries); err != nil {
			return fmt.Errorf("rebuilding template embeddings: %w", err)
		}
		fmt.Printf("Embedded %d templates into %s\n", len(entries), cfg.Embedding.CachePath)
		return nil
	},
}
