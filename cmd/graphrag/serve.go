package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat API",
	Long: `Serves the question-answering pipeline over HTTP:

  POST /api/chat       one conversation turn
  GET  /api/templates  registered query templates
  GET  /api/health     liveness`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := buildPipeline(cfg, logger)

		handler := api.NewHandler(p.catalog, func() api.Conversation {
			return p.newProcessor(logger)
		}, logger)
		server := api.NewServer(handler, cfg.API.Addr, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}
