package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"cross-chain-flow/pkg/api"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quote, status and token endpoints over HTTP",
	Long: `Start the HTTP server.

Endpoints:
  POST /quote           swap quote, or {"action":"test-integrations"}
  GET  /status/{hash}   swap status by inbound transaction hash
  GET  /tokens          token lists of every provider
  GET  /health          liveness
  GET  /metrics         Prometheus metrics

Examples:
  xflow serve
  xflow serve --listen :9000`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) {
	a, err := newApp(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	addr := a.cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	server := api.NewServer(api.Deps{
		Quoter:      a.quotes,
		Status:      a.client,
		Tokens:      a.lister,
		Integration: a.reporter,
		Gatherer:    a.registry,
		Logger:      log.Logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, addr); err != nil {
		log.Error().Err(err).Msg("HTTP server stopped")
		os.Exit(1)
	}
}
