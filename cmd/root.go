package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"cross-chain-flow/config"
	"cross-chain-flow/pkg/assets"
	"cross-chain-flow/pkg/client"
	"cross-chain-flow/pkg/integration"
	"cross-chain-flow/pkg/metrics"
	"cross-chain-flow/pkg/quote"
)

var rootCmd = &cobra.Command{
	Use:   "xflow",
	Short: "Cross-chain swap quote aggregation across THORChain, MayaChain and Chainflip",
	Long: `xflow asks a multi-provider aggregator for cross-chain swap routes, normalizes
the provider-specific payloads into one route shape, validates them per provider and
returns them ranked by expected output.

Examples:
  xflow quote 0.01 BTC to ETH --recipient 0x742d35Cc6634C0532925a3b844Bc454e4438f44e
  xflow status <tx-hash> --watch
  xflow list-tokens --provider THORCHAIN
  xflow test-integrations
  xflow serve`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// app bundles the components every command is built from
type app struct {
	cfg      *config.Config
	client   *client.AggregatorClient
	quotes   *quote.Service
	lister   *assets.Lister
	reporter *integration.Reporter
	registry *prometheus.Registry
}

// newApp loads configuration, configures logging and wires the components
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	setupLogging(cfg, verbose)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	apiClient := client.NewAggregatorClient(client.Options{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
		Debug:     cfg.Debug,
		Logger:    log.Logger,
	})

	return &app{
		cfg:    cfg,
		client: apiClient,
		quotes: quote.NewService(apiClient, quote.Options{
			DefaultTTL: cfg.QuoteTTL,
			Debug:      cfg.Debug,
			Metrics:    m,
			Logger:     log.Logger,
		}),
		lister:   assets.NewLister(apiClient, log.Logger),
		reporter: integration.NewReporter(apiClient, cfg.TestRecipient, log.Logger),
		registry: registry,
	}, nil
}

// setupLogging configures the global logger. Logs go to stderr so --json output stays clean.
func setupLogging(cfg *config.Config, verbose bool) {
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose || cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
