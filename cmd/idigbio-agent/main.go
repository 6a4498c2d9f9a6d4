package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/agent"
	"github.com/acislab/ichatbio-idigbio-agent/internal/config"
	logpkg "github.com/acislab/ichatbio-idigbio-agent/internal/logger"
	"github.com/acislab/ichatbio-idigbio-agent/internal/metrics"
	chiTransport "github.com/acislab/ichatbio-idigbio-agent/internal/transport/chi"
	"github.com/acislab/ichatbio-idigbio-agent/internal/transport/console"
	idigbioTransport "github.com/acislab/ichatbio-idigbio-agent/internal/transport/idigbio"
	openaiTransport "github.com/acislab/ichatbio-idigbio-agent/internal/transport/openai"
	mediauc "github.com/acislab/ichatbio-idigbio-agent/internal/usecase/media"
	occurrenceuc "github.com/acislab/ichatbio-idigbio-agent/internal/usecase/occurrence"
	summaryuc "github.com/acislab/ichatbio-idigbio-agent/internal/usecase/summary"
	"github.com/acislab/ichatbio-idigbio-agent/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "idigbio-agent",
	Short: "Natural-language agent for the iDigBio biodiversity database",
	Long: `idigbio-agent translates natural-language requests into iDigBio search
API queries. It can run as an HTTP agent service or execute single
requests from the command line.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP agent service",
	RunE:  runServe,
}

var occurrencesCmd = &cobra.Command{
	Use:   "occurrences <request>",
	Short: "Search occurrence records for a natural-language request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOneShot("find_occurrence_records"),
}

var countCmd = &cobra.Command{
	Use:   "count <request>",
	Short: "Count records matching a natural-language request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOneShot("count_occurrence_records"),
}

var mediaCmd = &cobra.Command{
	Use:   "media <request>",
	Short: "Search media records for a natural-language request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOneShot("find_media_records"),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("idigbio-agent %s (%s)\n", version.Version, version.Commit)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, occurrencesCmd, countCmd, mediaCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the environment config, builds the logger, and wires the agent.
func setup() (config.Config, *zap.Logger, *agent.Agent, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, buildAgent(cfg, logger), nil
}

// buildAgent is the composition root: generation client, iDigBio client, and
// the three operation services.
func buildAgent(cfg config.Config, logger *zap.Logger) *agent.Agent {
	gen := openaiTransport.NewGenerator(&openaiTransport.Config{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxAttempts: cfg.Generation.MaxAttempts,
		Logger:      logger,
	})

	api := idigbioTransport.NewClient(&idigbioTransport.Config{
		SearchBase: cfg.IDigBio.SearchAPIBase,
		Timeout:    time.Duration(cfg.IDigBio.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	occSvc := occurrenceuc.New(gen, api, &occurrenceuc.Config{
		SearchBase:   cfg.IDigBio.SearchAPIBase,
		PortalBase:   cfg.IDigBio.PortalBase,
		DownloadBase: cfg.IDigBio.DownloadAPIBase,
		Logger:       logger,
	})
	medSvc := mediauc.New(gen, api, &mediauc.Config{
		SearchBase: cfg.IDigBio.SearchAPIBase,
		PortalBase: cfg.IDigBio.PortalBase,
		Logger:     logger,
	})
	sumSvc := summaryuc.New(gen, api, &summaryuc.Config{
		SearchBase: cfg.IDigBio.SearchAPIBase,
		Logger:     logger,
	})

	return agent.New(occSvc, medSvc, sumSvc)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, a, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting iDigBio agent service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_api_base", cfg.IDigBio.SearchAPIBase),
		zap.String("model", cfg.Generation.Model),
	)

	metrics.RegisterAgentMetrics()

	server := chiTransport.NewServer(a, logger)
	router := server.Router(cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// runOneShot executes one entrypoint against a request given on the command
// line and prints the transcript to stdout.
func runOneShot(entrypoint string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, logger, a, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		request := strings.Join(args, " ")
		responder := &console.Responder{Out: os.Stdout}

		return a.Run(cmd.Context(), responder, entrypoint, request)
	}
}
