package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/musicbridge/musicbridge/api"
	"github.com/musicbridge/musicbridge/api/handlers"
	"github.com/musicbridge/musicbridge/internal/app"
	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/musicbridge/musicbridge/internal/infrastructure"
	"github.com/musicbridge/musicbridge/internal/observability"
	"github.com/musicbridge/musicbridge/pkg/logger"
)

var version = "dev"

var (
	configPath string
	host       string
	port       int
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:     "musicbridge-server",
	Short:   "HTTP service turning Spotify links into downloaded media archives",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			config.Server.Host = host
		}
		if cmd.Flags().Changed("port") {
			config.Server.Port = port
		}
		if cmd.Flags().Changed("debug") {
			config.Server.Debug = debug
		}
		if config.Server.Debug {
			config.Logging.Level = "debug"
		}
		return runServer(cmd.Context(), config)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug mode")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, config *domain.Config) error {
	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// Categorized JSON logs (batch, error) served by /api/v1/logs
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Logging.LogsDir,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize multi-logger: %w", err)
	}
	defer multiLog.Close()

	handlers.Version = version
	log.Info("Starting musicbridge server",
		zap.String("version", version),
		zap.String("addr", config.Server.Address()),
		zap.Duration("pacing_interval", config.Pacing.Interval),
		zap.String("ytdlp", config.Download.YTDLPBinary))

	if err := app.ValidateCredentials(config); err != nil {
		return err
	}

	repo, err := infrastructure.NewSQLiteBatchRepository(config.History.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	defer repo.Close()

	catalog, err := infrastructure.NewSpotifyCatalog(ctx, &config.Spotify)
	if err != nil {
		return fmt.Errorf("failed to initialize spotify client: %w", err)
	}
	searcher, err := infrastructure.NewYouTubeSearcher(ctx, config.YouTube.APIKey)
	if err != nil {
		return fmt.Errorf("failed to initialize youtube client: %w", err)
	}

	metrics := observability.New()
	batches := app.NewBatchService(app.BatchDeps{
		Repo:     repo,
		Resolver: app.NewResolver(catalog, &config.Spotify, log),
		Matcher:  app.NewMatcher(searcher, &config.YouTube, log),
		Fetcher:  infrastructure.NewYTDLPFetcher(&config.Download, log),
		Tagger:   infrastructure.NewID3Tagger(),
		Packager: infrastructure.NewZipPackager(),
		NewPacer: infrastructure.PacerFactory(config.Pacing),
		Notifier: infrastructure.NewNotificationService(&config.Notification, log),
		Metrics:  metrics,
		Events:   multiLog,
	}, &config.Download, log)

	server := &http.Server{
		Addr:              config.Server.Address(),
		Handler:           api.SetupRouter(batches, metrics, config, log),
		ReadHeaderTimeout: 10 * time.Second,
		// in-flight batches stop between tracks on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}
