package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/backup"
	"github.com/alfredjeanlab/quotewidget/internal/broadcast"
	"github.com/alfredjeanlab/quotewidget/internal/config"
	"github.com/alfredjeanlab/quotewidget/internal/events"
	"github.com/alfredjeanlab/quotewidget/internal/quotes"
	"github.com/alfredjeanlab/quotewidget/internal/render"
	"github.com/alfredjeanlab/quotewidget/internal/server"
	"github.com/alfredjeanlab/quotewidget/internal/settings"
	"github.com/alfredjeanlab/quotewidget/internal/store"
	"github.com/alfredjeanlab/quotewidget/internal/theme"
	"github.com/alfredjeanlab/quotewidget/internal/widget"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the quote widget server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client.
	PersistentPreRunE: localPreRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		// Load configuration.
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Open the preference store.
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		logger.Info("store opened", "backend", cfg.Store)

		palette, err := loadPalette(cfg.ThemeFile)
		if err != nil {
			st.Close()
			return err
		}

		// Create event publishers. The SSE hub always receives events.
		hub := server.NewHub()
		var publisher events.Publisher = hub
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = events.Multi(hub, pub)
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			logger.Info("NATS events disabled (QW_NATS_URL not set)")
		}

		// Create the rendering pipeline.
		resolver := settings.New(st, palette)
		picker := quotes.NewPicker(quoteLoader(context.Background(), cfg, logger))
		views := render.NewRecorder()
		renderer := render.NewRenderer(resolver, picker, views, render.PublishSink{Publisher: publisher})

		provider := widget.NewProvider(widget.Config{
			Store:     st,
			Resolver:  resolver,
			Renderer:  renderer,
			Publisher: publisher,
			Views:     views,
		})
		if err := provider.Start(context.Background()); err != nil {
			logger.Error("initial render failed", "err", err)
		}

		// Create server components.
		widgetServer := server.NewWidgetServer(provider, views, hub)
		grpcServer := server.NewGRPCServer(widgetServer, cfg.AuthToken)

		// Start gRPC listener.
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			provider.Stop()
			publisher.Close()
			st.Close()
			return err
		}

		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		// Start HTTP server.
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: widgetServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startBackups(cfg, st, logger)

		// Start the broadcast subscriber if NATS is available.
		var broadcastCancel context.CancelFunc
		if cfg.NATSURL != "" {
			sub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				logger.Error("failed to create broadcast subscriber", "err", err)
			} else {
				handler := broadcast.NewHandler(provider, logger)
				var broadcastCtx context.Context
				broadcastCtx, broadcastCancel = context.WithCancel(context.Background())
				go func() {
					if err := handler.StartSubscriber(broadcastCtx, sub); err != nil {
						logger.Error("broadcast subscriber error", "err", err)
					}
					sub.Close()
				}()
			}
		}

		logger.Info("quotewidget server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
		)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if broadcastCancel != nil {
			broadcastCancel()
			logger.Info("broadcast subscriber stopped")
		}

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("backup scheduler stopped")
		}

		provider.Stop()
		widgetServer.Shutdown()

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// loadPalette returns the TOML palette at path, or the built-in one.
func loadPalette(path string) (*theme.Palette, error) {
	if path == "" {
		return theme.DefaultPalette(), nil
	}
	return theme.LoadPalette(path)
}

// quoteLoader picks the corpus source: S3, then a local file, then the
// embedded corpus.
func quoteLoader(ctx context.Context, cfg *config.Config, logger *slog.Logger) quotes.Loader {
	if cfg.QuotesS3Bucket != "" {
		l, err := quotes.NewS3Loader(ctx, cfg.QuotesS3Bucket, cfg.QuotesS3Key, cfg.S3Region, cfg.S3Endpoint)
		if err == nil {
			logger.Info("quotes from S3", "bucket", cfg.QuotesS3Bucket, "key", cfg.QuotesS3Key)
			return l
		}
		logger.Error("failed to create S3 quote loader", "err", err)
	}
	if cfg.QuotesFile != "" {
		logger.Info("quotes from file", "path", cfg.QuotesFile)
		return quotes.FileLoader{Path: cfg.QuotesFile}
	}
	return quotes.Embedded()
}

// startBackups starts the backup scheduler when any destination is
// configured. It returns nil otherwise.
func startBackups(cfg *config.Config, st store.Store, logger *slog.Logger) *backup.Scheduler {
	if !cfg.BackupEnabled() {
		return nil
	}
	var dests []backup.Destination

	if cfg.BackupS3Bucket != "" {
		s3Dest, err := backup.NewS3Destination(
			context.Background(),
			cfg.BackupS3Bucket,
			cfg.BackupS3Key,
			cfg.S3Region,
			cfg.S3Endpoint,
		)
		if err != nil {
			logger.Error("failed to create S3 backup destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("backup S3 destination enabled", "bucket", cfg.BackupS3Bucket, "key", cfg.BackupS3Key)
		}
	}

	if cfg.BackupGitRepo != "" {
		dests = append(dests, backup.NewGitDestination(cfg.BackupGitRepo, cfg.BackupGitFile, cfg.BackupGitBranch))
		logger.Info("backup git destination enabled", "repo", cfg.BackupGitRepo, "file", cfg.BackupGitFile)
	}

	if len(dests) == 0 {
		return nil
	}
	scheduler := backup.NewScheduler(st, dests, cfg.BackupInterval, logger)
	scheduler.Start()
	logger.Info("backup scheduler started", "interval", cfg.BackupInterval)
	return scheduler
}
