package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mindmap/internal/config"
	"mindmap/internal/domain"
	"mindmap/internal/handler"
	"mindmap/internal/hub"
	"mindmap/internal/metrics"
	"mindmap/internal/service"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mindmap HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := flags.loadConfig()
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if path != "" {
				logger.Info("config loaded", zap.String("path", path))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

// serve wires the coordinator, event stream and HTTP server and runs them
// until ctx is cancelled
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	m := metrics.NewCollector()

	eventBus := service.NewEventBus()
	sseHub := hub.New(hub.Options{
		Buffer:       cfg.Events.Buffer,
		ClientBuffer: cfg.Events.ClientBuffer,
		KeepAlive:    cfg.Events.KeepAlive.Duration(),
	}, logger.Named("hub"), m)

	svc := service.NewGraphService(eventBus, service.Options{
		SeedLabel:       cfg.Graph.SeedLabel,
		SeedColor:       cfg.Graph.SeedColor,
		DefaultStyle:    domain.StyleID(cfg.Graph.DefaultStyle),
		SpawnRadius:     cfg.Graph.SpawnRadius,
		MaxUploadBytes:  cfg.Documents.MaxUploadBytes,
		MaxFiles:        cfg.Documents.MaxFiles,
		ReadConcurrency: cfg.Documents.ReadConcurrency,
	}, logger.Named("graph"), m)

	graphHandler := handler.NewGraphHandler(svc, handler.Limits{
		MaxUploadBytes: cfg.Documents.MaxUploadBytes,
		MaxFiles:       cfg.Documents.MaxFiles,
	}, logger.Named("http"))

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.NewRouter(graphHandler, handler.RouterOptions{
			CORSOrigins: cfg.Server.CORSOrigins,
			Events:      sseHub,
			Metrics:     m,
			Logger:      logger.Named("http"),
		}),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	// Connect event bus to SSE hub
	events := make(chan service.Event, cfg.Events.Buffer)
	eventBus.Subscribe(events)
	defer eventBus.Unsubscribe(events)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.Run(gctx)
	})
	g.Go(func() error {
		sseHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case e := <-events:
				sseHub.Broadcast(e)
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", zap.Error(err))
		}
		return nil
	})

	err := g.Wait()
	logger.Info("server stopped")
	return err
}
