package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/quake-report/internal/adapter/http"
	"github.com/couchcryptid/quake-report/internal/pipeline"
	"github.com/couchcryptid/quake-report/internal/presenter"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest earthquake rows, probes and metrics over HTTP",
		Long: `serve loads the feed once at startup and again on every POST /refresh.
With KAFKA_ENABLED=true each successful load is also published to KAFKA_TOPIC.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(ctx context.Context) error {
	logger := a.logger
	metrics := a.newMetrics()

	var publisher pipeline.Publisher
	if a.cfg.KafkaEnabled {
		writer := a.newPublisher(a.cfg, metrics, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", a.cfg.KafkaTopic, "brokers", a.cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	loader := a.newLoader(metrics, publisher)
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, loader, presenter.New(a.cfg.Location), logger)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Initial load; readiness flips once it completes.
	if err := loader.Refresh(ctx); err != nil {
		logger.Warn("initial load not started", "error", err)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serveErr:
		logger.Error("http server error", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return runErr
}
