// main package for the neo-tts service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/neo-tts/internal/backend/kokoro"
	"github.com/book-expert/neo-tts/internal/config"
	"github.com/book-expert/neo-tts/internal/core"
	"github.com/book-expert/neo-tts/internal/fsutil"
	"github.com/book-expert/neo-tts/internal/ledger"
	"github.com/book-expert/neo-tts/internal/objectstore"
	"github.com/book-expert/neo-tts/internal/orchestrator"
	"github.com/book-expert/neo-tts/internal/registry"
	"github.com/book-expert/neo-tts/internal/server"
	"github.com/book-expert/neo-tts/internal/voices"
	"github.com/book-expert/neo-tts/internal/worker"
)

const (
	ledgerFilename  = "results.csv"
	shutdownTimeout = 10 * time.Second
	readTimeout     = 15 * time.Second
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "neo-tts.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func ensureDirectories(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogsDir, cfg.Paths.UploadDir} {
		err := fsutil.EnsureDir(dir)
		if err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	return nil
}

func buildRegistry(cfg *config.Config, catalog *voices.Catalog, log *logger.Logger) *registry.Registry {
	reg := registry.New(log)

	reg.Register(kokoro.ModelName, func(ctx context.Context) (core.Backend, error) {
		return kokoro.New(
			ctx,
			cfg.Kokoro.ServiceURL,
			time.Duration(cfg.Kokoro.TimeoutSeconds)*time.Second,
			catalog,
			log,
		)
	})

	return reg
}

// startWorker connects to NATS and runs the job worker until ctx is done. It
// is a no-op when no NATS URL is configured.
func startWorker(
	ctx context.Context,
	cfg *config.Config,
	generator core.Generator,
	log *logger.Logger,
) error {
	if cfg.NATS.URL == "" {
		log.Info("No NATS URL configured, job worker disabled.")

		return nil
	}

	natsConnection, connectErr := nats.Connect(cfg.NATS.URL)
	if connectErr != nil {
		return fmt.Errorf("failed to connect to NATS at '%s': %w", cfg.NATS.URL, connectErr)
	}

	jetstreamContext, jetstreamErr := natsConnection.JetStream()
	if jetstreamErr != nil {
		return fmt.Errorf("failed to create JetStream context: %w", jetstreamErr)
	}

	store, storeErr := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if storeErr != nil {
		return fmt.Errorf("failed to open object store: %w", storeErr)
	}

	jobWorker := worker.New(
		natsConnection,
		cfg.NATS.TextProcessedSubject,
		cfg.NATS.JobModel,
		store,
		generator,
		log,
	)

	go func() {
		runErr := jobWorker.Run(ctx)
		if runErr != nil {
			log.Error("Job worker stopped: %v", runErr)
		}

		natsConnection.Close()
	}()

	log.System("Job worker listening on subject: %s", cfg.NATS.TextProcessedSubject)

	return nil
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}

	errChan := make(chan error, 1)

	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	log.System("HTTP API listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", shutdownErr)
		}

		return nil
	case serveErr := <-errChan:
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("HTTP server failed: %w", serveErr)
	}
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	err = ensureDirectories(cfg)
	if err != nil {
		bootstrapLog.Error("Failed to prepare directories: %v", err)

		return err
	}

	log, err := setupLogger(cfg.Paths.LogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := voices.NewCatalog()
	reg := buildRegistry(cfg, catalog, log)
	auditLog := ledger.NewCSV(filepath.Join(cfg.Paths.LogsDir, ledgerFilename))
	generator := orchestrator.New(reg, catalog, auditLog, cfg.Paths.OutputDir, log)
	api := server.New(generator, reg, catalog, cfg.Paths.OutputDir, log)

	err = startWorker(ctx, cfg, generator, log)
	if err != nil {
		log.Error("Failed to start job worker: %v", err)

		return err
	}

	return serveHTTP(ctx, cfg.ListenAddr(), api.Handler(), log)
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
