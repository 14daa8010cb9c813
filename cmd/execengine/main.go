// Command execengine runs the submission intake API, the job queue, and
// the worker pool that compiles and sandboxes each submission.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/entropic-labs/execengine/pkg/engine/api"
	"github.com/entropic-labs/execengine/pkg/engine/queue"
	"github.com/entropic-labs/execengine/pkg/engine/queue/postgresstore"
	"github.com/entropic-labs/execengine/pkg/engine/worker"
	"github.com/entropic-labs/execengine/pkg/infrastructure/config"
	"github.com/entropic-labs/execengine/pkg/infrastructure/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to execengine configuration file")
	flag.Parse()

	path := *configPath
	if path == "" {
		if defaultPath, err := config.GetDefaultConfigPath(); err == nil {
			path = defaultPath
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "execengine: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logLevel, err := logging.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "execengine: invalid log level: %v\n", err)
		os.Exit(1)
	}
	logging.InitGlobalLogger(&logging.Config{
		Level:            logLevel,
		Format:           logging.TextFormat,
		Output:           os.Stdout,
		EnableSanitizing: true,
	})
	logger := logging.GetGlobalLogger().WithComponent("bootstrap")

	if path != "" {
		if watcher, err := config.WatchFile(path); err != nil {
			logger.Warn(fmt.Sprintf("config hot-reload disabled: %v", err))
		} else {
			defer watcher.Close()
			watcher.OnReload(func(reloaded *config.Config) {
				if newLevel, err := logging.ParseLogLevel(reloaded.Logging.Level); err == nil {
					logging.GetGlobalLogger().SetLevel(newLevel)
					logger.Info("reloaded configuration from disk")
				}
			})
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := buildQueueStore(ctx, cfg)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to initialize queue store: %v", err))
		os.Exit(1)
	}
	if closeStore != nil {
		defer closeStore()
	}

	supervisor := worker.NewSupervisor(store, worker.SupervisorConfig{
		WorkerCount:         cfg.Worker.Count,
		PollTimeout:         cfg.Worker.PollTimeout(),
		ShutdownGracePeriod: cfg.Worker.ShutdownGrace(),
	})
	if err := supervisor.Start(); err != nil {
		logger.Error(fmt.Sprintf("failed to start worker pool: %v", err))
		os.Exit(1)
	}

	server := api.NewServer(store, supervisor)
	router := mux.NewRouter()
	server.Routes(router)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("listening on %s", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("http server stopped unexpectedly: %v", err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, draining in-flight submissions")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGrace())
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(fmt.Sprintf("http server shutdown did not complete cleanly: %v", err))
	}

	if err := supervisor.Shutdown(); err != nil {
		logger.Warn(fmt.Sprintf("worker pool shutdown did not complete cleanly: %v", err))
	}

	logger.Info("shutdown complete")
}

// buildQueueStore selects the Postgres-backed store when a DSN is
// configured, falling back to the in-memory store otherwise.
func buildQueueStore(ctx context.Context, cfg *config.Config) (queue.Store, func(), error) {
	if cfg.Queue.PostgresDSN == "" {
		return queue.NewInMemoryStore(queue.Config{
			StatusTTL: cfg.Queue.StatusTTL(),
		}), nil, nil
	}

	store, err := postgresstore.New(ctx, postgresstore.Config{
		ConnectionString: cfg.Queue.PostgresDSN,
		StatusTTL:        cfg.Queue.StatusTTL(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres queue store: %w", err)
	}
	return store, store.Close, nil
}
