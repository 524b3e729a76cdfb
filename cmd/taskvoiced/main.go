// Taskvoiced serves the fulfillment webhook for a voice-driven task
// list: it decodes the caller's identity from the request credential,
// stores tasks per user, and renders the task collection back to the
// conversational platform.
//
// Configuration is loaded from a YAML file with environment variable
// overrides. See internal/config for details.
//
// Usage:
//
//	# Start with defaults (~/.config/taskvoiced/config.yaml)
//	taskvoiced
//
//	# Explicit config file
//	taskvoiced --config /etc/taskvoiced/config.yaml
//
//	# Configure via environment
//	SERVER_PORT=9090 TASKS_BACKEND=memory AUTH_VERIFIER=static taskvoiced
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/taskvoice/internal/config"
	"github.com/fyrsmithlabs/taskvoice/internal/convo"
	"github.com/fyrsmithlabs/taskvoice/internal/fulfill"
	"github.com/fyrsmithlabs/taskvoice/internal/http"
	"github.com/fyrsmithlabs/taskvoice/internal/logging"
	"github.com/fyrsmithlabs/taskvoice/internal/tasks"
	"github.com/fyrsmithlabs/taskvoice/pkg/auth"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  taskvoiced           Start the fulfillment server\n")
			fmt.Fprintf(os.Stderr, "  taskvoiced version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("taskvoiced\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires the daemon and blocks until the context is cancelled: load
// configuration, build the logger, verifier, and store, fail fast on
// store connectivity, then serve until shutdown.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(ctx, "taskvoiced starting",
		zap.String("version", version),
		zap.String("verifier", cfg.Auth.Verifier),
		zap.String("backend", cfg.Tasks.Backend),
	)

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing verifier: %w", err)
	}

	decoder, err := auth.NewDecoder(verifier)
	if err != nil {
		return fmt.Errorf("initializing decoder: %w", err)
	}

	registry := prometheus.NewRegistry()

	store, err := newStore(cfg, logger, registry)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	// Connect before accepting traffic so a misconfigured store fails
	// the deploy instead of every conversation.
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("connecting store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Tasks.OpTimeout)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error(closeCtx, "closing store failed", zap.Error(err))
		}
	}()

	service, err := fulfill.NewService(decoder, store, logger)
	if err != nil {
		return fmt.Errorf("initializing fulfillment service: %w", err)
	}

	app, err := convo.NewApp(logger)
	if err != nil {
		return fmt.Errorf("initializing fulfillment app: %w", err)
	}
	service.Register(app)

	server, err := http.NewServer(app, logger, registry, http.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		RateLimit: cfg.Server.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown error", zap.Error(err))
		return err
	}

	logger.Info(context.Background(), "server stopped gracefully")
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	return logging.NewLogger(logCfg)
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	switch cfg.Auth.Verifier {
	case config.VerifierGoogle:
		return auth.NewGoogleVerifier(ctx, cfg.Auth.Audience)
	case config.VerifierStatic:
		return auth.StaticVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown verifier %q", cfg.Auth.Verifier)
	}
}

func newStore(cfg *config.Config, logger *logging.Logger, registry *prometheus.Registry) (tasks.Store, error) {
	metrics := tasks.NewMetrics(registry)

	switch cfg.Tasks.Backend {
	case config.BackendMongo:
		return tasks.NewMongoStore(&tasks.MongoConfig{
			URI:        cfg.Tasks.MongoURI,
			Database:   cfg.Tasks.Database,
			Collection: cfg.Tasks.Collection,
			OpTimeout:  cfg.Tasks.OpTimeout,
		}, logger, metrics)
	case config.BackendMemory:
		return tasks.NewMemoryStore(metrics), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Tasks.Backend)
	}
}
