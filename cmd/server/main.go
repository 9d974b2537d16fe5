package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/application"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/config"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("deckle-server", "Paper deckle matcher - batches reel orders into machine-width runs")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	capacity := kingpinApp.Flag("capacity", "Machine deckle capacity used for new plans").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	planStore := kingpinApp.Flag("plan-store", "Plan history driver (memory, sqlite)").String()
	planStorePath := kingpinApp.Flag("plan-store-path", "SQLite database file for plan history").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *capacity != "" {
		overrides.Capacity = capacity
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *planStore != "" {
		overrides.PlanStore = planStore
	}

	if *planStorePath != "" {
		overrides.PlanStorePath = planStorePath
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), app, cfg.ShutdownGracePeriod, logger)
}

// shutdown waits for a termination signal, drains the server and then closes
// the plan store.
func shutdown(server *http.Server, plans io.Closer, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	if err := plans.Close(); err != nil {
		logger.Warn("failed to close plan store", zap.Error(err))
	}
}
