package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/api"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/config"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/render"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/storage"
	"github.com/Mohd-ismail0/paper-deckle-matcher/web"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	plans  storage.PlanStore
	logger *zap.Logger
	server *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetCapacity(cfg.Capacity); err != nil {
		return nil, fmt.Errorf("failed to apply capacity: %w", err)
	}

	plans, err := storage.OpenPlanStore(cfg.PlanStoreDriver, cfg.PlanStorePath, cfg.PlanHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan store: %w", err)
	}

	planner := planning.NewPlanner(batching.New(), logger, planning.WithConcurrency(cfg.Concurrency))
	renderer, err := render.NewHTML()
	if err != nil {
		_ = plans.Close()
		return nil, fmt.Errorf("failed to build HTML renderer: %w", err)
	}

	handler := api.NewHandler(planner, store, plans,
		api.WithLogger(logger),
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithPages(renderer),
	)

	rootHandler := BuildRootHandler(router)

	return &App{
		plans:  plans,
		logger: logger,
		server: NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that serves the embedded
// static files and hands every other path to router.
func BuildRootHandler(router http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	mux.Handle("/", router)
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the plan history store. Call it after the server has shut down.
func (a *App) Close() error {
	return a.plans.Close()
}
