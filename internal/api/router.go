package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/render"
)

const (
	defaultUploadRate  = 2
	defaultUploadBurst = 10
)

// RouterOption configures the behaviour of NewRouter.
type RouterOption func(*routerConfig)

// WithLogging controls whether access logs are emitted.
func WithLogging(enabled bool) RouterOption {
	return func(cfg *routerConfig) {
		cfg.enableLogging = enabled
	}
}

// WithRateLimiter overrides the upload limiter (primarily for tests).
func WithRateLimiter(limiter uploadLimiter) RouterOption {
	return func(cfg *routerConfig) {
		cfg.uploadLimiter = limiter
	}
}

// WithRateLimit allows each client ratePerSecond uploads with the given
// burst. A zero rate or burst disables upload limiting.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		if ratePerSecond <= 0 || burst <= 0 {
			cfg.uploadLimiter = nil
			return
		}
		cfg.uploadLimiter = newClientLimiter(ratePerSecond, burst)
	}
}

// WithPages serves the HTML upload page at / and its report at /report.
func WithPages(renderer *render.HTMLRenderer) RouterOption {
	return func(cfg *routerConfig) {
		cfg.renderer = renderer
	}
}

type routerConfig struct {
	enableLogging bool
	logger        *zap.Logger
	uploadLimiter uploadLimiter
	renderer      *render.HTMLRenderer
}

// NewRouter creates an HTTP router with standard middleware. Only the upload
// routes are rate limited since they carry the parsing and planning work.
func NewRouter(handler *Handler, logger *zap.Logger, opts ...RouterOption) http.Handler {
	cfg := routerConfig{
		enableLogging: true,
		logger:        logger,
		uploadLimiter: newClientLimiter(defaultUploadRate, defaultUploadBurst),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	limited := func(h http.HandlerFunc) http.Handler {
		return rateLimitMiddleware(cfg.uploadLimiter, h)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/health", http.HandlerFunc(handler.handleHealth))
	mux.Handle("GET /api/capacity", http.HandlerFunc(handler.handleGetCapacity))
	mux.Handle("PUT /api/capacity", http.HandlerFunc(handler.handlePutCapacity))
	mux.Handle("POST /api/upload", limited(handler.handleUpload))
	mux.Handle("GET /api/plans", http.HandlerFunc(handler.handleListPlans))
	mux.Handle("GET /api/plans/{id}", http.HandlerFunc(handler.handleGetPlan))

	if cfg.renderer != nil {
		pages := &pageHandler{handler: handler, renderer: cfg.renderer}
		mux.Handle("GET /{$}", http.HandlerFunc(pages.handleIndex))
		mux.Handle("POST /report", limited(pages.handleReport))
	}

	var root http.Handler = mux
	root = corsMiddleware(root)
	root = recoveryMiddleware(cfg.logger, root)
	if cfg.enableLogging {
		root = loggingMiddleware(cfg.logger, root)
	}
	root = traceMiddleware(root)

	return root
}

// requestTrace collects what a request did so the access log can report it.
// Handlers fill it in; only the request's own goroutine touches it.
type requestTrace struct {
	id          string
	planID      string
	uploadBytes int64
	orders      int
}

func traceFromContext(ctx context.Context) *requestTrace {
	if tr, ok := ctx.Value(requestTraceContextKey).(*requestTrace); ok {
		return tr
	}
	return nil
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestTraceContextKey, &requestTrace{id: id})
}

func requestIDFromContext(ctx context.Context) string {
	if tr := traceFromContext(ctx); tr != nil {
		return tr.id
	}
	return ""
}

// recordUpload notes the uploaded file size on the request trace.
func recordUpload(ctx context.Context, size int64) {
	if tr := traceFromContext(ctx); tr != nil {
		tr.uploadBytes = size
	}
}

// recordPlan notes the plan produced for the request.
func recordPlan(ctx context.Context, planID string, orders int) {
	if tr := traceFromContext(ctx); tr != nil {
		tr.planID = planID
		tr.orders = orders
	}
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(contextWithRequestID(r.Context(), requestID)))
	})
}

func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if tr := traceFromContext(r.Context()); tr != nil {
			fields = append(fields, zap.String("request_id", tr.id))
			if tr.uploadBytes > 0 {
				fields = append(fields, zap.Int64("upload_bytes", tr.uploadBytes))
			}
			if tr.planID != "" {
				fields = append(fields, zap.String("plan_id", tr.planID), zap.Int("orders", tr.orders))
			}
		}
		logger.Info("request completed", fields...)
	})
}

func recoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestIDFromContext(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "Internal error", "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type,X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "X-Request-ID,Retry-After")
		h.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
