package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/storage"
)

func TestLoggingMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	var called bool
	handler := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
}

func TestAccessLogRecordsUploadAndPlan(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	planner := planning.NewPlanner(batching.New(), zap.NewNop(),
		planning.WithIDGenerator(func() string { return "plan-log" }),
	)
	handler := NewHandler(planner, storage.NewMemoryStorage(), storage.NewMemoryPlanStore(1))
	router := NewRouter(handler, logger, WithRateLimit(0, 0))

	rec := upload(t, router, "orders.csv", []byte(sampleSheet), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/upload" {
		t.Fatalf("unexpected path %v", fields["path"])
	}
	if fields["plan_id"] != "plan-log" {
		t.Fatalf("expected plan_id plan-log, got %v", fields["plan_id"])
	}
	if fields["upload_bytes"] != int64(len(sampleSheet)) {
		t.Fatalf("expected upload_bytes %d, got %v", len(sampleSheet), fields["upload_bytes"])
	}
	if fields["orders"] != int64(5) {
		t.Fatalf("expected 5 orders, got %v", fields["orders"])
	}
	if fields["request_id"] != rec.Header().Get("X-Request-ID") {
		t.Fatalf("expected request id to match response header")
	}
}

func TestAccessLogOmitsPlanForOtherRoutes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	planner := planning.NewPlanner(batching.New(), zap.NewNop())
	handler := NewHandler(planner, storage.NewMemoryStorage(), storage.NewMemoryPlanStore(1))
	router := NewRouter(handler, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if _, ok := fields["plan_id"]; ok {
		t.Fatalf("health request must not log a plan id")
	}
	if _, ok := fields["upload_bytes"]; ok {
		t.Fatalf("health request must not log an upload size")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := recoveryMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestStatusRecorderWriteHeader(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: underlying}
	rec.WriteHeader(http.StatusTeapot)

	if rec.status != http.StatusTeapot {
		t.Fatalf("expected status to be recorded")
	}
	if underlying.Code != http.StatusTeapot {
		t.Fatalf("expected status to propagate to ResponseWriter")
	}
}

func TestRateLimitAppliesOnlyToUploads(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}))

	for _, target := range []string{"/api/health", "/api/capacity", "/api/plans"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected %s to bypass the limiter, got %d", target, rec.Code)
		}
	}

	rec := upload(t, router, "orders.csv", []byte(sampleSheet), nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected upload to be limited, got %d", rec.Code)
	}
}

func TestWithRateLimitDisablesLimiterWhenZero(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}), WithRateLimit(0, 0))

	rec := upload(t, router, "orders.csv", []byte(sampleSheet), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected limiter to be disabled, got %d", rec.Code)
	}
}

func TestWithRateLimitEnforcesLimitPerClient(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(1, 1))

	send := func(remote string) int {
		body, contentType := multipartBody(t, "orders.csv", []byte(sampleSheet), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("198.51.100.7:4000"); code != http.StatusOK {
		t.Fatalf("expected first upload to succeed, got %d", code)
	}
	if code := send("198.51.100.7:4001"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second upload from the same host to be limited, got %d", code)
	}
	if code := send("203.0.113.9:4000"); code != http.StatusOK {
		t.Fatalf("expected another client to be unaffected, got %d", code)
	}
}

func newTestRouter(t *testing.T, opts ...RouterOption) http.Handler {
	t.Helper()

	logger := zaptest.NewLogger(t)
	planner := planning.NewPlanner(batching.New(), logger)
	handler := NewHandler(planner, storage.NewMemoryStorage(), storage.NewMemoryPlanStore(1))
	return NewRouter(handler, logger, opts...)
}
