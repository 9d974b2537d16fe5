package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/ingest"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/storage"
)

type contextKey string

const requestTraceContextKey contextKey = "requestTrace"

const (
	defaultMaxUploadBytes = 10 << 20
	defaultPlanListLimit  = 20
	uploadFormField       = "file"
	capacityFormField     = "capacity"
)

const (
	msgNoFile        = "No file uploaded"
	msgBadFile       = "Uploaded file is empty or improperly formatted"
	msgInvalidRows   = "Invalid order rows"
	msgFileTooLarge  = "Uploaded file is too large"
	msgBadCapacity   = "Invalid capacity"
	msgProcessingErr = "Error processing file"
)

var errNoFile = errors.New("no file in request")

// Handler wires planner and storage dependencies into HTTP handlers.
type Handler struct {
	planner *planning.Planner
	storage storage.Storage
	plans   storage.PlanStore
	logger  *zap.Logger

	clock          func() time.Time
	maxUploadBytes int64

	mu                sync.RWMutex
	capacityUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for failures that are hidden from clients.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxUploadBytes bounds the size of an upload request body.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(planner *planning.Planner, store storage.Storage, plans storage.PlanStore, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner:        planner,
		storage:        store,
		plans:          plans,
		logger:         zap.NewNop(),
		maxUploadBytes: defaultMaxUploadBytes,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.capacityUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCapacity(w http.ResponseWriter, r *http.Request) {
	_ = r
	capacity, err := h.storage.GetCapacity()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := capacityResponse{
		Capacity:  number(capacity),
		UpdatedAt: h.currentCapacityUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutCapacity(w http.ResponseWriter, r *http.Request) {
	var req capacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	capacity, err := decimal.NewFromString(req.Capacity.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, msgBadCapacity, "capacity must be a number")
		return
	}

	if err := h.storage.SetCapacity(capacity); err != nil {
		if errors.Is(err, batching.ErrInvalidCapacity) {
			writeError(w, http.StatusBadRequest, msgBadCapacity, err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markCapacityUpdated()

	resp := capacityResponse{
		Capacity:  number(capacity),
		UpdatedAt: h.currentCapacityUpdatedAt(),
		Message:   "Capacity updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, err := h.planUpload(w, r)
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}

	resp := newPlanResponse(plan)
	resp.CalculationTimeMs = time.Since(start).Milliseconds()
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	limit := defaultPlanListLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid request", "limit must be a positive integer")
			return
		}
		limit = value
	}

	records, err := h.plans.ListPlans(r.Context(), limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := planListResponse{Plans: make([]planRecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Plans = append(resp.Plans, planRecordResponse{
			ID:         rec.ID,
			Source:     rec.Source,
			CreatedAt:  rec.CreatedAt,
			Capacity:   number(rec.Capacity),
			GroupCount: rec.GroupCount,
			BatchCount: rec.BatchCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, err := h.plans.GetPlan(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrPlanNotFound) {
			writeError(w, http.StatusNotFound, "Plan not found", "no plan with id "+id)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(plan))
}

// planUpload reads the uploaded sheet from r, plans it and records the plan
// in history. It is shared by the JSON API and the HTML report page.
func (h *Handler) planUpload(w http.ResponseWriter, r *http.Request) (planning.Plan, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return planning.Plan{}, err
		}
		return planning.Plan{}, errNoFile
	}
	defer func() {
		_ = file.Close()
	}()
	recordUpload(r.Context(), header.Size)

	capacity, err := h.requestCapacity(r)
	if err != nil {
		return planning.Plan{}, err
	}

	orders, err := ingest.Parse(header.Filename, file)
	if err != nil {
		return planning.Plan{}, err
	}

	plan, err := h.planner.Plan(r.Context(), header.Filename, orders, capacity)
	if err != nil {
		return planning.Plan{}, err
	}
	recordPlan(r.Context(), plan.ID, len(orders))

	if err := h.plans.SavePlan(context.WithoutCancel(r.Context()), plan); err != nil {
		h.logger.Warn("failed to record plan",
			zap.String("plan_id", plan.ID),
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
	return plan, nil
}

// requestCapacity returns the capacity override carried by the request, or
// the stored capacity when there is none.
func (h *Handler) requestCapacity(r *http.Request) (batching.Width, error) {
	raw := strings.TrimSpace(r.FormValue(capacityFormField))
	if raw == "" {
		return h.storage.GetCapacity()
	}
	capacity, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Join(batching.ErrInvalidCapacity, err)
	}
	if err := batching.ValidateCapacity(capacity); err != nil {
		return decimal.Zero, err
	}
	return capacity, nil
}

// uploadFailure describes how an upload error is reported to the client.
type uploadFailure struct {
	status   int
	message  string
	details  string
	rows     []rowErrorResponse
	internal bool
}

func classifyUploadError(err error) uploadFailure {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errNoFile):
		return uploadFailure{status: http.StatusBadRequest, message: msgNoFile}
	case errors.As(err, &tooLarge):
		return uploadFailure{
			status:  http.StatusRequestEntityTooLarge,
			message: msgFileTooLarge,
			details: "limit is " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
		}
	case errors.Is(err, batching.ErrInvalidCapacity):
		return uploadFailure{status: http.StatusBadRequest, message: msgBadCapacity, details: err.Error()}
	case errors.Is(err, ingest.ErrInvalidRow):
		failure := uploadFailure{status: http.StatusUnprocessableEntity, message: msgInvalidRows}
		for _, re := range ingest.RowErrors(err) {
			failure.rows = append(failure.rows, rowErrorResponse{Row: re.Row, Column: re.Column, Error: re.Err.Error()})
		}
		return failure
	case errors.Is(err, ingest.ErrNoInput), errors.Is(err, ingest.ErrEmptySheet), errors.Is(err, ingest.ErrMalformed):
		return uploadFailure{status: http.StatusBadRequest, message: msgBadFile, details: err.Error()}
	default:
		return uploadFailure{status: http.StatusInternalServerError, message: msgProcessingErr, internal: true}
	}
}

// uploadFailureFor classifies err and logs the ones hidden from the client.
func (h *Handler) uploadFailureFor(r *http.Request, err error) uploadFailure {
	failure := classifyUploadError(err)
	if failure.internal {
		h.logger.Error("error processing file",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
	return failure
}

func (h *Handler) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	failure := h.uploadFailureFor(r, err)
	writeJSON(w, failure.status, errorResponse{
		Error:   failure.message,
		Details: failure.details,
		Rows:    failure.rows,
	})
}

func (h *Handler) currentCapacityUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.capacityUpdatedAt
}

func (h *Handler) markCapacityUpdated() {
	h.mu.Lock()
	h.capacityUpdatedAt = h.clock()
	h.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
