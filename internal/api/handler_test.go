package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/storage"
)

const sampleSheet = `OrderNo,party,ItemName,BF,GSM,size,Reelqty,Stockreal,DelDate
101,Acme,Kraft,18,120,2000,3,1,2024-11-05
102,Acme,Kraft,18,120,1000,1,0,2024-11-06
103,Birla,Liner,20,140,1500,2,2,2024-11-07
104,Birla,Liner,18,120,1600,4,0,2024-11-08
105,Cera,Fluting,20,140,3000,1,0,2024-11-09
`

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testServer struct {
	router http.Handler
	clock  *controllableClock
	store  *storage.MemoryStorage
}

func setupTestRouter(t *testing.T, opts ...HandlerOption) testServer {
	t.Helper()

	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))
	var seq int
	planner := planning.NewPlanner(batching.New(), zaptest.NewLogger(t),
		planning.WithClock(clock.Now),
		planning.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("plan-%d", seq)
		}),
	)

	store := storage.NewMemoryStorage()
	plans := storage.NewMemoryPlanStore(10)
	logger := zaptest.NewLogger(t)

	base := []HandlerOption{WithClock(clock.Now), WithLogger(logger)}
	handler := NewHandler(planner, store, plans, append(base, opts...)...)
	router := NewRouter(handler, logger, WithLogging(false))

	return testServer{router: router, clock: clock, store: store}
}

// multipartBody builds an upload form. A nil content omits the file part.
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if content != nil {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func upload(t *testing.T, router http.Handler, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type uploadBody struct {
	PlanID         string   `json:"planId"`
	Source         string   `json:"source"`
	Capacity       float64  `json:"capacity"`
	GroupOrder     []string `json:"groupOrder"`
	BatchesByGroup map[string][]struct {
		Orders []struct {
			OrderID     string  `json:"orderId"`
			Deckle      float64 `json:"deckle"`
			ReelsNeeded float64 `json:"reelsNeeded"`
		} `json:"orders"`
		UsedWidth  float64 `json:"usedWidth"`
		Waste      float64 `json:"waste"`
		TotalReels float64 `json:"totalReels"`
	} `json:"batchesByGroup"`
	Summaries map[string]struct {
		BatchCount     int `json:"batchCount"`
		ExcludedOrders int `json:"excludedOrders"`
	} `json:"summaries"`
}

func decodeUpload(t *testing.T, rec *httptest.ResponseRecorder) uploadBody {
	t.Helper()
	var body uploadBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(srv.clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", srv.clock.Now(), body.Timestamp)
	}
}

func TestGetCapacityReturnsDefault(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/capacity", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Capacity  json.Number `json:"capacity"`
		UpdatedAt time.Time   `json:"updatedAt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Capacity.String() != "3500" {
		t.Fatalf("expected capacity 3500, got %s", body.Capacity)
	}
	if !body.UpdatedAt.Equal(srv.clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", srv.clock.Now(), body.UpdatedAt)
	}
}

func TestPutCapacityUpdatesStorage(t *testing.T) {
	srv := setupTestRouter(t)
	srv.clock.Advance(time.Hour)

	req := httptest.NewRequest(http.MethodPut, "/api/capacity", strings.NewReader(`{"capacity": 2800.5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Capacity  json.Number `json:"capacity"`
		UpdatedAt time.Time   `json:"updatedAt"`
		Message   string      `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Capacity.String() != "2800.5" {
		t.Fatalf("expected capacity 2800.5, got %s", body.Capacity)
	}
	if !body.UpdatedAt.Equal(srv.clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", srv.clock.Now(), body.UpdatedAt)
	}
	if body.Message == "" {
		t.Fatalf("expected confirmation message")
	}

	stored, err := srv.store.GetCapacity()
	if err != nil {
		t.Fatalf("unexpected storage error: %v", err)
	}
	if stored.String() != "2800.5" {
		t.Fatalf("expected stored capacity 2800.5, got %s", stored)
	}
}

func TestPutCapacityRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"malformed json": `{"capacity":`,
		"zero":           `{"capacity": 0}`,
		"negative":       `{"capacity": -10}`,
		"missing":        `{}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			srv := setupTestRouter(t)

			req := httptest.NewRequest(http.MethodPut, "/api/capacity", strings.NewReader(payload))
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			stored, _ := srv.store.GetCapacity()
			if !stored.Equal(storage.DefaultCapacity()) {
				t.Fatalf("capacity should be unchanged, got %s", stored)
			}
		})
	}
}

func TestUploadCSVGroupsAndBatchesOrders(t *testing.T) {
	srv := setupTestRouter(t)

	rec := upload(t, srv.router, "orders.csv", []byte(sampleSheet), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeUpload(t, rec)
	if body.PlanID != "plan-1" {
		t.Fatalf("expected plan-1, got %s", body.PlanID)
	}
	if body.Source != "orders.csv" {
		t.Fatalf("expected source orders.csv, got %s", body.Source)
	}
	if body.Capacity != 3500 {
		t.Fatalf("expected capacity 3500, got %v", body.Capacity)
	}
	if strings.Join(body.GroupOrder, ",") != "18-120,20-140" {
		t.Fatalf("unexpected group order %v", body.GroupOrder)
	}

	// 18-120: deckles 2000, 1600, 1000 sorted descending.
	grade := body.BatchesByGroup["18-120"]
	if len(grade) != 2 {
		t.Fatalf("expected 2 batches for 18-120, got %d", len(grade))
	}
	first, second := grade[0], grade[1]
	if len(first.Orders) != 1 || first.Orders[0].OrderID != "101" || first.Waste != 1500 {
		t.Fatalf("unexpected first batch %+v", first)
	}
	if first.Orders[0].ReelsNeeded != 2 {
		t.Fatalf("expected 2 reels needed, got %v", first.Orders[0].ReelsNeeded)
	}
	if len(second.Orders) != 2 || second.Orders[0].OrderID != "104" || second.Orders[1].OrderID != "102" {
		t.Fatalf("unexpected second batch %+v", second)
	}
	if second.UsedWidth != 2600 || second.Waste != 900 || second.TotalReels != 5 {
		t.Fatalf("unexpected second batch totals %+v", second)
	}

	// 20-140: order 103 is fully covered by stock.
	fluting := body.BatchesByGroup["20-140"]
	if len(fluting) != 1 || len(fluting[0].Orders) != 1 || fluting[0].Orders[0].OrderID != "105" {
		t.Fatalf("unexpected 20-140 batches %+v", fluting)
	}
	if fluting[0].Waste != 500 {
		t.Fatalf("expected waste 500, got %v", fluting[0].Waste)
	}
	if body.Summaries["20-140"].ExcludedOrders != 1 {
		t.Fatalf("expected one excluded order, got %d", body.Summaries["20-140"].ExcludedOrders)
	}
}

func TestUploadWorkbook(t *testing.T) {
	srv := setupTestRouter(t)

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	rows := [][]any{
		{"OrderNo", "party", "ItemName", "BF", "GSM", "size", "Reelqty", "Stockreal", "DelDate"},
		{"A1", "Acme", "Kraft", 16, 100, 1800, 2, 0, "2024-12-01"},
		{"A2", "Acme", "Kraft", 16, 100, 1700, 1, 0, "2024-12-02"},
		{"A3", "Acme", "Kraft", 16, 100, 3600, 1, 0, "2024-12-03"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rec := upload(t, srv.router, "orders.xlsx", buf.Bytes(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeUpload(t, rec)
	batches := body.BatchesByGroup["16-100"]
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].Orders[0].OrderID != "A3" || batches[0].Waste != -100 {
		t.Fatalf("expected oversized order alone with negative waste, got %+v", batches[0])
	}
	if batches[1].UsedWidth != 3500 || batches[1].Waste != 0 {
		t.Fatalf("expected exact fit, got %+v", batches[1])
	}
}

func TestUploadUsesCapacityOverride(t *testing.T) {
	srv := setupTestRouter(t)

	rec := upload(t, srv.router, "orders.csv", []byte(sampleSheet), map[string]string{"capacity": "3000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeUpload(t, rec)
	if body.Capacity != 3000 {
		t.Fatalf("expected capacity 3000, got %v", body.Capacity)
	}
	grade := body.BatchesByGroup["18-120"]
	if len(grade) != 2 || grade[0].Waste != 1000 || grade[1].Waste != 400 {
		t.Fatalf("unexpected batches for capacity 3000: %+v", grade)
	}
	if fluting := body.BatchesByGroup["20-140"]; len(fluting) != 1 || fluting[0].Waste != 0 {
		t.Fatalf("expected exact fit for 20-140, got %+v", fluting)
	}
}

func TestUploadFailures(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		fields   map[string]string
		status   int
		message  string
	}{
		{
			name:    "no file",
			status:  http.StatusBadRequest,
			message: msgNoFile,
		},
		{
			name:     "empty file",
			filename: "orders.csv",
			content:  []byte{},
			status:   http.StatusBadRequest,
			message:  msgBadFile,
		},
		{
			name:     "header only",
			filename: "orders.csv",
			content:  []byte("OrderNo,BF,GSM,size,Reelqty\n"),
			status:   http.StatusBadRequest,
			message:  msgBadFile,
		},
		{
			name:     "missing columns",
			filename: "orders.csv",
			content:  []byte("OrderNo,party\n1,Acme\n"),
			status:   http.StatusBadRequest,
			message:  msgBadFile,
		},
		{
			name:     "legacy workbook",
			filename: "orders.xls",
			content:  []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00},
			status:   http.StatusBadRequest,
			message:  msgBadFile,
		},
		{
			name:     "invalid capacity",
			filename: "orders.csv",
			content:  []byte(sampleSheet),
			fields:   map[string]string{"capacity": "-1"},
			status:   http.StatusBadRequest,
			message:  msgBadCapacity,
		},
		{
			name:     "bad rows",
			filename: "orders.csv",
			content:  []byte("OrderNo,BF,GSM,size,Reelqty\n1,18,120,wide,2\n2,18,120,1000,\n"),
			status:   http.StatusUnprocessableEntity,
			message:  msgInvalidRows,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := setupTestRouter(t)

			rec := upload(t, srv.router, tc.filename, tc.content, tc.fields)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			body := decodeError(t, rec)
			if body.Error != tc.message {
				t.Fatalf("expected error %q, got %q", tc.message, body.Error)
			}
		})
	}
}

func TestUploadReportsRowErrors(t *testing.T) {
	srv := setupTestRouter(t)

	sheet := "OrderNo,BF,GSM,size,Reelqty\n1,18,120,wide,2\n2,18,120,1000,\n"
	rec := upload(t, srv.router, "orders.csv", []byte(sheet), nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	body := decodeError(t, rec)
	if len(body.Rows) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", body.Rows)
	}
	if body.Rows[0].Row != 2 || body.Rows[0].Column != "size" {
		t.Fatalf("unexpected first row error %+v", body.Rows[0])
	}
	if body.Rows[1].Row != 3 || body.Rows[1].Column != "Reelqty" {
		t.Fatalf("unexpected second row error %+v", body.Rows[1])
	}
}

func TestUploadRejectsNonMultipartBody(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(sampleSheet))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != msgNoFile {
		t.Fatalf("expected %q, got %q", msgNoFile, body.Error)
	}
}

func TestUploadTooLarge(t *testing.T) {
	srv := setupTestRouter(t, WithMaxUploadBytes(512))

	content := []byte(strings.Repeat(sampleSheet, 200))
	rec := upload(t, srv.router, "orders.csv", content, nil)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeError(t, rec); body.Error != msgFileTooLarge {
		t.Fatalf("expected %q, got %q", msgFileTooLarge, body.Error)
	}
}

func TestUploadHidesInternalErrors(t *testing.T) {
	srv := setupTestRouter(t)

	body, contentType := multipartBody(t, "orders.csv", []byte(sampleSheet), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body).WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error != msgProcessingErr {
		t.Fatalf("expected %q, got %q", msgProcessingErr, resp.Error)
	}
	if resp.Details != "" {
		t.Fatalf("internal details must not leak, got %q", resp.Details)
	}
}

func TestPlansHistory(t *testing.T) {
	srv := setupTestRouter(t)

	if rec := upload(t, srv.router, "first.csv", []byte(sampleSheet), nil); rec.Code != http.StatusOK {
		t.Fatalf("first upload failed: %d", rec.Code)
	}
	srv.clock.Advance(time.Minute)
	if rec := upload(t, srv.router, "second.csv", []byte(sampleSheet), nil); rec.Code != http.StatusOK {
		t.Fatalf("second upload failed: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var list struct {
		Plans []struct {
			ID         string `json:"id"`
			Source     string `json:"source"`
			GroupCount int    `json:"groupCount"`
			BatchCount int    `json:"batchCount"`
		} `json:"plans"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(list.Plans))
	}
	if list.Plans[0].ID != "plan-2" || list.Plans[0].Source != "second.csv" {
		t.Fatalf("expected newest plan first, got %+v", list.Plans[0])
	}
	if list.Plans[0].GroupCount != 2 || list.Plans[0].BatchCount != 3 {
		t.Fatalf("unexpected counts %+v", list.Plans[0])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/plans?limit=1", nil)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Plans) != 1 {
		t.Fatalf("expected limit to apply, got %d plans", len(list.Plans))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/plans/plan-1", nil)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	plan := decodeUpload(t, rec)
	if plan.PlanID != "plan-1" || plan.Source != "first.csv" {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if len(plan.BatchesByGroup["18-120"]) != 2 {
		t.Fatalf("expected stored batches, got %+v", plan.BatchesByGroup)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/plans/missing", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestListPlansRejectsBadLimit(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/plans?limit=zero", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/upload", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestRequestIDIsGeneratedAndPropagated(t *testing.T) {
	srv := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if id := rec.Header().Get("X-Request-ID"); len(id) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", id)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-id")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if id := rec.Header().Get("X-Request-ID"); id != "client-id" {
		t.Fatalf("expected client request id, got %q", id)
	}
}
