package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type mockRecorder struct {
	calls   int
	lastDur time.Duration
}

func (m *mockRecorder) RecordLatency(d time.Duration) {
	m.calls++
	m.lastDur = d
}

func TestAccessLog_RecordsLatencyAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := &mockRecorder{}

	h := chimw.RequestID(AccessLog(logger, rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Millisecond)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("nope"))
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/usage?nodes=1", nil))

	if rec.calls != 1 {
		t.Fatalf("latency calls: got %d, want 1", rec.calls)
	}
	if rec.lastDur < 2*time.Millisecond {
		t.Errorf("latency: got %v, want >= 2ms", rec.lastDur)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["status"] != float64(http.StatusUnprocessableEntity) {
		t.Errorf("status: got %v", entry["status"])
	}
	if entry["bytes"] != float64(4) {
		t.Errorf("bytes: got %v", entry["bytes"])
	}
	if entry["path"] != "/api/v1/usage" || entry["query"] != "nodes=1" {
		t.Errorf("path/query: got %v ? %v", entry["path"], entry["query"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("expected request_id in log line")
	}
}

func TestAccessLog_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := AccessLog(logger, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(buf.String(), `"status":200`) {
		t.Errorf("expected status 200 in %s", buf.String())
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error field")
	}
}

func TestJSONRecoverer_PassThrough(t *testing.T) {
	h := JSONRecoverer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}
}
