package trace

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pixnox/internal/log"
)

func newLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	var observed int
	m := NewMiddleware(newLogger(&buf), nil, func(_ *http.Request, status int, _ time.Duration) {
		observed = status
	})
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))

		if !strings.HasPrefix(seen, "req_") {
			t.Errorf("request id = %q, want req_ prefix", seen)
		}
		if got := rec.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("response header = %q, want %q", got, seen)
		}
		if observed != http.StatusTeapot {
			t.Errorf("observed status = %d", observed)
		}
		if !strings.Contains(buf.String(), "request_id="+seen) {
			t.Errorf("handler log line missing request id:\n%s", buf.String())
		}
	})

	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"reused", "abc-123", true},
		{"too long", strings.Repeat("x", 65), false},
		{"control characters", "abc\x01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.incoming)
			h.ServeHTTP(httptest.NewRecorder(), req)
			if (seen == tt.incoming) != tt.reused {
				t.Errorf("request id = %q, reused = %v, want %v", seen, seen == tt.incoming, tt.reused)
			}
		})
	}

	if m.TotalRequests() != 4 {
		t.Errorf("TotalRequests() = %d, want 4", m.TotalRequests())
	}
}

func TestMiddleware_LogFields(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.9" }, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/expenses?dry=1", nil)
	req.Header.Set("User-Agent", "pixnox-test")
	req.Header.Set("Referer", "http://localhost/")
	h.ServeHTTP(httptest.NewRecorder(), req)

	records := map[string]map[string]any{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		records[rec["msg"].(string)] = rec
	}

	tests := []struct {
		msg  string
		want map[string]any
	}{
		{"HTTP request started", map[string]any{
			log.FieldMethod:    "POST",
			log.FieldPath:      "/api/expenses",
			log.FieldQuery:     "dry=1",
			log.FieldUserAgent: "pixnox-test",
			log.FieldReferer:   "http://localhost/",
			log.FieldClientIP:  "203.0.113.9",
		}},
		{"HTTP request completed", map[string]any{
			log.FieldPath:       "/api/expenses",
			log.FieldStatusCode: float64(http.StatusUnprocessableEntity),
			log.FieldSuccess:    false,
			"level":             "WARN",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			rec, ok := records[tt.msg]
			if !ok {
				t.Fatalf("no %q record in:\n%s", tt.msg, buf.String())
			}
			if _, ok := rec[log.FieldRequestID]; !ok {
				t.Errorf("record missing %s: %v", log.FieldRequestID, rec)
			}
			for k, v := range tt.want {
				if rec[k] != v {
					t.Errorf("%s = %v, want %v", k, rec[k], v)
				}
			}
		})
	}

	if _, ok := records["HTTP request completed"][log.FieldDurationHuman]; !ok {
		t.Errorf("completion record missing %s", log.FieldDurationHuman)
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200 once the body started", rw.statusCode)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
