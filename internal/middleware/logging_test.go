package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func captureLog(t *testing.T, status int, body string) string {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
		}
		w.Write([]byte(body))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/notes", nil))
	return buf.String()
}

func TestRequestLoggerRecordsStatusAndSize(t *testing.T) {
	out := captureLog(t, http.StatusNotFound, "missing")
	if !strings.Contains(out, "status=404") {
		t.Errorf("status not logged: %s", out)
	}
	if !strings.Contains(out, "bytes=7") {
		t.Errorf("payload size not logged: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("4xx should log at warn: %s", out)
	}
}

func TestRequestLoggerImplicitOK(t *testing.T) {
	// Handlers that never call WriteHeader still count as 200.
	out := captureLog(t, http.StatusOK, "ok")
	if !strings.Contains(out, "status=200") {
		t.Errorf("implicit 200 not logged: %s", out)
	}
	if !strings.Contains(out, "level=INFO") {
		t.Errorf("2xx should log at info: %s", out)
	}
}

func TestRequestLoggerServerErrorLevel(t *testing.T) {
	out := captureLog(t, http.StatusInternalServerError, "boom")
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("5xx should log at error: %s", out)
	}
}
