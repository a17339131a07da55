package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/awillits/marginalia/internal/export"
	"github.com/awillits/marginalia/internal/model"
)

func exportRequest(t *testing.T, e *testEnv, format string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewExportHandler(e.notes, e.logger)
	r := e.authed(httptest.NewRequest("GET", "/api/notes/export?format="+format, nil))
	w := httptest.NewRecorder()
	h.Export(w, r)
	return w
}

func seedNotes(t *testing.T, e *testEnv) {
	t.Helper()
	for _, n := range []struct{ title, topic, text string }{
		{"On Habit", "Philosophy", "We are what we repeatedly do."},
		{"Untitled note", "", "A stray thought."},
		{"On Memory", "Philosophy", "Memory is the scribe of the soul."},
	} {
		if _, err := e.notes.Create(e.user.ID, n.title, n.topic, n.text, ""); err != nil {
			t.Fatalf("seed note: %v", err)
		}
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	e := newTestEnv(t)
	w := exportRequest(t, e, "xml")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestExportText(t *testing.T) {
	e := newTestEnv(t)
	seedNotes(t, e)

	w := exportRequest(t, e, "text")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, ".txt") {
		t.Errorf("disposition = %q", cd)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Philosophy\n"+strings.Repeat("=", 40)) {
		t.Error("missing topic heading with rule")
	}
	if !strings.Contains(body, export.FallbackTopic) {
		t.Error("empty topic not grouped under fallback label")
	}
}

func TestExportTextEmptyCollection(t *testing.T) {
	e := newTestEnv(t)
	w := exportRequest(t, e, "text")
	if got := w.Body.String(); got != export.EmptyPlaceholder+"\n" {
		t.Errorf("body = %q", got)
	}
}

func TestExportCSV(t *testing.T) {
	e := newTestEnv(t)
	seedNotes(t, e)

	w := exportRequest(t, e, "csv")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	if lines[0] != "title,topic,text,createdAt" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Errorf("rows = %d, want 3 + header", len(lines)-1)
	}
}

func TestExportJSONRoundTrips(t *testing.T) {
	e := newTestEnv(t)
	seedNotes(t, e)

	w := exportRequest(t, e, "json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var notes []model.Note
	if err := json.Unmarshal(w.Body.Bytes(), &notes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notes) != 3 {
		t.Errorf("count = %d, want 3", len(notes))
	}
}

func TestExportPDF(t *testing.T) {
	e := newTestEnv(t)
	seedNotes(t, e)

	w := exportRequest(t, e, "pdf")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Error("body is not a PDF")
	}
}

func TestExportDOCX(t *testing.T) {
	e := newTestEnv(t)
	seedNotes(t, e)

	w := exportRequest(t, e, "docx")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "PK") {
		t.Error("body is not a zip container")
	}
}
