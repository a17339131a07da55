package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/awillits/marginalia/internal/backup"
	"github.com/awillits/marginalia/internal/store"
)

func settingsHandlerFor(e *testEnv, onLang func(string)) *SettingsHandler {
	settings := store.NewSettingsStore(e.db)
	manager := backup.NewManager(e.db, "", store.NewSnapshotStore(e.db), settings, e.logger)
	return NewSettingsHandler(settings, manager, onLang, e.logger)
}

func TestOCRSettingsRoundTrip(t *testing.T) {
	e := newTestEnv(t)

	var applied string
	h := settingsHandlerFor(e, func(lang string) { applied = lang })

	r := e.authed(httptest.NewRequest("PUT", "/api/settings/ocr",
		strings.NewReader(`{"language":"eng+deu"}`)))
	w := doJSON(t, h.UpdateOCR, r)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", w.Code, w.Body)
	}
	if applied != "eng+deu" {
		t.Errorf("language not applied to engine: %q", applied)
	}

	r = e.authed(httptest.NewRequest("GET", "/api/settings/ocr", nil))
	w = doJSON(t, h.GetOCR, r)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["language"] != "eng+deu" {
		t.Errorf("language = %q", resp["language"])
	}
}

func TestOCRSettingsDefaultLanguage(t *testing.T) {
	e := newTestEnv(t)
	h := settingsHandlerFor(e, nil)

	w := doJSON(t, h.GetOCR, e.authed(httptest.NewRequest("GET", "/api/settings/ocr", nil)))
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["language"] != "eng" {
		t.Errorf("default language = %q, want eng", resp["language"])
	}
}

func TestStorageSettingsWithholdSecret(t *testing.T) {
	e := newTestEnv(t)
	h := settingsHandlerFor(e, nil)

	r := e.authed(httptest.NewRequest("PUT", "/api/settings/storage", strings.NewReader(
		`{"endpoint":"https://s3.example.com","bucket":"notes","region":"eu-1","accessKey":"AK","secretKey":"very-secret"}`)))
	w := doJSON(t, h.UpdateStorage, r)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", w.Code, w.Body)
	}

	w = doJSON(t, h.GetStorage, e.authed(httptest.NewRequest("GET", "/api/settings/storage", nil)))
	body := w.Body.String()
	if strings.Contains(body, "very-secret") {
		t.Error("secret key leaked in response")
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["configured"] != true {
		t.Error("configured = false after save")
	}
	if resp["bucket"] != "notes" {
		t.Errorf("bucket = %v", resp["bucket"])
	}
}

func TestStorageSettingsRequireCredentials(t *testing.T) {
	e := newTestEnv(t)
	h := settingsHandlerFor(e, nil)

	r := e.authed(httptest.NewRequest("PUT", "/api/settings/storage",
		strings.NewReader(`{"bucket":"notes"}`)))
	w := doJSON(t, h.UpdateStorage, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSnapshotSettingsValidation(t *testing.T) {
	e := newTestEnv(t)
	h := settingsHandlerFor(e, nil)

	for _, body := range []string{
		`{"enabled":true,"scheduleHour":24,"retentionDays":30}`,
		`{"enabled":true,"scheduleHour":3,"retentionDays":0}`,
	} {
		r := e.authed(httptest.NewRequest("PUT", "/api/settings/snapshots", strings.NewReader(body)))
		w := doJSON(t, h.UpdateSnapshots, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}

	r := e.authed(httptest.NewRequest("PUT", "/api/settings/snapshots",
		strings.NewReader(`{"enabled":true,"scheduleHour":4,"retentionDays":14}`)))
	w := doJSON(t, h.UpdateSnapshots, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}

	w = doJSON(t, h.GetSnapshots, e.authed(httptest.NewRequest("GET", "/api/settings/snapshots", nil)))
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["enabled"] != true || resp["scheduleHour"] != float64(4) || resp["retentionDays"] != float64(14) {
		t.Errorf("unexpected settings: %v", resp)
	}
}
