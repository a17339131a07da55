package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/awillits/marginalia/internal/backup"
	"github.com/awillits/marginalia/internal/store"
)

type SettingsHandler struct {
	settings      *store.SettingsStore
	manager       *backup.Manager
	onOCRLanguage func(string)
	logger        *slog.Logger
}

func NewSettingsHandler(settings *store.SettingsStore, manager *backup.Manager, onOCRLanguage func(string), logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings:      settings,
		manager:       manager,
		onOCRLanguage: onOCRLanguage,
		logger:        logger,
	}
}

func (h *SettingsHandler) GetOCR(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetOCRSettings()
	if err != nil {
		h.logger.Error("get ocr settings", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	language := settings["ocr_language"]
	if language == "" {
		language = "eng"
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": language})
}

type ocrSettingsRequest struct {
	Language string `json:"language"`
}

// UpdateOCR stores the recognition language and applies it immediately.
func (h *SettingsHandler) UpdateOCR(w http.ResponseWriter, r *http.Request) {
	var req ocrSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		writeError(w, http.StatusBadRequest, "Language is required")
		return
	}

	if err := h.settings.Set("ocr_language", language); err != nil {
		h.logger.Error("set ocr language", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if h.onOCRLanguage != nil {
		h.onOCRLanguage(language)
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": language})
}

// GetStorage reports the object storage configuration with the secret key
// withheld.
func (h *SettingsHandler) GetStorage(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetS3Settings()
	if err != nil {
		h.logger.Error("get s3 settings", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	cfg := backup.S3ConfigFromSettings(settings)
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoint":   cfg.Endpoint,
		"bucket":     cfg.Bucket,
		"region":     cfg.Region,
		"accessKey":  cfg.AccessKey,
		"configured": cfg.Configured(),
	})
}

type storageSettingsRequest struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
}

// UpdateStorage persists object storage credentials and hot-reloads the
// snapshot manager's client.
func (h *SettingsHandler) UpdateStorage(w http.ResponseWriter, r *http.Request) {
	var req storageSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := backup.S3Config{
		Endpoint:  strings.TrimSpace(req.Endpoint),
		Bucket:    strings.TrimSpace(req.Bucket),
		Region:    strings.TrimSpace(req.Region),
		AccessKey: strings.TrimSpace(req.AccessKey),
		SecretKey: req.SecretKey,
	}
	if !cfg.Configured() {
		writeError(w, http.StatusBadRequest, "Bucket, access key and secret key are required")
		return
	}

	pairs := map[string]string{
		"s3_endpoint":   cfg.Endpoint,
		"s3_bucket":     cfg.Bucket,
		"s3_region":     cfg.Region,
		"s3_access_key": cfg.AccessKey,
		"s3_secret_key": cfg.SecretKey,
	}
	for key, value := range pairs {
		if err := h.settings.Set(key, value); err != nil {
			h.logger.Error("set storage setting", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	h.manager.UpdateS3Config(cfg)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Storage settings saved"})
}

// GetSnapshots reports the snapshot schedule.
func (h *SettingsHandler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSnapshotSettings()
	if err != nil {
		h.logger.Error("get snapshot settings", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	hour, err := strconv.Atoi(settings["snapshot_schedule_hour"])
	if err != nil {
		hour = 3
	}
	days, err := strconv.Atoi(settings["snapshot_retention_days"])
	if err != nil {
		days = 30
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":       settings["snapshot_enabled"] == "true",
		"scheduleHour":  hour,
		"retentionDays": days,
	})
}

type snapshotSettingsRequest struct {
	Enabled       bool `json:"enabled"`
	ScheduleHour  int  `json:"scheduleHour"`
	RetentionDays int  `json:"retentionDays"`
}

// UpdateSnapshots stores the snapshot schedule.
func (h *SettingsHandler) UpdateSnapshots(w http.ResponseWriter, r *http.Request) {
	var req snapshotSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ScheduleHour < 0 || req.ScheduleHour > 23 {
		writeError(w, http.StatusBadRequest, "Schedule hour must be 0-23")
		return
	}
	if req.RetentionDays < 1 {
		writeError(w, http.StatusBadRequest, "Retention must be at least one day")
		return
	}

	pairs := map[string]string{
		"snapshot_enabled":        strconv.FormatBool(req.Enabled),
		"snapshot_schedule_hour":  strconv.Itoa(req.ScheduleHour),
		"snapshot_retention_days": strconv.Itoa(req.RetentionDays),
	}
	for key, value := range pairs {
		if err := h.settings.Set(key, value); err != nil {
			h.logger.Error("set snapshot setting", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Snapshot settings saved"})
}
