package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/awillits/marginalia/internal/backup"
	"github.com/awillits/marginalia/internal/model"
	"github.com/awillits/marginalia/internal/store"
)

type SnapshotHandler struct {
	manager   *backup.Manager
	snapshots *store.SnapshotStore
	logger    *slog.Logger
}

func NewSnapshotHandler(manager *backup.Manager, snapshots *store.SnapshotStore, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{manager: manager, snapshots: snapshots, logger: logger}
}

// List returns recent snapshots, newest first.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.snapshots.List(50)
	if err != nil {
		h.logger.Error("list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load snapshots")
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

type snapshotRunRequest struct {
	Passphrase string `json:"passphrase"`
}

// Run takes an immediate snapshot. The passphrase is cached in memory so the
// nightly schedule can reuse it until the next restart.
func (h *SnapshotHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req snapshotRunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "Passphrase is required")
		return
	}

	snap, err := h.manager.RunNow(r.Context(), req.Passphrase)
	if err != nil {
		h.logger.Error("run snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.manager.SetPassphrase(req.Passphrase)
	writeJSON(w, http.StatusCreated, snap)
}

type snapshotRestoreRequest struct {
	Passphrase string `json:"passphrase"`
}

// Restore replaces the live database with the chosen snapshot. The process
// must be restarted afterwards.
func (h *SnapshotHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid snapshot id")
		return
	}

	var req snapshotRestoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "Passphrase is required")
		return
	}

	if err := h.manager.Restore(r.Context(), id, req.Passphrase); err != nil {
		h.logger.Error("restore snapshot", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Snapshot restored. Restart the server to load the restored database.",
	})
}
