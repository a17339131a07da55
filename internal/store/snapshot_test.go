package store

import (
	"testing"
	"time"

	"github.com/awillits/marginalia/internal/model"
)

func TestSnapshotLifecycle(t *testing.T) {
	db := testDB(t)
	snaps := NewSnapshotStore(db)

	snap, err := snaps.Create("marginalia-20260825.db.enc", "snapshots/marginalia-20260825.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Status != model.SnapshotStatusPending {
		t.Errorf("status = %s, want pending", snap.Status)
	}
	if snap.StartedAt == nil {
		t.Error("startedAt not set")
	}

	if err := snaps.UpdateStatus(snap.ID, model.SnapshotStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := snaps.UpdateCompleted(snap.ID, 4096); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, err := snaps.GetByID(snap.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.SnapshotStatusCompleted || got.SizeBytes != 4096 {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("completedAt not set")
	}
}

func TestSnapshotFailureRecordsError(t *testing.T) {
	db := testDB(t)
	snaps := NewSnapshotStore(db)

	snap, err := snaps.Create("f", "k")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := snaps.UpdateStatus(snap.ID, model.SnapshotStatusFailed, "upload: connection refused"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := snaps.GetByID(snap.ID)
	if got.Status != model.SnapshotStatusFailed || got.ErrorMessage == "" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
}

func TestSnapshotLatestCompleted(t *testing.T) {
	db := testDB(t)
	snaps := NewSnapshotStore(db)

	if got, err := snaps.LatestCompleted(); err != nil || got != nil {
		t.Fatalf("empty table: got %+v, %v", got, err)
	}

	a, _ := snaps.Create("a", "ka")
	snaps.UpdateCompleted(a.ID, 1)
	time.Sleep(5 * time.Millisecond)
	b, _ := snaps.Create("b", "kb")
	snaps.UpdateCompleted(b.ID, 2)

	got, err := snaps.LatestCompleted()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Errorf("latest = %+v, want id %d", got, b.ID)
	}
}

func TestSnapshotDeleteOlderThan(t *testing.T) {
	db := testDB(t)
	snaps := NewSnapshotStore(db)

	old, _ := snaps.Create("old", "snapshots/old")
	keep, _ := snaps.Create("keep", "snapshots/keep")

	// Backdate one record past the cutoff.
	if _, err := db.Exec(`UPDATE snapshots SET created_at = ? WHERE id = ?`,
		time.Now().UTC().AddDate(0, 0, -60), old.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	keys, err := snaps.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "snapshots/old" {
		t.Errorf("keys = %v", keys)
	}

	remaining, _ := snaps.List(10)
	if len(remaining) != 1 || remaining[0].ID != keep.ID {
		t.Errorf("remaining = %+v", remaining)
	}
}
