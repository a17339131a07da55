package model

import "time"

type SnapshotStatus string

const (
	SnapshotStatusPending   SnapshotStatus = "pending"
	SnapshotStatusUploading SnapshotStatus = "uploading"
	SnapshotStatusCompleted SnapshotStatus = "completed"
	SnapshotStatusFailed    SnapshotStatus = "failed"
)

// Snapshot records one encrypted database backup uploaded to object storage.
type Snapshot struct {
	ID           int64          `json:"id"`
	Filename     string         `json:"filename"`
	ObjectKey    string         `json:"objectKey"`
	SizeBytes    int64          `json:"sizeBytes"`
	Status       SnapshotStatus `json:"status"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	StartedAt    *time.Time     `json:"startedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}
