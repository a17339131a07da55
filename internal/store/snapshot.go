package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/awillits/marginalia/internal/model"
)

type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func scanSnapshot(scanner interface{ Scan(...any) error }) (*model.Snapshot, error) {
	var snap model.Snapshot
	var errMsg sql.NullString
	var startedAt, completedAt sql.NullTime

	err := scanner.Scan(
		&snap.ID, &snap.Filename, &snap.ObjectKey, &snap.SizeBytes, &snap.Status,
		&errMsg, &startedAt, &completedAt, &snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	snap.ErrorMessage = errMsg.String
	if startedAt.Valid {
		snap.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		snap.CompletedAt = &completedAt.Time
	}
	return &snap, nil
}

const snapshotCols = `id, filename, object_key, size_bytes, status, error_message, started_at, completed_at, created_at`

func (s *SnapshotStore) Create(filename, objectKey string) (*model.Snapshot, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO snapshots (filename, object_key, status, started_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		filename, objectKey, model.SnapshotStatusPending, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SnapshotStore) GetByID(id int64) (*model.Snapshot, error) {
	row := s.db.QueryRow(`SELECT `+snapshotCols+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

func (s *SnapshotStore) List(limit int) ([]model.Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT `+snapshotCols+` FROM snapshots ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

func (s *SnapshotStore) UpdateStatus(id int64, status model.SnapshotStatus, errorMsg string) error {
	var errPtr *string
	if errorMsg != "" {
		errPtr = &errorMsg
	}
	_, err := s.db.Exec(
		`UPDATE snapshots SET status = ?, error_message = ? WHERE id = ?`,
		status, errPtr, id,
	)
	if err != nil {
		return fmt.Errorf("update snapshot status: %w", err)
	}
	return nil
}

func (s *SnapshotStore) UpdateCompleted(id, sizeBytes int64) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE snapshots SET status = ?, size_bytes = ?, completed_at = ? WHERE id = ?`,
		model.SnapshotStatusCompleted, sizeBytes, now, id,
	)
	if err != nil {
		return fmt.Errorf("update snapshot completed: %w", err)
	}
	return nil
}

// DeleteOlderThan removes snapshot records older than the cutoff and returns
// their object keys so the caller can delete the uploads too.
func (s *SnapshotStore) DeleteOlderThan(before time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT object_key FROM snapshots WHERE created_at < ?`, before)
	if err != nil {
		return nil, fmt.Errorf("select old snapshots: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan object key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`DELETE FROM snapshots WHERE created_at < ?`, before)
	if err != nil {
		return nil, fmt.Errorf("delete old snapshots: %w", err)
	}
	return keys, nil
}

func (s *SnapshotStore) LatestCompleted() (*model.Snapshot, error) {
	row := s.db.QueryRow(
		`SELECT `+snapshotCols+` FROM snapshots WHERE status = ? ORDER BY completed_at DESC LIMIT 1`,
		model.SnapshotStatusCompleted,
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed snapshot: %w", err)
	}
	return snap, nil
}
