// Package backup uploads encrypted database snapshots to S3-compatible
// object storage and restores from them.
package backup

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/awillits/marginalia/internal/model"
	"github.com/awillits/marginalia/internal/store"
)

const (
	uploadMaxRetries  = 3
	uploadBaseBackoff = 500 * time.Millisecond
	scheduleInterval  = time.Hour
)

// sqliteHeader is the magic string at the start of every SQLite database.
var sqliteHeader = []byte("SQLite format 3\x00")

type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// S3ConfigFromSettings builds an S3Config from the settings key/value map.
func S3ConfigFromSettings(settings map[string]string) S3Config {
	return S3Config{
		Endpoint:  settings["s3_endpoint"],
		Bucket:    settings["s3_bucket"],
		Region:    settings["s3_region"],
		AccessKey: settings["s3_access_key"],
		SecretKey: settings["s3_secret_key"],
	}
}

// s3Client is the slice of the AWS S3 API the manager uses. Tests swap in a
// fake; production uses *s3.Client.
type s3Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if opts.Region == "" {
		opts.Region = "auto"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// Manager runs scheduled and on-demand snapshots of the database.
type Manager struct {
	db        *sql.DB
	dbPath    string
	snapshots *store.SnapshotStore
	settings  *store.SettingsStore
	logger    *slog.Logger

	mu         sync.Mutex
	cfg        S3Config
	client     s3Client
	passphrase string
	lastRunDay string
	running    bool
	onStatus   func(*model.Snapshot)

	stop chan struct{}
	done chan struct{}
}

func NewManager(db *sql.DB, dbPath string, snapshots *store.SnapshotStore, settings *store.SettingsStore, logger *slog.Logger) *Manager {
	return &Manager{
		db:        db,
		dbPath:    dbPath,
		snapshots: snapshots,
		settings:  settings,
		logger:    logger,
	}
}

// UpdateS3Config swaps in new storage credentials without a restart.
func (m *Manager) UpdateS3Config(cfg S3Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	if cfg.Configured() {
		m.client = newS3Client(cfg)
	} else {
		m.client = nil
	}
}

// OnStatus registers a callback invoked after every snapshot status change,
// used to push progress to connected clients.
func (m *Manager) OnStatus(fn func(*model.Snapshot)) {
	m.mu.Lock()
	m.onStatus = fn
	m.mu.Unlock()
}

func (m *Manager) notifyStatus(id int64) {
	m.mu.Lock()
	fn := m.onStatus
	m.mu.Unlock()
	if fn == nil {
		return
	}
	if snap, err := m.snapshots.GetByID(id); err == nil && snap != nil {
		fn(snap)
	}
}

// SetPassphrase caches the snapshot passphrase in memory so the scheduler
// can run unattended. It is never persisted.
func (m *Manager) SetPassphrase(passphrase string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passphrase = passphrase
}

func (m *Manager) snapshot() (s3Client, S3Config, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client, m.cfg, m.passphrase
}

// Start launches the hourly scheduler. Safe to call once.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(scheduleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stop)
	m.mu.Unlock()
	<-m.done
}

// checkSchedule runs a snapshot if scheduling is enabled, the configured hour
// has arrived, and no snapshot ran today.
func (m *Manager) checkSchedule(ctx context.Context) {
	settings, err := m.settings.GetSnapshotSettings()
	if err != nil {
		m.logger.Error("read snapshot settings", "error", err)
		return
	}
	if settings["snapshot_enabled"] != "true" {
		return
	}

	hour, err := strconv.Atoi(settings["snapshot_schedule_hour"])
	if err != nil {
		hour = 3
	}

	now := time.Now().UTC()
	if now.Hour() < hour {
		return
	}

	today := now.Format("2006-01-02")
	m.mu.Lock()
	alreadyRan := m.lastRunDay == today
	passphrase := m.passphrase
	m.mu.Unlock()
	if alreadyRan {
		return
	}
	if passphrase == "" {
		m.logger.Warn("scheduled snapshot skipped: no passphrase set this session")
		return
	}

	if _, err := m.RunNow(ctx, passphrase); err != nil {
		m.logger.Error("scheduled snapshot failed", "error", err)
		return
	}

	m.mu.Lock()
	m.lastRunDay = today
	m.mu.Unlock()

	if days, err := strconv.Atoi(settings["snapshot_retention_days"]); err == nil && days > 0 {
		if err := m.Cleanup(ctx, days); err != nil {
			m.logger.Error("snapshot cleanup failed", "error", err)
		}
	}
}

// RunNow takes one snapshot: checkpoint, copy, encrypt, upload.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (*model.Snapshot, error) {
	client, cfg, _ := m.snapshot()
	if client == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is required")
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("marginalia-%s.db.enc", now.Format("20060102-150405"))
	objectKey := "snapshots/" + filename

	snap, err := m.snapshots.Create(filename, objectKey)
	if err != nil {
		return nil, fmt.Errorf("record snapshot: %w", err)
	}

	fail := func(stage string, cause error) (*model.Snapshot, error) {
		wrapped := fmt.Errorf("%s: %w", stage, cause)
		if err := m.snapshots.UpdateStatus(snap.ID, model.SnapshotStatusFailed, wrapped.Error()); err != nil {
			m.logger.Error("mark snapshot failed", "id", snap.ID, "error", err)
		}
		m.notifyStatus(snap.ID)
		return nil, wrapped
	}

	// Flush the WAL so the copied file is a complete database on its own.
	if _, err := m.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fail("checkpoint wal", err)
	}

	tmpDir, err := os.MkdirTemp("", "marginalia-snapshot-*")
	if err != nil {
		return fail("create temp dir", err)
	}
	defer os.RemoveAll(tmpDir)

	copyPath := filepath.Join(tmpDir, "notes.db")
	if err := copyFile(m.dbPath, copyPath); err != nil {
		return fail("copy database", err)
	}

	salt, err := m.loadOrCreateSalt()
	if err != nil {
		return fail("load salt", err)
	}

	encPath := copyPath + ".enc"
	if err := EncryptFile(copyPath, encPath, passphrase, salt); err != nil {
		return fail("encrypt", err)
	}

	info, err := os.Stat(encPath)
	if err != nil {
		return fail("stat encrypted file", err)
	}

	if err := m.snapshots.UpdateStatus(snap.ID, model.SnapshotStatusUploading, ""); err != nil {
		m.logger.Error("mark snapshot uploading", "id", snap.ID, "error", err)
	}
	m.notifyStatus(snap.ID)

	backoff := retry.WithMaxRetries(uploadMaxRetries, retry.NewExponential(uploadBaseBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		f, err := os.Open(encPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(cfg.Bucket),
			Key:         aws.String(objectKey),
			Body:        f,
			ContentType: aws.String("application/octet-stream"),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fail("upload", err)
	}

	if err := m.snapshots.UpdateCompleted(snap.ID, info.Size()); err != nil {
		return nil, fmt.Errorf("mark snapshot completed: %w", err)
	}
	m.notifyStatus(snap.ID)

	m.logger.Info("snapshot uploaded", "id", snap.ID, "key", objectKey, "bytes", info.Size())
	return m.snapshots.GetByID(snap.ID)
}

// Restore downloads and decrypts a snapshot, verifies it is a SQLite
// database, and swaps it in over the live database file. The process must be
// restarted afterwards so connections reopen against the restored file.
func (m *Manager) Restore(ctx context.Context, snapshotID int64, passphrase string) error {
	client, cfg, _ := m.snapshot()
	if client == nil {
		return fmt.Errorf("object storage is not configured")
	}

	snap, err := m.snapshots.GetByID(snapshotID)
	if err != nil {
		return fmt.Errorf("look up snapshot: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("snapshot %d not found", snapshotID)
	}
	if snap.Status != model.SnapshotStatusCompleted {
		return fmt.Errorf("snapshot %d is %s, not completed", snapshotID, snap.Status)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(snap.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("download snapshot: %w", err)
	}
	defer out.Body.Close()

	tmpDir, err := os.MkdirTemp("", "marginalia-restore-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	encPath := filepath.Join(tmpDir, "snapshot.enc")
	f, err := os.OpenFile(encPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create download file: %w", err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return fmt.Errorf("save download: %w", err)
	}
	f.Close()

	decPath := filepath.Join(tmpDir, "snapshot.db")
	if err := DecryptFile(encPath, decPath, passphrase); err != nil {
		return err
	}

	if err := verifySQLite(decPath); err != nil {
		return err
	}

	// Checkpoint and remove the sidecar files so stale WAL pages cannot
	// shadow the restored database.
	if _, err := m.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		m.logger.Warn("checkpoint before restore", "error", err)
	}
	os.Remove(m.dbPath + "-wal")
	os.Remove(m.dbPath + "-shm")

	if err := os.Rename(decPath, m.dbPath); err != nil {
		// Rename fails across filesystems; fall back to a copy.
		if err := copyFile(decPath, m.dbPath); err != nil {
			return fmt.Errorf("replace database: %w", err)
		}
	}

	m.logger.Info("snapshot restored", "id", snapshotID, "key", snap.ObjectKey)
	return nil
}

// Cleanup removes snapshots past the retention window, deleting the uploaded
// objects as well as the records.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) error {
	client, cfg, _ := m.snapshot()

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	keys, err := m.snapshots.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if client == nil {
			m.logger.Warn("skipping object delete, storage not configured", "key", key)
			continue
		}
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			m.logger.Error("delete snapshot object", "key", key, "error", err)
		}
	}

	if len(keys) > 0 {
		m.logger.Info("snapshot cleanup", "removed", len(keys))
	}
	return nil
}

// loadOrCreateSalt returns the persistent key-derivation salt, creating and
// storing one on first use. Reusing the salt lets any snapshot be decrypted
// with the passphrase alone.
func (m *Manager) loadOrCreateSalt() ([]byte, error) {
	if v, err := m.settings.Get("snapshot_passphrase_salt"); err == nil && v != "" {
		salt, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("decode stored salt: %w", err)
		}
		return salt, nil
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := m.settings.Set("snapshot_passphrase_salt", hex.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("store salt: %w", err)
	}
	return salt, nil
}

func verifySQLite(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open restored file: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("restored file is not a database")
	}
	for i := range header {
		if header[i] != sqliteHeader[i] {
			return fmt.Errorf("restored file is not a database")
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
