// internal/storage/db.go

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DBFile is the save log file name inside the state directory.
const DBFile = "saves.db"

// DB wraps the SQLite save log.
type DB struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// SaveRecord is one accepted write. File contents are not kept.
type SaveRecord struct {
	ID      string    `json:"id"`
	File    string    `json:"file"`
	Size    int64     `json:"size"`
	ETag    string    `json:"etag"`
	Remote  string    `json:"remote"`
	SavedAt time.Time `json:"saved_at"`
}

// Open opens or creates the save log in the given directory.
func Open(stateDir string) (*DB, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	dbPath := filepath.Join(stateDir, DBFile)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS saves (
			id        TEXT PRIMARY KEY,
			file      TEXT NOT NULL,
			size      INTEGER NOT NULL,
			etag      TEXT NOT NULL,
			remote    TEXT DEFAULT '',
			saved_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS saves_file_time ON saves (file, saved_at);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}

	return &DB{db: db, path: dbPath}, nil
}

func (d *DB) Path() string { return d.path }

func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Close()
}

// RecordSave stores rec, filling ID and SavedAt when empty.
func (d *DB) RecordSave(ctx context.Context, rec SaveRecord) (SaveRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}
	rec.SavedAt = rec.SavedAt.UTC()

	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO saves (id, file, size, etag, remote, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.File, rec.Size, rec.ETag, rec.Remote, rec.SavedAt.UnixNano(),
	)
	if err != nil {
		return SaveRecord{}, fmt.Errorf("record save: %w", err)
	}
	return rec, nil
}

// ListSaves returns up to limit records, newest first. An empty file lists all files.
func (d *DB) ListSaves(ctx context.Context, file string, limit int) ([]SaveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, file, size, etag, remote, saved_at FROM saves`
	args := []any{}
	if file != "" {
		q += ` WHERE file = ?`
		args = append(args, file)
	}
	q += ` ORDER BY saved_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	d.mu.RLock()
	defer d.mu.RUnlock()
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	out := []SaveRecord{}
	for rows.Next() {
		var (
			rec SaveRecord
			ns  int64
		)
		if err := rows.Scan(&rec.ID, &rec.File, &rec.Size, &rec.ETag, &rec.Remote, &ns); err != nil {
			return nil, err
		}
		rec.SavedAt = time.Unix(0, ns).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
