package state

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is one connection to the local state database. It is not safe to
// share across execution contexts; each long-lived context (pull pass, event
// listener) opens its own Store and keeps it for the duration of its work.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at path and applies the
// schema. Schema creation is idempotent.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS credential (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_records (
	resource_id TEXT PRIMARY KEY,
	local_path TEXT NOT NULL,
	change_tag TEXT NOT NULL,
	title TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_local_path ON sync_records(local_path);
`

// GetCredential returns the stored session token, or "" and false if a
// credential was never saved.
func (s *Store) GetCredential(ctx context.Context) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT token FROM credential WHERE id = 1`)
	var token string
	switch err := row.Scan(&token); {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return token, true, nil
}

// SaveCredential upserts the singleton credential row.
func (s *Store) SaveCredential(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO credential (id, token) VALUES (1, ?)`, token)
	return err
}

// UpsertRecord inserts a sync record, replacing any prior record with the
// same resource ID.
func (s *Store) UpsertRecord(ctx context.Context, rec SyncRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_records (resource_id, local_path, change_tag, title)
		VALUES (?, ?, ?, ?)
	`, rec.ResourceID, rec.LocalPath, rec.ChangeTag, rec.Title)
	return err
}

// GetChangeTag returns the stored change tag for a resource, or "" and false
// when the resource has never been pulled.
func (s *Store) GetChangeTag(ctx context.Context, resourceID string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT change_tag FROM sync_records WHERE resource_id = ?`, resourceID)
	var tag string
	switch err := row.Scan(&tag); {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return tag, true, nil
}

// FindRecordByPath looks a record up by its local path. ErrNotFound when the
// path was never synced; callers treat that as "ignore this file event."
func (s *Store) FindRecordByPath(ctx context.Context, localPath string) (*SyncRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT resource_id, local_path, change_tag, title
		FROM sync_records WHERE local_path = ?
	`, localPath)
	var rec SyncRecord
	switch err := row.Scan(&rec.ResourceID, &rec.LocalPath, &rec.ChangeTag, &rec.Title); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &rec, nil
}

// UpdateChangeTag marks a resource as consistent with the remote store after
// a successful push.
func (s *Store) UpdateChangeTag(ctx context.Context, resourceID, newTag string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_records SET change_tag = ? WHERE resource_id = ?`, newTag, resourceID)
	return err
}

// ListRecords returns every tracked document, ordered by local path.
func (s *Store) ListRecords(ctx context.Context) (records []SyncRecord, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_id, local_path, change_tag, title
		FROM sync_records ORDER BY local_path
	`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		var rec SyncRecord
		if err := rows.Scan(&rec.ResourceID, &rec.LocalPath, &rec.ChangeTag, &rec.Title); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
