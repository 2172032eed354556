package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Remote libsql driver.
	_ "modernc.org/sqlite"                               // SQLite driver.
)

// MemoryDSN opens a private in-process SQLite database.
const MemoryDSN = ":memory:"

// SQLStore keeps documents in a SQLite (or libsql) table.
type SQLStore struct {
	db *sql.DB
}

// Open opens or creates the database behind dsn and applies migrations.
// A dsn starting with libsql://, http:// or https:// connects to a shared
// libsql server; anything else is a local SQLite file path or MemoryDSN.
func Open(dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	var (
		db  *sql.DB
		err error
	)
	switch {
	case isRemoteDSN(dsn):
		db, err = sql.Open("libsql", dsn)
	case dsn == MemoryDSN:
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			// Each connection would otherwise get its own empty database.
			db.SetMaxOpenConns(1)
		}
	default:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, err
	}
	store := &SQLStore{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

func isRemoteDSN(dsn string) bool {
	for _, prefix := range []string{"libsql://", "http://", "https://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			version INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT body, version FROM documents WHERE key = ?`, key)
	var (
		body    string
		version int64
	)
	if err := row.Scan(&body, &version); err != nil {
		if err == sql.ErrNoRows {
			return Document{Key: key}, nil
		}
		return Document{}, unavailable("document get", err)
	}
	return Document{Key: key, Body: []byte(body), Version: version}, nil
}

// CompareAndSwap implements Store.
func (s *SQLStore) CompareAndSwap(ctx context.Context, key string, version int64, body []byte) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var (
		res sql.Result
		err error
	)
	if version == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO documents (key, body, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, string(body), now)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE documents SET body = ?, version = version + 1, updated_at = ?
			 WHERE key = ? AND version = ?`,
			string(body), now, key, version)
	}
	if err != nil {
		return 0, unavailable("document swap", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("document swap", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("document swap %s@%d: %w", key, version, ErrRaceLost)
	}
	return version + 1, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, prefix string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, body, version FROM documents WHERE substr(key, 1, ?) = ? ORDER BY key ASC`,
		len(prefix), prefix)
	if err != nil {
		return nil, unavailable("document list", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var docs []Document
	for rows.Next() {
		var (
			doc  Document
			body string
		)
		if err := rows.Scan(&doc.Key, &body, &doc.Version); err != nil {
			return nil, unavailable("document list", err)
		}
		doc.Body = []byte(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("document list", err)
	}
	return docs, nil
}
