// Package sqlite persists the record store to a local SQLite file, one row
// per record.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"ripperdoc/internal/infra/persistence/memory"
	"ripperdoc/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// Store serves reads from the embedded memory store and writes every commit
// through to SQLite before it becomes visible.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path and loads it.
func NewStore(path string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if path == "" {
		path = "ripperdoc.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer connection keeps SQLite from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		entity TEXT NOT NULL,
		id TEXT NOT NULL,
		version INTEGER NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (entity, id)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	s := &Store{db: db, path: path}
	s.Store = memory.NewStore(engine, append(opts, memory.WithCommitHook(s.persist))...)
	if err := s.load(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT entity, id, version, payload FROM records`)
	if err != nil {
		return fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var records []memory.Record
	for rows.Next() {
		var r memory.Record
		var entity string
		if err := rows.Scan(&entity, &r.ID, &r.Version, &r.Payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		r.Entity = domain.EntityType(entity)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate records: %w", err)
	}
	snapshot, err := memory.SnapshotFromRecords(records)
	if err != nil {
		return err
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist(ctx context.Context, changes []domain.Change) (retErr error) {
	mutations, err := memory.Mutations(changes)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, m := range mutations {
		if m.Delete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE entity = ? AND id = ?`, string(m.Entity), m.ID); err != nil {
				return fmt.Errorf("delete %s %s: %w", m.Entity, m.ID, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO records(entity, id, version, payload) VALUES(?,?,?,?)
			ON CONFLICT(entity, id) DO UPDATE SET version = excluded.version, payload = excluded.payload`,
			string(m.Entity), m.ID, m.Version, m.Payload); err != nil {
			return fmt.Errorf("upsert %s %s: %w", m.Entity, m.ID, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
