// Package postgres provides a Postgres-backed persistent store that keeps the
// in-memory transaction semantics and writes each commit as JSONB rows.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ripperdoc/internal/infra/persistence/memory"
	"ripperdoc/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const defaultDSN = "postgres://localhost/ripperdoc?sslmode=disable"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS records (
		entity TEXT NOT NULL,
		id TEXT NOT NULL,
		version BIGINT NOT NULL,
		payload JSONB NOT NULL,
		PRIMARY KEY (entity, id)
	)`
	selectRecordsSQL = `SELECT entity, id, version, payload FROM records`
	upsertRecordSQL  = `INSERT INTO records(entity, id, version, payload) VALUES($1,$2,$3,$4) ON CONFLICT(entity, id) DO UPDATE SET version = EXCLUDED.version, payload = EXCLUDED.payload`
	deleteRecordSQL  = `DELETE FROM records WHERE entity = $1 AND id = $2`
)

// Pool is the subset of pgxpool.Pool the store uses, so tests can hand in a mock.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store persists state to Postgres while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	pool Pool
}

// Open connects to dsn (falling back to a local default), verifies the
// connection and loads the store.
func Open(ctx context.Context, dsn string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s, err := New(ctx, pool, engine, opts...)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New ensures the records table exists on pool and hydrates the in-memory
// store from it.
func New(ctx context.Context, pool Pool, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("ensure records table: %w", err)
	}
	records, err := loadRecords(ctx, pool)
	if err != nil {
		return nil, err
	}
	snapshot, err := memory.SnapshotFromRecords(records)
	if err != nil {
		return nil, err
	}
	s := &Store{pool: pool}
	s.Store = memory.NewStore(engine, append(opts, memory.WithCommitHook(s.persist))...)
	s.ImportState(snapshot)
	return s, nil
}

func loadRecords(ctx context.Context, pool Pool) ([]memory.Record, error) {
	rows, err := pool.Query(ctx, selectRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()
	var records []memory.Record
	for rows.Next() {
		var r memory.Record
		var entity string
		if err := rows.Scan(&entity, &r.ID, &r.Version, &r.Payload); err != nil {
			return nil, fmt.Errorf("scan records: %w", err)
		}
		r.Entity = domain.EntityType(entity)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (s *Store) persist(ctx context.Context, changes []domain.Change) error {
	mutations, err := memory.Mutations(changes)
	if err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()
	for _, m := range mutations {
		if m.Delete {
			if _, err := tx.Exec(ctx, deleteRecordSQL, string(m.Entity), m.ID); err != nil {
				return fmt.Errorf("delete %s %s: %w", m.Entity, m.ID, err)
			}
			continue
		}
		if _, err := tx.Exec(ctx, upsertRecordSQL, string(m.Entity), m.ID, m.Version, m.Payload); err != nil {
			return fmt.Errorf("upsert %s %s: %w", m.Entity, m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
