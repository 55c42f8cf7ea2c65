// Package cache stores wire-encoded chunks in a SQLite database.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/OCharnyshevich/chunkstore/internal/wire"
	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

// ErrNotFound is returned by Get when no chunk is cached at a position.
var ErrNotFound = errors.New("chunk not cached")

// Store is a chunk cache keyed by chunk position.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		x INTEGER NOT NULL,
		z INTEGER NOT NULL,
		data BLOB NOT NULL,
		raw_size INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (x, z)
	);`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores c, replacing any chunk already cached at its position.
func (s *Store) Put(ctx context.Context, c *chunk.Data) error {
	raw := wire.Encode(c)
	blob, err := Compress(raw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chunks (x, z, data, raw_size, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (x, z) DO UPDATE SET data = excluded.data, raw_size = excluded.raw_size, updated_at = excluded.updated_at`,
		c.Pos.X, c.Pos.Z, blob, len(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store chunk %s: %w", c.Pos, err)
	}
	s.log.Debug("cached chunk", "chunk", c.Pos, "raw_bytes", len(raw), "stored_bytes", len(blob))
	return nil
}

// Get loads the chunk cached at pos.
func (s *Store) Get(ctx context.Context, pos chunk.Pos) (*chunk.Data, error) {
	var (
		blob    []byte
		rawSize int
	)
	err := s.db.QueryRowContext(ctx, `SELECT data, raw_size FROM chunks WHERE x = ? AND z = ?`, pos.X, pos.Z).
		Scan(&blob, &rawSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pos)
	}
	if err != nil {
		return nil, fmt.Errorf("load chunk %s: %w", pos, err)
	}

	raw, err := Decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", pos, err)
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("chunk %s: %w: cached %d bytes, stored size %d", pos, wire.ErrLengthMismatch, len(raw), rawSize)
	}
	c, err := wire.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", pos, err)
	}
	if c.Pos != pos {
		return nil, fmt.Errorf("chunk %s: cached entry holds %s", pos, c.Pos)
	}
	return c, nil
}

// Delete removes the chunk cached at pos, if any.
func (s *Store) Delete(ctx context.Context, pos chunk.Pos) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE x = ? AND z = ?`, pos.X, pos.Z); err != nil {
		return fmt.Errorf("delete chunk %s: %w", pos, err)
	}
	return nil
}

// Len returns the number of cached chunks.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}
