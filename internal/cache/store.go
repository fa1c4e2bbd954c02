// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache keeps page counts and page thumbnails keyed by the SHA-256
// fingerprint of a document's bytes, so two files with the same name and
// size but different content never share an entry.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pagecraft/pkg/types"
)

// Renderer produces page thumbnails for a PDF. Rasterization itself lives
// outside this module; the cache only stores what a renderer returns.
type Renderer interface {
	Render(ctx context.Context, data []byte) ([]types.Thumbnail, error)
}

// Stats summarizes the cache contents and the lookups served since Open.
type Stats struct {
	Documents  int   `json:"documents" yaml:"documents"`
	Thumbnails int   `json:"thumbnails" yaml:"thumbnails"`
	Hits       int64 `json:"hits" yaml:"hits"`
	Misses     int64 `json:"misses" yaml:"misses"`
}

// Store is a SQLite-backed fingerprint cache owned by one session.
type Store struct {
	db     *sql.DB
	hits   atomic.Int64
	misses atomic.Int64
}

// Open opens the cache described by cfg. An empty cfg.Path keeps the
// database in memory; it is discarded by Close.
func Open(cfg types.CacheConfig) (*Store, error) {
	dsn := ":memory:"
	if cfg.Path != "" {
		dsn = cfg.Path + "?_journal_mode=WAL&_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS documents (
			fingerprint TEXT PRIMARY KEY,
			size INTEGER NOT NULL,
			page_count INTEGER,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS thumbnails (
			fingerprint TEXT NOT NULL REFERENCES documents(fingerprint) ON DELETE CASCADE,
			page INTEGER NOT NULL,
			image BLOB NOT NULL,
			PRIMARY KEY (fingerprint, page)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Counter wraps inner so that page counts are served from the cache when
// the same bytes were counted before. Failed counts are not cached.
func (s *Store) Counter(inner types.PageCounter) types.PageCounter {
	return &counter{store: s, inner: inner}
}

type counter struct {
	store *Store
	inner types.PageCounter
}

func (c *counter) PageCount(ctx context.Context, data []byte) (int, error) {
	fp := types.Fingerprint(data)

	var n sql.NullInt64
	err := c.store.db.QueryRowContext(ctx,
		`SELECT page_count FROM documents WHERE fingerprint = ?`, fp,
	).Scan(&n)
	switch {
	case err == nil && n.Valid:
		c.store.hits.Add(1)
		return int(n.Int64), nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("looking up page count: %w", err)
	}

	c.store.misses.Add(1)
	pages, err := c.inner.PageCount(ctx, data)
	if err != nil {
		return 0, err
	}
	if _, err := c.store.db.ExecContext(ctx,
		`INSERT INTO documents (fingerprint, size, page_count, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET page_count = excluded.page_count, updated_at = excluded.updated_at`,
		fp, len(data), pages, now(),
	); err != nil {
		return 0, fmt.Errorf("storing page count: %w", err)
	}
	return pages, nil
}

// Thumbnails returns the thumbnails of doc ordered by page number,
// rendering and storing them on a miss.
func (s *Store) Thumbnails(ctx context.Context, doc *types.SourceDocument, r Renderer) ([]types.Thumbnail, error) {
	fp := doc.Fingerprint()

	cached, err := s.loadThumbnails(ctx, fp)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		s.hits.Add(1)
		return cached, nil
	}

	s.misses.Add(1)
	thumbs, err := r.Render(ctx, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("rendering thumbnails of %s: %w", doc.Name, err)
	}
	sort.SliceStable(thumbs, func(i, j int) bool { return thumbs[i].PageNumber < thumbs[j].PageNumber })

	if err := s.storeThumbnails(ctx, fp, doc.Size, thumbs); err != nil {
		return nil, err
	}
	return thumbs, nil
}

func (s *Store) loadThumbnails(ctx context.Context, fp string) ([]types.Thumbnail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page, image FROM thumbnails WHERE fingerprint = ? ORDER BY page`, fp)
	if err != nil {
		return nil, fmt.Errorf("loading thumbnails: %w", err)
	}
	defer rows.Close()

	var out []types.Thumbnail
	for rows.Next() {
		var t types.Thumbnail
		if err := rows.Scan(&t.PageNumber, &t.Image); err != nil {
			return nil, fmt.Errorf("scanning thumbnail: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) storeThumbnails(ctx context.Context, fp string, size int64, thumbs []types.Thumbnail) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (fingerprint, size, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET updated_at = excluded.updated_at`,
		fp, size, now(),
	); err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM thumbnails WHERE fingerprint = ?`, fp); err != nil {
		return fmt.Errorf("clearing thumbnails: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO thumbnails (fingerprint, page, image) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing thumbnail insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range thumbs {
		if _, err := stmt.ExecContext(ctx, fp, t.PageNumber, t.Image); err != nil {
			return fmt.Errorf("storing thumbnail for page %d: %w", t.PageNumber, err)
		}
	}
	return tx.Commit()
}

// Forget drops everything cached for the document with fingerprint fp.
func (s *Store) Forget(ctx context.Context, fp string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE fingerprint = ?`, fp); err != nil {
		return fmt.Errorf("forgetting %s: %w", fp, err)
	}
	return nil
}

// Clear empties the cache.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Stats reports the number of cached documents and thumbnails.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&st.Documents); err != nil {
		return st, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM thumbnails`).Scan(&st.Thumbnails); err != nil {
		return st, fmt.Errorf("counting thumbnails: %w", err)
	}
	return st, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
