// Package indexdb keeps a queryable read model of reconciliation activity.
// It never feeds back into materialization; losing it costs nothing but
// introspection.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Alainx277/ssnt/internal/maps/lifecycle"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan lifecycle.ApplyLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan lifecycle.ApplyLogEntry, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS applies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			chunk INTEGER NOT NULL,
			full INTEGER NOT NULL,
			marked INTEGER NOT NULL,
			live_before INTEGER NOT NULL,
			live_after INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_applies_tick ON applies(tick);`,
		`CREATE INDEX IF NOT EXISTS idx_applies_chunk ON applies(chunk);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteApply enqueues an entry for the background writer. Entries are
// dropped when the indexer falls behind; the JSONL journal remains the
// source of truth.
func (s *SQLiteIndex) WriteApply(e lifecycle.ApplyLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- e:
	default:
	}
	return nil
}

// CountApplies reports the number of recorded passes, optionally filtered
// to one chunk index (pass a negative chunk for all).
func (s *SQLiteIndex) CountApplies(chunk int) (int, error) {
	var (
		n   int
		err error
	)
	if chunk < 0 {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM applies`).Scan(&n)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM applies WHERE chunk = ?`, chunk).Scan(&n)
	}
	return n, err
}

func (s *SQLiteIndex) loop() {
	insert, err := s.db.Prepare(`INSERT INTO applies(tick,chunk,full,marked,live_before,live_after,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return
	}
	defer insert.Close()

	for e := range s.ch {
		full := 0
		if e.Full {
			full = 1
		}
		_, _ = insert.Exec(e.Tick, e.Chunk, full, e.Marked, e.LiveBefore, e.LiveAfter,
			time.Now().UTC().Format(time.RFC3339Nano))
	}
}
