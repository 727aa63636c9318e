package indexdb

import (
	"path/filepath"
	"testing"

	"github.com/Alainx277/ssnt/internal/maps/lifecycle"
)

func TestSQLiteIndexRecordsApplies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	entries := []lifecycle.ApplyLogEntry{
		{Tick: 1, Chunk: 0, Full: true, LiveAfter: 10},
		{Tick: 2, Chunk: 0, Marked: 2, LiveBefore: 10, LiveAfter: 9},
		{Tick: 2, Chunk: 3, Full: true, LiveAfter: 4},
	}
	for _, e := range entries {
		if err := s.WriteApply(e); err != nil {
			t.Fatalf("WriteApply: %v", err)
		}
	}
	// Close drains the writer queue before shutting the db down.
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Writes after close are quietly ignored.
	if err := s.WriteApply(lifecycle.ApplyLogEntry{Tick: 3}); err != nil {
		t.Fatalf("WriteApply after close: %v", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if n, err := s2.CountApplies(-1); err != nil || n != 3 {
		t.Fatalf("CountApplies all: n=%d err=%v", n, err)
	}
	if n, err := s2.CountApplies(0); err != nil || n != 2 {
		t.Fatalf("CountApplies chunk 0: n=%d err=%v", n, err)
	}
	if n, err := s2.CountApplies(3); err != nil || n != 1 {
		t.Fatalf("CountApplies chunk 3: n=%d err=%v", n, err)
	}
}
