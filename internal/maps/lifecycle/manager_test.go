package lifecycle_test

import (
	"io"
	"log"
	"testing"

	"github.com/Alainx277/ssnt/internal/assets"
	"github.com/Alainx277/ssnt/internal/maps"
	"github.com/Alainx277/ssnt/internal/maps/lifecycle"
	"github.com/Alainx277/ssnt/internal/maps/turfs"
	"github.com/Alainx277/ssnt/internal/scene"
)

func testCatalog() *turfs.Catalog {
	defs := []turfs.Def{
		{ID: "floor", Name: "Steel Floor", Mesh: "turf/floor"},
		{ID: "wall", Name: "Steel Wall", Mesh: "turf/wall", Solid: true},
	}
	c := &turfs.Catalog{Defs: defs, Index: map[string]uint16{}}
	for i, d := range defs {
		c.Palette = append(c.Palette, d.ID)
		c.Index[d.ID] = uint16(i)
	}
	return c
}

func testLibrary() *assets.Library {
	l := assets.NewLibrary()
	l.Register("turf/floor", "models/turf/floor.glb")
	l.Register("turf/wall", "models/turf/wall.glb")
	return l
}

func newManager(t *testing.T) (*lifecycle.Manager, *scene.Graph) {
	t.Helper()
	g := scene.NewGraph()
	mgr := lifecycle.NewManager(g, testCatalog(), testLibrary(), log.New(io.Discard, "", 0))
	return mgr, g
}

type memJournal struct {
	entries []lifecycle.ApplyLogEntry
}

func (j *memJournal) WriteApply(e lifecycle.ApplyLogEntry) error {
	j.entries = append(j.entries, e)
	return nil
}

func TestApplyChangedMaterializesAndSettles(t *testing.T) {
	mgr, g := newManager(t)
	m, _ := maps.New(maps.Vec2i{X: 2, Y: 2})

	_ = m.SetTurf(0, 0, maps.TurfData{Definition: 1})
	_ = m.SetTurf(17, 3, maps.TurfData{Definition: 0})
	_ = m.SetTurf(18, 3, maps.TurfData{Definition: 0})

	applied, err := mgr.ApplyChanged(m, 1)
	if err != nil {
		t.Fatalf("ApplyChanged: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 chunks applied, got %d", applied)
	}
	if mgr.SpawnedCount() != 2 {
		t.Fatalf("expected 2 retained chunks, got %d", mgr.SpawnedCount())
	}
	for _, index := range []int{0, 1} {
		chunk, _ := m.Chunk(index)
		if chunk.HasChanges() {
			t.Fatalf("chunk %d markers not consumed", index)
		}
	}

	// Quiet tick: nothing to do, no backend traffic.
	before := g.Stats()
	applied, err = mgr.ApplyChanged(m, 2)
	if err != nil {
		t.Fatalf("ApplyChanged quiet: %v", err)
	}
	if applied != 0 {
		t.Fatalf("quiet tick applied %d chunks", applied)
	}
	if g.Stats() != before {
		t.Fatalf("quiet tick issued backend calls")
	}
}

func TestApplyIndexJournals(t *testing.T) {
	mgr, _ := newManager(t)
	j := &memJournal{}
	mgr.SetJournal(j)
	m, _ := maps.New(maps.Vec2i{X: 1, Y: 1})
	_ = m.SetTurf(0, 0, maps.TurfData{Definition: 1})

	if err := mgr.ApplyIndex(m, 0, 5); err != nil {
		t.Fatalf("ApplyIndex: %v", err)
	}
	_ = m.SetTurf(1, 0, maps.TurfData{Definition: 0})
	if err := mgr.ApplyIndex(m, 0, 6); err != nil {
		t.Fatalf("ApplyIndex: %v", err)
	}

	if len(j.entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(j.entries))
	}
	first, second := j.entries[0], j.entries[1]
	if !first.Full || first.Tick != 5 || first.LiveBefore != 0 || first.LiveAfter != 1 {
		t.Fatalf("first entry: %+v", first)
	}
	if second.Full || second.Marked != 1 || second.LiveBefore != 1 || second.LiveAfter != 2 {
		t.Fatalf("second entry: %+v", second)
	}
}

func TestUnloadTearsDown(t *testing.T) {
	mgr, g := newManager(t)
	m, _ := maps.New(maps.Vec2i{X: 1, Y: 1})
	_ = m.SetTurf(0, 0, maps.TurfData{Definition: 1})
	_ = m.SetTurf(4, 4, maps.TurfData{Definition: 0})

	if _, err := mgr.ApplyChanged(m, 1); err != nil {
		t.Fatalf("ApplyChanged: %v", err)
	}
	mc, ok := mgr.Spawned(0)
	if !ok || mc.Live() != 2 {
		t.Fatalf("expected 2 live slots before unload")
	}

	mgr.Unload(0)
	if mgr.SpawnedCount() != 0 {
		t.Fatalf("chunk still retained after unload")
	}
	// Only the map root survives.
	if g.Len() != 1 {
		t.Fatalf("expected 1 live object after unload, got %d", g.Len())
	}

	// The next apply is a full materialization again.
	j := &memJournal{}
	mgr.SetJournal(j)
	if _, err := mgr.ApplyChanged(m, 2); err != nil {
		t.Fatalf("ApplyChanged after unload: %v", err)
	}
	if len(j.entries) != 1 || !j.entries[0].Full {
		t.Fatalf("expected a full pass after unload, got %+v", j.entries)
	}
	if mc, _ := mgr.Spawned(0); mc.Live() != 2 {
		t.Fatalf("expected rebuilt chunk with 2 live slots")
	}
}

func TestCloseDestroysEverything(t *testing.T) {
	mgr, g := newManager(t)
	m, _ := maps.New(maps.Vec2i{X: 2, Y: 1})
	_ = m.SetTurf(0, 0, maps.TurfData{Definition: 1})
	_ = m.SetTurf(20, 0, maps.TurfData{Definition: 0})

	if _, err := mgr.ApplyChanged(m, 1); err != nil {
		t.Fatalf("ApplyChanged: %v", err)
	}
	mgr.Close()
	if g.Len() != 0 {
		t.Fatalf("expected empty scene after close, got %d live", g.Len())
	}
}
