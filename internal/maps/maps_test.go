package maps

import (
	"errors"
	"testing"
)

func TestChunkIndexMath(t *testing.T) {
	size := Vec2i{X: 10, Y: 4}

	if got := PositionFromChunkIndex(size, 3); got != (Vec2i{X: 3, Y: 0}) {
		t.Fatalf("chunk 3 position: got %+v", got)
	}
	if got := OriginFromChunkIndex(size, 3); got != (Vec2i{X: 48, Y: 0}) {
		t.Fatalf("chunk 3 origin: got %+v", got)
	}
	if got := PositionFromChunkIndex(size, 13); got != (Vec2i{X: 3, Y: 1}) {
		t.Fatalf("chunk 13 position: got %+v", got)
	}
	if got := TilePositionInChunk(17); got != (Vec2i{X: 1, Y: 1}) {
		t.Fatalf("tile slot 17 offset: got %+v", got)
	}
	if got := TileIndexInChunk(1, 1); got != 17 {
		t.Fatalf("tile (1,1) index: got %d", got)
	}
	for _, index := range []int{0, 7, 39} {
		pos := PositionFromChunkIndex(size, index)
		if back := ChunkIndexFromPosition(size, pos); back != index {
			t.Fatalf("chunk index %d round trip through %+v gave %d", index, pos, back)
		}
	}
}

func TestChunkLookupErrors(t *testing.T) {
	m, err := New(Vec2i{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Chunk(-1); !errors.Is(err, ErrChunkOutOfRange) {
		t.Fatalf("expected out of range for -1, got %v", err)
	}
	if _, err := m.Chunk(4); !errors.Is(err, ErrChunkOutOfRange) {
		t.Fatalf("expected out of range for 4, got %v", err)
	}
	if _, err := m.Chunk(0); !errors.Is(err, ErrChunkNotLoaded) {
		t.Fatalf("expected not loaded, got %v", err)
	}
	if _, err := m.EnsureChunk(0); err != nil {
		t.Fatalf("EnsureChunk: %v", err)
	}
	if _, err := m.Chunk(0); err != nil {
		t.Fatalf("Chunk after ensure: %v", err)
	}
}

func TestSetTurfMarksChanged(t *testing.T) {
	m, _ := New(Vec2i{X: 2, Y: 1})

	wall := TurfData{Definition: 1}
	if err := m.SetTurf(17, 1, wall); err != nil {
		t.Fatalf("SetTurf: %v", err)
	}
	c, err := m.Chunk(1)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	i := TileIndexInChunk(1, 1)
	if !c.Changed[i] {
		t.Fatalf("expected changed marker set")
	}
	if got, ok := m.Turf(17, 1); !ok || got != wall {
		t.Fatalf("Turf: got %+v ok=%v", got, ok)
	}

	// Writing the identical value back must not re-mark the tile.
	c.ClearChanged()
	if err := m.SetTurf(17, 1, wall); err != nil {
		t.Fatalf("SetTurf same value: %v", err)
	}
	if c.HasChanges() {
		t.Fatalf("identical write should not mark the tile")
	}

	if err := m.SetTurf(17, 1, TurfData{Definition: 1, Variant: 2}); err != nil {
		t.Fatalf("SetTurf variant: %v", err)
	}
	if !c.Changed[i] {
		t.Fatalf("instance field change should mark the tile")
	}
}

func TestRemoveTurf(t *testing.T) {
	m, _ := New(Vec2i{X: 1, Y: 1})

	// Removing from an empty world is a quiet no-op.
	if err := m.RemoveTurf(3, 3); err != nil {
		t.Fatalf("RemoveTurf empty: %v", err)
	}

	if err := m.SetTurf(3, 3, TurfData{Definition: 2}); err != nil {
		t.Fatalf("SetTurf: %v", err)
	}
	c, _ := m.Chunk(0)
	c.ClearChanged()

	if err := m.RemoveTurf(3, 3); err != nil {
		t.Fatalf("RemoveTurf: %v", err)
	}
	if _, ok := m.Turf(3, 3); ok {
		t.Fatalf("turf should be gone")
	}
	if !c.Changed[TileIndexInChunk(3, 3)] {
		t.Fatalf("removal should mark the tile")
	}

	if err := m.RemoveTurf(-1, 0); !errors.Is(err, ErrTileOutOfRange) {
		t.Fatalf("expected tile out of range, got %v", err)
	}
}
