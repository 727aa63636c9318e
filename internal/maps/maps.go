package maps

import (
	"errors"
	"fmt"
)

const (
	// ChunkSize is the side length of a chunk in tiles.
	ChunkSize = 16
	// ChunkLength is the number of tile slots in one chunk.
	ChunkLength = ChunkSize * ChunkSize
)

var (
	ErrChunkOutOfRange = errors.New("chunk index out of range")
	ErrChunkNotLoaded  = errors.New("chunk not loaded")
	ErrTileOutOfRange  = errors.New("tile position out of world bounds")
)

type Vec2i struct {
	X, Y int
}

// TurfData is the comparable per-tile turf value: a turf definition plus
// the instance fields that can vary tile to tile. Two tiles with equal
// TurfData realize identical objects.
type TurfData struct {
	Definition uint16
	Variant    uint8
	Dir        uint8
}

type TileData struct {
	Turf *TurfData
}

// ChunkData is one chunk of the logical tile grid plus per-tile change
// markers. Tiles and Changed are index-aligned, row-major.
type ChunkData struct {
	Tiles   [ChunkLength]*TileData
	Changed [ChunkLength]bool
}

func (c *ChunkData) MarkChanged(i int) {
	c.Changed[i] = true
}

func (c *ChunkData) ClearChanged() {
	c.Changed = [ChunkLength]bool{}
}

func (c *ChunkData) HasChanges() bool {
	for _, changed := range c.Changed {
		if changed {
			return true
		}
	}
	return false
}

// MapData is the logical world: a fixed W×H grid of chunks addressed by
// row-major chunk index. A nil entry is a chunk that was never loaded.
type MapData struct {
	Size   Vec2i
	Chunks []*ChunkData
}

func New(size Vec2i) (*MapData, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("map size must be positive, got %dx%d", size.X, size.Y)
	}
	return &MapData{
		Size:   size,
		Chunks: make([]*ChunkData, size.X*size.Y),
	}, nil
}

func (m *MapData) ChunkCount() int {
	return len(m.Chunks)
}

func (m *MapData) Chunk(index int) (*ChunkData, error) {
	if index < 0 || index >= len(m.Chunks) {
		return nil, fmt.Errorf("chunk %d: %w", index, ErrChunkOutOfRange)
	}
	c := m.Chunks[index]
	if c == nil {
		return nil, fmt.Errorf("chunk %d: %w", index, ErrChunkNotLoaded)
	}
	return c, nil
}

func (m *MapData) EnsureChunk(index int) (*ChunkData, error) {
	if index < 0 || index >= len(m.Chunks) {
		return nil, fmt.Errorf("chunk %d: %w", index, ErrChunkOutOfRange)
	}
	if m.Chunks[index] == nil {
		m.Chunks[index] = &ChunkData{}
	}
	return m.Chunks[index], nil
}

// Unload drops the logical chunk. Realized state retained elsewhere for
// the index is the caller's problem.
func (m *MapData) Unload(index int) {
	if index >= 0 && index < len(m.Chunks) {
		m.Chunks[index] = nil
	}
}

// Turf reports the turf at a global tile position, if any.
func (m *MapData) Turf(x, y int) (TurfData, bool) {
	c, i, err := m.tileLocation(x, y)
	if err != nil || c == nil {
		return TurfData{}, false
	}
	t := c.Tiles[i]
	if t == nil || t.Turf == nil {
		return TurfData{}, false
	}
	return *t.Turf, true
}

// SetTurf places or replaces the turf at a global tile position and marks
// the tile changed. Writing a value equal to the current one is a no-op
// and leaves the marker alone.
func (m *MapData) SetTurf(x, y int, turf TurfData) error {
	chunkIndex, tileIndex, err := m.locate(x, y)
	if err != nil {
		return err
	}
	c, err := m.EnsureChunk(chunkIndex)
	if err != nil {
		return err
	}
	t := c.Tiles[tileIndex]
	if t != nil && t.Turf != nil && *t.Turf == turf {
		return nil
	}
	if t == nil {
		t = &TileData{}
		c.Tiles[tileIndex] = t
	}
	v := turf
	t.Turf = &v
	c.Changed[tileIndex] = true
	return nil
}

// RemoveTurf clears the turf at a global tile position and marks the tile
// changed. Removing from an empty tile or an unloaded chunk is a no-op.
func (m *MapData) RemoveTurf(x, y int) error {
	c, i, err := m.tileLocation(x, y)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	t := c.Tiles[i]
	if t == nil || t.Turf == nil {
		return nil
	}
	t.Turf = nil
	c.Changed[i] = true
	return nil
}

func (m *MapData) locate(x, y int) (chunkIndex, tileIndex int, err error) {
	if x < 0 || y < 0 || x >= m.Size.X*ChunkSize || y >= m.Size.Y*ChunkSize {
		return 0, 0, fmt.Errorf("tile (%d,%d): %w", x, y, ErrTileOutOfRange)
	}
	chunkIndex = ChunkIndexFromPosition(m.Size, Vec2i{X: x / ChunkSize, Y: y / ChunkSize})
	tileIndex = TileIndexInChunk(x%ChunkSize, y%ChunkSize)
	return chunkIndex, tileIndex, nil
}

func (m *MapData) tileLocation(x, y int) (*ChunkData, int, error) {
	chunkIndex, tileIndex, err := m.locate(x, y)
	if err != nil {
		return nil, 0, err
	}
	return m.Chunks[chunkIndex], tileIndex, nil
}

// PositionFromChunkIndex maps a row-major chunk index to its position on
// the chunk grid.
func PositionFromChunkIndex(size Vec2i, index int) Vec2i {
	return Vec2i{X: index % size.X, Y: index / size.X}
}

func ChunkIndexFromPosition(size, pos Vec2i) int {
	return pos.Y*size.X + pos.X
}

// OriginFromChunkIndex is the chunk's origin tile position in world units.
func OriginFromChunkIndex(size Vec2i, index int) Vec2i {
	p := PositionFromChunkIndex(size, index)
	return Vec2i{X: p.X * ChunkSize, Y: p.Y * ChunkSize}
}

// TilePositionInChunk decomposes a tile slot index into its local (x,y)
// offset within the chunk.
func TilePositionInChunk(i int) Vec2i {
	return Vec2i{X: i % ChunkSize, Y: i / ChunkSize}
}

func TileIndexInChunk(x, y int) int {
	return y*ChunkSize + x
}
