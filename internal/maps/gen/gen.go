// Package gen produces deterministic station layouts for soak runs and
// tests: a floored interior ringed by hull walls, with seeded wall
// clusters scattered inside.
package gen

import (
	"fmt"

	"github.com/Alainx277/ssnt/internal/maps"
	"github.com/Alainx277/ssnt/internal/maps/turfs"
)

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 is a stateless position hash; equal inputs always give equal
// outputs, which is what keeps generation reproducible.
func Hash2(seed int64, x, y int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xbf58476d1ce4e5b9))
}

// Generate fills every chunk of the map: hull walls along the perimeter,
// floor inside, and wall clusters at a wallPermille density.
func Generate(m *maps.MapData, cat *turfs.Catalog, seed int64, wallPermille int) error {
	floor, ok := cat.Lookup("floor")
	if !ok {
		return fmt.Errorf("catalog has no floor definition")
	}
	wall, ok := cat.Lookup("wall")
	if !ok {
		return fmt.Errorf("catalog has no wall definition")
	}
	if wallPermille < 0 {
		wallPermille = 0
	}
	if wallPermille > 1000 {
		wallPermille = 1000
	}

	for index := 0; index < m.ChunkCount(); index++ {
		if _, err := m.EnsureChunk(index); err != nil {
			return err
		}
	}

	width := m.Size.X * maps.ChunkSize
	height := m.Size.Y * maps.ChunkSize
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			turf := maps.TurfData{Definition: floor}
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				turf = maps.TurfData{Definition: wall}
			} else if Hash2(seed, x, y)%1000 < uint64(wallPermille) {
				turf = maps.TurfData{Definition: wall}
			} else {
				turf.Variant = uint8(Hash2(seed+1, x, y) % 4)
			}
			if err := m.SetTurf(x, y, turf); err != nil {
				return err
			}
		}
	}
	return nil
}

// Mutate applies count seeded random edits: place a wall, repaint a floor
// variant, or strip a tile bare. Edits never touch the hull so the
// perimeter stays intact.
func Mutate(m *maps.MapData, cat *turfs.Catalog, seed int64, tick uint64, count int) error {
	floor, ok := cat.Lookup("floor")
	if !ok {
		return fmt.Errorf("catalog has no floor definition")
	}
	wall, ok := cat.Lookup("wall")
	if !ok {
		return fmt.Errorf("catalog has no wall definition")
	}

	width := m.Size.X * maps.ChunkSize
	height := m.Size.Y * maps.ChunkSize
	if width <= 2 || height <= 2 {
		return nil
	}

	for k := 0; k < count; k++ {
		h := Hash2(seed^int64(tick), k, int(tick))
		x := 1 + int(h%uint64(width-2))
		y := 1 + int((h>>20)%uint64(height-2))
		switch (h >> 40) % 3 {
		case 0:
			if err := m.SetTurf(x, y, maps.TurfData{Definition: wall}); err != nil {
				return err
			}
		case 1:
			variant := uint8((h >> 50) % 4)
			if err := m.SetTurf(x, y, maps.TurfData{Definition: floor, Variant: variant}); err != nil {
				return err
			}
		default:
			if err := m.RemoveTurf(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}
