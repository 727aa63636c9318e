// Package materialize keeps the realized scene in agreement with the
// logical tile grid. Each loaded chunk owns a MaterializedChunk mirroring
// its tile slots; Reconcile issues the minimum set of backend calls to
// bring the mirror back in line after logical mutations.
package materialize

import (
	"errors"
	"fmt"
	"log"

	"github.com/Alainx277/ssnt/internal/assets"
	"github.com/Alainx277/ssnt/internal/maps"
	"github.com/Alainx277/ssnt/internal/maps/turfs"
	"github.com/Alainx277/ssnt/internal/scene"
)

// ErrShapeMismatch means a prior MaterializedChunk does not have one slot
// per tile. That is caller misuse, not an environmental fault.
var ErrShapeMismatch = errors.New("materialized chunk shape mismatch")

type slot struct {
	turf   maps.TurfData
	handle scene.Handle
}

// MaterializedChunk mirrors one chunk's tile slots: for each slot either
// nothing, or the turf snapshot that produced the live backend object plus
// the handle for it. It holds no heavy resources, only handles, so it is
// cheap to keep per loaded chunk.
type MaterializedChunk struct {
	slots []slot
}

func New() *MaterializedChunk {
	return &MaterializedChunk{slots: make([]slot, maps.ChunkLength)}
}

// Slot reports the snapshot and handle realized at slot i, if any.
func (mc *MaterializedChunk) Slot(i int) (maps.TurfData, scene.Handle, bool) {
	if i < 0 || i >= len(mc.slots) {
		return maps.TurfData{}, scene.Handle{}, false
	}
	s := mc.slots[i]
	return s.turf, s.handle, s.handle.Valid()
}

// Live counts slots with a realized object.
func (mc *MaterializedChunk) Live() int {
	n := 0
	for i := range mc.slots {
		if mc.slots[i].handle.Valid() {
			n++
		}
	}
	return n
}

// Reconcile brings the realized state of one chunk in line with its
// logical tiles. With no prior state every slot is processed (first
// materialization); with prior state only slots whose change marker is set
// are visited. Both cases run the same per-slot logic.
//
// A turf whose definition or mesh cannot be resolved is logged and its
// slot left exactly as it was, so a later pass can pick it up once the
// asset is available. The logical chunk is never mutated; clearing change
// markers is the caller's job.
func Reconcile(b scene.Backend, m *maps.MapData, cat *turfs.Catalog, lib *assets.Library,
	prior *MaterializedChunk, chunkIndex int, container scene.Handle, logger *log.Logger) (*MaterializedChunk, error) {

	chunk, err := m.Chunk(chunkIndex)
	if err != nil {
		return nil, err
	}
	if prior != nil && len(prior.slots) != maps.ChunkLength {
		return nil, fmt.Errorf("chunk %d: %d slots for %d tiles: %w",
			chunkIndex, len(prior.slots), maps.ChunkLength, ErrShapeMismatch)
	}
	if logger == nil {
		logger = log.Default()
	}

	full := prior == nil
	mc := prior
	if full {
		mc = New()
	}
	origin := maps.OriginFromChunkIndex(m.Size, chunkIndex)

	for i := 0; i < maps.ChunkLength; i++ {
		if !full && !chunk.Changed[i] {
			continue
		}

		tile := chunk.Tiles[i]
		s := &mc.slots[i]
		exists := tile != nil && tile.Turf != nil
		spawned := s.handle.Valid()

		switch {
		case !exists && !spawned:
			// Nothing there, nothing realized.

		case !exists:
			b.DestroyObjectRecursive(s.handle)
			*s = slot{}

		default:
			turf := *tile.Turf
			if spawned && turf == s.turf {
				continue
			}
			def, ok := cat.Definition(turf.Definition)
			if !ok {
				logger.Printf("chunk %d slot %d: unknown turf definition %d", chunkIndex, i, turf.Definition)
				continue
			}
			mesh, ok := lib.Mesh(def.Mesh)
			if !ok {
				logger.Printf("chunk %d slot %d: mesh for turf %s is not available", chunkIndex, i, def.Name)
				continue
			}
			local := maps.TilePositionInChunk(i)
			pos := scene.Vec3{
				X: float32(origin.X + local.X),
				Y: 0,
				Z: float32(origin.Y + local.Y),
			}
			if spawned {
				// Same object, new payload. The handle must survive:
				// other systems may reference it.
				b.UpdateObject(s.handle, mesh, scene.DefaultMaterial(), pos)
				s.turf = turf
			} else {
				h := b.CreateObject(mesh, scene.DefaultMaterial(), pos, container)
				*s = slot{turf: turf, handle: h}
			}
		}
	}

	return mc, nil
}

// Teardown destroys every realized object in the chunk and empties it.
// Used when a chunk leaves the working set.
func Teardown(b scene.Backend, mc *MaterializedChunk) {
	if mc == nil {
		return
	}
	for i := range mc.slots {
		if mc.slots[i].handle.Valid() {
			b.DestroyObjectRecursive(mc.slots[i].handle)
			mc.slots[i] = slot{}
		}
	}
}
